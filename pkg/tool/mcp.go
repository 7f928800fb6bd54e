// Package tool dispatches the side-effecting end of a tool call: local
// shell commands, apply_patch writes to disk, and calls forwarded to MCP
// servers over the real client SDK.
package tool

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServerSpec describes how to reach one configured MCP server, mirroring
// pkg/config.MCPServerConfig without importing the config package.
type MCPServerSpec struct {
	Type    string
	Command string
	Args    []string
	URL     string
}

// MCPClient owns one ClientSession per configured server, dialing lazily on
// first use and reusing the session for subsequent calls.
type MCPClient struct {
	servers  map[string]MCPServerSpec
	sessions map[string]*mcpsdk.ClientSession
}

// NewMCPClient builds a client over the given named server specs.
func NewMCPClient(servers map[string]MCPServerSpec) *MCPClient {
	return &MCPClient{
		servers:  servers,
		sessions: make(map[string]*mcpsdk.ClientSession),
	}
}

// Call dials (or reuses) the named server's session and invokes tool with
// the given arguments, returning the concatenated text content of the
// result.
func (c *MCPClient) Call(ctx context.Context, server, tool string, arguments map[string]any) (string, error) {
	session, err := c.session(ctx, server)
	if err != nil {
		return "", fmt.Errorf("mcp server %q: %w", server, err)
	}
	if arguments == nil {
		arguments = map[string]any{}
	}

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: arguments,
	})
	if err != nil {
		return "", fmt.Errorf("mcp call %s/%s: %w", server, tool, err)
	}
	return renderContent(result), nil
}

// Close tears down every session opened by this client.
func (c *MCPClient) Close() error {
	var firstErr error
	for name, session := range c.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close mcp session %q: %w", name, err)
		}
	}
	return firstErr
}

func (c *MCPClient) session(ctx context.Context, server string) (*mcpsdk.ClientSession, error) {
	if session, ok := c.sessions[server]; ok {
		return session, nil
	}
	spec, ok := c.servers[server]
	if !ok {
		return nil, fmt.Errorf("no mcp server configured with name %q", server)
	}

	transport, err := buildTransport(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "toolhooks-go",
		Version: "dev",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	c.sessions[server] = session
	return session, nil
}

func buildTransport(ctx context.Context, spec MCPServerSpec) (mcpsdk.Transport, error) {
	switch strings.ToLower(spec.Type) {
	case "", "stdio":
		if strings.TrimSpace(spec.Command) == "" {
			return nil, fmt.Errorf("stdio server requires a command")
		}
		cmd := exec.CommandContext(ctx, spec.Command, spec.Args...) // #nosec G204
		return &mcpsdk.CommandTransport{Command: cmd}, nil
	case "sse":
		if _, err := url.Parse(spec.URL); err != nil || spec.URL == "" {
			return nil, fmt.Errorf("sse server requires a valid url")
		}
		return &mcpsdk.SSEClientTransport{Endpoint: spec.URL}, nil
	case "http", "streamable":
		if _, err := url.Parse(spec.URL); err != nil || spec.URL == "" {
			return nil, fmt.Errorf("streamable server requires a valid url")
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: spec.URL}, nil
	default:
		return nil, fmt.Errorf("unsupported mcp server type %q", spec.Type)
	}
}

func renderContent(result *mcpsdk.CallToolResult) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range result.Content {
		if text, ok := block.(*mcpsdk.TextContent); ok {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text.Text)
		}
	}
	return b.String()
}
