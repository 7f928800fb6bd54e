// Command hookdemo wires the hooks subsystem end to end: it loads
// .claude/settings.json from a project root, builds the router over a
// dispatcher that runs local shell commands, apply_patch bodies, and MCP
// calls, and drives one PreToolUse/PostToolUse cycle for a sample tool
// call so the block/allow effect triad is observable from the command
// line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cexll/toolhooks-go/pkg/config"
	"github.com/cexll/toolhooks-go/pkg/core/events"
	"github.com/cexll/toolhooks-go/pkg/core/hooks"
	"github.com/cexll/toolhooks-go/pkg/router"
	"github.com/cexll/toolhooks-go/pkg/telemetry"
	"github.com/cexll/toolhooks-go/pkg/tool"
)

type stdoutInjector struct{}

func (stdoutInjector) InjectUserText(text string) {
	fmt.Printf("[injected next-turn input] %s\n", text)
}

func main() {
	projectRoot := flag.String("project", ".", "project root containing .claude/settings.json")
	command := flag.String("command", "pwd", "shell command to run through the hook pipeline")
	sessionID := flag.String("session", "hookdemo-session", "session id recorded in hook payloads")
	otelEndpoint := flag.String("otel-endpoint", "", "OTLP/HTTP collector endpoint for hook spans; empty disables export")
	mcpServer := flag.String("mcp-server", "", "name of a configured mcp server to call instead of running -command; must match a server declared in settings.json's mcp.servers")
	mcpTool := flag.String("mcp-tool", "", "tool name to invoke on -mcp-server")
	mcpArgs := flag.String("mcp-args", "{}", "JSON arguments for -mcp-tool")
	flag.Parse()

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:  *otelEndpoint != "",
		Endpoint: *otelEndpoint,
		Insecure: true,
	})
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	loader := &config.SettingsLoader{ProjectRoot: *projectRoot}
	settings, err := loader.Load()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	if err := config.ValidateSettings(settings); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	mcpClient := tool.NewMCPClient(mcpServerSpecs(settings))
	defer mcpClient.Close()

	dispatcher := tool.NewDispatcher(*projectRoot, mcpClient)

	manager := hooks.NewManager(settings.EffectiveHooks(), hooks.NewRunner())
	r := &router.Router{
		Builder:    hooks.NewBuilder(),
		Manager:    manager,
		Dispatcher: dispatcher,
		Sink:       events.SinkFunc(publishToStdout),
		Injector:   stdoutInjector{},
		Cwd:        *projectRoot,
	}

	r.RunSessionStart(ctx, *sessionID, "", "startup")

	call := buildDemoCall(*command, *projectRoot, *mcpServer, *mcpTool, *mcpArgs)

	custom := call.Kind == hooks.MCPCallKind
	result, err := r.DispatchTool(ctx, *sessionID, "", call, custom)
	if err != nil {
		log.Fatalf("dispatch tool: %v", err)
	}

	if result.Custom {
		fmt.Printf("tool output:\n%s\n", result.Output)
		return
	}
	if result.Success {
		fmt.Printf("tool output:\n%s", result.Content)
	} else {
		fmt.Fprintf(os.Stderr, "tool blocked or failed:\n%s", result.Content)
		os.Exit(1)
	}
}

// buildDemoCall picks the sample tool call the demo routes through the
// hook pipeline: an MCP call when -mcp-server is set (exercising the
// PayloadBuilder's MCPCall branch end to end, not just in its unit tests),
// otherwise the local shell command from -command.
func buildDemoCall(command, projectRoot, mcpServer, mcpTool, mcpArgs string) hooks.ToolCall {
	if mcpServer != "" {
		return hooks.ToolCall{
			Name: "mcp_tool",
			Kind: hooks.MCPCallKind,
			MCP:  hooks.MCPCall{Server: mcpServer, Tool: mcpTool, Arguments: mcpArgs},
		}
	}
	return hooks.ToolCall{
		Name: "Shell",
		Kind: hooks.LocalShellCall,
		Shell: hooks.ShellCall{
			Command: command,
			Workdir: projectRoot,
		},
	}
}

func mcpServerSpecs(settings *config.Settings) map[string]tool.MCPServerSpec {
	specs := make(map[string]tool.MCPServerSpec)
	if settings.MCP == nil {
		return specs
	}
	for name, server := range settings.MCP.Servers {
		specs[name] = tool.MCPServerSpec{
			Type:    server.Type,
			Command: server.Command,
			Args:    server.Args,
			URL:     server.URL,
		}
	}
	return specs
}

func publishToStdout(evt events.Event) error {
	fmt.Printf("[event] %s\n", evt.Type)
	return nil
}
