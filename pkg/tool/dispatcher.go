package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cexll/toolhooks-go/pkg/core/hooks"
	"github.com/cexll/toolhooks-go/pkg/patch"
	"github.com/cexll/toolhooks-go/pkg/router"
)

// DefaultShellTimeout bounds a local shell call that did not request an
// explicit timeout.
const DefaultShellTimeout = 60 * time.Second

// Dispatcher is the router's concrete Dispatcher: it runs local shell
// commands, applies apply_patch bodies to disk, and forwards MCP calls to
// an MCPClient. Function and custom tool calls outside of those three
// shapes are echoed back as a successful no-op, since this module owns the
// hook subsystem rather than a full tool implementation.
type Dispatcher struct {
	Cwd   string
	MCP   *MCPClient
	Patch patch.Parser
}

// NewDispatcher builds a Dispatcher rooted at cwd, using client for MCP
// calls (may be nil if no MCP servers are configured).
func NewDispatcher(cwd string, client *MCPClient) *Dispatcher {
	return &Dispatcher{Cwd: cwd, MCP: client, Patch: patch.Unified{}}
}

// Dispatch implements router.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, call hooks.ToolCall) (router.Result, error) {
	switch call.Kind {
	case hooks.LocalShellCall:
		return d.dispatchShell(ctx, call.Shell)
	case hooks.ApplyPatch:
		return d.dispatchApplyPatch(call.ApplyPatchBody)
	case hooks.MCPCallKind:
		return d.dispatchMCP(ctx, call.MCP)
	default:
		return router.Result{Success: true, Content: call.Arguments}, nil
	}
}

func (d *Dispatcher) dispatchShell(ctx context.Context, call hooks.ShellCall) (router.Result, error) {
	if call.Command == "" {
		return router.Result{Success: false, Content: "empty shell command"}, nil
	}

	timeout := DefaultShellTimeout
	if call.TimeoutMs > 0 {
		timeout = time.Duration(call.TimeoutMs) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", call.Command) // #nosec G204
	if call.Workdir != "" {
		cmd.Dir = call.Workdir
	} else {
		cmd.Dir = d.Cwd
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return router.Result{Success: false, Content: string(output) + err.Error()}, nil
	}
	return router.Result{Success: true, Content: string(output)}, nil
}

func (d *Dispatcher) dispatchApplyPatch(body string) (router.Result, error) {
	changes, err := d.Patch.Parse(d.Cwd, body)
	if err != nil {
		return router.Result{Custom: true, Output: fmt.Sprintf("invalid patch: %v", err)}, nil
	}

	for _, change := range changes {
		target := filepath.Join(d.Cwd, change.Path)
		switch change.Kind {
		case patch.Add, patch.Update:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return router.Result{Custom: true, Output: err.Error()}, nil
			}
			if err := os.WriteFile(target, []byte(change.NewContent), 0o644); err != nil {
				return router.Result{Custom: true, Output: err.Error()}, nil
			}
			if change.MovePath != "" && change.MovePath != change.Path {
				if err := os.Rename(target, filepath.Join(d.Cwd, change.MovePath)); err != nil {
					return router.Result{Custom: true, Output: err.Error()}, nil
				}
			}
		case patch.Delete:
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return router.Result{Custom: true, Output: err.Error()}, nil
			}
		}
	}
	return router.Result{Custom: true, Output: fmt.Sprintf("applied %d change(s)", len(changes))}, nil
}

func (d *Dispatcher) dispatchMCP(ctx context.Context, call hooks.MCPCall) (router.Result, error) {
	if d.MCP == nil {
		return router.Result{Custom: true, Output: "no mcp client configured"}, nil
	}

	var arguments map[string]any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &arguments); err != nil {
			return router.Result{Custom: true, Output: fmt.Sprintf("invalid mcp arguments: %v", err)}, nil
		}
	}

	text, err := d.MCP.Call(ctx, call.Server, call.Tool, arguments)
	if err != nil {
		return router.Result{Custom: true, Output: err.Error()}, nil
	}
	return router.Result{Custom: true, Output: text}, nil
}
