package router

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cexll/toolhooks-go/pkg/core/events"
	"github.com/cexll/toolhooks-go/pkg/core/hooks"
)

type fakeDispatcher struct {
	called bool
	result Result
	err    error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, call hooks.ToolCall) (Result, error) {
	f.called = true
	return f.result, f.err
}

type fakeInjector struct {
	texts []string
}

func (f *fakeInjector) InjectUserText(text string) { f.texts = append(f.texts, text) }

type recordingSink struct {
	events []events.Event
}

func (r *recordingSink) Publish(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func blockAllCommand(reason string) hooks.Command {
	return hooks.Command{Argv: []string{"/bin/sh", "-c", `cat >/dev/null; echo '{"decision":"block","reason":"` + reason + `"}'`}}
}

// S1 — pre-hook blocks apply_patch; file on disk is untouched and the tool
// is never dispatched.
func TestRouterBlocksApplyPatchAndLeavesFileUntouched(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	original := "original\n"
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte(original), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	cfg := hooks.Config{PreToolUse: []hooks.Command{{Matcher: "Edit", Argv: blockAllCommand("blocked by hook").Argv}}}
	dispatcher := &fakeDispatcher{}
	injector := &fakeInjector{}
	sink := &recordingSink{}

	r := &Router{
		Builder:    hooks.NewBuilder(),
		Manager:    hooks.NewManager(cfg, nil),
		Dispatcher: dispatcher,
		Sink:       sink,
		Injector:   injector,
		Cwd:        dir,
	}

	body := "*** Begin Patch\n*** Update File: file.txt\n@@\n-original\n+updated\n*** End Patch"
	call := hooks.ToolCall{Name: "apply_patch", Kind: hooks.ApplyPatch, ApplyPatchBody: body}

	result, err := r.DispatchTool(context.Background(), "sess-1", "/tmp/t.jsonl", call, false)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if dispatcher.called {
		t.Fatalf("tool must not run when pre hook blocks")
	}
	if !strings.Contains(result.Content, "blocked by hook") {
		t.Fatalf("result content = %q", result.Content)
	}

	data, err := os.ReadFile(filepath.Join(dir, "file.txt"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != original {
		t.Fatalf("file changed despite block: %q", data)
	}

	if len(injector.texts) != 1 || injector.texts[0] != "blocked by hook" {
		t.Fatalf("expected injected reason, got %v", injector.texts)
	}

	var sawActivity, sawWarning bool
	for _, e := range sink.events {
		switch e.Type {
		case events.HookActivity:
			sawActivity = true
			payload := e.Payload.(events.HookActivityPayload)
			if payload.Status != events.HookActivityBlocked {
				t.Fatalf("expected blocked status, got %v", payload.Status)
			}
			if payload.Tool == nil || payload.Tool.Name != "Edit" || payload.Tool.PastTense != "Edited" {
				t.Fatalf("unexpected tool info: %+v", payload.Tool)
			}
		case events.Warning:
			sawWarning = true
			payload := e.Payload.(events.WarningPayload)
			if payload.Message != "blocked by hook: blocked by hook" {
				t.Fatalf("unexpected warning message: %q", payload.Message)
			}
		}
	}
	if !sawActivity || !sawWarning {
		t.Fatalf("expected both HookActivity and Warning events, got %+v", sink.events)
	}
}

// S2 — pre-hook blocks a shell function call.
func TestRouterBlocksShellFunctionCall(t *testing.T) {
	t.Parallel()
	cfg := hooks.Config{PreToolUse: []hooks.Command{{Matcher: "shell_command", Argv: blockAllCommand("no shelling out").Argv}}}
	dispatcher := &fakeDispatcher{}
	injector := &fakeInjector{}

	r := &Router{
		Builder:    hooks.NewBuilder(),
		Manager:    hooks.NewManager(cfg, nil),
		Dispatcher: dispatcher,
		Injector:   injector,
		Cwd:        t.TempDir(),
	}

	call := hooks.ToolCall{Name: "shell_command", Kind: hooks.FunctionCall, Arguments: `{"command":"echo blocked","timeout_ms":1000}`}
	result, err := r.DispatchTool(context.Background(), "sess-2", "", call, false)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if dispatcher.called {
		t.Fatalf("tool must not run")
	}
	if !strings.Contains(result.Content, "blocked by hook") {
		t.Fatalf("content = %q", result.Content)
	}
	if len(injector.texts) != 1 || injector.texts[0] != "no shelling out" {
		t.Fatalf("injected text = %v", injector.texts)
	}
}

// S4 — post hook fires for apply_patch with PostToolUse event name.
func TestRouterFiresPostHookAfterApplyPatch(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "post-seen.txt")
	captureCmd := []string{"/bin/sh", "-c", "cat > " + marker + "; echo '{}'"}

	cfg := hooks.Config{PostToolUse: []hooks.Command{{Matcher: "Edit", Argv: captureCmd}}}
	dispatcher := &fakeDispatcher{result: Result{Success: true, Content: "ok"}}

	r := &Router{
		Builder:    hooks.NewBuilder(),
		Manager:    hooks.NewManager(cfg, nil),
		Dispatcher: dispatcher,
		Cwd:        dir,
	}

	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	body := "*** Begin Patch\n*** Update File: file.txt\n@@\n-x\n+y\n*** End Patch"
	call := hooks.ToolCall{Name: "apply_patch", Kind: hooks.ApplyPatch, ApplyPatchBody: body}

	result, err := r.DispatchTool(context.Background(), "sess-4", "", call, false)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !dispatcher.called {
		t.Fatalf("expected tool to be dispatched")
	}
	if result.Content != "ok" {
		t.Fatalf("unexpected result: %+v", result)
	}

	waitForFile(t, marker)
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if !strings.Contains(string(data), `"hook_event_name":"PostToolUse"`) {
		t.Fatalf("post payload missing PostToolUse event name: %s", data)
	}
	if !strings.Contains(string(data), `"tool_name":"Edit"`) {
		t.Fatalf("post payload missing tool_name: %s", data)
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
}
