package hooks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestBuilderFunctionCallParsesJSONArguments(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	payloads, err := b.Build(Context{HookEventName: "PreToolUse"}, t.TempDir(), ToolCall{
		Name:      "shell_command",
		Kind:      FunctionCall,
		Arguments: `{"command":"echo hi","timeout_ms":1000}`,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	var decoded map[string]any
	if err := json.Unmarshal(payloads[0].ToolInput, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["command"] != "echo hi" {
		t.Fatalf("unexpected tool_input: %+v", decoded)
	}
}

func TestBuilderFunctionCallWrapsNonJSONArguments(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	payloads, err := b.Build(Context{}, t.TempDir(), ToolCall{Name: "x", Kind: FunctionCall, Arguments: "not json"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var decoded string
	if err := json.Unmarshal(payloads[0].ToolInput, &decoded); err != nil {
		t.Fatalf("expected wrapped JSON string: %v", err)
	}
	if decoded != "not json" {
		t.Fatalf("decoded = %q", decoded)
	}
}

func TestBuilderMCPCall(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	payloads, err := b.Build(Context{}, t.TempDir(), ToolCall{
		Name: "mcp_tool",
		Kind: MCPCallKind,
		MCP:  MCPCall{Server: "files", Tool: "read", Arguments: `{"path":"a.txt"}`},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payloads[0].ToolInput, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["server"] != "files" || decoded["tool"] != "read" {
		t.Fatalf("unexpected decoded: %+v", decoded)
	}
}

func TestBuilderApplyPatchAddFanout(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	body := "*** Begin Patch\n*** Add File: a.txt\n+one\n*** Add File: b.txt\n+two\n*** End Patch"
	payloads, err := b.Build(Context{}, t.TempDir(), ToolCall{Name: "apply_patch", Kind: ApplyPatch, ApplyPatchBody: body})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	for _, p := range payloads {
		if p.ToolName != "Write" {
			t.Fatalf("expected Write tool name, got %q", p.ToolName)
		}
	}
}

func TestBuilderApplyPatchUpdateCarriesOldString(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("original\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b := NewBuilder()
	body := "*** Begin Patch\n*** Update File: file.txt\n@@\n-original\n+updated\n*** End Patch"
	payloads, err := b.Build(Context{}, dir, ToolCall{Name: "apply_patch", Kind: ApplyPatch, ApplyPatchBody: body})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payloads) != 1 || payloads[0].ToolName != "Edit" {
		t.Fatalf("unexpected payloads: %+v", payloads)
	}
	var decoded map[string]string
	if err := json.Unmarshal(payloads[0].ToolInput, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["old_string"] != "original\n" {
		t.Fatalf("old_string = %q", decoded["old_string"])
	}
	if decoded["new_string"] != "updated\n" {
		t.Fatalf("new_string = %q", decoded["new_string"])
	}
}

func TestBuilderApplyPatchDeleteOnlyYieldsNoPayloads(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	body := "*** Begin Patch\n*** Delete File: gone.txt\n*** End Patch"
	payloads, err := b.Build(Context{}, t.TempDir(), ToolCall{Name: "apply_patch", Kind: ApplyPatch, ApplyPatchBody: body})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payloads) != 0 {
		t.Fatalf("expected no payloads for delete-only patch, got %d", len(payloads))
	}
}
