package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cexll/toolhooks-go/pkg/patch"
)

// ToolCall is the router's view of a pending tool invocation, already
// normalized from whatever transport-level shape the model's function/tool
// call arrived in.
type ToolCall struct {
	Name string
	// Kind distinguishes the few shapes PayloadBuilder needs to special
	// case. Anything else is treated as a generic function call.
	Kind ToolCallKind
	// Arguments is the raw JSON string for function/MCP calls, or the raw
	// input string for custom tool calls.
	Arguments string
	// ApplyPatchBody is the raw patch body; only set when Kind is
	// ApplyPatch.
	ApplyPatchBody string
	// Shell carries the structured fields for a local shell call; only set
	// when Kind is LocalShell.
	Shell ShellCall
	// MCP carries the server/tool split for an MCP call; only set when
	// Kind is MCPCall.
	MCP MCPCall
}

// ToolCallKind enumerates the shapes PayloadBuilder must translate
// differently.
type ToolCallKind int

const (
	FunctionCall ToolCallKind = iota
	CustomCall
	LocalShellCall
	MCPCallKind
	ApplyPatch
)

// ShellCall mirrors the parameters a local shell tool call carries.
type ShellCall struct {
	Command            string `json:"command"`
	Workdir            string `json:"workdir,omitempty"`
	TimeoutMs          int    `json:"timeout_ms,omitempty"`
	SandboxPermissions string `json:"sandbox_permissions,omitempty"`
	Justification      string `json:"justification,omitempty"`
}

// MCPCall identifies a remote MCP tool invocation.
type MCPCall struct {
	Server    string
	Tool      string
	Arguments string
}

// Builder translates a ToolCall into the payload(s) sent to PreToolUse and
// PostToolUse hooks. apply_patch is the only call shape that fans out into
// more than one payload.
type Builder struct {
	Patch patch.Parser
}

// NewBuilder constructs a Builder backed by the bundled unified-diff
// parser. Callers that already have a verified patch parser elsewhere can
// construct a Builder literal with their own patch.Parser instead.
func NewBuilder() *Builder {
	return &Builder{Patch: patch.Unified{}}
}

// Build returns the ToolPayload(s) for call, stamped with ctx. For
// apply_patch it returns one payload per Add/Update change (Delete changes
// produce none); for every other call it returns exactly one payload. An
// empty, nil-error result means no hooks should be consulted for this call.
func (b *Builder) Build(ctx Context, cwd string, call ToolCall) ([]ToolPayload, error) {
	if call.Kind == ApplyPatch {
		return b.buildApplyPatch(ctx, cwd, call)
	}

	input, err := b.buildSingleInput(call)
	if err != nil {
		return nil, err
	}
	return []ToolPayload{{Context: ctx, ToolName: call.Name, ToolInput: input}}, nil
}

func (b *Builder) buildSingleInput(call ToolCall) (json.RawMessage, error) {
	switch call.Kind {
	case FunctionCall:
		return wrapOrParse(call.Arguments)
	case CustomCall:
		return json.Marshal(call.Arguments)
	case LocalShellCall:
		return json.Marshal(call.Shell)
	case MCPCallKind:
		args, err := wrapOrParse(call.MCP.Arguments)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]json.RawMessage{
			"server":    mustMarshalString(call.MCP.Server),
			"tool":      mustMarshalString(call.MCP.Tool),
			"arguments": args,
		})
	default:
		return nil, fmt.Errorf("hooks: unsupported tool call kind %d", call.Kind)
	}
}

// wrapOrParse treats raw as JSON when it parses, otherwise wraps it as a
// JSON string. Hook programs historically receive either a structured
// object (when the model emitted well-formed JSON arguments) or the raw
// string (when it didn't); both are valid tool_input shapes.
func wrapOrParse(raw string) (json.RawMessage, error) {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw), nil
	}
	return json.Marshal(raw)
}

func mustMarshalString(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

func (b *Builder) buildApplyPatch(ctx Context, cwd string, call ToolCall) ([]ToolPayload, error) {
	changes, err := b.Patch.Parse(cwd, call.ApplyPatchBody)
	if err != nil {
		return nil, fmt.Errorf("hooks: parse apply_patch body: %w", err)
	}

	payloads := make([]ToolPayload, 0, len(changes))
	for _, change := range changes {
		switch change.Kind {
		case patch.Add:
			input, err := json.Marshal(map[string]string{
				"file_path": change.Path,
				"content":   change.NewContent,
			})
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, ToolPayload{Context: ctx, ToolName: "Write", ToolInput: input})
		case patch.Update:
			path := change.Path
			if change.MovePath != "" {
				path = change.MovePath
			}
			oldContent, _ := readFileOrEmpty(cwd, change.Path)
			input, err := json.Marshal(map[string]string{
				"file_path":  path,
				"old_string": oldContent,
				"new_string": change.NewContent,
			})
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, ToolPayload{Context: ctx, ToolName: "Edit", ToolInput: input})
		case patch.Delete:
			// No payload: deletions are not observable through this
			// pipeline. This mirrors the upstream behavior rather than
			// inventing a Delete payload shape that was never specified.
		}
	}
	return payloads, nil
}

func readFileOrEmpty(cwd, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(cwd, path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
