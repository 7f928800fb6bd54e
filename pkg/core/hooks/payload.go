package hooks

import "encoding/json"

// Context carries the per-turn identifiers every hook payload is stamped
// with. It is cloned into each payload and never mutated after the turn
// begins.
type Context struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	HookEventName  string `json:"hook_event_name"`
}

// ToolPayload is sent to PreToolUse and PostToolUse hooks.
type ToolPayload struct {
	Context
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

// AsPostToolUse returns a copy of p with HookEventName overwritten to
// "PostToolUse", matching the spec's requirement that post payloads mirror
// their pre counterpart field for field.
func (p ToolPayload) AsPostToolUse() ToolPayload {
	clone := p
	clone.HookEventName = "PostToolUse"
	return clone
}

// SessionStartPayload is sent to SessionStart hooks.
type SessionStartPayload struct {
	Context
	Source string `json:"source"`
}

// UserPromptSubmitPayload is sent to UserPromptSubmit hooks.
type UserPromptSubmitPayload struct {
	Context
	Prompt string `json:"prompt"`
	Cwd    string `json:"cwd"`
}

// Decision is the parsed contents of a hook's stdout. An absent Decision
// field is non-blocking.
type Decision struct {
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Blocks reports whether the decision should stop the tool call.
func (d Decision) Blocks() bool {
	return d.Decision == "block"
}

// ReasonOrDefault returns Reason, falling back to the literal the router
// surfaces to the user and the model when a blocking hook omits one.
func (d Decision) ReasonOrDefault() string {
	if d.Reason != "" {
		return d.Reason
	}
	return "blocked by hook"
}

// DecisionWithContext pairs a Decision with the Command that produced it, so
// callers can report which hook blocked.
type DecisionWithContext struct {
	Decision Decision
	Command  Command
}

// HookName returns the label used in activity events: the command's
// executable, or "unknown" if the command is empty.
func (d DecisionWithContext) HookName() string {
	if len(d.Command.Argv) == 0 {
		return "unknown"
	}
	return d.Command.Argv[0]
}
