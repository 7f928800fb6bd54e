package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all hookable lifecycle events supported by the SDK.
// Keeping the list small and explicit prevents accidental proliferation of
// loosely defined event names.
type EventType string

const (
	PreToolUse        EventType = "PreToolUse"
	PostToolUse       EventType = "PostToolUse"
	UserPromptSubmit  EventType = "UserPromptSubmit"
	SessionStart      EventType = "SessionStart"
	SessionEnd        EventType = "SessionEnd"
	Stop              EventType = "Stop"
	SubagentStart     EventType = "SubagentStart"
	SubagentStop      EventType = "SubagentStop"
	Notification      EventType = "Notification"
	PermissionRequest EventType = "PermissionRequest"
	ModelSelected     EventType = "ModelSelected"
)

// Event represents a single occurrence in the system. It is intentionally
// lightweight; any structured payloads are stored in the Payload field.
type Event struct {
	ID        string      // optional explicit identifier; New generates one
	Type      EventType   // required
	Timestamp time.Time   // set by New; left as given otherwise
	SessionID string      // optional session identifier for hook payloads
	Payload   interface{} // optional, type asserted by hook executors
}

// Validate performs cheap sanity checks for callers that need stronger
// contracts than the zero-value guarantees.
func (e Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("events: missing type")
	}
	return nil
}

// New builds an Event of the given type carrying payload, stamping an ID
// and Timestamp if the caller doesn't need to control them. Publishers that
// already have their own correlation ID may still set Event.ID directly
// instead of going through New.
func New(t EventType, payload any) Event {
	return Event{ID: uuid.NewString(), Type: t, Timestamp: time.Now(), Payload: payload}
}

// ToolUsePayload is emitted before tool execution.
type ToolUsePayload struct {
	Name   string
	Params map[string]any
}

// ToolResultPayload is emitted after tool execution.
type ToolResultPayload struct {
	Name     string
	Result   any
	Duration time.Duration
	Err      error
}

// UserPromptPayload captures a user supplied prompt.
type UserPromptPayload struct {
	Prompt string
}

// SessionPayload signals session lifecycle transitions.
type SessionPayload struct {
	SessionID string
	Metadata  map[string]any
}

// StopPayload indicates a stop notification for the main agent.
type StopPayload struct {
	Reason string
}

// SubagentStopPayload is emitted when a subagent stops independently.
type SubagentStopPayload struct {
	Name           string
	Reason         string
	AgentID        string // unique identifier for the subagent instance
	TranscriptPath string // path to the subagent transcript file
}

// SubagentStartPayload is emitted when a subagent starts.
type SubagentStartPayload struct {
	Name     string
	AgentID  string         // unique identifier for the subagent instance
	Metadata map[string]any // optional metadata
}

// PermissionRequestPayload is emitted when a tool requests permission.
type PermissionRequestPayload struct {
	ToolName   string
	ToolParams map[string]any
	Reason     string // optional reason for the permission request
}

// PermissionDecisionType represents the decision from a permission request hook.
type PermissionDecisionType string

const (
	PermissionAllow PermissionDecisionType = "allow"
	PermissionDeny  PermissionDecisionType = "deny"
	PermissionAsk   PermissionDecisionType = "ask"
)

// NotificationPayload transports informational messages.
type NotificationPayload struct {
	Message string
	Meta    map[string]any
}

// ModelSelectedPayload is emitted when a model is selected for tool execution.
type ModelSelectedPayload struct {
	ToolName  string
	ModelTier string
	Reason    string
}

// HookActivityStatus enumerates the observable outcomes of running a set of
// lifecycle hooks against a tool invocation.
type HookActivityStatus string

const (
	HookActivityBlocked HookActivityStatus = "blocked"
	HookActivityAllowed HookActivityStatus = "allowed"
)

// HookActivityTool identifies the tool a HookActivityPayload is reporting on,
// including the glossary's past-tense rendering used in operator-facing text.
type HookActivityTool struct {
	Name      string `json:"name"`
	PastTense string `json:"past_tense"`
}

// HookActivityHook records one hook's contribution to a HookActivityPayload.
type HookActivityHook struct {
	Name     string `json:"name"`
	Decision string `json:"decision"`
}

// HookActivityPayload is emitted by the router when a PreToolUse hook
// blocks a tool call.
type HookActivityPayload struct {
	Status HookActivityStatus `json:"status"`
	Reason string             `json:"reason,omitempty"`
	Tool   *HookActivityTool  `json:"tool,omitempty"`
	Hooks  []HookActivityHook `json:"hooks"`
}

// HookActivity is the EventType under which HookActivityPayload is published.
const HookActivity EventType = "HookActivity"

// Warning carries an operator-facing warning string, used to surface hook
// block reasons alongside the structured HookActivity event.
const Warning EventType = "Warning"

// WarningPayload is the payload shape for the Warning event type.
type WarningPayload struct {
	Message string `json:"message"`
}

// Sink is the minimal contract a caller needs to observe emitted events.
// The real event transport (websocket stream, log sink, TUI renderer) lives
// outside this package; Sink lets publishers depend on an interface instead
// of a concrete transport.
type Sink interface {
	Publish(Event) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event) error

// Publish implements Sink.
func (f SinkFunc) Publish(e Event) error { return f(e) }
