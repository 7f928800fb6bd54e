package hooks

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTimeout is the budget applied to a hook invocation when neither the
// hook's own configuration nor the caller supplies one.
const DefaultTimeout = 10 // seconds; kept as an int to mirror the JSON config field.

// Command declares one external program bound to a lifecycle event.
type Command struct {
	// Matcher is an optional regular expression tested against the event's
	// subject field (tool name, session-start source, or user prompt text).
	// An absent Matcher always matches.
	Matcher string `json:"matcher,omitempty" yaml:"matcher,omitempty"`

	// Argv is the executable followed by its arguments. Argv[0] is the
	// program to run; the remainder are passed through verbatim.
	Argv []string `json:"command" yaml:"command"`

	// TimeoutMs overrides DefaultTimeout for this hook, in milliseconds.
	TimeoutMs int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// Validate reports configuration errors that would make the command
// unrunnable. It does not attempt to compile Matcher: a bad regex is a
// runtime skip, not a configuration error (see matches in manager.go).
func (c Command) Validate() error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("hooks: command: %w", newError(ErrEmptyCommand, "", "no argv entries", nil))
	}
	for i, arg := range c.Argv {
		if strings.TrimSpace(arg) == "" && i == 0 {
			return fmt.Errorf("hooks: command: empty executable")
		}
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("hooks: command: negative timeout_ms")
	}
	return nil
}

// Config is the full set of hooks declared for a session, one ordered list
// per lifecycle event. Declaration order is significant: within a single
// event, hooks run in the order they appear here.
type Config struct {
	PreToolUse       []Command `json:"pre_tool_use,omitempty" yaml:"pre_tool_use,omitempty"`
	PostToolUse      []Command `json:"post_tool_use,omitempty" yaml:"post_tool_use,omitempty"`
	SessionStart     []Command `json:"session_start,omitempty" yaml:"session_start,omitempty"`
	UserPromptSubmit []Command `json:"user_prompt_submit,omitempty" yaml:"user_prompt_submit,omitempty"`
}

// Validate checks every declared command. Errors from all four lists are
// aggregated so a single bad entry does not hide later ones.
func (c Config) Validate() error {
	var errs []error
	validateList := func(event string, cmds []Command) {
		for i, cmd := range cmds {
			if err := cmd.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", event, i, err))
			}
		}
	}
	validateList("pre_tool_use", c.PreToolUse)
	validateList("post_tool_use", c.PostToolUse)
	validateList("session_start", c.SessionStart)
	validateList("user_prompt_submit", c.UserPromptSubmit)
	return errors.Join(errs...)
}

// IsEmpty reports whether no hooks are configured for any event.
func (c Config) IsEmpty() bool {
	return len(c.PreToolUse) == 0 && len(c.PostToolUse) == 0 &&
		len(c.SessionStart) == 0 && len(c.UserPromptSubmit) == 0
}
