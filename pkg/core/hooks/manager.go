package hooks

import (
	"context"
	"errors"
	"regexp"
)

// Manager selects and runs the hooks configured for each lifecycle event. A
// Manager is immutable after construction: swapping in a new Config means
// constructing a new Manager (see the config package's reload watcher),
// never mutating one in place while a turn is in flight.
type Manager struct {
	config Config
	runner *Runner
}

// NewManager builds a Manager over the given Config, using runner to
// execute individual hooks. A nil runner gets the spec's default 10s
// budget.
func NewManager(config Config, runner *Runner) *Manager {
	if runner == nil {
		runner = NewRunner()
	}
	return &Manager{config: config, runner: runner}
}

// RunPreToolUse evaluates every (payload, hook) pair in declaration order
// and returns the first blocking decision encountered. No later payload or
// hook is consulted once one blocks: this is the first-block-wins rule the
// apply_patch fanout depends on to stop at the first offending file.
//
// A non-nil error means a hook itself failed to run (timeout, spawn error,
// bad output); it is distinct from a block. Evaluation stops at the first
// such failure and the caller (the router) decides how to surface it.
func (m *Manager) RunPreToolUse(ctx context.Context, payloads []ToolPayload) (*DecisionWithContext, error) {
	if len(m.config.PreToolUse) == 0 || len(payloads) == 0 {
		return nil, nil
	}
	for _, payload := range payloads {
		for _, cmd := range m.config.PreToolUse {
			if !matches(cmd.Matcher, payload.ToolName) {
				continue
			}
			decision, err := m.runner.Run(ctx, cmd, payload, payload.HookEventName)
			if err != nil {
				return nil, err
			}
			if decision.Blocks() {
				return &DecisionWithContext{Decision: decision, Command: cmd}, nil
			}
		}
	}
	return nil, nil
}

// RunPostToolUse fires every matching hook for every payload, in the same
// order RunPreToolUse would, but ignores all decisions: post hooks observe,
// they cannot veto a tool call that already ran. A hook that fails to run
// does not stop the others; only a payload serialization failure is
// returned.
func (m *Manager) RunPostToolUse(ctx context.Context, payloads []ToolPayload) error {
	if len(m.config.PostToolUse) == 0 || len(payloads) == 0 {
		return nil
	}
	for _, payload := range payloads {
		for _, cmd := range m.config.PostToolUse {
			if !matches(cmd.Matcher, payload.ToolName) {
				continue
			}
			if _, err := m.runner.Run(ctx, cmd, payload, payload.HookEventName); err != nil {
				var hookErr *Error
				if errors.As(err, &hookErr) && hookErr.Kind == ErrSerializePayload {
					return err
				}
			}
		}
	}
	return nil
}

// RunSessionStart fires every matching hook for a single session-start
// payload, matching Matcher against Source. Decisions are ignored; the
// first hook that fails to run stops the pass and its error is returned.
//
// NOTE: Matcher is regexed against the short Source label ("startup",
// "resume", ...). A pattern that happens to be a substring of arbitrary
// text is not specific to this field; this mirrors the upstream system's
// behavior and is intentionally preserved rather than redesigned.
func (m *Manager) RunSessionStart(ctx context.Context, payload SessionStartPayload) error {
	for _, cmd := range m.config.SessionStart {
		if !matches(cmd.Matcher, payload.Source) {
			continue
		}
		if _, err := m.runner.Run(ctx, cmd, payload, payload.HookEventName); err != nil {
			return err
		}
	}
	return nil
}

// RunUserPromptSubmit fires every matching hook for a single
// user-prompt-submit payload, matching Matcher against Prompt. Decisions
// are ignored; the first hook that fails to run stops the pass and its
// error is returned.
func (m *Manager) RunUserPromptSubmit(ctx context.Context, payload UserPromptSubmitPayload) error {
	for _, cmd := range m.config.UserPromptSubmit {
		if !matches(cmd.Matcher, payload.Prompt) {
			continue
		}
		if _, err := m.runner.Run(ctx, cmd, payload, payload.HookEventName); err != nil {
			return err
		}
	}
	return nil
}

// matches reports whether pattern selects subject. An empty pattern always
// matches; a pattern that fails to compile never matches and is not an
// error — the hook is silently skipped, never treated as fatal.
func matches(pattern, subject string) bool {
	if pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(subject)
}
