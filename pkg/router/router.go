// Package router wires the hooks subsystem into a tool dispatch loop: it
// consults PreToolUse hooks before running a tool, synthesizes the
// block-effect triad (tool failure, HookActivity event, injected user
// input) when one vetoes the call, and fires PostToolUse hooks afterward
// without blocking on their result.
package router

import (
	"context"
	"fmt"
	"log"

	"github.com/cexll/toolhooks-go/pkg/core/events"
	"github.com/cexll/toolhooks-go/pkg/core/hooks"
)

// pastTense maps a tool name to the English past participle used in
// operator-facing HookActivity events. Unknown tool names default to "Ran".
var pastTense = map[string]string{
	"Edit":      "Edited",
	"MultiEdit": "Edited",
	"Write":     "Wrote",
	"TodoWrite": "Updated",
	"Read":      "Read",
	"List":      "Listed",
	"Shell":     "Ran",
}

func pastTenseFor(toolName string) string {
	if pt, ok := pastTense[toolName]; ok {
		return pt
	}
	return "Ran"
}

// Dispatcher runs a tool call and returns its result. It is the router's
// only dependency on the rest of the agent: the tool registry, sandboxing,
// and the tools themselves are all external collaborators behind this
// interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, call hooks.ToolCall) (Result, error)
}

// Result is the outcome of dispatching a tool call, shaped closely enough
// to both function-call and custom-tool-call outputs that the router can
// synthesize a failure in either shape without knowing which one a given
// tool uses.
type Result struct {
	// Custom marks this as a custom-tool-call result (Output is used)
	// rather than a function-call result (Success/Content are used).
	Custom  bool
	Success bool
	Content string
	Output  string
}

// failureResult builds a synthesized failure in whichever shape the
// original call expects, mirroring how a real tool's own failure would be
// reported.
func failureResult(custom bool, message string) Result {
	if custom {
		return Result{Custom: true, Output: message}
	}
	return Result{Custom: false, Success: false, Content: message}
}

// InputInjector appends a new user-turn text input to the session's
// pending input, used to replay a block's reason to the model on its next
// turn.
type InputInjector interface {
	InjectUserText(text string)
}

// Router ties PayloadBuilder, Manager, and a Dispatcher together around one
// tool call.
type Router struct {
	Builder    *hooks.Builder
	Manager    *hooks.Manager
	Dispatcher Dispatcher
	Sink       events.Sink
	Injector   InputInjector

	// Cwd is the session's working directory, used both for apply_patch
	// verification and UserPromptSubmit payloads.
	Cwd string
}

// DispatchTool is the sole integration point: every tool call the agent
// wants to run must pass through it.
func (r *Router) DispatchTool(ctx context.Context, sessionID, transcriptPath string, call hooks.ToolCall, custom bool) (Result, error) {
	hookCtx := hooks.Context{SessionID: sessionID, TranscriptPath: transcriptPath, HookEventName: "PreToolUse"}

	prePayloads, err := r.Builder.Build(hookCtx, r.Cwd, call)
	if err != nil {
		return failureResult(custom, fmt.Sprintf("hook error: %v", err)), nil
	}
	if len(prePayloads) == 0 {
		return r.dispatchAndFirePost(ctx, call, custom, nil)
	}

	blocked, err := r.Manager.RunPreToolUse(ctx, prePayloads)
	if err != nil {
		return failureResult(custom, fmt.Sprintf("hook error: %v", err)), nil
	}
	if blocked != nil {
		return r.handleBlock(call, custom, prePayloads, *blocked), nil
	}

	return r.dispatchAndFirePost(ctx, call, custom, prePayloads)
}

func (r *Router) handleBlock(call hooks.ToolCall, custom bool, prePayloads []hooks.ToolPayload, blocked hooks.DecisionWithContext) Result {
	reason := blocked.Decision.ReasonOrDefault()
	message := "blocked by hook: " + reason

	displayToolName := call.Name
	if len(prePayloads) > 0 {
		displayToolName = prePayloads[0].ToolName
	}

	r.publish(events.New(events.HookActivity, events.HookActivityPayload{
		Status: events.HookActivityBlocked,
		Reason: reason,
		Tool:   &events.HookActivityTool{Name: displayToolName, PastTense: pastTenseFor(displayToolName)},
		Hooks:  []events.HookActivityHook{{Name: blocked.HookName(), Decision: "block"}},
	}))
	r.publish(events.New(events.Warning, events.WarningPayload{Message: message}))

	if r.Injector != nil {
		r.Injector.InjectUserText(reason)
	}

	return failureResult(custom, message)
}

func (r *Router) dispatchAndFirePost(ctx context.Context, call hooks.ToolCall, custom bool, prePayloads []hooks.ToolPayload) (Result, error) {
	result, dispatchErr := r.Dispatcher.Dispatch(ctx, call)

	if len(prePayloads) > 0 {
		postPayloads := make([]hooks.ToolPayload, len(prePayloads))
		for i, p := range prePayloads {
			postPayloads[i] = p.AsPostToolUse()
		}
		go func() {
			if err := r.Manager.RunPostToolUse(context.Background(), postPayloads); err != nil {
				log.Printf("router: post-tool-use hook error: %v", err)
			}
		}()
	}

	return result, dispatchErr
}

// RunSessionStart fires the configured SessionStart hooks. Errors are
// logged, not propagated: a misbehaving SessionStart hook must not prevent
// the session from starting.
func (r *Router) RunSessionStart(ctx context.Context, sessionID, transcriptPath, source string) {
	payload := hooks.SessionStartPayload{
		Context: hooks.Context{SessionID: sessionID, TranscriptPath: transcriptPath, HookEventName: "SessionStart"},
		Source:  source,
	}
	if err := r.Manager.RunSessionStart(ctx, payload); err != nil {
		log.Printf("router: session-start hook error: %v", err)
	}
}

// RunUserPromptSubmit fires the configured UserPromptSubmit hooks.
func (r *Router) RunUserPromptSubmit(ctx context.Context, sessionID, transcriptPath, prompt string) {
	payload := hooks.UserPromptSubmitPayload{
		Context: hooks.Context{SessionID: sessionID, TranscriptPath: transcriptPath, HookEventName: "UserPromptSubmit"},
		Prompt:  prompt,
		Cwd:     r.Cwd,
	}
	if err := r.Manager.RunUserPromptSubmit(ctx, payload); err != nil {
		log.Printf("router: user-prompt-submit hook error: %v", err)
	}
}

func (r *Router) publish(evt events.Event) {
	if r.Sink == nil {
		return
	}
	if err := r.Sink.Publish(evt); err != nil {
		log.Printf("router: publish %s event: %v", evt.Type, err)
	}
}
