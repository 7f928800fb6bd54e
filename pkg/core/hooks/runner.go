package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cexll/toolhooks-go/pkg/core/hooks")

// Runner spawns one hook program per call, feeds it a JSON payload on
// stdin, and parses its stdout as a Decision. A Runner holds no per-call
// state and is safe for concurrent use.
type Runner struct {
	// DefaultTimeout is used when a Command omits TimeoutMs. Zero means
	// DefaultTimeout (10s).
	DefaultTimeout time.Duration
}

// NewRunner constructs a Runner with the spec's default 10s budget.
func NewRunner() *Runner {
	return &Runner{DefaultTimeout: DefaultTimeout * time.Second}
}

// Run executes cmd against payload and returns the parsed Decision. Every
// failure path returns a *Error identifying which stage failed; none of
// them are fatal to the caller's turn.
func (r *Runner) Run(ctx context.Context, cmd Command, payload any, eventName string) (Decision, error) {
	commandLabel := strings.Join(cmd.Argv, " ")
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.Start(ctx, "hook.run", trace.WithAttributes(
		attribute.String("hook.command", commandLabel),
		attribute.String("hook.event", eventName),
	))
	defer span.End()

	if len(cmd.Argv) == 0 {
		err := newError(ErrEmptyCommand, commandLabel, "", nil)
		span.SetStatus(codes.Error, err.Error())
		return Decision{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		wrapped := newError(ErrSerializePayload, commandLabel, "", err)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}

	timeout := r.effectiveTimeout(cmd.TimeoutMs)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	child := exec.CommandContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...) //nolint:gosec // argv comes from trusted configuration

	stdin, err := child.StdinPipe()
	if err != nil {
		wrapped := newError(ErrSpawn, commandLabel, "", err)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}
	var stdout, stderr bytes.Buffer
	child.Stdout = &stdout
	child.Stderr = &stderr

	if err := child.Start(); err != nil {
		wrapped := newError(ErrSpawn, commandLabel, "", err)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}

	if _, err := stdin.Write(body); err != nil {
		_ = stdin.Close()
		_ = child.Process.Kill()
		wrapped := newError(ErrSpawn, commandLabel, "write stdin", err)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}
	// Closing stdin is mandatory: hook scripts that `cat` their input would
	// otherwise block forever waiting for EOF.
	if err := stdin.Close(); err != nil {
		wrapped := newError(ErrSpawn, commandLabel, "close stdin", err)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}

	waitErr := child.Wait()
	if runCtx.Err() != nil {
		wrapped := newError(ErrTimeout, commandLabel, fmt.Sprintf("exceeded %s", timeout), runCtx.Err())
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}
	if waitErr != nil {
		wrapped := newError(ErrCommandFailed, commandLabel, strings.TrimSpace(stderr.String()), waitErr)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		wrapped := newError(ErrInvalidUTF8, commandLabel, "", nil)
		span.SetStatus(codes.Error, wrapped.Error())
		return Decision{}, wrapped
	}
	trimmed := strings.TrimSpace(string(out))

	var decision Decision
	if trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &decision); err != nil {
			wrapped := newError(ErrInvalidResponse, commandLabel, trimmed, err)
			span.SetStatus(codes.Error, wrapped.Error())
			return Decision{}, wrapped
		}
	}

	span.SetAttributes(attribute.String("hook.decision", decisionLabel(decision)))
	return decision, nil
}

func decisionLabel(d Decision) string {
	if d.Decision == "" {
		return "none"
	}
	return d.Decision
}

func (r *Runner) effectiveTimeout(overrideMs int) time.Duration {
	if overrideMs > 0 {
		return time.Duration(overrideMs) * time.Millisecond
	}
	if r.DefaultTimeout > 0 {
		return r.DefaultTimeout
	}
	return DefaultTimeout * time.Second
}
