package config

import (
	"encoding/json"
	"fmt"

	"github.com/cexll/toolhooks-go/pkg/core/hooks"
)

// hooksDoc is the on-disk shape of the hooks section: four named lists,
// exactly per the spec's schema.
type hooksDoc struct {
	PreToolUse       json.RawMessage `json:"pre_tool_use,omitempty"`
	PostToolUse      json.RawMessage `json:"post_tool_use,omitempty"`
	SessionStart     json.RawMessage `json:"session_start,omitempty"`
	UserPromptSubmit json.RawMessage `json:"user_prompt_submit,omitempty"`
}

// legacyEntry is the common alternate shape some operators author by hand:
// a single shell string instead of an argv array, with the matcher
// defaulting to "*" for "run on everything".
type legacyEntry struct {
	Matcher   string `json:"matcher"`
	Command   string `json:"command"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

// UnmarshalHooksSection parses the raw "hooks" JSON object into a
// hooks.Config. Each of the four lists independently accepts either the
// spec's array-of-{matcher, command: [...], timeout_ms} shape, or the
// looser array-of-{matcher, command: "..."} shape some hand-authored
// config files use, where command is split into an argv running under
// /bin/sh -c.
func UnmarshalHooksSection(data []byte) (hooks.Config, error) {
	var doc hooksDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return hooks.Config{}, fmt.Errorf("config: hooks: %w", err)
	}

	var cfg hooks.Config
	var err error
	if cfg.PreToolUse, err = parseCommandList(doc.PreToolUse); err != nil {
		return hooks.Config{}, fmt.Errorf("config: hooks.pre_tool_use: %w", err)
	}
	if cfg.PostToolUse, err = parseCommandList(doc.PostToolUse); err != nil {
		return hooks.Config{}, fmt.Errorf("config: hooks.post_tool_use: %w", err)
	}
	if cfg.SessionStart, err = parseCommandList(doc.SessionStart); err != nil {
		return hooks.Config{}, fmt.Errorf("config: hooks.session_start: %w", err)
	}
	if cfg.UserPromptSubmit, err = parseCommandList(doc.UserPromptSubmit); err != nil {
		return hooks.Config{}, fmt.Errorf("config: hooks.user_prompt_submit: %w", err)
	}
	return cfg, nil
}

// UnmarshalJSON lets Settings accept either the spec's strict hooks schema
// or the looser single-shell-string shape, by re-parsing the raw "hooks"
// field through UnmarshalHooksSection after the rest of Settings decodes
// normally.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type alias Settings
	*s = Settings{}
	aux := struct {
		*alias
		Hooks json.RawMessage `json:"hooks,omitempty"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Hooks) == 0 {
		return nil
	}
	cfg, err := UnmarshalHooksSection(aux.Hooks)
	if err != nil {
		return err
	}
	s.Hooks = &cfg
	return nil
}

func parseCommandList(raw json.RawMessage) ([]hooks.Command, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var strict []hooks.Command
	if err := json.Unmarshal(raw, &strict); err == nil {
		return strict, nil
	}

	var legacy []legacyEntry
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("expected array of {matcher?, command, timeout_ms?}: %w", err)
	}

	converted := make([]hooks.Command, 0, len(legacy))
	for _, entry := range legacy {
		matcher := entry.Matcher
		if matcher == "*" {
			matcher = ""
		}
		converted = append(converted, hooks.Command{
			Matcher:   matcher,
			Argv:      []string{"/bin/sh", "-c", entry.Command},
			TimeoutMs: entry.TimeoutMs,
		})
	}
	return converted, nil
}
