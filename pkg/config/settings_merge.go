package config

// This file provides pure, allocation-safe merge helpers for Settings.
// They never mutate inputs; a nil override returns base itself.

import "github.com/cexll/toolhooks-go/pkg/core/hooks"

// MergeSettings layers override on top of base, returning a new *Settings.
// Any field left at its zero value in override is treated as "not set" and
// the base's value is kept. A set DisableAllHooks replaces the base's; Env
// entries and MCP servers are merged key by key (override wins on the same
// key); hook lists are concatenated, base first (see mergeHooksConfig).
func MergeSettings(base, override *Settings) *Settings {
	if override == nil {
		return base
	}
	if base == nil {
		clone := *override
		return &clone
	}

	merged := *base

	if len(override.Env) > 0 {
		merged.Env = make(map[string]string, len(base.Env)+len(override.Env))
		for k, v := range base.Env {
			merged.Env[k] = v
		}
		for k, v := range override.Env {
			merged.Env[k] = v
		}
	}

	if override.Hooks != nil {
		merged.Hooks = mergeHooksConfig(merged.Hooks, override.Hooks)
	}

	if override.DisableAllHooks != nil {
		merged.DisableAllHooks = override.DisableAllHooks
	}

	if override.MCP != nil {
		merged.MCP = mergeMCPConfig(merged.MCP, override.MCP)
	}

	return &merged
}

// mergeHooksConfig concatenates each event's command list, base first: a
// higher-priority layer adds hooks rather than replacing the lower layer's
// list outright, so a project's guardrails can't be silently dropped by a
// local override.
func mergeHooksConfig(base, override *hooks.Config) *hooks.Config {
	if override == nil {
		return base
	}
	if base == nil {
		clone := *override
		return &clone
	}
	return &hooks.Config{
		PreToolUse:       append(append([]hooks.Command{}, base.PreToolUse...), override.PreToolUse...),
		PostToolUse:      append(append([]hooks.Command{}, base.PostToolUse...), override.PostToolUse...),
		SessionStart:     append(append([]hooks.Command{}, base.SessionStart...), override.SessionStart...),
		UserPromptSubmit: append(append([]hooks.Command{}, base.UserPromptSubmit...), override.UserPromptSubmit...),
	}
}

func mergeMCPConfig(base, override *MCPConfig) *MCPConfig {
	if override == nil {
		return base
	}
	if base == nil {
		clone := *override
		return &clone
	}
	merged := MCPConfig{Servers: make(map[string]MCPServerConfig, len(base.Servers)+len(override.Servers))}
	for name, server := range base.Servers {
		merged.Servers[name] = server
	}
	for name, server := range override.Servers {
		merged.Servers[name] = server
	}
	return &merged
}
