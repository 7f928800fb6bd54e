package config

import (
	"github.com/cexll/toolhooks-go/pkg/core/hooks"
)

// Settings models the full contents of a project's settings file. Only the
// fields the hook subsystem and its demo actually consume are kept; see
// DESIGN.md for what was trimmed from the teacher's broader Settings
// struct and why.
type Settings struct {
	// Env holds environment variables declared by the settings layers,
	// merged key by key. Hook child processes do not receive them: they
	// inherit the agent's own environment unchanged.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// Hooks declares the PreToolUse/PostToolUse/SessionStart/
	// UserPromptSubmit command lists.
	Hooks *hooks.Config `json:"hooks,omitempty" yaml:"hooks,omitempty"`

	// DisableAllHooks force-disables every configured hook without
	// requiring the caller to edit the Hooks field itself.
	DisableAllHooks *bool `json:"disableAllHooks,omitempty" yaml:"disableAllHooks,omitempty"`

	// MCP declares remote tool servers the demo dispatcher can route MCP
	// tool calls to.
	MCP *MCPConfig `json:"mcp,omitempty" yaml:"mcp,omitempty"`
}

// MCPConfig nests Model Context Protocol server definitions.
type MCPConfig struct {
	Servers map[string]MCPServerConfig `json:"servers,omitempty" yaml:"servers,omitempty"`
}

// MCPServerConfig describes how to reach an MCP server.
type MCPServerConfig struct {
	Type           string            `json:"type" yaml:"type"` // stdio/http/sse
	Command        string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args           []string          `json:"args,omitempty" yaml:"args,omitempty"`
	URL            string            `json:"url,omitempty" yaml:"url,omitempty"`
	Env            map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
}

// GetDefaultSettings returns the subsystem's documented defaults: hooks
// enabled, nothing configured.
func GetDefaultSettings() Settings {
	return Settings{
		DisableAllHooks: boolPtr(false),
	}
}

// Validate delegates to the aggregated validator.
func (s *Settings) Validate() error { return ValidateSettings(s) }

// EffectiveHooks returns the hooks configuration that should actually run:
// empty when DisableAllHooks is set, regardless of what Hooks contains.
func (s *Settings) EffectiveHooks() hooks.Config {
	if s == nil || s.Hooks == nil {
		return hooks.Config{}
	}
	if s.DisableAllHooks != nil && *s.DisableAllHooks {
		return hooks.Config{}
	}
	return *s.Hooks
}

func boolPtr(v bool) *bool { return &v }
