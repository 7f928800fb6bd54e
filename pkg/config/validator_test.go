package config

import (
	"testing"

	"github.com/cexll/toolhooks-go/pkg/core/hooks"
	"github.com/stretchr/testify/require"
)

func TestValidateSettingsNil(t *testing.T) {
	require.Error(t, ValidateSettings(nil))
}

func TestValidateSettingsRejectsEmptyHookCommand(t *testing.T) {
	s := &Settings{Hooks: &hooks.Config{PreToolUse: []hooks.Command{{Matcher: "Edit"}}}}
	err := ValidateSettings(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pre_tool_use[0]")
}

func TestValidateSettingsAggregatesMultipleErrors(t *testing.T) {
	s := &Settings{
		Hooks: &hooks.Config{
			PreToolUse:  []hooks.Command{{}},
			PostToolUse: []hooks.Command{{}},
		},
	}
	err := ValidateSettings(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pre_tool_use[0]")
	require.Contains(t, err.Error(), "post_tool_use[0]")
}

func TestValidateMCPConfigRequiresCommandForStdio(t *testing.T) {
	s := &Settings{MCP: &MCPConfig{Servers: map[string]MCPServerConfig{
		"files": {Type: "stdio"},
	}}}
	err := ValidateSettings(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), `mcp server "files"`)
}

func TestValidateMCPConfigAcceptsValidServers(t *testing.T) {
	s := &Settings{MCP: &MCPConfig{Servers: map[string]MCPServerConfig{
		"files": {Type: "stdio", Command: "mcp-files"},
		"remote": {Type: "sse", URL: "https://example.com/sse"},
	}}}
	require.NoError(t, ValidateSettings(s))
}

func TestEffectiveHooksRespectsDisableAllHooks(t *testing.T) {
	disabled := true
	s := &Settings{
		Hooks:           &hooks.Config{PreToolUse: []hooks.Command{{Argv: []string{"guard.sh"}}}},
		DisableAllHooks: &disabled,
	}
	require.True(t, s.EffectiveHooks().IsEmpty())
}
