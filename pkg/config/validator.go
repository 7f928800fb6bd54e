package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidateSettings checks the merged Settings structure for logical
// consistency. Aggregates all failures using errors.Join so callers can
// surface every issue at once.
func ValidateSettings(s *Settings) error {
	if s == nil {
		return errors.New("settings is nil")
	}

	var errs []error
	if s.Hooks != nil {
		if err := s.Hooks.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, validateMCPConfig(s.MCP)...)
	return errors.Join(errs...)
}

func validateMCPConfig(cfg *MCPConfig) []error {
	if cfg == nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Servers))
	for name := range cfg.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		server := cfg.Servers[name]
		switch server.Type {
		case "stdio":
			if strings.TrimSpace(server.Command) == "" {
				errs = append(errs, fmt.Errorf("mcp server %q: stdio transport requires command", name))
			}
		case "sse", "http", "streamable":
			if strings.TrimSpace(server.URL) == "" {
				errs = append(errs, fmt.Errorf("mcp server %q: %s transport requires url", name, server.Type))
			}
		case "":
			errs = append(errs, fmt.Errorf("mcp server %q: type is required", name))
		default:
			errs = append(errs, fmt.Errorf("mcp server %q: unknown type %q", name, server.Type))
		}
		if server.TimeoutSeconds < 0 {
			errs = append(errs, fmt.Errorf("mcp server %q: negative timeoutSeconds", name))
		}
	}
	return errs
}
