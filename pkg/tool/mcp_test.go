package tool

import (
	"context"
	"testing"
)

func TestBuildTransportRejectsUnknownType(t *testing.T) {
	_, err := buildTransport(context.Background(), MCPServerSpec{Type: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected an error for an unsupported transport type")
	}
}

func TestBuildTransportRequiresCommandForStdio(t *testing.T) {
	_, err := buildTransport(context.Background(), MCPServerSpec{Type: "stdio"})
	if err == nil {
		t.Fatal("expected an error when stdio transport has no command")
	}
}

func TestBuildTransportRequiresURLForSSE(t *testing.T) {
	_, err := buildTransport(context.Background(), MCPServerSpec{Type: "sse"})
	if err == nil {
		t.Fatal("expected an error when sse transport has no url")
	}
}

func TestBuildTransportAcceptsValidStdioSpec(t *testing.T) {
	transport, err := buildTransport(context.Background(), MCPServerSpec{Type: "stdio", Command: "cat"})
	if err != nil {
		t.Fatalf("buildTransport: %v", err)
	}
	if transport == nil {
		t.Fatal("expected a non-nil transport")
	}
}

func TestMCPClientCallFailsForUnknownServer(t *testing.T) {
	client := NewMCPClient(map[string]MCPServerSpec{})
	if _, err := client.Call(context.Background(), "missing", "tool", nil); err == nil {
		t.Fatal("expected an error for an unconfigured server")
	}
}
