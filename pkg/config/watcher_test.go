package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnSettingsWrite(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, getProjectSettingsPath(root), `{"hooks":{"pre_tool_use":[{"command":["v1.sh"]}]}}`)

	loader := &SettingsLoader{ProjectRoot: root}
	changes := make(chan *Settings, 4)
	w, err := NewWatcher(loader, WithDebounce(20*time.Millisecond), OnChange(func(s *Settings) {
		changes <- s
	}))
	require.NoError(t, err)
	defer w.Close()

	initial, err := w.Start()
	require.NoError(t, err)
	require.Len(t, initial.Hooks.PreToolUse, 1)

	select {
	case s := <-changes:
		require.Equal(t, []string{"v1.sh"}, s.Hooks.PreToolUse[0].Argv)
	case <-time.After(time.Second):
		t.Fatal("expected initial onChange from Start")
	}

	writeSettings(t, getProjectSettingsPath(root), `{"hooks":{"pre_tool_use":[{"command":["v2.sh"]}]}}`)

	select {
	case s := <-changes:
		require.Equal(t, []string{"v2.sh"}, s.Hooks.PreToolUse[0].Argv)
	case <-time.After(2 * time.Second):
		t.Fatal("expected reload after file write")
	}
}

func TestWatcherRejectsNilLoader(t *testing.T) {
	_, err := NewWatcher(nil)
	require.Error(t, err)
}
