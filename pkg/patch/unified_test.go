package patch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUnifiedParseAdd(t *testing.T) {
	t.Parallel()
	body := "*** Begin Patch\n*** Add File: new.txt\n+hello\n+world\n*** End Patch"
	changes, err := Unified{}.Parse(t.TempDir(), body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != Add || changes[0].Path != "new.txt" {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	if changes[0].NewContent != "hello\nworld\n" {
		t.Fatalf("content = %q", changes[0].NewContent)
	}
}

func TestUnifiedParseUpdateAppliesReplacementHunk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("original\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	body := "*** Begin Patch\n*** Update File: file.txt\n@@\n-original\n+updated\n*** End Patch"
	changes, err := Unified{}.Parse(dir, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != Update {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	if changes[0].NewContent != "updated\n" {
		t.Fatalf("content = %q, want %q", changes[0].NewContent, "updated\n")
	}
}

// TestUnifiedParseUpdateAppliesContextAndRemovalLines exercises a hunk that
// mixes a kept context line, a removed line, and an added line, asserting
// the resulting content rather than just the change's metadata: the
// removed line must disappear, the context line must survive untouched,
// and the added line must take the removed line's place rather than being
// appended after it.
func TestUnifiedParseUpdateAppliesContextAndRemovalLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	original := "keep me\nold line\ntrailer\n"
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte(original), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	body := "*** Begin Patch\n*** Update File: file.txt\n@@\n keep me\n-old line\n+new line\n*** End Patch"
	changes, err := Unified{}.Parse(dir, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != Update {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	want := "keep me\nnew line\ntrailer\n"
	if changes[0].NewContent != want {
		t.Fatalf("content = %q, want %q", changes[0].NewContent, want)
	}
}

func TestUnifiedParseDeleteYieldsNoContent(t *testing.T) {
	t.Parallel()
	body := "*** Begin Patch\n*** Delete File: gone.txt\n*** End Patch"
	changes, err := Unified{}.Parse(t.TempDir(), body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != Delete {
		t.Fatalf("unexpected changes: %+v", changes)
	}
}

func TestUnifiedParseMalformedMissingBegin(t *testing.T) {
	t.Parallel()
	_, err := Unified{}.Parse(t.TempDir(), "not a patch")
	var malformed *ErrMalformed
	if err == nil {
		t.Fatalf("expected error")
	}
	if !isMalformed(err, &malformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func isMalformed(err error, target **ErrMalformed) bool {
	m, ok := err.(*ErrMalformed)
	if ok {
		*target = m
	}
	return ok
}
