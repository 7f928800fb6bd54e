package patch

import (
	"os"
	"path/filepath"
	"strings"
)

// Unified parses the envelope format used by this system's apply_patch
// tool:
//
//	*** Begin Patch
//	*** Add File: path/to/new.go
//	+line one
//	+line two
//	*** Update File: path/to/existing.go
//	*** Move to: path/to/renamed.go
//	@@ optional context
//	-old line
//	+new line
//	*** Delete File: path/to/gone.go
//	*** End Patch
//
// It does not attempt a fuzzy or context-searching merge: Update sections
// are applied by walking the original file and the hunk lines together in
// order, consuming a line of the original for every context (" ") or
// removal ("-") line and emitting a line of output for every context or
// addition ("+") line. This is sufficient for the hook payload builder's
// purposes (it only needs the resulting file content and the original
// content, not a diff object), but it does not relocate a hunk that
// doesn't start exactly where the previous one left off.
type Unified struct{}

const (
	beginMarker  = "*** Begin Patch"
	endMarker    = "*** End Patch"
	addPrefix    = "*** Add File: "
	updatePrefix = "*** Update File: "
	deletePrefix = "*** Delete File: "
	movePrefix   = "*** Move to: "
)

// Parse implements Parser.
func (Unified) Parse(cwd, body string) ([]Change, error) {
	lines := strings.Split(body, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != beginMarker {
		return nil, &ErrMalformed{Reason: "missing " + beginMarker}
	}

	var changes []Change
	i := 1
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.TrimSpace(line) == endMarker:
			return changes, nil
		case strings.HasPrefix(line, addPrefix):
			path := strings.TrimPrefix(line, addPrefix)
			content, next := readAddBody(lines, i+1)
			changes = append(changes, Change{Kind: Add, Path: path, NewContent: content})
			i = next
		case strings.HasPrefix(line, updatePrefix):
			path := strings.TrimPrefix(line, updatePrefix)
			change, next, err := readUpdateBody(cwd, path, lines, i+1)
			if err != nil {
				return nil, err
			}
			changes = append(changes, change)
			i = next
		case strings.HasPrefix(line, deletePrefix):
			path := strings.TrimPrefix(line, deletePrefix)
			changes = append(changes, Change{Kind: Delete, Path: path})
			i++
		default:
			i++
		}
	}
	return nil, &ErrMalformed{Reason: "missing " + endMarker}
}

func readAddBody(lines []string, start int) (string, int) {
	var b strings.Builder
	i := start
	for i < len(lines) {
		line := lines[i]
		if isSectionMarker(line) {
			break
		}
		if strings.HasPrefix(line, "+") {
			b.WriteString(strings.TrimPrefix(line, "+"))
			b.WriteString("\n")
		}
		i++
	}
	return b.String(), i
}

func readUpdateBody(cwd, path string, lines []string, start int) (Change, int, error) {
	change := Change{Kind: Update, Path: path}

	original, err := os.ReadFile(filepath.Join(cwd, path))
	originalContent := ""
	if err == nil {
		originalContent = string(original)
	}
	_ = err // IO errors fall back to empty original content, matching the payload builder's contract.

	originalLines := strings.Split(originalContent, "\n")
	var rebuilt []string
	cursor := 0

	i := start
	for i < len(lines) {
		line := lines[i]
		if isSectionMarker(line) {
			break
		}
		switch {
		case strings.HasPrefix(line, movePrefix):
			change.MovePath = strings.TrimPrefix(line, movePrefix)
		case strings.HasPrefix(line, "@@"):
			// Hunk context anchor (often the enclosing function signature);
			// this implementation applies hunks in file order rather than
			// searching for the anchor text, so it carries no information
			// here.
		case strings.HasPrefix(line, "-"):
			// A removed line consumes one line of the original without
			// emitting it.
			if cursor < len(originalLines) {
				cursor++
			}
		case strings.HasPrefix(line, "+"):
			rebuilt = append(rebuilt, strings.TrimPrefix(line, "+"))
		case strings.HasPrefix(line, " "):
			// Context line: must still be present in the output, consuming
			// the corresponding original line.
			if cursor < len(originalLines) {
				rebuilt = append(rebuilt, originalLines[cursor])
				cursor++
			} else {
				rebuilt = append(rebuilt, strings.TrimPrefix(line, " "))
			}
		}
		i++
	}
	rebuilt = append(rebuilt, originalLines[cursor:]...)
	change.NewContent = strings.Join(rebuilt, "\n")
	return change, i, nil
}

func isSectionMarker(line string) bool {
	return strings.HasPrefix(line, addPrefix) ||
		strings.HasPrefix(line, updatePrefix) ||
		strings.HasPrefix(line, deletePrefix) ||
		strings.TrimSpace(line) == endMarker
}
