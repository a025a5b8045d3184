package main

import (
	"strings"

	"github.com/funvibe/matchcore/internal/diagnostics"
)

// positionOffset converts a zero-based line/character into a byte offset,
// clamped to the content.
func positionOffset(content string, pos Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		i := strings.IndexByte(content[offset:], '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		end = len(content) - offset
	}
	if pos.Character > end {
		return offset + end
	}
	return offset + pos.Character
}

// offsetPosition is the inverse of positionOffset.
func offsetPosition(content string, offset int) Position {
	if offset > len(content) {
		offset = len(content)
	}
	if offset < 0 {
		offset = 0
	}
	before := content[:offset]
	line := strings.Count(before, "\n")
	return Position{Line: line, Character: offset - (strings.LastIndexByte(before, '\n') + 1)}
}

func spanRange(content string, start, end int) Range {
	if end < start {
		end = start
	}
	return Range{Start: offsetPosition(content, start), End: offsetPosition(content, end)}
}

func hasParseErrors(ds []diagnostics.Diagnostic) bool {
	for _, d := range ds {
		if d.Stage == diagnostics.StageParser || d.Stage == diagnostics.StageLexer {
			return true
		}
	}
	return false
}
