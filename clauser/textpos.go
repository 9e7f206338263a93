package clauser

import (
	"slices"
	"strings"
)

// Text/position helpers. Positions are byte offsets into the input text;
// every function here is O(position) and keeps no state.

const newLine = '\n'

// lineStart returns the index of the first byte of the line containing
// position. A position pointing at a line break counts as the end of the
// previous line, not the start of a new one.
func lineStart(text string, position int) int {
	if len(text) == 0 {
		return 0
	}

	cur := min(position, len(text)-1)
	if text[cur] == newLine {
		if cur == 0 {
			return 0
		}
		cur--
	}

	for {
		if text[cur] == newLine {
			return cur + 1
		}
		if cur == 0 {
			break
		}
		cur--
	}
	return 0
}

// lineEnd returns the index of the last byte of the line containing position,
// usually the line break itself.
func lineEnd(text string, position int) int {
	for cur := position; cur < len(text); cur++ {
		if text[cur] == newLine {
			return cur
		}
	}
	return len(text) - 1
}

// linesBefore returns the bounds of up to maxLines lines that end before
// position, as (start, length) pairs in source order. position is assumed to
// be the index of the first byte of the line following the lines returned.
func linesBefore(text string, position int, maxLines int) [][2]int {
	lines := make([][2]int, 0, maxLines)
	lastLineStart := position

	for lastLineStart > 0 && maxLines-len(lines) > 0 {
		newStart := lineStart(text, lastLineStart-1)
		lines = append(lines, [2]int{newStart, lastLineStart - newStart})
		lastLineStart = newStart
	}

	// read backwards, so flip into source order
	slices.Reverse(lines)
	return lines
}

// lineContext returns up to maxLines lines of context ending with the line
// containing position, which can be anywhere between that line's start and
// end.
func lineContext(text string, position int, maxLines int) [][2]int {
	thisStart := lineStart(text, position)
	thisEnd := lineEnd(text, position)

	lines := linesBefore(text, thisStart, maxLines-1)
	return append(lines, [2]int{thisStart, thisEnd - thisStart + 1})
}

// positionToLineCol converts a byte offset into a 1-based (line, column) pair.
func positionToLineCol(text string, position int) (line int, col int) {
	line = 1
	lastLineStart := 0

	cur := 0
	for cur < position && cur < len(text) {
		if text[cur] == newLine {
			line = line + 1
			lastLineStart = cur + 1
		}
		cur = cur + 1
	}

	return line, cur - lastLineStart + 1
}

// countTabsBefore counts the tab characters appearing in line before endIndex.
func countTabsBefore(line string, endIndex int) int {
	if endIndex == 0 {
		return 0
	}
	return strings.Count(line[:min(endIndex-1, len(line))], "\t")
}
