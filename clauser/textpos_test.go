package clauser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const posText = "first line\nsecond line\n\nfourth line"

func TestLineStart(t *testing.T) {
	assert.Equal(t, 0, lineStart(posText, 0))
	assert.Equal(t, 0, lineStart(posText, 5))
	// a position on the line break belongs to the line before it
	assert.Equal(t, 0, lineStart(posText, 10))
	assert.Equal(t, 11, lineStart(posText, 11))
	assert.Equal(t, 11, lineStart(posText, 22))
	assert.Equal(t, 23, lineStart(posText, 23))
	assert.Equal(t, 24, lineStart(posText, 34))
	// positions past the end clamp onto the last line
	assert.Equal(t, 24, lineStart(posText, 100))
	assert.Equal(t, 0, lineStart("", 0))
}

func TestLineEnd(t *testing.T) {
	assert.Equal(t, 10, lineEnd(posText, 0))
	assert.Equal(t, 10, lineEnd(posText, 10))
	assert.Equal(t, 22, lineEnd(posText, 11))
	assert.Equal(t, 23, lineEnd(posText, 23))
	// the last line has no break, so its end is the last byte
	assert.Equal(t, len(posText)-1, lineEnd(posText, 24))
}

func TestLineContext(t *testing.T) {
	extract := func(bounds [][2]int) []string {
		var lines []string
		for _, b := range bounds {
			lines = append(lines, posText[b[0]:b[0]+b[1]])
		}
		return lines
	}

	assert.Equal(t, []string{"first line\n"}, extract(lineContext(posText, 4, 5)))
	assert.Equal(t,
		[]string{"first line\n", "second line\n", "\n", "fourth line"},
		extract(lineContext(posText, 30, 5)))
	// maxLines bounds the whole excerpt, error line included
	assert.Equal(t,
		[]string{"\n", "fourth line"},
		extract(lineContext(posText, 30, 2)))
	assert.Equal(t,
		[]string{"fourth line"},
		extract(lineContext(posText, 30, 1)))
}

func TestPositionToLineCol(t *testing.T) {
	type pair struct{ line, col int }
	at := func(pos int) pair {
		line, col := positionToLineCol(posText, pos)
		return pair{line, col}
	}

	assert.Equal(t, pair{1, 1}, at(0))
	assert.Equal(t, pair{1, 6}, at(5))
	assert.Equal(t, pair{2, 1}, at(11))
	assert.Equal(t, pair{2, 12}, at(22))
	assert.Equal(t, pair{3, 1}, at(23))
	assert.Equal(t, pair{4, 11}, at(34))
}

func TestCountTabsBefore(t *testing.T) {
	assert.Equal(t, 0, countTabsBefore("val = 1", 5))
	assert.Equal(t, 0, countTabsBefore("\tval = 1", 0))
	assert.Equal(t, 1, countTabsBefore("\tval = 1", 5))
	assert.Equal(t, 2, countTabsBefore("\t\tval = 1", 7))
	// only tabs before the column count
	assert.Equal(t, 1, countTabsBefore("\tval\t= 1", 4))
}
