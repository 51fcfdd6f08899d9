package editor

import (
	"strings"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
)

// MoveLineUp swaps the primary cursor's line with the one above it,
// carrying the caret along. Crossing a bracket boundary adjusts the
// moved line's indent by one indent unit; see swapIndentDelta.
func (e *Editor) MoveLineUp() {
	c := e.Cursors.Primary()
	if c.Line == 0 {
		return
	}
	e.moveLine(c, c.Line-1)
}

// MoveLineDown swaps the primary cursor's line with the one below it.
func (e *Editor) MoveLineDown() {
	c := e.Cursors.Primary()
	if c.Line >= e.Doc.LineCount()-1 {
		return
	}
	e.moveLine(c, c.Line+1)
}

func (e *Editor) moveLine(c cursor.Cursor, dest int) {
	e.FlushActionBuffer()
	crossed := e.Doc.LineText(dest)
	delta := e.swapIndentDelta(crossed, dest > c.Line)
	a := &edit.SwapAction{LineA: c.Line, LineB: dest, IndentDelta: delta}
	if _, _, err := e.Doc.ApplyAction(a); err != nil {
		return
	}
	ch := c.Char + delta
	if ch < 0 {
		ch = 0
	}
	if n := e.Doc.Line(dest).CharCount(); ch > n {
		ch = n
	}
	e.Cursors.SetPrimary(cursor.New(dest, ch))
}

// swapIndentDelta returns the indent adjustment for a line swapped past
// crossed. Moving down past a line that ends with a block opener (or up
// past one that starts with a closer) puts the moved line one level
// deeper; the mirrored cases pull it one level out. Swapping past a
// blank or bracket-free line leaves the indent alone.
func (e *Editor) swapIndentDelta(crossed string, down bool) int {
	unit := len([]rune(e.IndentUnit))
	trimmed := []rune(strings.TrimSpace(crossed))
	if len(trimmed) == 0 {
		return 0
	}
	entering := isOpener(trimmed[len(trimmed)-1])
	leaving := closers[trimmed[0]]
	if !down {
		entering, leaving = leaving, entering
	}
	switch {
	case entering:
		return unit
	case leaving:
		return -unit
	default:
		return 0
	}
}
