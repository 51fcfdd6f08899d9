package cursor

import (
	"fmt"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// Source is the read-only view of document content that cursor
// navigation needs: line count and per-line text. The document package
// implements this.
type Source interface {
	LineCount() int
	LineText(lineIdx int) string
}

// Cursor is a single caret: a (line, char) position, a phantom column
// used to track the "remembered" column through ragged lines during
// vertical movement, viewport state (AtLine/MaxRows) for screen-relative
// movement, the text column width available for wrapping, and an
// optional selection anchor.
type Cursor struct {
	Line int
	Char int

	// PhantomChar is the column vertical navigation tries to return to
	// when passing through shorter lines, reset on any horizontal move.
	PhantomChar int

	AtLine    int
	MaxRows   int
	TextWidth int

	anchor    line.Position
	hasAnchor bool
}

// New creates a cursor at (lineIdx, charIdx) with no selection.
func New(lineIdx, charIdx int) Cursor {
	return Cursor{Line: lineIdx, Char: charIdx, PhantomChar: charIdx}
}

// Position returns the cursor's current position.
func (c Cursor) Position() line.Position {
	return line.NewPosition(c.Line, c.Char)
}

// HasSelection reports whether the cursor has an active selection.
func (c Cursor) HasSelection() bool {
	return c.hasAnchor && !c.anchor.Equals(c.Position())
}

// Selection returns the cursor's selection. If there is none, From==To==
// the cursor's position.
func (c Cursor) Selection() line.Selection {
	if !c.hasAnchor {
		return line.NewSelection(c.Position(), c.Position())
	}
	return line.NewSelection(c.anchor, c.Position())
}

// Anchor returns the selection anchor and whether one is set.
func (c Cursor) Anchor() (line.Position, bool) {
	return c.anchor, c.hasAnchor
}

// WithAnchor returns a copy of c with the selection anchor set to pos.
func (c Cursor) WithAnchor(pos line.Position) Cursor {
	c.anchor = pos
	c.hasAnchor = true
	return c
}

// ClearSelection returns a copy of c with no selection anchor.
func (c Cursor) ClearSelection() Cursor {
	c.hasAnchor = false
	c.anchor = line.Position{}
	return c
}

// MoveTo returns a copy of c positioned at (lineIdx, charIdx). If select
// is false, any selection is cleared; if true, an anchor is seeded at the
// current position first when none exists yet.
func (c Cursor) MoveTo(lineIdx, charIdx int, selecting bool) Cursor {
	if selecting {
		if !c.hasAnchor {
			c = c.WithAnchor(c.Position())
		}
	} else {
		c = c.ClearSelection()
	}
	c.Line = lineIdx
	c.Char = charIdx
	c.PhantomChar = charIdx
	return c
}

// Clamp clamps the cursor's line/char into [0, lineCount) / [0, charCount].
func (c Cursor) Clamp(src Source) Cursor {
	lc := src.LineCount()
	if lc == 0 {
		c.Line, c.Char = 0, 0
		return c
	}
	if c.Line < 0 {
		c.Line = 0
	}
	if c.Line >= lc {
		c.Line = lc - 1
	}
	max := len([]rune(src.LineText(c.Line)))
	if c.Char < 0 {
		c.Char = 0
	}
	if c.Char > max {
		c.Char = max
	}
	return c
}

// Equals reports whether two cursors occupy the same position.
func (c Cursor) Equals(other Cursor) bool {
	return c.Position().Equals(other.Position())
}

// Before reports whether c's position precedes other's.
func (c Cursor) Before(other Cursor) bool {
	return c.Position().Before(other.Position())
}

// Compare orders cursors by position: -1, 0, 1.
func (c Cursor) Compare(other Cursor) int {
	return c.Position().Compare(other.Position())
}

// String implements fmt.Stringer.
func (c Cursor) String() string {
	if c.HasSelection() {
		return fmt.Sprintf("Cursor(%d,%d sel %v)", c.Line, c.Char, c.Selection())
	}
	return fmt.Sprintf("Cursor(%d,%d)", c.Line, c.Char)
}
