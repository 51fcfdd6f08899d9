package cursor

import (
	"sort"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// CursorSet manages the primary cursor plus any number of secondary
// cursors for multi-cursor editing. Cursors are kept sorted by position;
// Consolidate merges overlapping selections and collapses coincident
// cursors, which must hold after every multi-cursor edit, not just as an
// optimization.
type CursorSet struct {
	cursors []Cursor
	primary int
}

// NewCursorSet creates a set containing a single primary cursor.
func NewCursorSet(c Cursor) *CursorSet {
	return &CursorSet{cursors: []Cursor{c}, primary: 0}
}

// Primary returns the primary cursor.
func (cs *CursorSet) Primary() Cursor {
	return cs.cursors[cs.primary]
}

// SetPrimary replaces the primary cursor in place.
func (cs *CursorSet) SetPrimary(c Cursor) {
	cs.cursors[cs.primary] = c
}

// All returns every cursor, sorted by position, primary included.
func (cs *CursorSet) All() []Cursor {
	return cs.cursors
}

// Len returns the number of cursors in the set.
func (cs *CursorSet) Len() int {
	return len(cs.cursors)
}

// Add inserts a new secondary cursor and re-sorts.
func (cs *CursorSet) Add(c Cursor) {
	primaryPos := cs.Primary().Position()
	cs.cursors = append(cs.cursors, c)
	cs.resort(primaryPos)
}

// resort re-sorts cursors by position and relocates the primary index to
// wherever the cursor at primaryPos ended up.
func (cs *CursorSet) resort(primaryPos line.Position) {
	sort.Slice(cs.cursors, func(i, j int) bool {
		return cs.cursors[i].Before(cs.cursors[j])
	})
	for i, c := range cs.cursors {
		if c.Position().Equals(primaryPos) {
			cs.primary = i
			return
		}
	}
	cs.primary = 0
}

// NewCursorUp clones the primary cursor one line above it and makes the
// clone an additional secondary cursor.
func (cs *CursorSet) NewCursorUp(src Source) {
	p := cs.Primary()
	if p.Line == 0 {
		return
	}
	clone := p
	clone.Line--
	count := lineCharCount(src, clone.Line)
	if clone.Char > count {
		clone.Char = count
	}
	clone = clone.ClearSelection()
	cs.Add(clone)
}

// NewCursorDown clones the primary cursor one line below it.
func (cs *CursorSet) NewCursorDown(src Source) {
	p := cs.Primary()
	if p.Line >= src.LineCount()-1 {
		return
	}
	clone := p
	clone.Line++
	count := lineCharCount(src, clone.Line)
	if clone.Char > count {
		clone.Char = count
	}
	clone = clone.ClearSelection()
	cs.Add(clone)
}

// NewCursorWithLine adds a cursor at pos, the position of a newline this
// operation just emitted (e.g. one cursor's new_line pushed later
// cursors' anchors down).
func (cs *CursorSet) NewCursorWithLine(pos line.Position) {
	cs.Add(New(pos.Line, pos.Char))
}

// Consolidate merges overlapping selections and collapses cursors that
// land on the same position. Must be called before executing any
// multi-cursor edit.
func (cs *CursorSet) Consolidate() {
	if len(cs.cursors) < 2 {
		return
	}
	primaryPos := cs.Primary().Position()
	sort.Slice(cs.cursors, func(i, j int) bool {
		return cs.cursors[i].Before(cs.cursors[j])
	})

	merged := cs.cursors[:1]
	for _, c := range cs.cursors[1:] {
		last := &merged[len(merged)-1]
		lastSel := last.Selection()
		cSel := c.Selection()
		if lastSel.Overlaps(cSel) || last.Equals(c) {
			// Merge: keep the union's extent, head at the later position.
			from := line.Min(lastSel.From, cSel.From)
			to := line.Max(lastSel.To, cSel.To)
			*last = last.MoveTo(to.Line, to.Char, false)
			if !from.Equals(to) {
				*last = last.WithAnchor(from)
			}
			continue
		}
		merged = append(merged, c)
	}
	cs.cursors = merged
	cs.resort(primaryPos)
}

// CollapseAll drops every secondary cursor, keeping only the primary.
func (cs *CursorSet) CollapseAll() {
	p := cs.Primary()
	cs.cursors = []Cursor{p}
	cs.primary = 0
}

// Equals reports whether two cursor sets have the same cursors in the
// same order.
func (cs *CursorSet) Equals(other *CursorSet) bool {
	if len(cs.cursors) != len(other.cursors) {
		return false
	}
	for i := range cs.cursors {
		if !cs.cursors[i].Equals(other.cursors[i]) {
			return false
		}
	}
	return true
}

// ShiftAfterEdit adjusts a cursor's position to account for an edit
// described by m that has just been applied elsewhere in the document.
// Cursors entirely before the edit's pre-image region are untouched;
// cursors at or after it shift by the edit's line-count delta; a cursor
// that fell inside a replaced region whose line count changed collapses
// to the edit's start (its line no longer exists at that index). A
// same-shape replacement (FromLineCount == ToLineCount) leaves in-region
// cursors alone: every line survived in place.
func ShiftAfterEdit(c Cursor, m edit.Meta) Cursor {
	preEnd := m.StartLine + m.FromLineCount
	switch {
	case c.Line < m.StartLine:
		return c
	case c.Line >= preEnd:
		c.Line += m.Delta()
		return c
	default:
		if m.FromLineCount == m.ToLineCount {
			return c
		}
		c.Line = m.StartLine
		c.Char = 0
		c.PhantomChar = 0
		return c
	}
}

// ApplyBottomUp runs apply once per cursor, processing the bottom-most
// (last in document order) cursor first so that not-yet-processed
// cursors' indices stay valid, then shifts every other cursor by the
// completed edit's meta delta before continuing upward. Cursors above
// the edit come out of ShiftAfterEdit unchanged; the shift is what keeps
// already-processed cursors below the edit pointing at the lines they
// landed on as removals and insertions above them renumber the document.
func (cs *CursorSet) ApplyBottomUp(apply func(c Cursor) (edit.Meta, line.Position, error)) error {
	cs.Consolidate()

	for i := len(cs.cursors) - 1; i >= 0; i-- {
		m, newPos, err := apply(cs.cursors[i])
		if err != nil {
			return err
		}
		cs.cursors[i] = cs.cursors[i].MoveTo(newPos.Line, newPos.Char, false)
		for j := range cs.cursors {
			if j == i {
				continue
			}
			cs.cursors[j] = ShiftAfterEdit(cs.cursors[j], m)
		}
	}

	cs.resort(cs.cursors[cs.primary].Position())
	return nil
}
