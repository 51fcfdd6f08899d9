// Package edit implements the reversible edit log: tagged EditAction
// records, their composition rules, and the ActionBuffer coalescing state
// machine that turns a run of keystrokes into a single undoable unit.
package edit

import (
	"github.com/halvorsen/ligature/internal/engine/line"
)

// Content is the line-array abstraction EditActions apply against. The
// document package implements this; edit never imports document, so the
// two packages don't form a cycle.
type Content interface {
	LineCount() int
	Line(i int) *line.EditorLine
	InsertLine(i int, l *line.EditorLine)
	RemoveLine(i int) *line.EditorLine
	ReplaceLine(i int, l *line.EditorLine)
}

// Meta summarizes how many lines an edit replaced with how many, and
// where — the minimal rectangle the renderer must repaint.
type Meta struct {
	StartLine     int
	FromLineCount int
	ToLineCount   int
}

// EndLine returns the exclusive end line of the meta's post-image region.
func (m Meta) EndLine() int {
	return m.StartLine + m.ToLineCount
}

// Delta returns ToLineCount - FromLineCount, the net line-count shift this
// edit applies to everything after it.
func (m Meta) Delta() int {
	return m.ToLineCount - m.FromLineCount
}

// ComposeMeta combines two sequentially-applied metas into the meta of
// their composition. It is associative for non-overlapping edits and
// always reports a region containing both inputs' post-image extents.
func ComposeMeta(m1, m2 Meta) Meta {
	start := m1.StartLine
	if m2.StartLine < start {
		start = m2.StartLine
	}

	// m2 is expressed against content already shaped by m1; translate its
	// region into pre-m1 line numbers by undoing m1's shift where m2
	// starts at or after m1's post-image region.
	end1 := m1.EndLine()
	end2 := m2.EndLine()
	if m2.StartLine >= end1 {
		end2 += m1.Delta()
	}
	if end1 > end2 {
		end2 = end1
	}

	fromEnd := m1.StartLine + m1.FromLineCount
	if m2.StartLine >= end1 {
		m2FromStart := m2.StartLine - m1.Delta()
		m2FromEnd := m2FromStart + m2.FromLineCount
		if m2FromEnd > fromEnd {
			fromEnd = m2FromEnd
		}
	} else {
		candidateFromEnd := m1.FromLineCount + m1.StartLine
		if m2.StartLine+m2.FromLineCount > candidateFromEnd {
			candidateFromEnd = m2.StartLine + m2.FromLineCount
		}
		if candidateFromEnd > fromEnd {
			fromEnd = candidateFromEnd
		}
	}

	return Meta{
		StartLine:     start,
		FromLineCount: fromEnd - start,
		ToLineCount:   end2 - start,
	}
}

// EditAction is a tagged, reversible edit record. Variants are
// SingleLine, MultiLine, Swap, and Composite — a closed set implemented
// as concrete types rather than an open interface hierarchy, matching
// the "composition over inheritance" design of the edit log.
type EditAction interface {
	// Apply mutates content forward, returning the resulting cursor
	// position and an optional new selection.
	Apply(c Content) (line.Position, *line.Selection, error)

	// ApplyReverse undoes Apply.
	ApplyReverse(c Content) (line.Position, *line.Selection, error)

	// Meta returns the edit's line-replacement summary.
	Meta() Meta

	// ChangeEvents produces the LSP-shaped change records this edit
	// corresponds to, using enc to translate char offsets into the
	// negotiated wire encoding. preImage must be the content exactly as
	// it stood before Apply ran — offset translation depends on the
	// characters preceding the edit on the same line.
	ChangeEvents(enc Encoding, preImage Content) []ChangeEvent
}
