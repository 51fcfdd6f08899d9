package editor

import (
	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// affectedLines returns the line range an indent/unindent/comment
// operation should touch: just the caret's line with no selection, or
// every line the selection spans.
func affectedLines(c cursor.Cursor) (int, int) {
	if !c.HasSelection() {
		return c.Line, c.Line
	}
	sel := c.Selection()
	return sel.From.Line, sel.To.Line
}

// Indent prepends IndentUnit to the caret's line, or to every line the
// selection spans.
func (e *Editor) Indent() {
	e.FlushActionBuffer()
	c := e.Cursors.Primary()
	startLine, endLine := affectedLines(c)
	unitLen := len([]rune(e.IndentUnit))

	var children []edit.EditAction
	var events []edit.ChangeEvent
	for i := startLine; i <= endLine; i++ {
		l := e.Doc.Line(i)
		a := &edit.SingleLineAction{Pos: line.NewPosition(i, 0), Inserted: e.IndentUnit}
		events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
		l.Insert(0, e.IndentUnit)
		e.Doc.Touch()
		children = append(children, a)
	}
	if len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)

	if !c.HasSelection() {
		e.Cursors.SetPrimary(cursor.New(c.Line, c.Char+unitLen))
		return
	}
	sel := c.Selection()
	newFrom, newTo := sel.From, sel.To
	if newFrom.Line >= startLine && newFrom.Line <= endLine {
		newFrom.Char += unitLen
	}
	if newTo.Line >= startLine && newTo.Line <= endLine {
		newTo.Char += unitLen
	}
	e.Cursors.SetPrimary(cursor.New(newTo.Line, newTo.Char).WithAnchor(newFrom))
}

// Unindent removes up to one IndentUnit's worth of leading whitespace
// from the caret's line, or from every line the selection spans.
func (e *Editor) Unindent() {
	e.FlushActionBuffer()
	c := e.Cursors.Primary()
	startLine, endLine := affectedLines(c)
	unitLen := len([]rune(e.IndentUnit))

	var children []edit.EditAction
	var events []edit.ChangeEvent
	removedAt := make(map[int]int)
	for i := startLine; i <= endLine; i++ {
		l := e.Doc.Line(i)
		runes := l.Runes()
		n := 0
		for n < unitLen && n < len(runes) && (runes[n] == ' ' || runes[n] == '\t') {
			n++
		}
		if n == 0 {
			continue
		}
		removed := string(runes[:n])
		a := &edit.SingleLineAction{Pos: line.NewPosition(i, 0), Removed: removed}
		events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
		l.Remove(0, n)
		e.Doc.Touch()
		children = append(children, a)
		removedAt[i] = n
	}
	if len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)

	if !c.HasSelection() {
		newChar := c.Char - removedAt[c.Line]
		if newChar < 0 {
			newChar = 0
		}
		e.Cursors.SetPrimary(cursor.New(c.Line, newChar))
		return
	}
	sel := c.Selection()
	newFrom, newTo := sel.From, sel.To
	if d, ok := removedAt[newFrom.Line]; ok {
		newFrom.Char -= d
		if newFrom.Char < 0 {
			newFrom.Char = 0
		}
	}
	if d, ok := removedAt[newTo.Line]; ok {
		newTo.Char -= d
		if newTo.Char < 0 {
			newTo.Char = 0
		}
	}
	e.Cursors.SetPrimary(cursor.New(newTo.Line, newTo.Char).WithAnchor(newFrom))
}
