package editor

import (
	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// InsertChar inserts s (typically one rune, but also used for
// auto-closed pairs) at every cursor's position. Word-character
// insertions at the primary cursor's advancing caret coalesce via the
// Document's ActionBuffer; everything else flushes immediately.
func (e *Editor) InsertChar(s string) {
	if e.Cursors.Len() > 1 {
		e.FlushActionBuffer()
		e.multiCursorInsert(s)
		return
	}

	c := e.Cursors.Primary()
	runes := []rune(s)

	if len(runes) == 1 && c.HasSelection() && isOpener(runes[0]) {
		e.wrapSelectionWithBracket(c, runes[0])
		return
	}
	if c.HasSelection() {
		e.replaceSelection(c, s)
		return
	}
	if len(runes) == 1 && closers[runes[0]] {
		if closer, ok := e.pendingAutoClose[c.Position()]; ok && closer == runes[0] {
			delete(e.pendingAutoClose, c.Position())
			e.FlushActionBuffer()
			e.Cursors.SetPrimary(c.Right(e.Doc, false))
			return
		}
	}

	l := e.Doc.Line(c.Line)
	if l == nil {
		return
	}
	flushed := e.Doc.ActionBuffer().RecordInsert(c.Position(), s)
	events := e.changeEventsFor(flushed)
	l.Insert(c.Char, s)
	e.Doc.Touch()
	for _, a := range flushed {
		e.Doc.History().Push(a)
	}
	e.Doc.QueueChangeEvents(events)
	newChar := c.Char + len(runes)
	newC := c.MoveTo(c.Line, newChar, false)

	if len(runes) == 1 && isOpener(runes[0]) && e.shouldAutoClose(newC) {
		closer := bracketPairs[runes[0]]
		flushed := e.Doc.ActionBuffer().RecordInsert(line.NewPosition(c.Line, newChar), string(closer))
		events := e.changeEventsFor(flushed)
		l.Insert(newChar, string(closer))
		e.Doc.Touch()
		for _, a := range flushed {
			e.Doc.History().Push(a)
		}
		e.Doc.QueueChangeEvents(events)
		e.pendingAutoClose[line.NewPosition(c.Line, newChar)] = closer
	}
	e.Cursors.SetPrimary(newC)
}

// changeEventsFor computes the LSP change events for each action, using
// the document's current (pre-mutation) content and negotiated encoding.
// Callers must call this before mutating the lines the actions describe.
func (e *Editor) changeEventsFor(actions []edit.EditAction) []edit.ChangeEvent {
	var events []edit.ChangeEvent
	for _, a := range actions {
		events = append(events, a.ChangeEvents(e.Doc.Encoding(), e.Doc)...)
	}
	return events
}

func (e *Editor) shouldAutoClose(after cursor.Cursor) bool {
	runes := []rune(e.Doc.LineText(after.Line))
	if after.Char >= len(runes) {
		return true
	}
	next := runes[after.Char]
	return next == ' ' || next == '\t' || closers[next]
}

func (e *Editor) replaceSelection(c cursor.Cursor, s string) {
	sel := c.Selection()
	delAction := e.deleteRangeAction(sel)
	delEvents := e.changeEventsFor([]edit.EditAction{delAction})
	pos, _, err := delAction.Apply(e.Doc)
	if err != nil {
		return
	}
	e.Doc.Touch()
	insertAction := &edit.SingleLineAction{Pos: pos, Inserted: s}
	insertEvents := e.changeEventsFor([]edit.EditAction{insertAction})
	l := e.Doc.Line(pos.Line)
	l.Insert(pos.Char, s)
	e.Doc.Touch()
	e.Doc.History().Push(&edit.CompositeAction{Children: []edit.EditAction{delAction, insertAction}})
	e.Doc.QueueChangeEvents(append(delEvents, insertEvents...))
	e.Cursors.SetPrimary(cursor.New(pos.Line, pos.Char+len([]rune(s))))
}

func (e *Editor) wrapSelectionWithBracket(c cursor.Cursor, opener rune) {
	sel := c.Selection()
	closer := bracketPairs[opener]

	a1 := &edit.SingleLineAction{Pos: sel.To, Inserted: string(closer)}
	a2 := &edit.SingleLineAction{Pos: sel.From, Inserted: string(opener)}
	events := e.changeEventsFor([]edit.EditAction{a2, a1})

	endLine := e.Doc.Line(sel.To.Line)
	endLine.Insert(sel.To.Char, string(closer))
	startLine := e.Doc.Line(sel.From.Line)
	startLine.Insert(sel.From.Char, string(opener))
	e.Doc.Touch()
	e.FlushActionBuffer()

	e.Doc.History().Push(&edit.CompositeAction{Children: []edit.EditAction{a1, a2}})
	e.Doc.QueueChangeEvents(events)

	newFrom := line.NewPosition(sel.From.Line, sel.From.Char+1)
	newToChar := sel.To.Char
	if sel.To.Line == sel.From.Line {
		newToChar++
	}
	nc := cursor.New(sel.To.Line, newToChar).WithAnchor(newFrom)
	e.Cursors.SetPrimary(nc)
}

// multiCursorInsert inserts s at every cursor, bottom-up, bundling the
// per-cursor edits into one CompositeAction for a single undo step.
func (e *Editor) multiCursorInsert(s string) {
	var children []edit.EditAction
	var events []edit.ChangeEvent
	err := e.Cursors.ApplyBottomUp(func(c cursor.Cursor) (edit.Meta, line.Position, error) {
		l := e.Doc.Line(c.Line)
		if l == nil {
			return edit.Meta{}, c.Position(), edit.ErrInvalidLineIndex
		}
		a := &edit.SingleLineAction{Pos: c.Position(), Inserted: s}
		events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
		l.Insert(c.Char, s)
		e.Doc.Touch()
		// Children are kept in application order (bottom-most first) so
		// Composite replay and reverse traverse the same sequence the
		// live edit did.
		children = append(children, a)
		newPos := line.NewPosition(c.Line, c.Char+len([]rune(s)))
		return edit.Meta{StartLine: c.Line, FromLineCount: 1, ToLineCount: 1}, newPos, nil
	})
	if err != nil || len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)
}

// Backspace removes one character to the left of the caret (or the
// selection, if any). Backspace at (0,0) is a no-op.
func (e *Editor) Backspace() {
	c := e.Cursors.Primary()
	if c.HasSelection() {
		e.deleteSelection(c)
		return
	}
	if c.Line == 0 && c.Char == 0 {
		return
	}

	if c.Char == 0 {
		e.FlushActionBuffer()
		e.joinWithPreviousLine(c.Line)
		return
	}

	removeCount := 1
	if unit := e.indentUnitToRemove(c); unit > 0 {
		removeCount = unit
	}
	l := e.Doc.Line(c.Line)
	removed := string(l.Runes()[c.Char-removeCount : c.Char])
	flushed := e.Doc.ActionBuffer().RecordBackspace(c.Position(), removed)
	events := e.changeEventsFor(flushed)
	l.Remove(c.Char-removeCount, c.Char)
	e.Doc.Touch()
	for _, a := range flushed {
		e.Doc.History().Push(a)
	}
	e.Doc.QueueChangeEvents(events)
	newC := c.MoveTo(c.Line, c.Char-removeCount, false)
	e.Cursors.SetPrimary(newC)
}

// indentUnitToRemove returns how many characters a single backspace
// should remove when the line's prefix at the caret is exactly the
// configured indent unit (or pure whitespace matching its width) — a
// whole indent collapses in one coalesced step instead of one space at a
// time.
func (e *Editor) indentUnitToRemove(c cursor.Cursor) int {
	unitLen := len([]rune(e.IndentUnit))
	if unitLen == 0 || c.Char < unitLen {
		return 0
	}
	runes := e.Doc.Line(c.Line).Runes()
	prefix := runes[:c.Char]
	for _, r := range prefix {
		if r != ' ' && r != '\t' {
			return 0
		}
	}
	if c.Char%unitLen != 0 {
		return 0
	}
	return unitLen
}

func (e *Editor) joinWithPreviousLine(lineIdx int) {
	prev := e.Doc.Line(lineIdx - 1)
	cur := e.Doc.Line(lineIdx)
	joinAt := prev.CharCount()
	removedLines := []string{prev.Text(), cur.Text()}
	a := &edit.MultiLineAction{
		Pos:           line.NewPosition(lineIdx-1, 0),
		InsertedLines: []string{prev.Text() + cur.Text()},
		RemovedLines:  removedLines,
	}
	pos, _, err := e.Doc.ApplyAction(a)
	if err != nil {
		return
	}
	// The caret lands at the join point, not the end of the merged line.
	e.Cursors.SetPrimary(cursor.New(pos.Line, joinAt))
}

// Delete removes one character to the right of the caret (or the
// selection, if any). Delete at end-of-file is a no-op.
func (e *Editor) Delete() {
	c := e.Cursors.Primary()
	if c.HasSelection() {
		e.deleteSelection(c)
		return
	}
	count := e.Doc.Line(c.Line).CharCount()
	if c.Char == count {
		if c.Line == e.Doc.LineCount()-1 {
			return
		}
		e.FlushActionBuffer()
		e.joinWithPreviousLine(c.Line + 1)
		e.Cursors.SetPrimary(cursor.New(c.Line, c.Char))
		return
	}
	l := e.Doc.Line(c.Line)
	removed := string(l.Runes()[c.Char : c.Char+1])
	flushed := e.Doc.ActionBuffer().RecordDelete(c.Position(), removed)
	events := e.changeEventsFor(flushed)
	l.Remove(c.Char, c.Char+1)
	e.Doc.Touch()
	for _, a := range flushed {
		e.Doc.History().Push(a)
	}
	e.Doc.QueueChangeEvents(events)
}

func (e *Editor) deleteRangeAction(sel line.Selection) edit.EditAction {
	if sel.From.Line == sel.To.Line {
		removed := string(e.Doc.Line(sel.From.Line).Runes()[sel.From.Char:sel.To.Char])
		return &edit.SingleLineAction{Pos: sel.From, Removed: removed}
	}
	var removedLines []string
	removedLines = append(removedLines, string(e.Doc.Line(sel.From.Line).Runes()[sel.From.Char:]))
	for i := sel.From.Line + 1; i < sel.To.Line; i++ {
		removedLines = append(removedLines, e.Doc.Line(i).Text())
	}
	removedLines = append(removedLines, string(e.Doc.Line(sel.To.Line).Runes()[:sel.To.Char]))
	return &edit.MultiLineAction{Pos: sel.From, RemovedLines: removedLines, InsertedLines: []string{""}}
}

func (e *Editor) deleteSelection(c cursor.Cursor) {
	e.FlushActionBuffer()
	sel := c.Selection()
	a := e.deleteRangeAction(sel)
	pos, _, err := e.Doc.ApplyAction(a)
	if err != nil {
		return
	}
	e.Cursors.SetPrimary(cursor.New(pos.Line, pos.Char))
}
