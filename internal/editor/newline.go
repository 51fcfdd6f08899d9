package editor

import (
	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

func leadingIndent(text []rune) string {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return string(text[:i])
}

// NewLine splits the current line at the caret, carrying its leading
// indent onto the new line. When the caret sits directly between a
// matched bracket pair, an extra blank line at indent+1 unit is opened
// above the closer so the closer keeps the original line's indent.
func (e *Editor) NewLine() {
	if e.Cursors.Len() > 1 {
		e.multiCursorNewLine()
		return
	}
	c := e.Cursors.Primary()
	if c.HasSelection() {
		e.deleteSelection(c)
		c = e.Cursors.Primary()
	}
	e.FlushActionBuffer()

	text := []rune(e.Doc.LineText(c.Line))
	indent := leadingIndent(text)
	suffix := string(text[c.Char:])

	var before, after rune
	if c.Char > 0 {
		before = text[c.Char-1]
	}
	if c.Char < len(text) {
		after = text[c.Char]
	}

	var inserted []string
	cursorIndent := indent
	if isOpener(before) && bracketPairs[before] == after {
		innerIndent := indent + e.IndentUnit
		inserted = []string{"", innerIndent, indent + suffix}
		cursorIndent = innerIndent
	} else {
		inserted = []string{"", indent + suffix}
	}

	a := &edit.MultiLineAction{
		Pos:           c.Position(),
		InsertedLines: inserted,
		RemovedLines:  []string{suffix},
	}
	if _, _, err := e.Doc.ApplyAction(a); err != nil {
		return
	}
	e.Cursors.SetPrimary(cursor.New(c.Line+1, len([]rune(cursorIndent))))
}

// NewLineKeepingCursor splits like NewLine but leaves a secondary cursor
// behind at the split point, so typing continues on both halves.
func (e *Editor) NewLineKeepingCursor() {
	if e.Cursors.Len() > 1 {
		e.multiCursorNewLine()
		return
	}
	split := e.Cursors.Primary().Position()
	e.NewLine()
	e.Cursors.NewCursorWithLine(split)
}

// multiCursorNewLine splits every cursor's line, bottom-up, in one undo
// step. Indent carries over; the bracket-pair expansion of the
// single-cursor path does not apply here.
func (e *Editor) multiCursorNewLine() {
	e.FlushActionBuffer()
	var children []edit.EditAction
	var events []edit.ChangeEvent
	err := e.Cursors.ApplyBottomUp(func(c cursor.Cursor) (edit.Meta, line.Position, error) {
		text := []rune(e.Doc.LineText(c.Line))
		ch := c.Char
		if ch > len(text) {
			ch = len(text)
		}
		indent := leadingIndent(text)
		suffix := string(text[ch:])
		a := &edit.MultiLineAction{
			Pos:           line.NewPosition(c.Line, ch),
			InsertedLines: []string{"", indent + suffix},
			RemovedLines:  []string{suffix},
		}
		events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
		if _, _, err := a.Apply(e.Doc); err != nil {
			return edit.Meta{}, c.Position(), err
		}
		e.Doc.Touch()
		children = append(children, a)
		return a.Meta(), line.NewPosition(c.Line+1, len([]rune(indent))), nil
	})
	if err != nil || len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)
}
