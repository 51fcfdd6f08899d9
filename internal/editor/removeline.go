package editor

import (
	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// RemoveLine deletes each cursor's line, bundling the removals into one
// undo step. Cursors are processed bottom-up and consolidated; each lands
// at column 0 of the line that followed the removed one (or of the
// previous line when the last line was removed). Removing the only line
// of the buffer just empties it.
func (e *Editor) RemoveLine() {
	e.FlushActionBuffer()
	var children []edit.EditAction
	var events []edit.ChangeEvent
	err := e.Cursors.ApplyBottomUp(func(c cursor.Cursor) (edit.Meta, line.Position, error) {
		a := e.removeLineAction(c.Line)
		if a == nil {
			// Nothing left to remove (the buffer is a single empty
			// line); report a same-shape no-op so other cursors and
			// already-applied removals stay intact.
			return edit.Meta{StartLine: c.Line, FromLineCount: 1, ToLineCount: 1}, c.Position(), nil
		}
		events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
		pos, _, err := a.Apply(e.Doc)
		if err != nil {
			return edit.Meta{}, c.Position(), err
		}
		e.Doc.Touch()
		// Application order (bottom-most first), matching Composite's
		// replay and reverse traversal.
		children = append(children, a)
		return a.Meta(), line.NewPosition(pos.Line, 0), nil
	})
	if err != nil || len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)
}

// removeLineAction builds the reversible action deleting line idx along
// with its trailing newline: the range (idx,0)..(idx+1,0) collapses onto
// the following line's text. The last line instead collapses the range
// (idx-1,end)..(idx,end) onto the previous line's tail.
func (e *Editor) removeLineAction(idx int) edit.EditAction {
	count := e.Doc.LineCount()
	if idx < 0 || idx >= count {
		return nil
	}
	text := e.Doc.LineText(idx)
	switch {
	case count == 1:
		if text == "" {
			return nil
		}
		return &edit.SingleLineAction{Pos: line.NewPosition(0, 0), Removed: text}
	case idx == count-1:
		prev := e.Doc.LineText(idx - 1)
		return &edit.MultiLineAction{
			Pos:           line.NewPosition(idx-1, len([]rune(prev))),
			RemovedLines:  []string{"", text},
			InsertedLines: []string{""},
		}
	default:
		next := e.Doc.LineText(idx + 1)
		return &edit.MultiLineAction{
			Pos:           line.NewPosition(idx, 0),
			RemovedLines:  []string{text, next},
			InsertedLines: []string{next},
		}
	}
}
