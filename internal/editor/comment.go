package editor

import (
	"strings"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// CommentOut toggles CommentPrefix on the caret's line, or on every
// non-blank line the selection spans: removes the prefix if every
// non-blank line already carries it, otherwise adds it to each.
func (e *Editor) CommentOut() {
	e.FlushActionBuffer()
	c := e.Cursors.Primary()
	startLine, endLine := affectedLines(c)
	prefix := []rune(e.CommentPrefix)

	allCommented := true
	anyNonBlank := false
	for i := startLine; i <= endLine; i++ {
		trimmed := strings.TrimLeft(e.Doc.LineText(i), " \t")
		if trimmed == "" {
			continue
		}
		anyNonBlank = true
		if indexRunes([]rune(trimmed), prefix) != 0 {
			allCommented = false
		}
	}
	if !anyNonBlank {
		return
	}

	var children []edit.EditAction
	var events []edit.ChangeEvent
	if allCommented {
		for i := startLine; i <= endLine; i++ {
			runes := []rune(e.Doc.LineText(i))
			idx := indexRunes(runes, prefix)
			if idx < 0 {
				continue
			}
			a := &edit.SingleLineAction{Pos: line.NewPosition(i, idx), Removed: string(prefix)}
			events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
			e.Doc.Line(i).Remove(idx, idx+len(prefix))
			e.Doc.Touch()
			children = append(children, a)
		}
	} else {
		for i := startLine; i <= endLine; i++ {
			text := e.Doc.LineText(i)
			if strings.TrimLeft(text, " \t") == "" {
				continue
			}
			indentLen := len([]rune(leadingIndent([]rune(text))))
			a := &edit.SingleLineAction{Pos: line.NewPosition(i, indentLen), Inserted: string(prefix)}
			events = append(events, e.changeEventsFor([]edit.EditAction{a})...)
			e.Doc.Line(i).Insert(indentLen, string(prefix))
			e.Doc.Touch()
			children = append(children, a)
		}
	}
	if len(children) == 0 {
		return
	}
	e.Doc.History().Push(&edit.CompositeAction{Children: children})
	e.Doc.QueueChangeEvents(events)
}
