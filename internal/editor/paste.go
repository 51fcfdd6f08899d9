package editor

import (
	"strings"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// isLinePaste reports whether clipboard looks like a whole-line yank: it
// ends in exactly one trailing newline and contains no other newline.
func isLinePaste(clipboard string) bool {
	if clipboard == "" || !strings.HasSuffix(clipboard, "\n") {
		return false
	}
	return strings.Count(clipboard, "\n") == 1
}

// dedentCommonIndent strips the clipboard's common leading indent when
// it starts with whitespace and the paste target line already has
// content at the caret, so re-indenting code doesn't double up levels.
func dedentCommonIndent(clipboard, targetLine string) string {
	if !strings.HasPrefix(clipboard, " ") && !strings.HasPrefix(clipboard, "\t") {
		return clipboard
	}
	if targetLine == "" {
		return clipboard
	}
	lines := strings.Split(clipboard, "\n")
	common := leadingIndent([]rune(lines[0]))
	for _, l := range lines[1:] {
		li := leadingIndent([]rune(l))
		if len(li) < len(common) {
			common = li
		}
	}
	if common == "" {
		return clipboard
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, common)
	}
	return strings.Join(lines, "\n")
}

// Copy returns the primary cursor's selected text and whether there was a
// selection to copy. Single-line selections return the slice between
// From.Char and To.Char; multi-line selections join each spanned line
// with "\n", trimming the first and last to the selection's bounds.
func (e *Editor) Copy() (string, bool) {
	c := e.Cursors.Primary()
	if !c.HasSelection() {
		return "", false
	}
	sel := c.Selection()

	if sel.From.Line == sel.To.Line {
		runes := []rune(e.Doc.LineText(sel.From.Line))
		from, to := clampChar(sel.From.Char, len(runes)), clampChar(sel.To.Char, len(runes))
		return string(runes[from:to]), true
	}

	var b strings.Builder
	for i := sel.From.Line; i <= sel.To.Line; i++ {
		runes := []rune(e.Doc.LineText(i))
		switch i {
		case sel.From.Line:
			b.WriteString(string(runes[clampChar(sel.From.Char, len(runes)):]))
		case sel.To.Line:
			b.WriteString(string(runes[:clampChar(sel.To.Char, len(runes))]))
		default:
			b.WriteString(string(runes))
		}
		if i != sel.To.Line {
			b.WriteByte('\n')
		}
	}
	return b.String(), true
}

func clampChar(charIdx, lineLen int) int {
	if charIdx < 0 {
		return 0
	}
	if charIdx > lineLen {
		return lineLen
	}
	return charIdx
}

// Paste inserts clipboard at the caret, replacing any active selection
// first. A single-line-plus-trailing-newline clipboard inserts as a new
// line above the caret's line instead of splitting it mid-line.
func (e *Editor) Paste(clipboard string) {
	e.FlushActionBuffer()
	c := e.Cursors.Primary()
	if c.HasSelection() {
		e.deleteSelection(c)
		c = e.Cursors.Primary()
	}

	if isLinePaste(clipboard) {
		content := strings.TrimSuffix(clipboard, "\n")
		original := e.Doc.LineText(c.Line)
		a := &edit.MultiLineAction{
			Pos:           line.NewPosition(c.Line, 0),
			InsertedLines: []string{content, original},
			RemovedLines:  []string{original},
		}
		if _, _, err := e.Doc.ApplyAction(a); err != nil {
			return
		}
		e.Cursors.SetPrimary(cursor.New(c.Line+1, c.Char))
		return
	}

	text := dedentCommonIndent(clipboard, e.Doc.LineText(c.Line))
	lines := strings.Split(text, "\n")

	var a edit.EditAction
	if len(lines) == 1 {
		a = &edit.SingleLineAction{Pos: c.Position(), Inserted: lines[0]}
	} else {
		lineRunes := e.Doc.Line(c.Line).Runes()
		suffix := string(lineRunes[c.Char:])
		inserted := append([]string{}, lines...)
		inserted[len(inserted)-1] += suffix
		a = &edit.MultiLineAction{Pos: c.Position(), InsertedLines: inserted, RemovedLines: []string{suffix}}
	}
	pos, _, err := e.Doc.ApplyAction(a)
	if err != nil {
		return
	}
	if len(lines) > 1 {
		lastLineIdx := c.Line + len(lines) - 1
		lastCharLen := len([]rune(lines[len(lines)-1]))
		e.Cursors.SetPrimary(cursor.New(lastLineIdx, lastCharLen))
		return
	}
	e.Cursors.SetPrimary(cursor.New(pos.Line, pos.Char))
}
