// Package renderer paints a rectangle of a Document into a backend.Backend
// grid: wrap-aware, selection-aware, token-colored, diagnostic-underlined.
package renderer

import (
	"strconv"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/document"
	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/renderer/backend"
	"github.com/halvorsen/ligature/internal/renderer/core"
)

const wrapMarkerRight = '>'
const wrapMarkerLeft = '<'

// Renderer paints Document content into a Backend.
type Renderer struct {
	backend     backend.Backend
	theme       Theme
	lastGutterW int
}

// New creates a Renderer painting into b with the given theme.
func New(b backend.Backend, theme Theme) *Renderer {
	return &Renderer{backend: b, theme: theme, lastGutterW: -1}
}

// GutterWidth returns the width of the line-number gutter for a document
// with lineCount lines: the number of decimal digits in lineCount plus one
// separator column.
func GutterWidth(lineCount int) int {
	digits := 1
	for n := lineCount; n >= 10; n /= 10 {
		digits++
	}
	return digits + 1
}

// wrapRow is one visual row produced by wrapping a single logical line.
type wrapRow struct {
	startChar int // first char index (inclusive) of this row within the line
	endChar   int // last char index (exclusive) rendered on this row
	truncated bool
}

// wrapLine splits text into rows no wider than width display columns,
// walking Unicode scalars and measuring each with core.RuneWidth rather
// than assuming one column per byte.
func wrapLine(text []rune, width int) []wrapRow {
	if width <= 0 {
		width = 1
	}
	if len(text) == 0 {
		return []wrapRow{{startChar: 0, endChar: 0}}
	}
	var rows []wrapRow
	start := 0
	col := 0
	for i, r := range text {
		w := core.RuneWidth(r)
		if col+w > width {
			rows = append(rows, wrapRow{startChar: start, endChar: i, truncated: true})
			start = i
			col = 0
		}
		col += w
	}
	rows = append(rows, wrapRow{startChar: start, endChar: len(text)})
	return rows
}

// Render repaints rect unconditionally, starting at topLine, and updates
// every painted line's cache key. doc's lines must exist for [topLine,
// topLine+rect.Height()) or the remaining rows are left blank.
func (r *Renderer) Render(doc *document.Document, cursors *cursor.CursorSet, rect core.ScreenRect, topLine int) {
	r.render(doc, cursors, rect, topLine, false)
}

// FastRender is like Render but skips repainting any logical line whose
// cache key (screen row, selection range on that line, revision) matches
// what was last painted there.
func (r *Renderer) FastRender(doc *document.Document, cursors *cursor.CursorSet, rect core.ScreenRect, topLine int) {
	r.render(doc, cursors, rect, topLine, true)
}

func (r *Renderer) render(doc *document.Document, cursors *cursor.CursorSet, rect core.ScreenRect, topLine int, fast bool) {
	gutterW := GutterWidth(doc.LineCount())
	if gutterW != r.lastGutterW {
		r.lastGutterW = gutterW
		fast = false // a gutter-width crossing invalidates every line's cache
		for i := 0; i < doc.LineCount(); i++ {
			doc.Line(i).ClearCache()
		}
	}
	textWidth := rect.Width() - gutterW - 1
	if textWidth < 1 {
		textWidth = 1
	}

	selections := selectionsFrom(cursors)
	primary := cursors.Primary()
	secondaries := secondaryPositions(cursors)

	row := rect.Top
	lineIdx := topLine
	for row < rect.Top+rect.Height() && lineIdx < doc.LineCount() {
		consumed := r.paintLine(doc, lineIdx, selections, primary, secondaries, rect, gutterW, textWidth, row, fast)
		row += consumed
		lineIdx++
	}

	if row < rect.Top+rect.Height() {
		blank := core.NewScreenRect(row, rect.Left, rect.Top+rect.Height(), rect.Left+rect.Width())
		r.backend.Fill(blank, core.NewStyledCell(' ', core.NewStyle(r.theme.Foreground).WithBackground(r.theme.Background)))
	}
}

func selectionsFrom(cursors *cursor.CursorSet) []line.Selection {
	var sels []line.Selection
	for _, c := range cursors.All() {
		if c.HasSelection() {
			sels = append(sels, c.Selection())
		}
	}
	return sels
}

// secondaryPositions returns the position of every non-primary cursor,
// painted with their own marker style distinct from the primary caret.
func secondaryPositions(cursors *cursor.CursorSet) []line.Position {
	primary := cursors.Primary().Position()
	var out []line.Position
	for _, c := range cursors.All() {
		if pos := c.Position(); !pos.Equals(primary) {
			out = append(out, pos)
		}
	}
	return out
}

// selectionRangeOnLine returns the [from,to) char range painted as
// selection background on lineIdx, across every active selection, merged
// into the single (start, end) pair the render cache keys on. wholeLine
// is true when every column of the line is selected.
func selectionRangeOnLine(sels []line.Selection, lineIdx int, lineLen int) (start, end int, wholeLine, extendsPastEnd bool, has bool) {
	start, end = -1, -1
	for _, s := range sels {
		if !s.IntersectsLine(lineIdx) {
			continue
		}
		has = true
		from, to := 0, lineLen
		if s.From.Line == lineIdx {
			from = s.From.Char
		}
		if s.To.Line == lineIdx {
			to = s.To.Char
		} else {
			extendsPastEnd = true
		}
		if s.From.Line < lineIdx && s.To.Line > lineIdx {
			wholeLine = true
		}
		if start == -1 || from < start {
			start = from
		}
		if to > end {
			end = to
		}
	}
	return
}

func (r *Renderer) paintLine(doc *document.Document, lineIdx int, sels []line.Selection, primary cursor.Cursor, secondaries []line.Position, rect core.ScreenRect, gutterW, textWidth, row int, fast bool) int {
	l := doc.Line(lineIdx)
	text := l.Runes()
	selStart, selEnd, wholeLine, extendsPastEnd, hasSel := selectionRangeOnLine(sels, lineIdx, len(text))

	key := line.CacheKey{Row: row, HasSel: hasSel, SelStart: selStart, SelEnd: selEnd, Revision: l.Revision()}
	if fast && l.CacheValid(key) {
		rows := wrapLine(text, textWidth)
		return len(rows)
	}
	l.SetCacheKey(key)

	rows := wrapLine(text, textWidth)
	for ri, wr := range rows {
		screenRow := row + ri
		if screenRow >= rect.Top+rect.Height() {
			break
		}
		r.paintGutter(lineIdx, ri == 0, gutterW, rect.Left, screenRow, l)
		r.paintRow(l, text, wr, selStart, selEnd, wholeLine, extendsPastEnd, primary, secondaries, lineIdx, rect.Left+gutterW+1, screenRow, textWidth)
	}
	return len(rows)
}

func (r *Renderer) paintGutter(lineIdx int, isFirstRow bool, gutterW, left, row int, l *line.EditorLine) {
	style := core.NewStyle(r.theme.GutterText).WithBackground(r.theme.Gutter)
	if sev := l.AggregateSeverity(); sev != line.SeverityNone {
		style = style.WithForeground(r.theme.UnderlineColorForSeverity(sev))
	}
	var text string
	if isFirstRow {
		text = padLeft(strconv.Itoa(lineIdx+1), gutterW-1)
	} else {
		text = padLeft("", gutterW-1)
	}
	for i, ch := range text {
		r.backend.SetCell(left+i, row, core.NewStyledCell(ch, style))
	}
	r.backend.SetCell(left+gutterW-1, row, core.NewStyledCell(' ', style))
}

func (r *Renderer) paintRow(l *line.EditorLine, text []rune, wr wrapRow, selStart, selEnd int, wholeLine, extendsPastEnd bool, primary cursor.Cursor, secondaries []line.Position, lineIdx int, left, row, textWidth int) {
	tokens := l.Tokens()
	tokenIdx := 0
	col := 0
	baseStyle := core.NewStyle(r.theme.Foreground).WithBackground(r.theme.Background)

	inSelection := func(charIdx int) bool {
		if wholeLine {
			return true
		}
		return charIdx >= selStart && charIdx < selEnd
	}

	for i := wr.startChar; i < wr.endChar; i++ {
		ch := text[i]
		for tokenIdx < len(tokens) && tokens[tokenIdx].EndChar() <= i {
			tokenIdx++
		}
		style := baseStyle
		if tokenIdx < len(tokens) && tokens[tokenIdx].Overlaps(i) {
			tok := tokens[tokenIdx]
			style = r.theme.StyleForToken(tok.Type).WithBackground(r.theme.Background)
			if tok.Diagnostic != line.SeverityNone {
				style = style.Underline().WithForeground(r.theme.UnderlineColorForSeverity(tok.Diagnostic))
			}
		}
		if inSelection(i) {
			style = style.WithBackground(r.theme.Selection)
		}
		if primary.Line == lineIdx && primary.Char == i {
			style = style.Reverse()
		} else if isSecondaryCursor(secondaries, lineIdx, i) {
			style = style.Underline().WithForeground(r.theme.SecondaryCursor)
		}

		w := core.RuneWidth(ch)
		r.backend.SetCell(left+col, row, core.NewStyledCell(ch, style))
		for k := 1; k < w; k++ {
			r.backend.SetCell(left+col+k, row, core.ContinuationCell())
		}
		col += w
	}

	if primary.Line == lineIdx && primary.Char == wr.endChar && wr.endChar == len(text) {
		r.backend.SetCell(left+col, row, core.NewStyledCell(' ', baseStyle.Reverse()))
	} else if isSecondaryCursor(secondaries, lineIdx, wr.endChar) && wr.endChar == len(text) {
		r.backend.SetCell(left+col, row, core.NewStyledCell(' ', baseStyle.Underline().WithForeground(r.theme.SecondaryCursor)))
	}

	if wr.truncated {
		marker := wrapMarkerRight
		if primary.Line == lineIdx && primary.Char < wr.endChar {
			marker = wrapMarkerLeft
		}
		r.backend.SetCell(left+textWidth-1, row, core.NewStyledCell(marker, baseStyle))
	} else if extendsPastEnd && wr.endChar == len(text) {
		r.backend.SetCell(left+col, row, core.NewStyledCell('~', core.NewStyle(r.theme.Foreground).WithBackground(r.theme.Selection)))
	}
}

// isSecondaryCursor reports whether one of the non-primary cursors sits at
// (lineIdx, charIdx); painted with an underline marker distinct from the
// primary cursor's reversed-video block.
func isSecondaryCursor(secondaries []line.Position, lineIdx, charIdx int) bool {
	for _, p := range secondaries {
		if p.Line == lineIdx && p.Char == charIdx {
			return true
		}
	}
	return false
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}
	return s
}
