package cursor

import (
	"unicode"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// wrapRows returns how many visual rows charCount characters occupy when
// wrapped at textWidth columns (at least 1). This is navigation's
// approximation of the renderer's wrap computation: it reasons purely in
// char counts, while the renderer additionally accounts for display
// width of wide/combining runes.
func wrapRows(charCount, textWidth int) int {
	if textWidth <= 0 {
		return 1
	}
	if charCount == 0 {
		return 1
	}
	rows := (charCount + textWidth - 1) / textWidth
	if rows < 1 {
		rows = 1
	}
	return rows
}

func lineCharCount(src Source, lineIdx int) int {
	return len([]rune(src.LineText(lineIdx)))
}

// Up moves the cursor up by one visual row. When the current line wraps
// (its char count exceeds TextWidth), Up first steps within the wrapped
// rows of that same logical line before crossing to the previous line.
func (c Cursor) Up(src Source, selecting bool) Cursor {
	tw := c.TextWidth
	if tw > 0 {
		row := c.Char / tw
		if row > 0 {
			target := (row-1)*tw + min(c.PhantomChar-(row-1)*tw, tw-1)
			if target < (row-1)*tw {
				target = (row - 1) * tw
			}
			return c.moveKeepPhantom(src, c.Line, target, selecting)
		}
	}
	if c.Line == 0 {
		return c.moveKeepPhantom(src, 0, 0, selecting)
	}
	prevLine := c.Line - 1
	prevCount := lineCharCount(src, prevLine)
	target := c.PhantomChar
	if tw > 0 {
		lastRow := wrapRows(prevCount, tw) - 1
		rowStart := lastRow * tw
		if target < rowStart {
			target = rowStart
		}
	}
	if target > prevCount {
		target = prevCount
	}
	return c.moveKeepPhantom(src, prevLine, target, selecting)
}

// Down moves the cursor down by one visual row, mirroring Up.
func (c Cursor) Down(src Source, selecting bool) Cursor {
	tw := c.TextWidth
	count := lineCharCount(src, c.Line)
	if tw > 0 {
		row := c.Char / tw
		rows := wrapRows(count, tw)
		if row < rows-1 {
			target := (row+1)*tw + min(c.PhantomChar-(row)*tw, tw-1)
			if target > count {
				target = count
			}
			return c.moveKeepPhantom(src, c.Line, target, selecting)
		}
	}
	lastLine := src.LineCount() - 1
	if c.Line >= lastLine {
		return c.moveKeepPhantom(src, c.Line, count, selecting)
	}
	nextLine := c.Line + 1
	nextCount := lineCharCount(src, nextLine)
	target := c.PhantomChar
	if target > nextCount {
		target = nextCount
	}
	return c.moveKeepPhantom(src, nextLine, target, selecting)
}

// moveKeepPhantom moves to (lineIdx, charIdx) without resetting
// PhantomChar to the landed column, the way Left/Right/MoveTo do — so a
// run of Up/Down presses tracks the originally intended column through
// shorter lines.
func (c Cursor) moveKeepPhantom(src Source, lineIdx, charIdx int, selecting bool) Cursor {
	phantom := c.PhantomChar
	c = c.MoveTo(lineIdx, charIdx, selecting)
	c.PhantomChar = phantom
	return c
}

// Left moves one character left, crossing to the end of the previous
// line at the start of the current one.
func (c Cursor) Left(src Source, selecting bool) Cursor {
	if c.Char > 0 {
		return c.MoveTo(c.Line, c.Char-1, selecting)
	}
	if c.Line == 0 {
		return c.MoveTo(0, 0, selecting)
	}
	prevLine := c.Line - 1
	return c.MoveTo(prevLine, lineCharCount(src, prevLine), selecting)
}

// Right moves one character right, crossing to the start of the next
// line at the end of the current one.
func (c Cursor) Right(src Source, selecting bool) Cursor {
	count := lineCharCount(src, c.Line)
	if c.Char < count {
		return c.MoveTo(c.Line, c.Char+1, selecting)
	}
	lastLine := src.LineCount() - 1
	if c.Line >= lastLine {
		return c.MoveTo(c.Line, count, selecting)
	}
	return c.MoveTo(c.Line+1, 0, selecting)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// JumpLeft skips the contiguous alphabetic run to the left of the caret,
// stopping at the final non-alphabetic boundary.
func (c Cursor) JumpLeft(src Source, selecting bool) Cursor {
	runes := []rune(src.LineText(c.Line))
	i := c.Char
	for i > 0 && (i > len(runes) || !isWordRune(runes[i-1])) {
		i--
		if i == 0 {
			break
		}
	}
	for i > 0 && isWordRune(runes[i-1]) {
		i--
	}
	if i == c.Char && c.Char == 0 {
		return c.Left(src, selecting)
	}
	return c.MoveTo(c.Line, i, selecting)
}

// JumpRight skips the contiguous alphabetic run to the right of the
// caret, stopping at the final non-alphabetic boundary.
func (c Cursor) JumpRight(src Source, selecting bool) Cursor {
	runes := []rune(src.LineText(c.Line))
	i := c.Char
	for i < len(runes) && !isWordRune(runes[i]) {
		i++
	}
	for i < len(runes) && isWordRune(runes[i]) {
		i++
	}
	if i == c.Char && c.Char == len(runes) {
		return c.Right(src, selecting)
	}
	return c.MoveTo(c.Line, i, selecting)
}

// StartOfLine moves to the first non-whitespace character (or char 0 if
// the line is all whitespace).
func (c Cursor) StartOfLine(src Source, selecting bool) Cursor {
	runes := []rune(src.LineText(c.Line))
	i := 0
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
		i++
	}
	if i == len(runes) {
		i = 0
	}
	if i == c.Char && c.Char != 0 {
		// Already at first non-blank: a second press goes to column 0,
		// matching common editor behavior.
		i = 0
	}
	return c.MoveTo(c.Line, i, selecting)
}

// EndOfLine moves to char_count.
func (c Cursor) EndOfLine(src Source, selecting bool) Cursor {
	return c.MoveTo(c.Line, lineCharCount(src, c.Line), selecting)
}

// ScreenUp moves up by MaxRows lines and scrolls the viewport (AtLine)
// by the same amount.
func (c Cursor) ScreenUp(src Source, selecting bool) Cursor {
	rows := c.MaxRows
	if rows <= 0 {
		rows = 1
	}
	target := c.Line - rows
	if target < 0 {
		target = 0
	}
	newAt := c.AtLine - rows
	if newAt < 0 {
		newAt = 0
	}
	nc := c.moveKeepPhantom(src, target, min(c.PhantomChar, lineCharCount(src, target)), selecting)
	nc.AtLine = newAt
	return nc
}

// ScreenDown moves down by MaxRows lines and scrolls the viewport
// forward by the same amount.
func (c Cursor) ScreenDown(src Source, selecting bool) Cursor {
	rows := c.MaxRows
	if rows <= 0 {
		rows = 1
	}
	lastLine := src.LineCount() - 1
	target := c.Line + rows
	if target > lastLine {
		target = lastLine
	}
	nc := c.moveKeepPhantom(src, target, min(c.PhantomChar, lineCharCount(src, target)), selecting)
	nc.AtLine = c.AtLine + rows
	return nc
}

// SelectWord extends the selection to cover the maximal word containing
// the caret, using the word-char rule (alphanumeric + underscore).
func (c Cursor) SelectWord(src Source) Cursor {
	runes := []rune(src.LineText(c.Line))
	start, end := c.Char, c.Char
	for start > 0 && start-1 < len(runes) && isWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	nc := c.WithAnchor(line.NewPosition(c.Line, start))
	nc.Line = c.Line
	nc.Char = end
	nc.PhantomChar = end
	return nc
}
