package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// MultiLineAction replaces the RemovedLines lines starting at Pos.Line
// (the first line's suffix from Pos.Char onward, plus every following
// replaced line in full) with InsertedLines.
type MultiLineAction struct {
	Pos           line.Position
	InsertedLines []string
	RemovedLines  []string
}

func splitLines(content Content, pos line.Position, removedLines []string) {
	startLine := content.Line(pos.Line)
	if startLine == nil {
		return
	}
	// Remove the suffix of the start line plus every following replaced
	// line, leaving only the prefix of the start line.
	startLine.Remove(pos.Char, startLine.CharCount())
	for i := 1; i < len(removedLines); i++ {
		content.RemoveLine(pos.Line + 1)
	}
}

func insertLines(content Content, pos line.Position, prefix string, insertedLines []string) (line.Position, error) {
	if len(insertedLines) == 0 {
		return pos, nil
	}
	startLine := content.Line(pos.Line)
	if startLine == nil {
		return pos, ErrInvalidLineIndex
	}
	startLine.Push(insertedLines[0])
	lastChar := len([]rune(insertedLines[len(insertedLines)-1]))
	if len(insertedLines) == 1 {
		lastChar += pos.Char
	}
	for i := 1; i < len(insertedLines); i++ {
		content.InsertLine(pos.Line+i, line.New(insertedLines[i]))
	}
	_ = prefix
	return line.NewPosition(pos.Line+len(insertedLines)-1, lastChar), nil
}

// Apply implements EditAction.
func (a *MultiLineAction) Apply(c Content) (line.Position, *line.Selection, error) {
	splitLines(c, a.Pos, a.RemovedLines)
	pos, err := insertLines(c, a.Pos, "", a.InsertedLines)
	return pos, nil, err
}

// ApplyReverse implements EditAction.
func (a *MultiLineAction) ApplyReverse(c Content) (line.Position, *line.Selection, error) {
	splitLines(c, a.Pos, a.InsertedLines)
	pos, err := insertLines(c, a.Pos, "", a.RemovedLines)
	return pos, nil, err
}

// Meta implements EditAction.
func (a *MultiLineAction) Meta() Meta {
	return Meta{
		StartLine:     a.Pos.Line,
		FromLineCount: len(a.RemovedLines),
		ToLineCount:   len(a.InsertedLines),
	}
}

// ChangeEvents implements EditAction: a single range spanning the
// pre-image extent of the replaced lines.
func (a *MultiLineAction) ChangeEvents(enc Encoding, preImage Content) []ChangeEvent {
	start := line.NewPosition(a.Pos.Line, a.Pos.Char)
	endLine := a.Pos.Line + len(a.RemovedLines) - 1
	endChar := 0
	if len(a.RemovedLines) > 0 {
		last := a.RemovedLines[len(a.RemovedLines)-1]
		if len(a.RemovedLines) == 1 {
			endChar = a.Pos.Char + len([]rune(last))
		} else {
			endChar = len([]rune(last))
		}
	} else {
		endLine = a.Pos.Line
		endChar = a.Pos.Char
	}
	end := line.NewPosition(endLine, endChar)
	text := ""
	for i, s := range a.InsertedLines {
		if i > 0 {
			text += "\n"
		}
		text += s
	}
	return []ChangeEvent{{
		Start: encodePos(enc, preImage, start),
		End:   encodePos(enc, preImage, end),
		Text:  text,
	}}
}
