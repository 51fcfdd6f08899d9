package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// SingleLineAction replaces Removed characters with Inserted, entirely
// within one line, starting at Pos.
type SingleLineAction struct {
	Pos      line.Position
	Inserted string
	Removed  string
}

func (a *SingleLineAction) apply(c Content, inserted, removed string) (line.Position, *line.Selection, error) {
	l := c.Line(a.Pos.Line)
	if l == nil {
		return a.Pos, nil, ErrInvalidLineIndex
	}
	removedLen := len([]rune(removed))
	err := l.ReplaceRange(a.Pos.Char, a.Pos.Char+removedLen, inserted)
	newChar := a.Pos.Char + len([]rune(inserted))
	return line.NewPosition(a.Pos.Line, newChar), nil, err
}

// Apply implements EditAction.
func (a *SingleLineAction) Apply(c Content) (line.Position, *line.Selection, error) {
	return a.apply(c, a.Inserted, a.Removed)
}

// ApplyReverse implements EditAction: inserted and removed swap roles.
func (a *SingleLineAction) ApplyReverse(c Content) (line.Position, *line.Selection, error) {
	return a.apply(c, a.Removed, a.Inserted)
}

// Meta implements EditAction.
func (a *SingleLineAction) Meta() Meta {
	return Meta{StartLine: a.Pos.Line, FromLineCount: 1, ToLineCount: 1}
}

// ChangeEvents implements EditAction.
func (a *SingleLineAction) ChangeEvents(enc Encoding, preImage Content) []ChangeEvent {
	start := line.NewPosition(a.Pos.Line, a.Pos.Char)
	end := line.NewPosition(a.Pos.Line, a.Pos.Char+len([]rune(a.Removed)))
	return []ChangeEvent{{
		Start: encodePos(enc, preImage, start),
		End:   encodePos(enc, preImage, end),
		Text:  a.Inserted,
	}}
}
