package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// SwapAction reorders two lines (used by move-line-up/move-line-down
// commands) and adjusts the moved line's indent by IndentDelta spaces
// (positive to add, negative to remove) to account for the new nesting
// context.
type SwapAction struct {
	LineA, LineB int
	IndentDelta  int
}

func swapLines(c Content, a, b, delta int) (line.Position, error) {
	la, lb := c.Line(a), c.Line(b)
	if la == nil || lb == nil {
		return line.Position{}, ErrInvalidLineIndex
	}
	ta, tb := la.Text(), lb.Text()
	c.ReplaceLine(a, line.New(tb))
	c.ReplaceLine(b, line.New(ta))
	adjustIndent(c, b, delta)
	return line.NewPosition(b, indentOf(c.Line(b).Text())), nil
}

func adjustIndent(c Content, idx, delta int) {
	l := c.Line(idx)
	if l == nil || delta == 0 {
		return
	}
	if delta > 0 {
		l.Insert(0, spaces(delta))
		return
	}
	n := -delta
	indent := indentOf(l.Text())
	if n > indent {
		n = indent
	}
	l.Remove(0, n)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

// Apply implements EditAction.
func (a *SwapAction) Apply(c Content) (line.Position, *line.Selection, error) {
	pos, err := swapLines(c, a.LineA, a.LineB, a.IndentDelta)
	return pos, nil, err
}

// ApplyReverse implements EditAction.
func (a *SwapAction) ApplyReverse(c Content) (line.Position, *line.Selection, error) {
	pos, err := swapLines(c, a.LineB, a.LineA, -a.IndentDelta)
	return pos, nil, err
}

// Meta implements EditAction.
func (a *SwapAction) Meta() Meta {
	lo, hi := a.LineA, a.LineB
	if hi < lo {
		lo, hi = hi, lo
	}
	count := hi - lo + 1
	return Meta{StartLine: lo, FromLineCount: count, ToLineCount: count}
}

// ChangeEvents implements EditAction.
func (a *SwapAction) ChangeEvents(enc Encoding, preImage Content) []ChangeEvent {
	lo, hi := a.LineA, a.LineB
	if hi < lo {
		lo, hi = hi, lo
	}
	start := line.NewPosition(lo, 0)
	endLineText := ""
	if l := preImage.Line(hi); l != nil {
		endLineText = l.Text()
	}
	end := line.NewPosition(hi, len([]rune(endLineText)))

	text := ""
	for i := lo; i <= hi; i++ {
		if i > lo {
			text += "\n"
		}
		var cur string
		switch i {
		case a.LineA:
			if l := preImage.Line(a.LineB); l != nil {
				cur = l.Text()
			}
		case a.LineB:
			if l := preImage.Line(a.LineA); l != nil {
				cur = l.Text()
			}
			cur = applyIndentDeltaToText(cur, a.IndentDelta)
		default:
			if l := preImage.Line(i); l != nil {
				cur = l.Text()
			}
		}
		text += cur
	}
	return []ChangeEvent{{
		Start: encodePos(enc, preImage, start),
		End:   encodePos(enc, preImage, end),
		Text:  text,
	}}
}

func applyIndentDeltaToText(s string, delta int) string {
	if delta > 0 {
		return spaces(delta) + s
	}
	if delta < 0 {
		n := -delta
		indent := indentOf(s)
		if n > indent {
			n = indent
		}
		return s[n:]
	}
	return s
}
