package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// CompositeAction is an ordered sequence of EditActions applied
// atomically — the edit log's substitute for inheritance-based batching.
type CompositeAction struct {
	Children []EditAction
}

// Apply implements EditAction: children run in order, forward.
func (a *CompositeAction) Apply(c Content) (line.Position, *line.Selection, error) {
	var pos line.Position
	var sel *line.Selection
	for _, child := range a.Children {
		p, s, err := child.Apply(c)
		if err != nil {
			return p, s, err
		}
		pos, sel = p, s
	}
	return pos, sel, nil
}

// ApplyReverse implements EditAction: children undo in reverse order.
func (a *CompositeAction) ApplyReverse(c Content) (line.Position, *line.Selection, error) {
	var pos line.Position
	var sel *line.Selection
	for i := len(a.Children) - 1; i >= 0; i-- {
		p, s, err := a.Children[i].ApplyReverse(c)
		if err != nil {
			return p, s, err
		}
		pos, sel = p, s
	}
	return pos, sel, nil
}

// Meta implements EditAction by composing every child's meta in order.
func (a *CompositeAction) Meta() Meta {
	if len(a.Children) == 0 {
		return Meta{}
	}
	m := a.Children[0].Meta()
	for _, child := range a.Children[1:] {
		m = ComposeMeta(m, child.Meta())
	}
	return m
}

// ChangeEvents implements EditAction by concatenating every child's
// events. preImage is only exact for the first child; later children
// technically need the content as it stood after earlier children ran,
// which callers that need perfect fidelity should compute by applying
// each child's events against an incrementally-mutated shadow.
func (a *CompositeAction) ChangeEvents(enc Encoding, preImage Content) []ChangeEvent {
	var events []ChangeEvent
	for _, child := range a.Children {
		events = append(events, child.ChangeEvents(enc, preImage)...)
	}
	return events
}
