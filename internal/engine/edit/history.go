package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// History holds the two bounded stacks (done, undone) of EditActions that
// drive undo/redo. The edit log is the single source of truth: nothing
// about buffer state is stored here beyond the actions themselves.
type History struct {
	undo       []EditAction
	redo       []EditAction
	maxEntries int
}

// DefaultMaxEntries bounds how many undo steps are retained before the
// oldest is evicted.
const DefaultMaxEntries = 1000

// NewHistory creates a History with the given entry cap. A cap of 0 uses
// DefaultMaxEntries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records a newly-applied action, clearing the redo stack (a fresh
// edit invalidates any previously-undone future).
func (h *History) Push(a EditAction) {
	if a == nil {
		return
	}
	h.undo = append(h.undo, a)
	if len(h.undo) > h.maxEntries {
		h.undo = h.undo[len(h.undo)-h.maxEntries:]
	}
	h.redo = nil
}

// CanUndo reports whether there is an action to undo.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether there is an action to redo.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Undo pops the most recent action, applies its reverse against c, and
// moves it onto the redo stack.
func (h *History) Undo(c Content) (line.Position, *line.Selection, error) {
	if len(h.undo) == 0 {
		return line.Position{}, nil, ErrNothingToUndo
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	pos, sel, err := a.ApplyReverse(c)
	h.redo = append(h.redo, a)
	return pos, sel, err
}

// Redo pops the most recently undone action, re-applies it against c, and
// moves it back onto the undo stack.
func (h *History) Redo(c Content) (line.Position, *line.Selection, error) {
	if len(h.redo) == 0 {
		return line.Position{}, nil, ErrNothingToRedo
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	pos, sel, err := a.Apply(c)
	h.undo = append(h.undo, a)
	return pos, sel, err
}

// Clear discards all recorded history.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// UndoLen returns the number of actions available to undo.
func (h *History) UndoLen() int {
	return len(h.undo)
}

// RedoLen returns the number of actions available to redo.
func (h *History) RedoLen() int {
	return len(h.redo)
}
