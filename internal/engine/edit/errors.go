package edit

import "errors"

// Sentinel errors for the edit log and undo/redo stacks.
var (
	ErrInvalidLineIndex = errors.New("invalid line index")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
)
