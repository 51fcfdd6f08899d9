package line

import "errors"

// Sentinel errors returned by EditorLine operations.
var (
	// ErrInvalidCharIndex indicates a char index outside [0, char_count].
	ErrInvalidCharIndex = errors.New("invalid char index")

	// ErrInvalidRange indicates a (start, end) char range with end < start
	// or end beyond the line's char count.
	ErrInvalidRange = errors.New("invalid char range")
)

// StrictMode controls how out-of-range char indices are handled.
//
// When true, InvalidCharIndex/InvalidRange violations panic immediately —
// intended for debug and test builds where an out-of-range index is a
// programming error that should surface at its source. When false (the
// default), operations clamp the index into range and return an error
// instead of panicking, so a release build degrades gracefully rather
// than crashing the editor over a single bad index.
var StrictMode = false

func fail(err error) error {
	if StrictMode {
		panic(err)
	}
	return err
}
