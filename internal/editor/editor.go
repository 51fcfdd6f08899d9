package editor

import (
	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/document"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// Editor ties a Document to its cursor set and the per-file-type
// settings (indent unit, comment prefix) the high-level operations need.
type Editor struct {
	Doc     *document.Document
	Cursors *cursor.CursorSet

	IndentUnit    string
	CommentPrefix string

	// pendingAutoClose records positions where a bracket auto-close was
	// just inserted, so a matching closer keystroke at that exact spot
	// consumes it instead of inserting a duplicate.
	pendingAutoClose map[line.Position]rune
}

// Option configures an Editor at construction.
type Option func(*Editor)

// WithIndentUnit sets the indent string used by indent/unindent/new_line
// (default: four spaces).
func WithIndentUnit(unit string) Option {
	return func(e *Editor) { e.IndentUnit = unit }
}

// WithCommentPrefix sets the line-comment prefix used by CommentOut
// (default: "// ").
func WithCommentPrefix(prefix string) Option {
	return func(e *Editor) { e.CommentPrefix = prefix }
}

// New creates an Editor over doc with a single primary cursor at (0,0).
func New(doc *document.Document, opts ...Option) *Editor {
	e := &Editor{
		Doc:              doc,
		Cursors:          cursor.NewCursorSet(cursor.New(0, 0)),
		IndentUnit:       "    ",
		CommentPrefix:    "// ",
		pendingAutoClose: make(map[line.Position]rune),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FlushActionBuffer converts any in-progress coalescing record into
// history entries. Every non-coalescable operation must call this before
// doing its own work, per the ActionBuffer state machine rules.
func (e *Editor) FlushActionBuffer() {
	if a := e.Doc.ActionBuffer().Flush(); a != nil {
		e.Doc.History().Push(a)
	}
}

var bracketPairs = map[rune]rune{
	'{': '}',
	'(': ')',
	'[': ']',
}

var closers = map[rune]bool{'}': true, ')': true, ']': true}

func isOpener(r rune) bool {
	_, ok := bracketPairs[r]
	return ok
}
