package edit

import (
	"unicode"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// Kind is the ActionBuffer's coalescing state.
type Kind int

// The four ActionBuffer states. Any operation of a different class, any
// cursor movement, any selection operation, or any LSP-affecting action
// forces a transition back through Empty (a flush).
const (
	KindEmpty Kind = iota
	KindInsert
	KindBackspace
	KindDelete
)

// ActionBuffer holds at most one in-progress coalescing record, converting
// it to a SingleLineAction on flush. It buffers at most one run at a time;
// Record* methods return every EditAction that had to be flushed to make
// room for (or because of) the new keystroke — usually zero or one, but
// two when a non-coalescable character (punctuation) both flushes the
// prior run and then immediately flushes itself.
type ActionBuffer struct {
	kind Kind
	line int
	char int
	text []rune
}

// NewActionBuffer creates an empty coalescing buffer.
func NewActionBuffer() *ActionBuffer {
	return &ActionBuffer{}
}

// Kind reports the buffer's current coalescing state.
func (b *ActionBuffer) Kind() Kind {
	return b.kind
}

// IsEmpty reports whether the buffer holds no in-progress record.
func (b *ActionBuffer) IsEmpty() bool {
	return b.kind == KindEmpty
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func (b *ActionBuffer) reset() {
	b.kind = KindEmpty
	b.text = nil
}

// Flush converts any in-progress record into an EditAction and resets the
// buffer to Empty. Returns nil if the buffer was already empty. Every
// non-Insert/Backspace/Delete operation (cursor movement, selection
// change, LSP-affecting action) must call this.
func (b *ActionBuffer) Flush() EditAction {
	if b.kind == KindEmpty {
		return nil
	}
	var action EditAction
	switch b.kind {
	case KindInsert:
		action = &SingleLineAction{Pos: line.NewPosition(b.line, b.char), Inserted: string(b.text)}
	case KindBackspace, KindDelete:
		action = &SingleLineAction{Pos: line.NewPosition(b.line, b.char), Removed: string(b.text)}
	}
	b.reset()
	return action
}

// RecordInsert records a single inserted character (or short string, for
// auto-closed bracket pairs) at pos. Consecutive word-character insertions
// at the advancing caret on the same line coalesce; anything else
// (punctuation, a different line, a caret jump) flushes first.
// Punctuation never stays open for further coalescing — it flushes
// immediately after being recorded, which is why this can return up to
// two actions: the previously open run, then this one-off edit.
func (b *ActionBuffer) RecordInsert(pos line.Position, ch string) []EditAction {
	var flushed []EditAction
	runes := []rune(ch)
	wordChar := len(runes) == 1 && isWordChar(runes[0])

	matches := wordChar && b.kind == KindInsert && pos.Line == b.line && pos.Char == b.char+len(b.text)
	if !matches {
		if f := b.Flush(); f != nil {
			flushed = append(flushed, f)
		}
		b.kind = KindInsert
		b.line = pos.Line
		b.char = pos.Char
	}
	b.text = append(b.text, runes...)

	if !wordChar {
		if f := b.Flush(); f != nil {
			flushed = append(flushed, f)
		}
	}
	return flushed
}

// RecordBackspace records a single backspace removing the text
// immediately to the left of atCaret. Consecutive backspaces at the
// retreating caret on the same line coalesce into one buffer, storing
// removed text in left-to-right reading order.
func (b *ActionBuffer) RecordBackspace(atCaret line.Position, removed string) []EditAction {
	var flushed []EditAction
	matches := b.kind == KindBackspace && atCaret.Line == b.line && atCaret.Char == b.char
	if !matches {
		if f := b.Flush(); f != nil {
			flushed = append(flushed, f)
		}
		b.kind = KindBackspace
		b.line = atCaret.Line
		b.char = atCaret.Char
	}
	b.text = append([]rune(removed), b.text...)
	b.char = atCaret.Char - len([]rune(removed))
	return flushed
}

// RecordDelete records a single forward-delete removing text starting at
// the fixed caret. Consecutive deletes at the same caret coalesce.
func (b *ActionBuffer) RecordDelete(atCaret line.Position, removed string) []EditAction {
	var flushed []EditAction
	matches := b.kind == KindDelete && atCaret.Line == b.line && atCaret.Char == b.char
	if !matches {
		if f := b.Flush(); f != nil {
			flushed = append(flushed, f)
		}
		b.kind = KindDelete
		b.line = atCaret.Line
		b.char = atCaret.Char
	}
	b.text = append(b.text, []rune(removed)...)
	return flushed
}
