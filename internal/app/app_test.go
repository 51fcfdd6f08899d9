package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halvorsen/ligature/internal/renderer/backend"
)

func newScratchApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewOpensScratchBuffer(t *testing.T) {
	a := newScratchApp(t)
	if a.doc.LineCount() != 1 {
		t.Fatalf("expected a single empty line, got %d", a.doc.LineCount())
	}
}

func TestNewOpensExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(Options{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.doc.LineText(0) != "package main" {
		t.Fatalf("unexpected content: %q", a.doc.LineText(0))
	}
}

func TestSetBackendThenRunQuitsOnEscape(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}

	b.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyEscape})
	if err := a.Run(); err != ErrQuit {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
}

func TestRunWithoutBackendFails(t *testing.T) {
	a := newScratchApp(t)
	if err := a.Run(); err != ErrNoBackend {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}

func TestHandleKeyInsertsRuneAndMovesCursor(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatal(err)
	}

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'x'})
	if a.doc.LineText(0) != "x" {
		t.Fatalf("expected inserted rune, got %q", a.doc.LineText(0))
	}
	if primary := a.editor.Cursors.Primary(); primary.Char != 1 {
		t.Fatalf("expected cursor to advance past inserted rune, got char %d", primary.Char)
	}
}

func TestReadOnlySuppressesMutatingKeys(t *testing.T) {
	a, err := New(Options{ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'x'})
	if a.doc.LineText(0) != "" {
		t.Fatalf("expected read-only mode to suppress insertion, got %q", a.doc.LineText(0))
	}
}

func TestUndoRedoViaCtrlKeys(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatal(err)
	}

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'x'})
	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlZ})
	if a.doc.LineText(0) != "" {
		t.Fatalf("expected undo to remove the inserted rune, got %q", a.doc.LineText(0))
	}

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlY})
	if a.doc.LineText(0) != "x" {
		t.Fatalf("expected redo to reinsert the rune, got %q", a.doc.LineText(0))
	}
}

func TestCutCopyPasteRoundTrip(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatal(err)
	}

	for _, r := range "hello" {
		a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r})
	}
	a.editor.Cursors.SetPrimary(a.editor.Cursors.Primary().MoveTo(0, 0, false))
	a.editor.Cursors.SetPrimary(a.editor.Cursors.Primary().MoveTo(0, 5, true))

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlX})
	if a.doc.LineText(0) != "" {
		t.Fatalf("expected cut to remove the selection, got %q", a.doc.LineText(0))
	}
	if text, ok := a.clipboard.Pull(); !ok || text != "hello" {
		t.Fatalf("expected clipboard to hold %q, got %q, %v", "hello", text, ok)
	}

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlV})
	if a.doc.LineText(0) != "hello" {
		t.Fatalf("expected paste to restore the text, got %q", a.doc.LineText(0))
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatal(err)
	}
	a.Shutdown()
	a.Shutdown()
}

func TestUndoFlushesCoalescedRunAsOneStep(t *testing.T) {
	a := newScratchApp(t)
	b := backend.NewNullBackend(40, 10)
	if err := a.SetBackend(b); err != nil {
		t.Fatal(err)
	}

	// Word characters coalesce in the ActionBuffer without reaching the
	// undo stack on their own; Ctrl+Z must flush them first so the whole
	// run undoes as one step.
	for _, r := range "hi" {
		a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r})
	}
	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlZ})
	if a.doc.LineText(0) != "" {
		t.Fatalf("expected one undo to remove the coalesced run, got %q", a.doc.LineText(0))
	}

	a.handleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlY})
	if a.doc.LineText(0) != "hi" {
		t.Fatalf("expected redo to restore the run, got %q", a.doc.LineText(0))
	}
}
