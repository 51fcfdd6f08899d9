package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

func TestNewDocumentIsSingleEmptyLine(t *testing.T) {
	d := New()
	if d.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", d.LineCount())
	}
	if d.LineText(0) != "" {
		t.Errorf("expected empty line, got %q", d.LineText(0))
	}
}

func TestNewFromStringSplitsLines(t *testing.T) {
	d := NewFromString("foo\nbar\nbaz")
	if d.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", d.LineCount())
	}
	if d.LineText(1) != "bar" {
		t.Errorf("expected %q, got %q", "bar", d.LineText(1))
	}
}

func TestDetectsCRLF(t *testing.T) {
	d := NewFromString("foo\r\nbar")
	if d.ending != CRLF {
		t.Errorf("expected CRLF detected, got %v", d.ending)
	}
	if d.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", d.LineCount())
	}
}

func TestSaveThenReloadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	d := NewFromString("line one\nline two\nline three")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening: %v", err)
	}
	if reloaded.LineCount() != d.LineCount() {
		t.Fatalf("expected %d lines, got %d", d.LineCount(), reloaded.LineCount())
	}
	for i := 0; i < d.LineCount(); i++ {
		if reloaded.LineText(i) != d.LineText(i) {
			t.Errorf("line %d: expected %q, got %q", i, d.LineText(i), reloaded.LineText(i))
		}
	}
}

func TestOpenRejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_, err := Open(path)
	if !errors.Is(err, ErrEncodingInvalid) {
		t.Errorf("expected ErrEncodingInvalid, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected a line-accurate position in %v", err)
	}
}

func TestOpenRejectsBigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := Open(path, WithBigFileThreshold(10)); err != ErrFileTooLarge {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestApplyActionBumpsRevisionAndRecordsHistory(t *testing.T) {
	d := NewFromString("hello")
	before := d.Revision()

	a := &edit.SingleLineAction{Pos: line.NewPosition(0, 5), Inserted: " world"}
	if _, _, err := d.ApplyAction(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Revision() == before {
		t.Error("expected revision to change after apply")
	}
	if !d.History().CanUndo() {
		t.Error("expected undo available after apply")
	}
	if d.LineText(0) != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", d.LineText(0))
	}
}

func TestUndoRestoresOriginalContent(t *testing.T) {
	d := NewFromString("hello")
	a := &edit.SingleLineAction{Pos: line.NewPosition(0, 5), Inserted: " world"}
	d.ApplyAction(a)

	if _, _, err := d.Undo(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.LineText(0) != "hello" {
		t.Errorf("expected undo to restore %q, got %q", "hello", d.LineText(0))
	}
}
