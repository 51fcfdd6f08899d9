package lsp

import (
	"strings"
	"testing"

	"github.com/halvorsen/ligature/internal/highlight"
)

func TestShadowDocumentReplaceAllResetsLines(t *testing.T) {
	doc := NewShadowDocument("file:///a.go", "package main\n\nfunc main() {}\n")
	if doc.LineCount() != 4 {
		t.Fatalf("expected 4 lines, got %d", doc.LineCount())
	}

	doc.ReplaceAll(2, "one\ntwo")
	if doc.Version != 2 {
		t.Fatalf("expected version 2, got %d", doc.Version)
	}
	if doc.LineCount() != 2 || doc.Line(0) != "one" || doc.Line(1) != "two" {
		t.Fatalf("unexpected lines after ReplaceAll: %#v", doc.lines)
	}
}

func TestShadowDocumentApplyChangeIncremental(t *testing.T) {
	doc := NewShadowDocument("file:///a.go", "hello world")

	change := TextDocumentContentChangeEvent{
		Range: &Range{
			Start: Position{Line: 0, Character: 6},
			End:   Position{Line: 0, Character: 11},
		},
		Text: "there",
	}
	first, last := doc.ApplyChange(2, change)
	if first != 0 || last != 0 {
		t.Fatalf("expected dirty range (0,0), got (%d,%d)", first, last)
	}
	if doc.Text() != "hello there" {
		t.Fatalf("expected %q, got %q", "hello there", doc.Text())
	}
}

func TestShadowDocumentApplyChangeSpansLines(t *testing.T) {
	doc := NewShadowDocument("file:///a.go", "abc\ndef\nghi")

	change := TextDocumentContentChangeEvent{
		Range: &Range{
			Start: Position{Line: 0, Character: 1},
			End:   Position{Line: 2, Character: 1},
		},
		Text: "XY",
	}
	doc.ApplyChange(2, change)
	if doc.Text() != "aXYhi" {
		t.Fatalf("expected %q, got %q", "aXYhi", doc.Text())
	}
}

func TestShadowDocumentApplyChangeFullReplacement(t *testing.T) {
	doc := NewShadowDocument("file:///a.go", "old content")
	first, last := doc.ApplyChange(3, TextDocumentContentChangeEvent{Text: "brand new\ntext"})
	if first != 0 || last != 1 {
		t.Fatalf("expected full dirty range, got (%d,%d)", first, last)
	}
	if doc.Text() != "brand new\ntext" {
		t.Fatalf("unexpected text: %q", doc.Text())
	}
}

func TestShadowDocumentRetokenizeTracksIdentifiers(t *testing.T) {
	doc := NewShadowDocument("file:///a.go", "func main() {\n\tx := 1\n}")
	h, ok := highlight.Default().ForExtension(".go")
	if !ok {
		t.Fatal("expected a .go highlighter in the default registry")
	}
	doc.Retokenize(h, 0, doc.LineCount()-1)

	if len(doc.Tokens(0)) == 0 {
		t.Fatal("expected tokens on line 0")
	}
}

func TestShadowStoreOpenGetClose(t *testing.T) {
	s := NewShadowStore()
	uri := DocumentURI("file:///a.go")

	if s.Get(uri) != nil {
		t.Fatal("expected no shadow before Open")
	}
	s.Open(uri, "content")
	if s.Get(uri) == nil {
		t.Fatal("expected a shadow after Open")
	}
	s.Close(uri)
	if s.Get(uri) != nil {
		t.Fatal("expected shadow to be gone after Close")
	}
}

func TestBuildFullSyncNotification(t *testing.T) {
	body, err := buildFullSyncNotification("file:///a.go", 5, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(body)
	if !strings.Contains(s, `"uri":"file:///a.go"`) || !strings.Contains(s, `"version":5`) || !strings.Contains(s, `"text":"hello"`) {
		t.Fatalf("unexpected payload: %s", s)
	}
}
