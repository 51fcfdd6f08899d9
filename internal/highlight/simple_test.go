package highlight

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/line"
)

func tokenAt(tokens []line.Token, startChar int) (line.Token, bool) {
	for _, t := range tokens {
		if t.StartChar == startChar {
			return t, true
		}
	}
	return line.Token{}, false
}

func TestGoHighlighterTagsKeywordsStringsAndComments(t *testing.T) {
	h := GoHighlighter()
	tokens, state := h.HighlightLine(`func main() { s := "hi" } // done`, LexerStateNormal)
	if state != LexerStateNormal {
		t.Fatalf("expected normal state after a fully-closed line, got %v", state)
	}
	kw, ok := tokenAt(tokens, 0)
	if !ok || kw.Type != line.TokenKeyword {
		t.Fatalf("expected keyword token at 0, got %+v ok=%v", kw, ok)
	}
	fn, ok := tokenAt(tokens, 5)
	if !ok || fn.Type != line.TokenFunction {
		t.Fatalf("expected function token at 5, got %+v ok=%v", fn, ok)
	}
	str, ok := tokenAt(tokens, 19)
	if !ok || str.Type != line.TokenString {
		t.Fatalf("expected string token at 19 for the quoted literal, got %+v ok=%v", str, ok)
	}
	cmt, ok := tokenAt(tokens, 26)
	if !ok || cmt.Type != line.TokenComment {
		t.Fatalf("expected comment token at 26, got %+v ok=%v", cmt, ok)
	}
}

func TestGoHighlighterTracksBlockCommentAcrossLines(t *testing.T) {
	h := GoHighlighter()
	tokens, state := h.HighlightLine("/* starts here", LexerStateNormal)
	if state != LexerStateBlockComment {
		t.Fatalf("expected block-comment state to persist, got %v", state)
	}
	if len(tokens) != 1 || tokens[0].Type != line.TokenComment {
		t.Fatalf("expected whole line tagged as comment, got %+v", tokens)
	}

	tokens, state = h.HighlightLine("still inside", state)
	if state != LexerStateBlockComment {
		t.Fatalf("expected block-comment state to still persist, got %v", state)
	}
	if len(tokens) != 1 || tokens[0].Type != line.TokenComment || tokens[0].Length != len([]rune("still inside")) {
		t.Fatalf("expected full-line comment token, got %+v", tokens)
	}

	tokens, state = h.HighlightLine("end */ x := 1", state)
	if state != LexerStateNormal {
		t.Fatalf("expected normal state once the comment closes, got %v", state)
	}
	num, ok := tokenAt(tokens, 12)
	if !ok || num.Type != line.TokenNumber {
		t.Fatalf("expected number token after the comment closes, got %+v ok=%v", num, ok)
	}
}

func TestPythonHighlighterRecognizesDefAndKeywords(t *testing.T) {
	h := PythonHighlighter()
	tokens, _ := h.HighlightLine("def greet(name):", LexerStateNormal)
	kw, ok := tokenAt(tokens, 0)
	if !ok || kw.Type != line.TokenKeyword {
		t.Fatalf("expected 'def' tagged as keyword, got %+v ok=%v", kw, ok)
	}
	fn, ok := tokenAt(tokens, 4)
	if !ok || fn.Type != line.TokenFunction {
		t.Fatalf("expected function name tagged, got %+v ok=%v", fn, ok)
	}
}

func TestRegistryResolvesByExtensionAndLanguage(t *testing.T) {
	r := Default()
	if _, ok := r.ForExtension(".go"); !ok {
		t.Fatal("expected .go to resolve to a highlighter")
	}
	if _, ok := r.ForExtension(".PY"); !ok {
		t.Fatal("expected extension lookup to be case-insensitive")
	}
	if h, ok := r.ForLanguage("rust"); !ok || h.Language() != "rust" {
		t.Fatalf("expected rust highlighter by language name, got %+v ok=%v", h, ok)
	}
	if _, ok := r.ForExtension(".unknownlang"); ok {
		t.Fatal("expected unregistered extension to miss")
	}
}

func TestMultiByteLineProducesRuneIndexedOffsets(t *testing.T) {
	h := GoHighlighter()
	tokens, _ := h.HighlightLine(`x := "héllo" // ok`, LexerStateNormal)
	str, ok := tokenAt(tokens, 5)
	if !ok || str.Type != line.TokenString {
		t.Fatalf("expected string token at char offset 5, got %+v ok=%v", str, ok)
	}
	if str.Length != len([]rune(`"héllo"`)) {
		t.Fatalf("expected rune-counted length, got %d", str.Length)
	}
}
