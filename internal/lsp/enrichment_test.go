package lsp

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/highlight"
)

func newTestServer() *Server {
	return NewServer(ServerConfig{Command: "test-server"}, "go")
}

func TestEnrichmentProxyFallsBackToLocalLexerWithoutSemanticTokens(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)

	if p.HasSemanticTokens() {
		t.Fatal("expected no semantic tokens advertised for a server with no capabilities set")
	}

	tokens, state := p.TokensForLine("main.go", 0, "func main() {}", highlight.LexerStateNormal)
	if len(tokens) == 0 {
		t.Fatal("expected local lexer fallback to produce tokens for a .go file")
	}
	if state != highlight.LexerStateNormal {
		t.Fatalf("expected normal state for a fully-closed line, got %v", state)
	}
}

func TestEnrichmentProxySkipsFallbackWhenServerHasSemanticTokens(t *testing.T) {
	s := newTestServer()
	s.capabilities.SemanticTokensProvider = true
	p := NewEnrichmentProxy(s, nil)

	if !p.HasSemanticTokens() {
		t.Fatal("expected semantic tokens to be reported as available")
	}

	tokens, _ := p.TokensForLine("main.go", 0, "func main() {}", highlight.LexerStateNormal)
	if tokens != nil {
		t.Fatal("expected proxy to defer to the server instead of the local lexer")
	}
}

func TestEnrichmentProxyNoLexerForUnknownExtension(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)

	tokens, state := p.TokensForLine("notes.xyz", 0, "whatever", highlight.LexerStateNormal)
	if tokens != nil {
		t.Fatal("expected no tokens for an unregistered extension")
	}
	if state != highlight.LexerStateNormal {
		t.Fatal("expected the state to pass through unchanged")
	}
}

func TestEnrichmentProxyHasIncrementalSync(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	if p.HasIncrementalSync() {
		t.Fatal("expected no incremental sync for a server with no textDocumentSync capability")
	}

	s.capabilities.TextDocumentSync = float64(TextDocumentSyncKindIncremental)
	if !p.HasIncrementalSync() {
		t.Fatal("expected incremental sync once advertised")
	}
}

func TestEnrichmentProxyStateTracking(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")

	if got := p.StateFor(uri); got != highlight.LexerStateNormal {
		t.Fatalf("expected default state for an unseen document, got %v", got)
	}

	p.SetState(uri, highlight.LexerStateBlockComment)
	if got := p.StateFor(uri); got != highlight.LexerStateBlockComment {
		t.Fatalf("expected tracked state to persist, got %v", got)
	}

	p.ResetState(uri)
	if got := p.StateFor(uri); got != highlight.LexerStateNormal {
		t.Fatalf("expected state to reset, got %v", got)
	}
}

func TestEnrichmentProxyDidOpenSeedsShadow(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")

	p.DidOpen(uri, "main.go", "package main\n")
	doc := p.shadows.Get(uri)
	if doc == nil {
		t.Fatal("expected shadow document after DidOpen")
	}
	if len(doc.Tokens(0)) == 0 {
		t.Fatal("expected DidOpen to retokenize line 0")
	}

	p.DidClose(uri)
	if p.shadows.Get(uri) != nil {
		t.Fatal("expected shadow document dropped after DidClose")
	}
}

func TestEnrichmentProxyDispatchSyncDowngradesWithoutIncrementalSync(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")
	p.DidOpen(uri, "main.go", "package main\n")

	payload := Payload{
		Kind:    PayloadSync,
		URI:     uri,
		Path:    "main.go",
		Version: 2,
		Changes: []TextDocumentContentChangeEvent{{
			Range: &Range{Start: Position{Line: 0, Character: 8}, End: Position{Line: 0, Character: 12}},
			Text:  "pkg",
		}},
	}

	outcome, err := p.Dispatch(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Forward == nil || outcome.Forward.Kind != PayloadFullSync {
		t.Fatalf("expected downgraded FullSync forward, got %+v", outcome.Forward)
	}
	if outcome.Forward.Text != "package pkg\n" {
		t.Fatalf("expected shadow-applied text, got %q", outcome.Forward.Text)
	}
}

func TestEnrichmentProxyDispatchSyncForwardsWithIncrementalSync(t *testing.T) {
	s := newTestServer()
	s.capabilities.TextDocumentSync = float64(TextDocumentSyncKindIncremental)
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")
	p.DidOpen(uri, "main.go", "abc")

	payload := Payload{
		Kind: PayloadSync,
		URI:  uri,
		Path: "main.go",
		Changes: []TextDocumentContentChangeEvent{{
			Range: &Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 1}},
			Text:  "X",
		}},
	}
	outcome, err := p.Dispatch(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Forward == nil || outcome.Forward.Kind != PayloadSync {
		t.Fatalf("expected the original Sync payload forwarded unchanged, got %+v", outcome.Forward)
	}
}

func TestEnrichmentProxyDispatchTokensFallsBackToShadow(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")
	p.DidOpen(uri, "main.go", "func main() {}")

	outcome, err := p.Dispatch(Payload{Kind: PayloadTokens, URI: uri, Path: "main.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	toks, ok := outcome.Synthesized.(*SemanticTokens)
	if !ok || len(toks.Data) == 0 {
		t.Fatalf("expected synthesized delta tokens from shadow, got %+v", outcome.Synthesized)
	}
	if len(toks.Data)%5 != 0 {
		t.Errorf("expected quintuple-aligned data, got %d values", len(toks.Data))
	}
	decoded := decodeSemanticTokens(toks.Data, SemanticTokensLegend{}, []string{"func main() {}"})
	var found bool
	for _, tok := range decoded[0] {
		if tok.Type == line.TokenKeyword && tok.StartChar == 0 && tok.Length == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected decoded tokens to include the func keyword, got %+v", decoded[0])
	}
}

func TestSemanticTokenDeltaEncodeDecodeRoundTrips(t *testing.T) {
	texts := []string{
		"const x = 1",
		"",
		"\tif x > 🚀 {",
	}
	original := [][]line.Token{
		{
			{StartChar: 0, Length: 5, Type: line.TokenKeyword},
			{StartChar: 6, Length: 1, Type: line.TokenVariable},
			{StartChar: 10, Length: 1, Type: line.TokenNumber},
		},
		nil,
		{
			{StartChar: 1, Length: 2, Type: line.TokenKeyword},
			{StartChar: 4, Length: 1, Type: line.TokenVariable},
			{StartChar: 8, Length: 1, Type: line.TokenVariable, Modifiers: 3},
		},
	}

	data := encodeSemanticTokens(original, texts)
	decoded := decodeSemanticTokens(data, SemanticTokensLegend{}, texts)

	if len(decoded) != len(original) {
		t.Fatalf("expected %d lines, got %d", len(original), len(decoded))
	}
	for ln := range original {
		if len(decoded[ln]) != len(original[ln]) {
			t.Fatalf("line %d: expected %d tokens, got %d", ln, len(original[ln]), len(decoded[ln]))
		}
		for i, want := range original[ln] {
			got := decoded[ln][i]
			if got.StartChar != want.StartChar || got.Length != want.Length ||
				got.Type != want.Type || got.Modifiers != want.Modifiers {
				t.Errorf("line %d token %d: expected %+v, got %+v", ln, i, want, got)
			}
		}
	}
}

func TestEnrichmentProxyDispatchCompletionFallsBackToKeywordsAndIdentifiers(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	uri := DocumentURI("file:///main.go")
	p.DidOpen(uri, "main.go", "func main() {\n\tcounter := 1\n}")

	outcome, err := p.Dispatch(Payload{Kind: PayloadCompletion, URI: uri, Path: "main.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, ok := outcome.Synthesized.([]CompletionItemFallback)
	if !ok || len(items) == 0 {
		t.Fatalf("expected fallback completion items, got %+v", outcome.Synthesized)
	}

	var sawKeyword, sawIdentifier bool
	for _, item := range items {
		if item.Label == "func" {
			sawKeyword = true
		}
		if item.Label == "counter" {
			sawIdentifier = true
		}
	}
	if !sawKeyword {
		t.Error("expected lexer keyword \"func\" in fallback completion")
	}
	if !sawIdentifier {
		t.Error("expected accumulated identifier \"counter\" in fallback completion")
	}
}

func TestNegotiatedEncodingDefaultsToUTF16(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	if got := p.NegotiatedEncoding().Name; got != "utf-16" {
		t.Errorf("expected utf-16 default, got %q", got)
	}
}

func TestNegotiatedEncodingHonorsServerDeclaration(t *testing.T) {
	for _, tc := range []struct {
		declared, want string
	}{
		{"utf-8", "utf-8"},
		{"utf-16", "utf-16"},
		{"utf-32", "utf-32"},
		{"", "utf-16"},
	} {
		s := newTestServer()
		s.capabilities.PositionEncoding = tc.declared
		p := NewEnrichmentProxy(s, nil)
		if got := p.NegotiatedEncoding().Name; got != tc.want {
			t.Errorf("declared %q: expected %q, got %q", tc.declared, tc.want, got)
		}
	}
}
