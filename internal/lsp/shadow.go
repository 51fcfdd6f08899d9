package lsp

import (
	"strings"
	"sync"
	"unicode"

	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/highlight"
	"github.com/tidwall/sjson"
)

// ShadowDocument is the proxy's own copy of an open file's text, kept
// independent of the editor's Document and of whatever the wrapped server
// has acknowledged. It exists so the proxy can answer token and
// completion requests itself when the server can't, and so incremental
// edits can be re-applied locally before a downgraded full-document
// resync is computed.
type ShadowDocument struct {
	URI     DocumentURI
	Version int

	lines  []string
	tokens [][]line.Token
	states []highlight.LexerState // lexer state at the end of each line

	identifiers map[string]struct{} // accumulated for fallback completion
}

// NewShadowDocument creates a shadow mirroring text at version 1, split on
// '\n' exactly as the editor's own Document does.
func NewShadowDocument(uri DocumentURI, text string) *ShadowDocument {
	d := &ShadowDocument{URI: uri, Version: 1, identifiers: make(map[string]struct{})}
	d.reset(text)
	return d
}

func (d *ShadowDocument) reset(text string) {
	d.lines = strings.Split(text, "\n")
	d.tokens = make([][]line.Token, len(d.lines))
	d.states = make([]highlight.LexerState, len(d.lines))
}

// Text joins the shadow's lines back into a single document string.
func (d *ShadowDocument) Text() string {
	return strings.Join(d.lines, "\n")
}

// LineCount returns the number of lines currently held.
func (d *ShadowDocument) LineCount() int {
	return len(d.lines)
}

// Line returns the text of lineIdx, or "" if out of range.
func (d *ShadowDocument) Line(lineIdx int) string {
	if lineIdx < 0 || lineIdx >= len(d.lines) {
		return ""
	}
	return d.lines[lineIdx]
}

// Tokens returns the last-computed tokens for lineIdx.
func (d *ShadowDocument) Tokens(lineIdx int) []line.Token {
	if lineIdx < 0 || lineIdx >= len(d.tokens) {
		return nil
	}
	return d.tokens[lineIdx]
}

// ReplaceAll replaces the entire shadow with text, bumping version and
// dropping every cached token (the full-document resync path).
func (d *ShadowDocument) ReplaceAll(version int, text string) {
	d.Version = version
	d.reset(text)
}

// ApplyChange applies one TextDocumentContentChangeEvent to the shadow.
// A nil Range is a full-document replacement; otherwise the range's
// positions are UTF-16 code-unit offsets per the LSP default and are
// translated to rune offsets within the affected lines before splicing.
// Returns the inclusive range of line indices that need re-tokenizing.
func (d *ShadowDocument) ApplyChange(version int, change TextDocumentContentChangeEvent) (firstDirty, lastDirty int) {
	d.Version = version
	if change.Range == nil {
		d.reset(change.Text)
		return 0, len(d.lines) - 1
	}

	startLine, endLine := change.Range.Start.Line, change.Range.End.Line
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(d.lines) {
		endLine = len(d.lines) - 1
	}
	if endLine < startLine {
		endLine = startLine
	}

	startRunes := []rune(d.lines[startLine])
	endRunes := []rune(d.lines[endLine])
	startChar := UTF16ToCharIndex(d.lines[startLine], change.Range.Start.Character)
	endChar := UTF16ToCharIndex(d.lines[endLine], change.Range.End.Character)
	if startChar > len(startRunes) {
		startChar = len(startRunes)
	}
	if endChar > len(endRunes) {
		endChar = len(endRunes)
	}

	prefix := string(startRunes[:startChar])
	suffix := string(endRunes[endChar:])
	spliced := prefix + change.Text + suffix
	newLines := strings.Split(spliced, "\n")

	d.lines = append(d.lines[:startLine], append(newLines, d.lines[endLine+1:]...)...)

	dirtyTokens := make([][]line.Token, len(newLines))
	dirtyStates := make([]highlight.LexerState, len(newLines))
	d.tokens = append(d.tokens[:startLine], append(dirtyTokens, d.tokens[endLine+1:]...)...)
	d.states = append(d.states[:startLine], append(dirtyStates, d.states[endLine+1:]...)...)

	return startLine, startLine + len(newLines) - 1
}

// Retokenize re-lexes lines [from,to] with h, threading LexerState forward
// and continuing past `to` while the state keeps changing from what was
// previously recorded there — a multi-line construct (block comment,
// triple-quoted string) opened or closed inside the edited range can shift
// every line below it.
func (d *ShadowDocument) Retokenize(h highlight.Highlighter, from, to int) {
	if h == nil || len(d.lines) == 0 {
		return
	}
	if from < 0 {
		from = 0
	}
	state := highlight.LexerStateNormal
	if from > 0 {
		state = d.states[from-1]
	}
	for i := from; i < len(d.lines); i++ {
		prevRecorded := d.states[i]
		tokens, next := h.HighlightLine(d.lines[i], state)
		d.states[i] = next
		d.tokens[i] = tokens
		d.recordIdentifiers(d.lines[i])
		state = next
		if i >= to && next == prevRecorded {
			break
		}
	}
}

// recordIdentifiers scans text directly for word-shaped runs rather than
// relying on the lexer's token output: a SimpleHighlighter only emits a
// token for identifiers it recognizes as keywords, leaving ordinary
// variable and function names untyped, but those are exactly what a
// completion fallback needs to offer back.
func (d *ShadowDocument) recordIdentifiers(text string) {
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		if !unicode.IsLetter(r) && r != '_' {
			i++
			continue
		}
		start := i
		for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
			i++
		}
		d.identifiers[string(runes[start:i])] = struct{}{}
	}
}

// Identifiers returns every identifier accumulated while retokenizing,
// seeding the fallback completion set alongside a lexer's keywords.
func (d *ShadowDocument) Identifiers() []string {
	out := make([]string, 0, len(d.identifiers))
	for id := range d.identifiers {
		out = append(out, id)
	}
	return out
}

// ShadowStore holds one ShadowDocument per open URI. It is the proxy's
// only piece of mutable shared state besides the response table, and is
// likewise guarded by a short-lived lock taken only around lookups and
// structural changes (open/close), never held across a retokenize pass.
type ShadowStore struct {
	mu   sync.Mutex
	docs map[DocumentURI]*ShadowDocument
}

// NewShadowStore creates an empty store.
func NewShadowStore() *ShadowStore {
	return &ShadowStore{docs: make(map[DocumentURI]*ShadowDocument)}
}

// Open creates (or replaces) the shadow for uri with text, as on DidOpen.
func (s *ShadowStore) Open(uri DocumentURI, text string) *ShadowDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := NewShadowDocument(uri, text)
	s.docs[uri] = doc
	return doc
}

// Get returns the shadow for uri, or nil if it isn't open.
func (s *ShadowStore) Get(uri DocumentURI) *ShadowDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}

// Close drops the shadow for uri, as on DidClose.
func (s *ShadowStore) Close(uri DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// buildFullSyncNotification assembles the JSON-RPC body for a synthesized
// textDocument/didChange full-document notification using sjson, avoiding
// a full struct marshal when only the document identifier, version, and
// text need setting on an otherwise-fixed shape.
func buildFullSyncNotification(uri DocumentURI, version int, text string) ([]byte, error) {
	body := []byte(`{"textDocument":{},"contentChanges":[{}]}`)
	var err error
	body, err = sjson.SetBytes(body, "textDocument.uri", string(uri))
	if err != nil {
		return nil, err
	}
	body, err = sjson.SetBytes(body, "textDocument.version", version)
	if err != nil {
		return nil, err
	}
	body, err = sjson.SetBytes(body, "contentChanges.0.text", text)
	if err != nil {
		return nil, err
	}
	return body, nil
}
