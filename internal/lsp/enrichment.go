package lsp

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/highlight"
)

// EnrichmentProxy wraps a language server with fallbacks for capabilities
// it doesn't advertise, so callers get a uniform feature set regardless of
// which language server is actually attached. Missing semantic tokens fall
// back to an in-process Highlighter; missing incremental sync downgrades
// every change to a full-document resend; missing completion falls back
// to an accumulated identifier/keyword set.
type EnrichmentProxy struct {
	server  *Server
	lexers  *highlight.Registry
	shadows *ShadowStore
	mu      sync.Mutex
	states  map[DocumentURI]highlight.LexerState

	semTokens map[string][][]line.Token // path -> per-line tokens, from the server's own semanticTokens/full
}

// NewEnrichmentProxy wraps server, falling back to registry's lexers for
// languages the server can't tokenize itself. A nil registry uses the
// built-in set.
func NewEnrichmentProxy(server *Server, registry *highlight.Registry) *EnrichmentProxy {
	if registry == nil {
		registry = highlight.Default()
	}
	return &EnrichmentProxy{
		server:    server,
		lexers:    registry,
		shadows:   NewShadowStore(),
		states:    make(map[DocumentURI]highlight.LexerState),
		semTokens: make(map[string][][]line.Token),
	}
}

// HasSemanticTokens reports whether the wrapped server advertises semantic
// tokens support.
func (p *EnrichmentProxy) HasSemanticTokens() bool {
	return HasCapability(p.server.Capabilities().SemanticTokensProvider)
}

// HasIncrementalSync reports whether the server accepts incremental
// didChange notifications rather than requiring the full document.
func (p *EnrichmentProxy) HasIncrementalSync() bool {
	return GetTextDocumentSyncKind(p.server.Capabilities()) == TextDocumentSyncKindIncremental
}

// HasDiagnostics reports whether the server publishes diagnostics at all.
// Servers that don't get no fallback: there is no reasonable in-process
// substitute for real diagnostics.
func (p *EnrichmentProxy) HasDiagnostics() bool {
	return p.server.Status() == ServerStatusReady
}

// NegotiatedEncoding returns the position encoding the server declared in
// its initialize response, defaulting to UTF-16 (the protocol default)
// when it declared none. The editor binds this into its Document once at
// startup so every change event it emits afterwards counts units the way
// the server expects.
func (p *EnrichmentProxy) NegotiatedEncoding() edit.Encoding {
	switch p.server.Capabilities().PositionEncoding {
	case "utf-8":
		return edit.UTF8Encoding
	case "utf-32":
		return edit.UTF32Encoding
	default:
		return edit.UTF16Encoding
	}
}

// TokensForLine returns semantic tokens for a line of path, sourced from
// the server's real semantic-tokens request when available, or from a
// local lexer keyed off path's extension otherwise.
//
// prevState must be the LexerState this method returned for the previous
// line (highlight.LexerStateNormal for the first line of a document), and
// is only meaningful for the local-lexer fallback; when the server itself
// supplies tokens it is returned unchanged.
func (p *EnrichmentProxy) TokensForLine(path string, lineNum int, text string, prevState highlight.LexerState) ([]line.Token, highlight.LexerState) {
	if p.HasSemanticTokens() {
		if tokens, ok := p.cachedSemanticTokens(path, lineNum); ok {
			return tokens, prevState
		}
		return nil, prevState
	}
	lexer, ok := p.lexerFor(path)
	if !ok {
		return nil, prevState
	}
	return lexer.HighlightLine(text, prevState)
}

func (p *EnrichmentProxy) cachedSemanticTokens(path string, lineNum int) ([]line.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	lines, ok := p.semTokens[path]
	if !ok || lineNum < 0 || lineNum >= len(lines) {
		return nil, false
	}
	return lines[lineNum], true
}

// RefreshSemanticTokens fetches the server's full semantic-token set for
// path and decodes it against lineTexts (the document's current lines, in
// order), replacing whatever was cached for path. A no-op when the server
// doesn't advertise semantic tokens.
func (p *EnrichmentProxy) RefreshSemanticTokens(ctx context.Context, path string, lineTexts []string) error {
	if !p.HasSemanticTokens() {
		return nil
	}
	toks, err := p.server.SemanticTokensFull(ctx, path)
	if err != nil {
		return err
	}
	if toks == nil {
		return nil
	}
	legend := SemanticTokensLegendFor(p.server.Capabilities())
	decoded := decodeSemanticTokens(toks.Data, legend, lineTexts)
	p.mu.Lock()
	p.semTokens[path] = decoded
	p.mu.Unlock()
	return nil
}

// decodeSemanticTokens turns the server's relative-delta encoding into
// per-line tokens. Each group of five uint32s in data is
// (deltaLine, deltaStartChar, length, tokenType, tokenModifiers); deltaLine
// is relative to the previous token's line, deltaStartChar is relative to
// the previous token's start character on the same line, or absolute when
// deltaLine > 0. Positions are UTF-16 code units, matching Position.Character.
func decodeSemanticTokens(data []uint32, legend SemanticTokensLegend, lineTexts []string) [][]line.Token {
	out := make([][]line.Token, len(lineTexts))
	var curLine, curChar uint32
	for i := 0; i+4 < len(data); i += 5 {
		deltaLine := data[i]
		deltaStart := data[i+1]
		length := data[i+2]
		tokType := data[i+3]
		tokMods := data[i+4]

		if deltaLine > 0 {
			curLine += deltaLine
			curChar = deltaStart
		} else {
			curChar += deltaStart
		}

		ln := int(curLine)
		if ln < 0 || ln >= len(lineTexts) {
			continue
		}
		startChar := UTF16ToCharIndex(lineTexts[ln], int(curChar))
		endChar := UTF16ToCharIndex(lineTexts[ln], int(curChar)+int(length))
		out[ln] = append(out[ln], line.Token{
			StartChar: startChar,
			Length:    endChar - startChar,
			Type:      semanticTokenType(tokType, legend),
			Modifiers: uint16(tokMods),
		})
	}
	return out
}

// encodeSemanticTokens is the inverse of decodeSemanticTokens: absolute
// per-line tokens flatten into the wire's relative quintuples, positions
// in UTF-16 code units, token types indexed against the standard legend.
// Tokens typed TokenNone carry no category a server would emit and are
// skipped.
func encodeSemanticTokens(perLine [][]line.Token, lineTexts []string) []uint32 {
	var data []uint32
	var prevLine, prevChar uint32
	for ln, tokens := range perLine {
		if ln >= len(lineTexts) {
			break
		}
		text := lineTexts[ln]
		for _, t := range tokens {
			if t.Type == line.TokenNone {
				continue
			}
			start := uint32(CharIndexToUTF16(text, t.StartChar))
			end := uint32(CharIndexToUTF16(text, t.StartChar+t.Length))
			deltaLine := uint32(ln) - prevLine
			deltaStart := start
			if deltaLine == 0 {
				deltaStart = start - prevChar
			}
			data = append(data, deltaLine, deltaStart, end-start,
				uint32(standardTokenIndex(t.Type)), uint32(t.Modifiers))
			prevLine = uint32(ln)
			prevChar = start
		}
	}
	return data
}

// standardTokenIndex maps the engine's TokenType onto the standard LSP
// legend index, the inverse of semanticTokenType restricted to the types
// the engine's lexers actually produce. Punctuation, which the standard
// legend has no slot for, is emitted as operator.
func standardTokenIndex(t line.TokenType) StandardTokenType {
	switch t {
	case line.TokenKeyword:
		return TokenTypeKeyword
	case line.TokenString:
		return TokenTypeString
	case line.TokenNumber:
		return TokenTypeNumber
	case line.TokenType_:
		return TokenTypeType
	case line.TokenFunction:
		return TokenTypeFunction
	case line.TokenVariable:
		return TokenTypeVariable
	case line.TokenComment:
		return TokenTypeComment
	case line.TokenDecorator:
		return TokenTypeDecorator
	case line.TokenEnumMember:
		return TokenTypeEnumMember
	case line.TokenOperator, line.TokenPunctuation:
		return TokenTypeOperator
	default:
		return TokenTypeVariable
	}
}

// CharIndexToUTF16 converts a rune index into text to a UTF-16 code-unit
// offset, the inverse of UTF16ToCharIndex.
func CharIndexToUTF16(text string, charIdx int) int {
	n := 0
	for i, r := range []rune(text) {
		if i >= charIdx {
			break
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// UTF16ToCharIndex converts a UTF-16 code-unit offset into text into a
// rune index, the inverse of edit.UTF16Encoding.EncodePosition. Used to
// translate server-reported positions (semantic tokens, diagnostics —
// both specified in UTF-16 units per the LSP default) back into the
// engine's char-index addressing.
func UTF16ToCharIndex(text string, units int) int {
	n := 0
	runes := []rune(text)
	for i, r := range runes {
		if n >= units {
			return i
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return len(runes)
}

// semanticTokenType maps a server-reported token-type index onto the
// engine's fixed TokenType legend, resolving the index through legend's
// declared names when present (so a server whose legend order differs
// from the LSP standard order still maps correctly) and falling back to
// the standard order when legend is empty. Types the engine has no
// equivalent for fall back to TokenNone, leaving the renderer's default
// styling in place.
func semanticTokenType(lspType uint32, legend SemanticTokensLegend) line.TokenType {
	std := StandardTokenType(lspType)
	if int(lspType) < len(legend.TokenTypes) {
		if named, ok := namedTokenType(legend.TokenTypes[lspType]); ok {
			std = named
		}
	}
	switch std {
	case TokenTypeKeyword, TokenTypeModifier:
		return line.TokenKeyword
	case TokenTypeString:
		return line.TokenString
	case TokenTypeNumber:
		return line.TokenNumber
	case TokenTypeType, TokenTypeClass, TokenTypeInterface, TokenTypeEnum, TokenTypeStruct, TokenTypeTypeParameter:
		return line.TokenType_
	case TokenTypeFunction, TokenTypeMethod:
		return line.TokenFunction
	case TokenTypeVariable, TokenTypeParameter, TokenTypeProperty:
		return line.TokenVariable
	case TokenTypeComment:
		return line.TokenComment
	case TokenTypeDecorator:
		return line.TokenDecorator
	case TokenTypeEnumMember:
		return line.TokenEnumMember
	case TokenTypeOperator:
		return line.TokenOperator
	default:
		return line.TokenNone
	}
}

var namedTokenTypes = map[string]StandardTokenType{
	"namespace":     TokenTypeNamespace,
	"type":          TokenTypeType,
	"class":         TokenTypeClass,
	"enum":          TokenTypeEnum,
	"interface":     TokenTypeInterface,
	"struct":        TokenTypeStruct,
	"typeParameter": TokenTypeTypeParameter,
	"parameter":     TokenTypeParameter,
	"variable":      TokenTypeVariable,
	"property":      TokenTypeProperty,
	"enumMember":    TokenTypeEnumMember,
	"event":         TokenTypeEvent,
	"function":      TokenTypeFunction,
	"method":        TokenTypeMethod,
	"macro":         TokenTypeMacro,
	"keyword":       TokenTypeKeyword,
	"modifier":      TokenTypeModifier,
	"comment":       TokenTypeComment,
	"string":        TokenTypeString,
	"number":        TokenTypeNumber,
	"regexp":        TokenTypeRegexp,
	"operator":      TokenTypeOperator,
	"decorator":     TokenTypeDecorator,
}

func namedTokenType(name string) (StandardTokenType, bool) {
	t, ok := namedTokenTypes[name]
	return t, ok
}

func (p *EnrichmentProxy) lexerFor(path string) (highlight.Highlighter, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	return p.lexers.ForExtension(ext)
}

// ResetState clears the tracked lexer state for uri, e.g. after a full
// document reload invalidates whatever multi-line construct was open.
func (p *EnrichmentProxy) ResetState(uri DocumentURI) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, uri)
}

// StateFor returns the lexer state carried over from the previous call for
// uri, defaulting to LexerStateNormal for a document never seen before.
func (p *EnrichmentProxy) StateFor(uri DocumentURI) highlight.LexerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[uri]
}

// SetState records the lexer state produced after processing a line of uri.
func (p *EnrichmentProxy) SetState(uri DocumentURI, state highlight.LexerState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[uri] = state
}

// Server returns the wrapped server, for callers that need capabilities
// this proxy doesn't enrich.
func (p *EnrichmentProxy) Server() *Server {
	return p.server
}

// Forward sends outcome.Forward to the wrapped server, if any, using
// whichever notification the payload's Kind corresponds to. Callers get an
// Outcome from Dispatch and pass it straight here — Tokens/Completion
// payloads forward as requests the caller should already have issued
// through the typed Server methods, so Forward only handles the sync
// payloads (FullSync opens the document on the server if it is not open
// yet, otherwise sends it as a full change; Sync sends the incremental
// changes); it is a no-op for every other kind and for a nil Forward.
func (p *EnrichmentProxy) Forward(ctx context.Context, outcome Outcome) error {
	payload := outcome.Forward
	if payload == nil || p.server == nil || p.server.Status() != ServerStatusReady {
		return nil
	}
	switch payload.Kind {
	case PayloadFullSync:
		if p.server.IsDocumentOpen(payload.Path) {
			return p.server.ChangeDocument(ctx, payload.Path, []TextDocumentContentChangeEvent{{Text: payload.Text}})
		}
		return p.server.OpenDocument(ctx, payload.Path, p.server.LanguageID(), payload.Text)
	case PayloadSync:
		return p.server.ChangeDocument(ctx, payload.Path, payload.Changes)
	default:
		return nil
	}
}

// PayloadKind tags the variant of an editor-originated Payload. Each
// missing server capability intercepts its own payload kind independently
// of the others.
type PayloadKind int

// Payload kinds the proxy routes on.
const (
	PayloadDirect PayloadKind = iota
	PayloadTokens
	PayloadPartialTokens
	PayloadSync
	PayloadFullSync
	PayloadCompletion
)

// Payload is a tagged record describing one editor-to-server message the
// proxy may pass through, answer itself, or rewrite before forwarding.
type Payload struct {
	Kind PayloadKind

	URI     DocumentURI
	ID      int
	Version int

	Bytes   []byte                           // PayloadDirect
	Range   *Range                           // PayloadPartialTokens
	Changes []TextDocumentContentChangeEvent // PayloadSync
	Text    string                           // PayloadFullSync, DidOpen seed
	Path    string                           // file path, for lexer selection
	Pos     Position                         // PayloadCompletion
}

// Outcome is what the proxy decided to do with a dispatched Payload: send
// Forward to the real server (nil if nothing should be sent), or answer
// the request immediately with Synthesized (for the caller to place in
// its response table under ID).
type Outcome struct {
	Forward     *Payload
	Synthesized any
}

// DidOpen seeds the shadow document for uri with its opening text, as
// inspected from the editor's outbound didOpen notification.
func (p *EnrichmentProxy) DidOpen(uri DocumentURI, path, text string) {
	doc := p.shadows.Open(uri, text)
	if h, ok := p.lexerFor(path); ok {
		doc.Retokenize(h, 0, doc.LineCount()-1)
	}
}

// DidClose drops the shadow document for uri.
func (p *EnrichmentProxy) DidClose(uri DocumentURI) {
	p.shadows.Close(uri)
	p.ResetState(uri)
}

// Dispatch routes payload per the capability table: a Sync is always
// applied to the shadow first — the server's view can never be updated
// without the shadow being updated first — then forwarded unchanged if
// the server has incremental sync, or rewritten into a FullSync
// notification if it doesn't. Tokens/PartialTokens/Completion are
// answered from the shadow and never reach the server when the
// corresponding capability is missing; Direct payloads always pass
// through untouched.
func (p *EnrichmentProxy) Dispatch(payload Payload) (Outcome, error) {
	switch payload.Kind {
	case PayloadSync:
		return p.dispatchSync(payload)
	case PayloadFullSync:
		if doc := p.shadows.Get(payload.URI); doc != nil {
			doc.ReplaceAll(payload.Version, payload.Text)
			if h, ok := p.lexerFor(payload.Path); ok {
				doc.Retokenize(h, 0, doc.LineCount()-1)
			}
		}
		return Outcome{Forward: &payload}, nil
	case PayloadTokens, PayloadPartialTokens:
		if p.HasSemanticTokens() {
			return Outcome{Forward: &payload}, nil
		}
		return Outcome{Synthesized: p.tokensFromShadow(payload)}, nil
	case PayloadCompletion:
		if p.server.Capabilities().CompletionProvider != nil {
			return Outcome{Forward: &payload}, nil
		}
		return Outcome{Synthesized: p.fallbackCompletion(payload)}, nil
	default:
		return Outcome{Forward: &payload}, nil
	}
}

func (p *EnrichmentProxy) dispatchSync(payload Payload) (Outcome, error) {
	doc := p.shadows.Get(payload.URI)
	if doc == nil {
		doc = p.shadows.Open(payload.URI, "")
	}
	lexer, hasLexer := p.lexerFor(payload.Path)
	for _, change := range payload.Changes {
		first, last := doc.ApplyChange(payload.Version, change)
		if hasLexer {
			doc.Retokenize(lexer, first, last)
		}
	}

	if p.HasIncrementalSync() {
		return Outcome{Forward: &payload}, nil
	}

	body, err := buildFullSyncNotification(payload.URI, payload.Version, doc.Text())
	if err != nil {
		return Outcome{}, err
	}
	full := Payload{
		Kind:    PayloadFullSync,
		URI:     payload.URI,
		Version: payload.Version,
		Text:    doc.Text(),
		Path:    payload.Path,
		Bytes:   body,
	}
	return Outcome{Forward: &full}, nil
}

// CompletionItemFallback is the shape of a synthesized completion entry:
// enough for the editor to render and insert, without the server's
// resolve-on-demand documentation round trip.
type CompletionItemFallback struct {
	Label string
	Kind  CompletionItemKind
}

// tokensFromShadow synthesizes a semanticTokens/full (or /range) response
// from the shadow's token cache, delta-encoded exactly as a real server
// would emit it — the enriched response is indistinguishable on the wire.
func (p *EnrichmentProxy) tokensFromShadow(payload Payload) *SemanticTokens {
	doc := p.shadows.Get(payload.URI)
	if doc == nil {
		return &SemanticTokens{}
	}
	perLine := make([][]line.Token, doc.LineCount())
	texts := make([]string, doc.LineCount())
	first, last := 0, doc.LineCount()-1
	if payload.Range != nil {
		first, last = payload.Range.Start.Line, payload.Range.End.Line
		if last >= doc.LineCount() {
			last = doc.LineCount() - 1
		}
	}
	for i := 0; i < doc.LineCount(); i++ {
		texts[i] = doc.Line(i)
		if i >= first && i <= last {
			perLine[i] = doc.Tokens(i)
		}
	}
	return &SemanticTokens{Data: encodeSemanticTokens(perLine, texts)}
}

func (p *EnrichmentProxy) fallbackCompletion(payload Payload) []CompletionItemFallback {
	seen := make(map[string]bool)
	var items []CompletionItemFallback

	if lexer, ok := p.lexerFor(payload.Path); ok {
		type keywordSource interface{ Keywords() []string }
		if ks, ok := lexer.(keywordSource); ok {
			for _, kw := range ks.Keywords() {
				if !seen[kw] {
					seen[kw] = true
					items = append(items, CompletionItemFallback{Label: kw, Kind: CompletionItemKindKeyword})
				}
			}
		}
	}

	if doc := p.shadows.Get(payload.URI); doc != nil {
		for _, id := range doc.Identifiers() {
			if !seen[id] {
				seen[id] = true
				items = append(items, CompletionItemFallback{Label: id, Kind: CompletionItemKindVariable})
			}
		}
	}
	return items
}
