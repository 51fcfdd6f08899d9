package highlight

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// rule is a regex-driven highlighting rule; matches translate to
// line.Token spans of the given type.
type rule struct {
	pattern   *regexp.Regexp
	tokenType line.TokenType
	submatch  int
}

type multiLineRule struct {
	start, end string
	tokenType  line.TokenType
	state      LexerState
}

// SimpleHighlighter is a regex-and-keyword-table lexer: one rule pass over
// the line plus an identifier pass that promotes keyword matches, mirroring
// a hand-rolled recursive-descent lexer closely enough for editor-grade
// highlighting without one.
type SimpleHighlighter struct {
	language   string
	extensions []string
	rules      []rule
	keywords   map[string]line.TokenType
	multiLine  map[string]multiLineRule
}

// NewSimpleHighlighter creates an empty highlighter for language, claiming
// the given file extensions.
func NewSimpleHighlighter(language string, extensions []string) *SimpleHighlighter {
	return &SimpleHighlighter{
		language:   language,
		extensions: extensions,
		keywords:   make(map[string]line.TokenType),
		multiLine:  make(map[string]multiLineRule),
	}
}

// AddRule registers a regex rule; pattern is compiled with regexp.MustCompile.
func (h *SimpleHighlighter) AddRule(pattern string, t line.TokenType) *SimpleHighlighter {
	h.rules = append(h.rules, rule{pattern: regexp.MustCompile(pattern), tokenType: t})
	return h
}

// AddSubmatchRule is like AddRule but highlights only the given capture
// group instead of the whole match (e.g. just the name in "func foo(").
func (h *SimpleHighlighter) AddSubmatchRule(pattern string, submatch int, t line.TokenType) *SimpleHighlighter {
	h.rules = append(h.rules, rule{pattern: regexp.MustCompile(pattern), tokenType: t, submatch: submatch})
	return h
}

// AddKeywords assigns t to every listed identifier.
func (h *SimpleHighlighter) AddKeywords(t line.TokenType, keywords ...string) *SimpleHighlighter {
	for _, kw := range keywords {
		h.keywords[kw] = t
	}
	return h
}

// AddMultiLine registers a construct that can span multiple lines (block
// comments, triple-quoted strings), parked in state between start and end.
func (h *SimpleHighlighter) AddMultiLine(start, end string, t line.TokenType, state LexerState) *SimpleHighlighter {
	h.multiLine[start] = multiLineRule{start: start, end: end, tokenType: t, state: state}
	return h
}

func (h *SimpleHighlighter) Language() string        { return h.language }
func (h *SimpleHighlighter) FileExtensions() []string { return h.extensions }

// Keywords returns every identifier this highlighter's AddKeywords calls
// registered, seeding a completion fallback's init_definitions set when
// the attached language server doesn't supply its own.
func (h *SimpleHighlighter) Keywords() []string {
	out := make([]string, 0, len(h.keywords))
	for kw := range h.keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// HighlightLine tokenizes text, continuing any multi-line construct left
// open by prevState.
func (h *SimpleHighlighter) HighlightLine(text string, prevState LexerState) ([]line.Token, LexerState) {
	if prevState != LexerStateNormal {
		endIdx, found := h.findMultiLineEnd(text, prevState)
		if !found {
			return []line.Token{h.spanToken(text, 0, len(text), h.tokenTypeForState(prevState))}, prevState
		}
		head := h.spanToken(text, 0, endIdx, h.tokenTypeForState(prevState))
		rest := text[endIdx:]
		if rest == "" {
			return []line.Token{head}, LexerStateNormal
		}
		tail, newState := h.highlightNormal(rest)
		offset := utf8.RuneCountInString(text[:endIdx])
		for i := range tail {
			tail[i].StartChar += offset
		}
		return append([]line.Token{head}, tail...), newState
	}
	return h.highlightNormal(text)
}

func (h *SimpleHighlighter) highlightNormal(text string) ([]line.Token, LexerState) {
	covered := make([]bool, len(text))
	var tokens []line.Token
	state := LexerStateNormal

	for start, ml := range h.multiLine {
		idx := strings.Index(text, start)
		if idx < 0 || h.isCovered(covered, idx, idx+len(start)) {
			continue
		}
		if endIdx := strings.Index(text[idx+len(start):], ml.end); endIdx >= 0 {
			endPos := idx + len(start) + endIdx + len(ml.end)
			tokens = append(tokens, h.spanToken(text, idx, endPos, ml.tokenType))
			h.markCovered(covered, idx, endPos)
		} else {
			tokens = append(tokens, h.spanToken(text, idx, len(text), ml.tokenType))
			h.markCovered(covered, idx, len(text))
			state = ml.state
		}
	}

	for _, r := range h.rules {
		for _, m := range r.pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if r.submatch > 0 && len(m) > r.submatch*2+1 {
				start, end = m[r.submatch*2], m[r.submatch*2+1]
			}
			if start >= 0 && end > start && !h.isCovered(covered, start, end) {
				tokens = append(tokens, h.spanToken(text, start, end, r.tokenType))
				h.markCovered(covered, start, end)
			}
		}
	}

	tokens = append(tokens, h.findIdentifiers(text, covered)...)
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].StartChar < tokens[j].StartChar })
	return tokens, state
}

func (h *SimpleHighlighter) findMultiLineEnd(text string, state LexerState) (int, bool) {
	for _, ml := range h.multiLine {
		if ml.state == state {
			if idx := strings.Index(text, ml.end); idx >= 0 {
				return idx + len(ml.end), true
			}
			return 0, false
		}
	}
	return 0, false
}

func (h *SimpleHighlighter) tokenTypeForState(state LexerState) line.TokenType {
	for _, ml := range h.multiLine {
		if ml.state == state {
			return ml.tokenType
		}
	}
	return line.TokenNone
}

func (h *SimpleHighlighter) findIdentifiers(text string, covered []bool) []line.Token {
	var tokens []line.Token
	i := 0
	for i < len(text) {
		if covered[i] {
			i++
			continue
		}
		r := rune(text[i])
		if !unicode.IsLetter(r) && r != '_' {
			i++
			continue
		}
		start := i
		for i < len(text) {
			r = rune(text[i])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			i++
		}
		end := i
		if h.isCovered(covered, start, end) {
			continue
		}
		word := text[start:end]
		t := line.TokenVariable
		if kw, ok := h.keywords[word]; ok {
			t = kw
		} else {
			continue // plain identifiers are left untyped; the renderer's default style applies
		}
		tokens = append(tokens, h.spanToken(text, start, end, t))
		h.markCovered(covered, start, end)
	}
	return tokens
}

func (h *SimpleHighlighter) isCovered(covered []bool, start, end int) bool {
	if start < 0 || start >= len(covered) {
		return false
	}
	for i := start; i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

func (h *SimpleHighlighter) markCovered(covered []bool, start, end int) {
	if start < 0 {
		start = 0
	}
	for i := start; i < end && i < len(covered); i++ {
		covered[i] = true
	}
}

// spanToken converts a byte-offset [start,end) match within text into a
// char-offset line.Token, since regex matching operates on bytes but the
// rest of the system addresses by Unicode scalar.
func (h *SimpleHighlighter) spanToken(text string, start, end int, t line.TokenType) line.Token {
	startChar := utf8.RuneCountInString(text[:start])
	length := utf8.RuneCountInString(text[start:end])
	return line.Token{StartChar: startChar, Length: length, Type: t}
}
