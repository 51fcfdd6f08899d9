package highlight

import (
	"strings"
	"sync"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// LexerState carries a lexer's state across a line boundary, for
// constructs that span lines (block comments, triple-quoted strings).
type LexerState uint32

// Common lexer states shared by every SimpleHighlighter.
const (
	LexerStateNormal LexerState = iota
	LexerStateBlockComment
	LexerStateStringDouble
	LexerStateStringSingle
	LexerStateStringBacktick
)

// Highlighter tokenizes one line at a time, threading LexerState across
// calls for multi-line constructs.
type Highlighter interface {
	HighlightLine(text string, prevState LexerState) ([]line.Token, LexerState)
	Language() string
	FileExtensions() []string
}

// Registry resolves a Highlighter by language name or file extension.
type Registry struct {
	mu         sync.RWMutex
	byLanguage map[string]Highlighter
	byExt      map[string]Highlighter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage: make(map[string]Highlighter),
		byExt:      make(map[string]Highlighter),
	}
}

// Register adds h under its own language name and every extension it claims.
func (r *Registry) Register(h Highlighter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLanguage[h.Language()] = h
	for _, ext := range h.FileExtensions() {
		r.byExt[strings.ToLower(ext)] = h
	}
}

// ForLanguage looks up a highlighter by language ID (e.g. "go", "python").
func (r *Registry) ForLanguage(lang string) (Highlighter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byLanguage[lang]
	return h, ok
}

// ForExtension looks up a highlighter by file extension (e.g. ".go").
func (r *Registry) ForExtension(ext string) (Highlighter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byExt[strings.ToLower(ext)]
	return h, ok
}

// Default registers every built-in highlighter.
func Default() *Registry {
	r := NewRegistry()
	r.Register(GoHighlighter())
	r.Register(PythonHighlighter())
	r.Register(TypeScriptHighlighter())
	r.Register(RustHighlighter())
	r.Register(MarkdownHighlighter())
	return r
}
