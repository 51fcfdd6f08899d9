// Package line implements EditorLine, the unit of text storage for the
// editor: one logical line's text plus its token stream, diagnostic
// overlay, and render cache.
package line

import (
	"unicode/utf16"
	"unicode/utf8"
)

// CacheKey is the render cache a line remembers about its own last paint:
// which screen row it was painted at, what selection range (if any)
// intersected it, and the line's own mutation stamp at paint time. A
// line's cache is valid only while all three match the current paint
// request; mutating one line never disturbs its neighbors' caches.
type CacheKey struct {
	Row      int
	HasSel   bool
	SelStart int
	SelEnd   int
	Revision uint16
}

// zeroCache is the reset value; Row -1 never matches a real paint request.
var zeroCache = CacheKey{Row: -1}

// EditorLine is one logical line of text: a growable rune sequence, a
// fast-path flag for pure-ASCII content, a token vector, optional
// diagnostics, and a render cache key. See the package invariants below.
//
// Invariant: CharCount() == number of Unicode scalar values in Text();
// IsSimple() iff byte length == CharCount().
type EditorLine struct {
	text     []rune
	isSimple bool

	tokens      []Token
	diagnostics []Diagnostic

	cache CacheKey

	// revision counts this line's own mutations, so the renderer can tell
	// a line that changed since its last paint from one that merely moved
	// rows. It never changes when a different line is edited.
	revision uint16

	// selCache memoizes the last (from,to) char-range query against this
	// line's selection-painting helper, so repeated queries for an
	// unchanged selection don't re-walk the line.
	selCache      Selection
	selCacheValid bool
}

// New creates an EditorLine from a string.
func New(text string) *EditorLine {
	l := &EditorLine{}
	l.setText(text)
	return l
}

// NewFromRunes creates an EditorLine from a rune slice, taking ownership.
func NewFromRunes(text []rune) *EditorLine {
	l := &EditorLine{text: text}
	l.recomputeSimple()
	return l
}

func (l *EditorLine) setText(s string) {
	l.text = []rune(s)
	l.recomputeSimple()
}

func (l *EditorLine) recomputeSimple() {
	l.isSimple = len(l.text) == l.byteLen()
}

func (l *EditorLine) byteLen() int {
	n := 0
	for _, r := range l.text {
		n += utf8.RuneLen(r)
	}
	return n
}

// Text returns the line's content as a string.
func (l *EditorLine) Text() string {
	return string(l.text)
}

// Runes returns the line's content as a rune slice. Callers must not
// mutate the returned slice.
func (l *EditorLine) Runes() []rune {
	return l.text
}

// CharCount returns the number of Unicode scalar values in the line.
func (l *EditorLine) CharCount() int {
	return len(l.text)
}

// ByteLen returns the UTF-8 byte length of the line.
func (l *EditorLine) ByteLen() int {
	if l.isSimple {
		return len(l.text)
	}
	return l.byteLen()
}

// IsSimple reports whether the line is pure ASCII, enabling direct byte
// indexing instead of a scalar walk.
func (l *EditorLine) IsSimple() bool {
	return l.isSimple
}

func (l *EditorLine) checkIndex(idx int) error {
	if idx < 0 || idx > len(l.text) {
		return ErrInvalidCharIndex
	}
	return nil
}

func (l *EditorLine) clampIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > len(l.text) {
		return len(l.text)
	}
	return idx
}

// Insert inserts s at char index idx.
func (l *EditorLine) Insert(idx int, s string) error {
	if err := l.checkIndex(idx); err != nil {
		idx = l.clampIndex(idx)
		defer l.clearCache()
		l.insertAt(idx, []rune(s))
		return fail(err)
	}
	l.insertAt(idx, []rune(s))
	l.clearCache()
	return nil
}

func (l *EditorLine) insertAt(idx int, r []rune) {
	out := make([]rune, 0, len(l.text)+len(r))
	out = append(out, l.text[:idx]...)
	out = append(out, r...)
	out = append(out, l.text[idx:]...)
	l.text = out
	l.recomputeSimple()
}

// Remove removes the char range [start, end).
func (l *EditorLine) Remove(start, end int) error {
	if start < 0 || end < start || end > len(l.text) {
		s, e := l.clampIndex(start), l.clampIndex(end)
		if e < s {
			e = s
		}
		defer l.clearCache()
		l.removeRange(s, e)
		return fail(ErrInvalidRange)
	}
	l.removeRange(start, end)
	l.clearCache()
	return nil
}

func (l *EditorLine) removeRange(start, end int) {
	out := make([]rune, 0, len(l.text)-(end-start))
	out = append(out, l.text[:start]...)
	out = append(out, l.text[end:]...)
	l.text = out
	l.recomputeSimple()
}

// ReplaceRange replaces the char range [start, end) with s.
func (l *EditorLine) ReplaceRange(start, end int, s string) error {
	if start < 0 || end < start || end > len(l.text) {
		errRet := fail(ErrInvalidRange)
		start = l.clampIndex(start)
		end = l.clampIndex(end)
		if end < start {
			end = start
		}
		l.replaceAt(start, end, []rune(s))
		return errRet
	}
	l.replaceAt(start, end, []rune(s))
	return nil
}

func (l *EditorLine) replaceAt(start, end int, r []rune) {
	out := make([]rune, 0, len(l.text)-(end-start)+len(r))
	out = append(out, l.text[:start]...)
	out = append(out, r...)
	out = append(out, l.text[end:]...)
	l.text = out
	l.recomputeSimple()
	l.clearCache()
}

// Push appends s to the end of the line.
func (l *EditorLine) Push(s string) {
	l.text = append(l.text, []rune(s)...)
	l.recomputeSimple()
	l.clearCache()
}

// SplitAt splits the line at char index idx, returning a new EditorLine
// holding the suffix. The receiver retains the prefix. Tokens and
// diagnostics are not redistributed — callers that need lexing to rerun
// should call SetTokens/SetDiagnostics on both halves afterward.
func (l *EditorLine) SplitAt(idx int) (*EditorLine, error) {
	var retErr error
	if err := l.checkIndex(idx); err != nil {
		retErr = fail(err)
		idx = l.clampIndex(idx)
	}
	suffix := append([]rune(nil), l.text[idx:]...)
	l.text = l.text[:idx]
	l.recomputeSimple()
	l.clearCache()
	return NewFromRunes(suffix), retErr
}

// CharToUTF8 translates a char index to a UTF-8 byte offset.
func (l *EditorLine) CharToUTF8(charIdx int) (int, error) {
	if charIdx < 0 || charIdx > len(l.text) {
		return l.clampByteOffset(l.clampIndex(charIdx)), fail(ErrInvalidCharIndex)
	}
	if l.isSimple {
		return charIdx, nil
	}
	return l.clampByteOffset(charIdx), nil
}

func (l *EditorLine) clampByteOffset(charIdx int) int {
	n := 0
	for _, r := range l.text[:charIdx] {
		n += utf8.RuneLen(r)
	}
	return n
}

// UTF8ToChar translates a UTF-8 byte offset back to a char index.
func (l *EditorLine) UTF8ToChar(byteOffset int) (int, error) {
	if l.isSimple {
		if byteOffset < 0 || byteOffset > len(l.text) {
			return l.clampIndex(byteOffset), fail(ErrInvalidCharIndex)
		}
		return byteOffset, nil
	}
	n := 0
	for i, r := range l.text {
		if n == byteOffset {
			return i, nil
		}
		n += utf8.RuneLen(r)
	}
	if n == byteOffset {
		return len(l.text), nil
	}
	return len(l.text), fail(ErrInvalidCharIndex)
}

// CharToUTF16 translates a char index to a UTF-16 code-unit offset.
func (l *EditorLine) CharToUTF16(charIdx int) (int, error) {
	if charIdx < 0 || charIdx > len(l.text) {
		idx := l.clampIndex(charIdx)
		return l.utf16Offset(idx), fail(ErrInvalidCharIndex)
	}
	return l.utf16Offset(charIdx), nil
}

func (l *EditorLine) utf16Offset(charIdx int) int {
	n := 0
	for _, r := range l.text[:charIdx] {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// UTF16ToChar translates a UTF-16 code-unit offset back to a char index.
func (l *EditorLine) UTF16ToChar(units int) (int, error) {
	n := 0
	for i, r := range l.text {
		if n == units {
			return i, nil
		}
		n += len(utf16.Encode([]rune{r}))
	}
	if n == units {
		return len(l.text), nil
	}
	return len(l.text), fail(ErrInvalidCharIndex)
}

// Tokens returns the line's current token vector.
func (l *EditorLine) Tokens() []Token {
	return l.tokens
}

// SetTokens replaces the line's token vector. The render cache is
// invalidated: new tokens mean new colors even when the text is
// unchanged.
func (l *EditorLine) SetTokens(tokens []Token) {
	l.tokens = tokens
	l.clearCache()
}

// Diagnostics returns the line's diagnostic set.
func (l *EditorLine) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// SetDiagnostics installs diagnostics on the line, flagging any token
// whose range overlaps a diagnostic so the renderer can underline it.
// Tokens are never reordered or split.
func (l *EditorLine) SetDiagnostics(diags []Diagnostic) {
	if len(diags) == 0 && len(l.diagnostics) == 0 {
		return
	}
	l.diagnostics = diags
	for i := range l.tokens {
		l.tokens[i].Diagnostic = SeverityNone
	}
	for _, d := range diags {
		for i := range l.tokens {
			tok := l.tokens[i]
			hit := tok.Overlaps(d.StartChar) || (tok.StartChar < d.EndChar() && d.StartChar < tok.EndChar())
			if hit && d.Severity > tok.Diagnostic {
				l.tokens[i].Diagnostic = d.Severity
			}
		}
	}
	l.clearCache()
}

// DropDiagnostics clears all diagnostics and their token flags.
func (l *EditorLine) DropDiagnostics() {
	l.diagnostics = nil
	for i := range l.tokens {
		l.tokens[i].Diagnostic = SeverityNone
	}
	l.clearCache()
}

// AggregateSeverity returns the single highest diagnostic severity on
// this line, used by the gutter/renderer to choose one marker color.
func (l *EditorLine) AggregateSeverity() Severity {
	return aggregateSeverity(l.diagnostics)
}

// CacheKey returns the line's current render cache key.
func (l *EditorLine) CacheKey() CacheKey {
	return l.cache
}

// SetCacheKey records the row/selection this line was just painted at.
func (l *EditorLine) SetCacheKey(k CacheKey) {
	l.cache = k
}

// CacheValid reports whether the given paint request matches the line's
// last recorded cache key exactly.
func (l *EditorLine) CacheValid(k CacheKey) bool {
	return l.cache == k
}

// clearCache invalidates the render cache and bumps the line's own
// mutation stamp; called by every mutator.
func (l *EditorLine) clearCache() {
	l.cache = zeroCache
	l.revision++
	l.selCacheValid = false
}

// Revision returns the line's own mutation stamp, part of the render
// cache key.
func (l *EditorLine) Revision() uint16 {
	return l.revision
}

// ClearCache is the exported form, for callers (e.g. the edit log) that
// mutate a line out of band and need to force a repaint.
func (l *EditorLine) ClearCache() {
	l.clearCache()
}

// CachedSelection returns the last selection range queried against this
// line's selection-painting helper, if the cache is still valid.
func (l *EditorLine) CachedSelection() (Selection, bool) {
	return l.selCache, l.selCacheValid
}

// CacheSelection memoizes a selection-range query result.
func (l *EditorLine) CacheSelection(s Selection) {
	l.selCache = s
	l.selCacheValid = true
}
