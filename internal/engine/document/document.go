// Package document ties together the EditorLine array, the edit log, and
// file I/O into the Editor's content model: the thing EditActions apply
// against and cursors navigate.
package document

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

// RevisionID stamps every mutation so caches can invalidate cheaply by
// comparing an opaque counter instead of deep-comparing content.
type RevisionID uint64

// LineEnding is the normalized line terminator used when writing a file
// back out. Content is always held internally split on '\n'.
type LineEnding int

// Supported line endings.
const (
	LF LineEnding = iota
	CRLF
	CR
)

// Sequence returns the literal byte sequence for the ending.
func (e LineEnding) Sequence() string {
	switch e {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

// String implements fmt.Stringer.
func (e LineEnding) String() string {
	switch e {
	case CRLF:
		return "CRLF"
	case CR:
		return "CR"
	default:
		return "LF"
	}
}

// DefaultBigFileThreshold is the byte size above which Open reports
// ErrFileTooLarge so callers can warn the user before proceeding.
const DefaultBigFileThreshold = 10 * 1024 * 1024

// Document holds the EditorLine array for one open file plus its
// identity (path, line ending, revision) and edit history. Document
// implements edit.Content and cursor.Source so the edit and cursor
// packages never need to know about files at all.
type Document struct {
	path       string
	lines      []*line.EditorLine
	ending     LineEnding
	revision   RevisionID
	history    *edit.History
	actionBuf  *edit.ActionBuffer
	bigFileMax int64

	encoding      edit.Encoding
	pendingEvents []edit.ChangeEvent
}

// Option configures a Document at construction.
type Option func(*Document)

// WithMaxHistory sets the undo/redo stack cap.
func WithMaxHistory(n int) Option {
	return func(d *Document) { d.history = edit.NewHistory(n) }
}

// WithBigFileThreshold overrides DefaultBigFileThreshold.
func WithBigFileThreshold(bytes int64) Option {
	return func(d *Document) { d.bigFileMax = bytes }
}

// WithEncoding sets the position encoding used to translate char-index
// edits into LSP change-event offsets. Callers normally leave this at its
// default (UTF-16, the LSP protocol default) until a server negotiates
// something else.
func WithEncoding(enc edit.Encoding) Option {
	return func(d *Document) { d.encoding = enc }
}

// New creates an empty Document holding a single empty line, never zero
// lines, so cursors and edits always have a line to land on.
func New(opts ...Option) *Document {
	d := &Document{
		lines:      []*line.EditorLine{line.New("")},
		ending:     LF,
		history:    edit.NewHistory(0),
		actionBuf:  edit.NewActionBuffer(),
		bigFileMax: DefaultBigFileThreshold,
		encoding:   edit.UTF16Encoding,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromString builds a Document from in-memory text, splitting on the
// detected line ending.
func NewFromString(text string, opts ...Option) *Document {
	d := New(opts...)
	d.setContent(text)
	return d
}

// Open reads path into a Document. Files are validated as UTF-8; a file
// larger than the configured threshold fails with ErrFileTooLarge so the
// caller can surface a "big file" warning before proceeding (the caller
// may retry by raising WithBigFileThreshold).
func Open(path string, opts ...Option) (*Document, error) {
	d := New(opts...)
	for _, opt := range opts {
		opt(d)
	}
	d.path = path

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > d.bigFileMax {
		return nil, ErrFileTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("line %d: %w", invalidUTF8Line(data), ErrEncodingInvalid)
	}

	d.setContent(string(data))
	return d, nil
}

// invalidUTF8Line reports the 1-based line number of the first invalid
// UTF-8 sequence in data.
func invalidUTF8Line(data []byte) int {
	ln := 1
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return ln
		}
		if r == '\n' {
			ln++
		}
		data = data[size:]
	}
	return ln
}

func detectEnding(text string) LineEnding {
	if strings.Contains(text, "\r\n") {
		return CRLF
	}
	if strings.Contains(text, "\r") {
		return CR
	}
	return LF
}

func (d *Document) setContent(text string) {
	d.ending = detectEnding(text)
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	parts := strings.Split(normalized, "\n")
	d.lines = make([]*line.EditorLine, len(parts))
	for i, p := range parts {
		d.lines[i] = line.New(p)
	}
	d.bumpRevision()
}

// Save writes the Document's content to its path atomically: a temp file
// in the same directory is written and fsynced, then renamed over the
// destination.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs writes content to path, setting it as the Document's path.
func (d *Document) SaveAs(path string) error {
	var buf bytes.Buffer
	sep := d.ending.Sequence()
	for i, l := range d.lines {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(l.Text())
	}

	tmp, err := os.CreateTemp(dirOf(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	d.path = path
	return nil
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}

// Path returns the Document's current file path ("" if never saved).
func (d *Document) Path() string {
	return d.path
}

// Revision returns the current RevisionID.
func (d *Document) Revision() RevisionID {
	return d.revision
}

func (d *Document) bumpRevision() {
	d.revision++
}

// History returns the undo/redo stack.
func (d *Document) History() *edit.History {
	return d.history
}

// ActionBuffer returns the coalescing buffer for in-progress edits.
func (d *Document) ActionBuffer() *edit.ActionBuffer {
	return d.actionBuf
}

// --- edit.Content ---

// LineCount implements edit.Content and cursor.Source.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line implements edit.Content.
func (d *Document) Line(i int) *line.EditorLine {
	if i < 0 || i >= len(d.lines) {
		return nil
	}
	return d.lines[i]
}

// InsertLine implements edit.Content.
func (d *Document) InsertLine(i int, l *line.EditorLine) {
	d.lines = append(d.lines, nil)
	copy(d.lines[i+1:], d.lines[i:])
	d.lines[i] = l
	d.bumpRevision()
}

// RemoveLine implements edit.Content.
func (d *Document) RemoveLine(i int) *line.EditorLine {
	l := d.lines[i]
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	d.bumpRevision()
	return l
}

// ReplaceLine implements edit.Content.
func (d *Document) ReplaceLine(i int, l *line.EditorLine) {
	d.lines[i] = l
	d.bumpRevision()
}

// --- cursor.Source ---

// LineText implements cursor.Source.
func (d *Document) LineText(lineIdx int) string {
	if lineIdx < 0 || lineIdx >= len(d.lines) {
		return ""
	}
	return d.lines[lineIdx].Text()
}

// Touch bumps the revision counter. Callers that mutate a Line directly
// (bypassing ApplyAction, e.g. while building up a coalescing record)
// must call this so RevisionID-keyed caches still invalidate.
func (d *Document) Touch() {
	d.bumpRevision()
}

// ApplyAction applies an EditAction, bumps the revision, and records it
// in history. Callers that want coalescing should go through
// ActionBuffer instead and push the flushed result here.
//
// ChangeEvents for a are computed against the pre-image content (before
// Apply mutates it) and queued for the next DrainChangeEvents call, so
// an LSP sync payload can be built from exactly what this edit changed
// without re-diffing the whole buffer.
func (d *Document) ApplyAction(a edit.EditAction) (line.Position, *line.Selection, error) {
	events := a.ChangeEvents(d.encoding, d)
	pos, sel, err := a.Apply(d)
	d.bumpRevision()
	if err == nil {
		d.history.Push(a)
		d.pendingEvents = append(d.pendingEvents, events...)
	}
	return pos, sel, err
}

// Encoding returns the position encoding used to translate char-index
// edits into LSP change-event offsets.
func (d *Document) Encoding() edit.Encoding {
	return d.encoding
}

// SetEncoding rebinds the negotiated position encoding, normally called
// once after an LSP server declares its position encoding capability.
func (d *Document) SetEncoding(enc edit.Encoding) {
	d.encoding = enc
}

// QueueChangeEvents appends pre-computed change events for an edit that
// was applied outside of ApplyAction (e.g. the ActionBuffer coalescing
// path, which mutates lines directly and only constructs an EditAction
// at flush time).
func (d *Document) QueueChangeEvents(evs []edit.ChangeEvent) {
	d.pendingEvents = append(d.pendingEvents, evs...)
}

// DrainChangeEvents returns every change event queued since the last
// call and clears the queue. The editor's outer loop calls this after
// handling each key event to build the LSP incremental sync payload.
func (d *Document) DrainChangeEvents() []edit.ChangeEvent {
	if len(d.pendingEvents) == 0 {
		return nil
	}
	evs := d.pendingEvents
	d.pendingEvents = nil
	return evs
}

// Undo pops the most recent action and reapplies its inverse.
func (d *Document) Undo() (line.Position, *line.Selection, error) {
	pos, sel, err := d.history.Undo(d)
	d.bumpRevision()
	return pos, sel, err
}

// Redo reapplies the most recently undone action.
func (d *Document) Redo() (line.Position, *line.Selection, error) {
	pos, sel, err := d.history.Redo(d)
	d.bumpRevision()
	return pos, sel, err
}

// Text returns the full document content as a single LF-joined string,
// regardless of the on-disk line ending.
func (d *Document) Text() string {
	parts := make([]string, len(d.lines))
	for i, l := range d.lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}
