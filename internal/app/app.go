package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/halvorsen/ligature/internal/editor"
	"github.com/halvorsen/ligature/internal/engine/document"
	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/highlight"
	"github.com/halvorsen/ligature/internal/lsp"
	"github.com/halvorsen/ligature/internal/renderer"
	"github.com/halvorsen/ligature/internal/renderer/backend"
	"github.com/halvorsen/ligature/internal/renderer/core"
)

// Options configures an App at construction, filled in from command-line
// flags by cmd/ligature.
type Options struct {
	// Path is the file to open. An empty Path opens a scratch buffer.
	Path string

	// LogLevel sets the logger's minimum level ("debug", "info", "warn",
	// "error").
	LogLevel string

	// LSPCommand, if non-empty, is the language server executable to
	// launch for Path's detected language. LSPArgs are its arguments.
	// A failure to start it never aborts startup: the editor falls back
	// to the local lexer per the capability-gated enrichment table.
	LSPCommand string
	LSPArgs    []string

	// ReadOnly disables every mutating Editor operation.
	ReadOnly bool
}

// App is the central coordinator tying a Document, Editor, EnrichmentProxy
// and Renderer to a terminal Backend and a default keymap.
type App struct {
	mu sync.Mutex

	opts   Options
	logger *Logger

	doc       *document.Document
	editor    *editor.Editor
	clipboard Clipboard

	lspManager *lsp.Manager
	proxy      *lsp.EnrichmentProxy
	uri        lsp.DocumentURI

	highlighter *highlight.Registry
	lineStates  []highlight.LexerState

	backend  backend.Backend
	renderer *renderer.Renderer
	topLine  int

	statusMessage string
	prompt        *promptState

	symbolCycle    []lsp.DocumentSymbol
	symbolCycleIdx int

	locationCycle    []lsp.Location
	locationCycleIdx int

	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// New opens Path (or a scratch buffer) and wires an Editor over it. It
// never returns an error for a missing LSP server; startLSP logs that
// failure and the editor continues with local highlighting only.
func New(opts Options) (*App, error) {
	cfg := DefaultLoggerConfig()
	if opts.LogLevel != "" {
		cfg.Level = ParseLogLevel(opts.LogLevel)
	}
	logger := NewLogger(cfg)

	var doc *document.Document
	var err error
	if opts.Path == "" {
		doc = document.NewFromString("")
	} else {
		doc, err = document.Open(opts.Path)
		if err != nil {
			return nil, err
		}
	}

	ed := editor.New(doc)

	a := &App{
		opts:        opts,
		logger:      logger,
		doc:         doc,
		editor:      ed,
		clipboard:   newMemoryClipboard(),
		done:        make(chan struct{}),
		highlighter: highlight.Default(),
	}

	if opts.LSPCommand != "" {
		a.startLSP()
	}
	a.retokenizeAll()

	return a, nil
}

// startLSP spawns a language server for the open file's detected language
// and wraps it in an EnrichmentProxy. Any failure is logged and leaves
// a.proxy nil; TokensForLine and completion then fall back to the local
// lexer exclusively. A dead or missing server downgrades features, it
// never aborts the editor.
func (a *App) startLSP() {
	langID := lsp.DetectLanguageID(a.pathOrScratch())
	if langID == "" {
		return
	}
	mgr := lsp.NewManager(lsp.WithRequestTimeout(10 * time.Second))
	mgr.RegisterServer(langID, lsp.ServerConfig{Command: a.opts.LSPCommand, Args: a.opts.LSPArgs})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server, err := mgr.ServerForFile(ctx, a.pathOrScratch())
	if err != nil {
		a.logger.WithComponent("lsp").Warn("failed to start language server: %v", err)
		return
	}

	a.lspManager = mgr
	a.proxy = lsp.NewEnrichmentProxy(server, a.highlighter)
	a.doc.SetEncoding(a.proxy.NegotiatedEncoding())
	a.uri = lsp.DocumentURI("file://" + a.pathOrScratch())
	a.proxy.DidOpen(a.uri, a.pathOrScratch(), a.doc.Text())

	server.OnDiagnostics(a.applyDiagnostics)

	if err := server.OpenDocument(ctx, a.pathOrScratch(), langID, a.doc.Text()); err != nil {
		a.logger.WithComponent("lsp").Warn("failed to open document with language server: %v", err)
	}

	if a.proxy.HasSemanticTokens() {
		if err := a.proxy.RefreshSemanticTokens(ctx, a.pathOrScratch(), a.lineTexts()); err != nil {
			a.logger.WithComponent("lsp").Warn("failed to fetch semantic tokens: %v", err)
		}
	}
}

// lineTexts returns every line of a.doc as plain strings, the shape
// RefreshSemanticTokens needs to decode server positions against.
func (a *App) lineTexts() []string {
	texts := make([]string, a.doc.LineCount())
	for i := 0; i < a.doc.LineCount(); i++ {
		texts[i] = a.doc.LineText(i)
	}
	return texts
}

// applyDiagnostics is registered with the language server as its
// diagnostics callback. It converts the server's per-document diagnostic
// list into line.Diagnostic and assigns each to the EditorLine it
// belongs to, so the renderer's diagnostic-underline pass sees them.
func (a *App) applyDiagnostics(uri lsp.DocumentURI, diagnostics []lsp.Diagnostic) {
	if uri != a.uri {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	perLine := make(map[int][]line.Diagnostic)
	for _, d := range diagnostics {
		ln := d.Range.Start.Line
		text := a.doc.LineText(ln)
		start := lsp.UTF16ToCharIndex(text, d.Range.Start.Character)
		end := lsp.UTF16ToCharIndex(text, d.Range.End.Character)
		if end < start {
			end = start
		}
		perLine[ln] = append(perLine[ln], line.Diagnostic{
			StartChar: start,
			Length:    end - start,
			Severity:  severityFromLSP(d.Severity),
			Message:   d.Message,
		})
	}

	for i := 0; i < a.doc.LineCount(); i++ {
		l := a.doc.Line(i)
		if l == nil {
			continue
		}
		l.SetDiagnostics(perLine[i])
	}
}

func severityFromLSP(s lsp.DiagnosticSeverity) line.Severity {
	switch s {
	case lsp.DiagnosticSeverityError:
		return line.SeverityError
	case lsp.DiagnosticSeverityWarning:
		return line.SeverityWarning
	case lsp.DiagnosticSeverityInformation:
		return line.SeverityInfo
	case lsp.DiagnosticSeverityHint:
		return line.SeverityHint
	default:
		return line.SeverityError
	}
}

// lineTokens returns the tokens for one line of path, sourced from the
// attached language server's real semantic tokens when available, or
// from the local lexer registry otherwise.
func (a *App) lineTokens(path string, lineNum int, text string, prevState highlight.LexerState) ([]line.Token, highlight.LexerState) {
	if a.proxy != nil {
		return a.proxy.TokensForLine(path, lineNum, text, prevState)
	}
	lexer, ok := a.highlighter.ForExtension(strings.ToLower(filepath.Ext(path)))
	if !ok {
		return nil, prevState
	}
	return lexer.HighlightLine(text, prevState)
}

// retokenizeFrom re-lexes lines [from, doc.LineCount()) threading
// LexerState forward, stopping once a line's resulting state matches what
// was previously recorded there — mirroring ShadowDocument.Retokenize's
// convergence check, since an edit can only affect lines below it by
// changing the state handed down to the next one.
func (a *App) retokenizeFrom(from int) {
	if from < 0 {
		from = 0
	}
	n := a.doc.LineCount()
	if from > n {
		from = n
	}
	for len(a.lineStates) < n {
		a.lineStates = append(a.lineStates, highlight.LexerStateNormal)
	}
	if len(a.lineStates) > n {
		a.lineStates = a.lineStates[:n]
	}

	path := a.pathOrScratch()
	state := highlight.LexerStateNormal
	if from > 0 {
		state = a.lineStates[from-1]
	}
	for i := from; i < n; i++ {
		l := a.doc.Line(i)
		if l == nil {
			break
		}
		prevRecorded := a.lineStates[i]
		tokens, next := a.lineTokens(path, i, l.Text(), state)
		l.SetTokens(tokens)
		a.lineStates[i] = next
		state = next
		if i > from && next == prevRecorded {
			break
		}
	}
}

// retokenizeAll re-lexes the whole document, e.g. after a full reload or
// an undo/redo that can't be expressed as a minimal dirty range.
func (a *App) retokenizeAll() {
	a.lineStates = nil
	a.retokenizeFrom(0)
}

// refreshServerTokens re-fetches semantic tokens from the language server
// for the whole document and re-paints every line from them. Called after
// a sync reaches the server, since the server's own token cache is what
// changed, not anything local retokenizeFrom could derive.
func (a *App) refreshServerTokens() {
	if a.proxy == nil || !a.proxy.HasSemanticTokens() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.proxy.RefreshSemanticTokens(ctx, a.pathOrScratch(), a.lineTexts()); err != nil {
		a.logger.WithComponent("lsp").Warn("failed to refresh semantic tokens: %v", err)
		return
	}
	a.retokenizeAll()
}

func (a *App) pathOrScratch() string {
	if a.doc.Path() != "" {
		return a.doc.Path()
	}
	return "scratch.txt"
}

// SetBackend attaches the terminal backend and builds the Renderer over
// it. Must be called before Run.
func (a *App) SetBackend(b backend.Backend) error {
	if err := b.Init(); err != nil {
		return err
	}
	a.mu.Lock()
	a.backend = b
	a.renderer = renderer.New(b, renderer.DefaultTheme())
	a.mu.Unlock()
	b.EnablePaste()
	b.OnResize(func(w, h int) { a.redraw() })
	return nil
}

// Run starts the main input loop, repainting after every handled event,
// until the keymap signals quit or the backend is shut down. Returns
// ErrQuit on a normal quit.
func (a *App) Run() error {
	if a.backend == nil {
		return ErrNoBackend
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	a.redraw()
	for {
		select {
		case <-a.done:
			return ErrQuit
		default:
		}

		ev := a.backend.PollEvent()
		quit := a.handleEvent(ev)
		if quit {
			return ErrQuit
		}
		a.redraw()
	}
}

// Shutdown stops Run and releases the backend. Safe to call more than
// once and before Run ever started.
func (a *App) Shutdown() {
	a.once.Do(func() {
		close(a.done)
		if a.lspManager != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = a.lspManager.Shutdown(ctx)
		}
		if a.backend != nil {
			a.backend.Shutdown()
		}
	})
}

func (a *App) redraw() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.backend == nil || a.renderer == nil {
		return
	}
	w, h := a.backend.Size()
	viewportH := h - 1
	if viewportH < 1 {
		viewportH = h
	}
	rect := core.RectFromSize(0, 0, viewportH, w)
	a.adjustScroll(viewportH)
	a.renderer.FastRender(a.doc, a.editor.Cursors, rect, a.topLine)
	a.drawStatusLine(w, h-1)

	if a.prompt != nil {
		a.backend.ShowCursor(len(a.prompt.label)+len(a.prompt.input)+1, h-1)
	} else {
		primary := a.editor.Cursors.Primary()
		gutterW := renderer.GutterWidth(a.doc.LineCount())
		a.backend.ShowCursor(gutterW+1+primary.Char, primary.Line-a.topLine)
	}
	a.backend.Show()
}

// drawStatusLine paints the bottom terminal row: the active prompt's label
// and input if a prompt is open, otherwise the last status message set by
// an LSP command (hover text, a jump destination, an error).
func (a *App) drawStatusLine(w, row int) {
	theme := renderer.DefaultTheme()
	style := core.NewStyle(theme.Background).WithBackground(theme.Foreground)

	text := a.statusMessage
	if a.prompt != nil {
		text = a.prompt.label + string(a.prompt.input)
	}
	runes := []rune(text)
	for x := 0; x < w; x++ {
		cell := core.Cell{Rune: ' ', Width: 1, Style: style}
		if x < len(runes) {
			cell.Rune = runes[x]
		}
		a.backend.SetCell(x, row, cell)
	}
}

// setStatus records a message for the next redraw's status line.
func (a *App) setStatus(format string, args ...any) {
	a.statusMessage = fmt.Sprintf(format, args...)
}

// adjustScroll keeps the primary cursor's line within the viewport,
// scrolling topLine by whole lines (the renderer handles wrap within a
// line on its own).
func (a *App) adjustScroll(viewportHeight int) {
	primary := a.editor.Cursors.Primary()
	if primary.Line < a.topLine {
		a.topLine = primary.Line
	}
	if primary.Line >= a.topLine+viewportHeight {
		a.topLine = primary.Line - viewportHeight + 1
	}
	if a.topLine < 0 {
		a.topLine = 0
	}
}
