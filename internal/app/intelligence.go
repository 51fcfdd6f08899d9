package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/lsp"
	"github.com/halvorsen/ligature/internal/renderer/backend"
)

// promptState holds a single-line input overlay drawn on the status line,
// e.g. the new name Rename asks for. Only one prompt is ever open at once.
type promptState struct {
	label    string
	input    []rune
	onSubmit func(text string)
}

// handlePromptKey feeds ev to the open prompt instead of the normal keymap.
func (a *App) handlePromptKey(ev backend.Event) {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		a.prompt = nil
	case backend.KeyEnter:
		p := a.prompt
		a.prompt = nil
		p.onSubmit(string(p.input))
	case backend.KeyBackspace:
		if len(a.prompt.input) > 0 {
			a.prompt.input = a.prompt.input[:len(a.prompt.input)-1]
		}
	case backend.KeyRune:
		a.prompt.input = append(a.prompt.input, ev.Rune)
	}
}

func (a *App) lspContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// cursorPosition converts the primary cursor into an LSP position, encoded
// in UTF-16 units per the protocol regardless of the document's negotiated
// wire encoding — textDocument/position is always UTF-16.
func (a *App) cursorPosition() lsp.Position {
	return a.charPosition(a.editor.Cursors.Primary().Position())
}

func (a *App) charPosition(pos line.Position) lsp.Position {
	l := a.doc.Line(pos.Line)
	var runes []rune
	if l != nil {
		runes = l.Runes()
	}
	return lsp.Position{Line: pos.Line, Character: edit.UTF16Encoding.EncodePosition(runes, pos.Char)}
}

// wordAtCursor returns the identifier-ish run of characters under or just
// before the primary cursor, used to seed Rename's prompt and a
// workspace-symbol query.
func (a *App) wordAtCursor() string {
	c := a.editor.Cursors.Primary()
	l := a.doc.Line(c.Line)
	if l == nil {
		return ""
	}
	runes := l.Runes()
	start, end := c.Char, c.Char
	isWord := func(r rune) bool {
		return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	for start > 0 && start-1 < len(runes) && isWord(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWord(runes[end]) {
		end++
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func (a *App) requireServer() (*lsp.Server, bool) {
	if a.proxy == nil {
		a.setStatus("no language server attached")
		return nil, false
	}
	return a.proxy.Server(), true
}

// hover requests textDocument/hover at the cursor and shows the result's
// first line on the status line.
func (a *App) hover() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	hv, err := server.Hover(ctx, a.pathOrScratch(), a.cursorPosition())
	if err != nil {
		a.setStatus("hover: %v", err)
		return
	}
	if hv == nil || hv.Contents.Value == "" {
		a.setStatus("no hover information")
		return
	}
	a.setStatus("%s", firstLine(hv.Contents.Value))
}

// jumpToLocation moves the primary cursor to loc if it names the file
// currently open, otherwise just reports where it points.
func (a *App) jumpToLocation(loc lsp.Location) {
	if string(loc.URI) != string(a.uri) {
		a.setStatus("defined in %s", loc.URI)
		return
	}
	pos := line.NewPosition(loc.Range.Start.Line, lsp.UTF16ToCharIndex(a.doc.LineText(loc.Range.Start.Line), loc.Range.Start.Character))
	a.editor.Cursors.SetPrimary(cursor.New(pos.Line, pos.Char))
}

func (a *App) definition() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	locs, err := server.Definition(ctx, a.pathOrScratch(), a.cursorPosition())
	a.reportLocations("definition", locs, err)
}

func (a *App) typeDefinition() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	locs, err := server.TypeDefinition(ctx, a.pathOrScratch(), a.cursorPosition())
	a.reportLocations("type definition", locs, err)
}

func (a *App) reportLocations(what string, locs []lsp.Location, err error) {
	if err != nil {
		a.setStatus("%s: %v", what, err)
		return
	}
	if len(locs) == 0 {
		a.setStatus("no %s found", what)
		return
	}
	a.jumpToLocation(locs[0])
}

// references requests textDocument/references and cycles through the
// results on repeated presses, wrapping around at the end.
func (a *App) references() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	locs, err := server.References(ctx, a.pathOrScratch(), a.cursorPosition(), true)
	if err != nil {
		a.setStatus("references: %v", err)
		return
	}
	if len(locs) == 0 {
		a.setStatus("no references found")
		return
	}
	a.locationCycle = locs
	a.locationCycleIdx = 0
	a.cycleReference()
}

func (a *App) cycleReference() {
	if len(a.locationCycle) == 0 {
		return
	}
	loc := a.locationCycle[a.locationCycleIdx]
	a.setStatus("reference %d/%d", a.locationCycleIdx+1, len(a.locationCycle))
	a.locationCycleIdx = (a.locationCycleIdx + 1) % len(a.locationCycle)
	a.jumpToLocation(loc)
}

// documentSymbols requests textDocument/documentSymbol and cycles through
// the flattened symbol tree on repeated presses.
func (a *App) documentSymbols() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	symbols, err := server.DocumentSymbols(ctx, a.pathOrScratch())
	if err != nil {
		a.setStatus("document symbols: %v", err)
		return
	}
	a.symbolCycle = flattenSymbols(symbols)
	a.symbolCycleIdx = 0
	if len(a.symbolCycle) == 0 {
		a.setStatus("no symbols found")
		return
	}
	a.cycleSymbol()
}

func (a *App) cycleSymbol() {
	if len(a.symbolCycle) == 0 {
		return
	}
	sym := a.symbolCycle[a.symbolCycleIdx]
	a.setStatus("symbol %d/%d: %s", a.symbolCycleIdx+1, len(a.symbolCycle), sym.Name)
	a.symbolCycleIdx = (a.symbolCycleIdx + 1) % len(a.symbolCycle)
	pos := line.NewPosition(sym.SelectionRange.Start.Line,
		lsp.UTF16ToCharIndex(a.doc.LineText(sym.SelectionRange.Start.Line), sym.SelectionRange.Start.Character))
	a.editor.Cursors.SetPrimary(cursor.New(pos.Line, pos.Char))
}

func flattenSymbols(symbols []lsp.DocumentSymbol) []lsp.DocumentSymbol {
	var flat []lsp.DocumentSymbol
	for _, s := range symbols {
		flat = append(flat, s)
		flat = append(flat, flattenSymbols(s.Children)...)
	}
	return flat
}

// workspaceSymbols queries workspace/symbol with the identifier under the
// cursor and jumps to (or reports) the first match.
func (a *App) workspaceSymbols() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	query := a.wordAtCursor()
	if query == "" {
		a.setStatus("no word at cursor")
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	results, err := server.WorkspaceSymbols(ctx, query)
	if err != nil {
		a.setStatus("workspace symbols: %v", err)
		return
	}
	if len(results) == 0 {
		a.setStatus("no symbol matching %q", query)
		return
	}
	a.jumpToLocation(results[0].Location)
}

// codeActions requests quick fixes for the cursor's line (using whatever
// diagnostics are currently attached to it) and applies the first action
// returned, the way a non-interactive "quick fix" binding would.
func (a *App) codeActions() {
	server, ok := a.requireServer()
	if !ok {
		return
	}
	c := a.editor.Cursors.Primary()
	l := a.doc.Line(c.Line)
	var diags []lsp.Diagnostic
	if l != nil {
		for _, d := range l.Diagnostics() {
			diags = append(diags, lsp.Diagnostic{
				Range: lsp.Range{
					Start: lsp.Position{Line: c.Line, Character: edit.UTF16Encoding.EncodePosition(l.Runes(), d.StartChar)},
					End:   lsp.Position{Line: c.Line, Character: edit.UTF16Encoding.EncodePosition(l.Runes(), d.StartChar+d.Length)},
				},
				Message: d.Message,
			})
		}
	}
	rng := lsp.Range{Start: a.cursorPosition(), End: a.cursorPosition()}
	ctx, cancel := a.lspContext()
	defer cancel()
	actions, err := server.CodeActions(ctx, a.pathOrScratch(), rng, diags)
	if err != nil {
		a.setStatus("code actions: %v", err)
		return
	}
	if len(actions) == 0 {
		a.setStatus("no code actions available")
		return
	}
	action := actions[0]
	if action.Edit != nil {
		a.applyWorkspaceEdit(action.Edit)
	}
	a.setStatus("applied: %s", action.Title)
}

// completion requests completions at the cursor through the enrichment
// proxy, which answers from the shadow document's fallback set when the
// server doesn't advertise completion support, or forwards the request to
// the server otherwise.
func (a *App) completion() {
	if a.proxy == nil {
		a.setStatus("no language server attached")
		return
	}
	payload := lsp.Payload{Kind: lsp.PayloadCompletion, URI: a.uri, Path: a.pathOrScratch(), Pos: a.cursorPosition()}
	outcome, err := a.proxy.Dispatch(payload)
	if err != nil {
		a.setStatus("completion: %v", err)
		return
	}
	if outcome.Forward != nil {
		ctx, cancel := a.lspContext()
		defer cancel()
		list, err := a.proxy.Server().Completion(ctx, a.pathOrScratch(), a.cursorPosition())
		if err != nil {
			a.setStatus("completion: %v", err)
			return
		}
		a.setStatus("%s", completionSummary(labelsFromItems(list)))
		return
	}
	items, _ := outcome.Synthesized.([]lsp.CompletionItemFallback)
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	a.setStatus("%s", completionSummary(labels))
}

func labelsFromItems(list *lsp.CompletionList) []string {
	if list == nil {
		return nil
	}
	labels := make([]string, len(list.Items))
	for i, it := range list.Items {
		labels[i] = it.Label
	}
	return labels
}

func completionSummary(labels []string) string {
	if len(labels) == 0 {
		return "no completions"
	}
	if len(labels) > 5 {
		labels = labels[:5]
	}
	return strings.Join(labels, "  ")
}

// format runs textDocument/formatting (or rangeFormatting over the active
// selection) and applies the resulting edits, the way a format-on-save
// binding would.
func (a *App) format() {
	if a.proxy == nil {
		return
	}
	server, ok := a.requireServer()
	if !ok {
		return
	}
	opts := lsp.FormattingOptions{TabSize: 4, InsertSpaces: true}
	ctx, cancel := a.lspContext()
	defer cancel()

	c := a.editor.Cursors.Primary()
	var edits []lsp.TextEdit
	var err error
	if c.HasSelection() {
		sel := c.Selection()
		rng := lsp.Range{Start: a.charPosition(sel.From), End: a.charPosition(sel.To)}
		edits, err = server.FormatRange(ctx, a.pathOrScratch(), rng, opts)
	} else {
		edits, err = server.Format(ctx, a.pathOrScratch(), opts)
	}
	if err != nil {
		a.logger.WithComponent("lsp").Warn("format failed: %v", err)
		return
	}
	a.applyTextEdits(edits)
}

// beginRename opens a prompt overlay pre-filled with the identifier under
// the cursor; submitting it issues textDocument/rename and applies the
// resulting WorkspaceEdit.
func (a *App) beginRename() {
	if _, ok := a.requireServer(); !ok {
		return
	}
	word := a.wordAtCursor()
	pos := a.cursorPosition()
	a.prompt = &promptState{
		label: "Rename to: ",
		input: []rune(word),
		onSubmit: func(newName string) {
			if newName == "" {
				return
			}
			server, ok := a.requireServer()
			if !ok {
				return
			}
			ctx, cancel := a.lspContext()
			defer cancel()
			we, err := server.Rename(ctx, a.pathOrScratch(), pos, newName)
			if err != nil {
				a.setStatus("rename: %v", err)
				return
			}
			a.applyWorkspaceEdit(we)
		},
	}
}

// maybeSignatureHelp auto-triggers textDocument/signatureHelp after a
// typed rune matches one of the server's declared trigger characters.
func (a *App) maybeSignatureHelp(r rune) {
	if a.proxy == nil {
		return
	}
	caps := a.proxy.Server().Capabilities()
	if caps.SignatureHelpProvider == nil {
		return
	}
	trigger := false
	for _, t := range caps.SignatureHelpProvider.TriggerCharacters {
		if t == string(r) {
			trigger = true
			break
		}
	}
	if !trigger {
		return
	}
	ctx, cancel := a.lspContext()
	defer cancel()
	help, err := a.proxy.Server().SignatureHelp(ctx, a.pathOrScratch(), a.cursorPosition())
	if err != nil || help == nil || len(help.Signatures) == 0 {
		return
	}
	a.setStatus("%s", help.Signatures[help.ActiveSignature%len(help.Signatures)].Label)
}

// applyWorkspaceEdit applies every TextEdit targeting the currently open
// document; edits to other files are outside a single-document editor's
// scope and are reported rather than silently dropped.
func (a *App) applyWorkspaceEdit(we *lsp.WorkspaceEdit) {
	if we == nil {
		return
	}
	edits, ok := we.Changes[a.uri]
	if !ok {
		a.setStatus("rename touches other files, not applied")
		return
	}
	for uri := range we.Changes {
		if uri != a.uri {
			a.setStatus("rename also touches %s (not applied)", uri)
		}
	}
	a.applyTextEdits(edits)
}

// applyTextEdits applies edits as one undoable CompositeAction, bottom to
// top so an earlier edit's positions are never invalidated by a later one
// applied first.
func (a *App) applyTextEdits(edits []lsp.TextEdit) {
	if len(edits) == 0 {
		return
	}
	sorted := make([]lsp.TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := sorted[i].Range.Start, sorted[j].Range.Start
		if si.Line != sj.Line {
			return si.Line > sj.Line
		}
		return si.Character > sj.Character
	})

	composite := &edit.CompositeAction{}
	for _, te := range sorted {
		composite.Children = append(composite.Children, a.textEditAction(te))
	}
	if _, _, err := a.doc.ApplyAction(composite); err != nil {
		a.logger.WithComponent("lsp").Warn("failed to apply edit: %v", err)
		return
	}
	a.editor.Cursors.SetPrimary(a.editor.Cursors.Primary().Clamp(a.doc))
	a.syncIncremental()
}

func (a *App) textEditAction(te lsp.TextEdit) edit.EditAction {
	startLine := te.Range.Start.Line
	endLine := te.Range.End.Line
	startChar := lsp.UTF16ToCharIndex(a.doc.LineText(startLine), te.Range.Start.Character)
	endChar := lsp.UTF16ToCharIndex(a.doc.LineText(endLine), te.Range.End.Character)

	if startLine == endLine {
		removed := string(a.doc.Line(startLine).Runes()[startChar:endChar])
		return &edit.SingleLineAction{Pos: line.NewPosition(startLine, startChar), Inserted: te.NewText, Removed: removed}
	}

	var removedLines []string
	removedLines = append(removedLines, string(a.doc.Line(startLine).Runes()[startChar:]))
	for i := startLine + 1; i < endLine; i++ {
		removedLines = append(removedLines, a.doc.Line(i).Text())
	}
	endRunes := a.doc.Line(endLine).Runes()
	removedLines = append(removedLines, string(endRunes))

	insertedLines := strings.Split(te.NewText, "\n")
	insertedLines[len(insertedLines)-1] += string(endRunes[endChar:])
	return &edit.MultiLineAction{Pos: line.NewPosition(startLine, startChar), RemovedLines: removedLines, InsertedLines: insertedLines}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return fmt.Sprintf("%.200s", s)
}
