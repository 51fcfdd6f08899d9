package app

import (
	"context"
	"time"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/lsp"
	"github.com/halvorsen/ligature/internal/renderer"
	"github.com/halvorsen/ligature/internal/renderer/backend"
)

// handleEvent applies ev to the editor and reports whether the app should
// quit. It implements a small built-in keymap: arrows, enter, backspace,
// delete, printable runes, and a handful of control chords. A
// configurable keymap surface would sit above this layer.
func (a *App) handleEvent(ev backend.Event) bool {
	switch ev.Type {
	case backend.EventResize:
		return false
	case backend.EventKey:
		return a.handleKey(ev)
	case backend.EventMouse:
		a.handleMouse(ev)
		return false
	default:
		return false
	}
}

// handleMouse maps a left click to a cursor move (translating the screen
// cell through the scroll offset and gutter) and the wheel to viewport
// scrolling. Shift-click extends the selection to the clicked position.
func (a *App) handleMouse(ev backend.Event) {
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		a.topLine -= 3
		if a.topLine < 0 {
			a.topLine = 0
		}
	case backend.MouseWheelDown:
		a.topLine += 3
		if max := a.doc.LineCount() - 1; a.topLine > max {
			a.topLine = max
		}
	case backend.MouseLeft:
		lineIdx := a.topLine + ev.MouseY
		if lineIdx >= a.doc.LineCount() {
			lineIdx = a.doc.LineCount() - 1
		}
		if lineIdx < 0 {
			lineIdx = 0
		}
		ch := ev.MouseX - renderer.GutterWidth(a.doc.LineCount()) - 1
		if ch < 0 {
			ch = 0
		}
		if n := a.doc.Line(lineIdx).CharCount(); ch > n {
			ch = n
		}
		selecting := ev.Mod.Has(backend.ModShift)
		a.editor.Cursors.SetPrimary(a.editor.Cursors.Primary().MoveTo(lineIdx, ch, selecting))
	}
}

func (a *App) handleKey(ev backend.Event) bool {
	if a.prompt != nil {
		a.handlePromptKey(ev)
		return false
	}

	selecting := ev.Mod.Has(backend.ModShift)

	switch ev.Key {
	case backend.KeyEscape:
		return true
	case backend.KeyCtrlC:
		return true
	case backend.KeyCtrlQ:
		return true

	case backend.KeyCtrlS:
		a.format()
		if err := a.doc.Save(); err != nil {
			a.logger.WithComponent("io").Warn("save failed: %v", err)
		}
		return false

	case backend.KeyF1:
		a.hover()
		return false
	case backend.KeyF2:
		a.beginRename()
		return false
	case backend.KeyF9:
		a.codeActions()
		return false
	case backend.KeyF12:
		switch {
		case ev.Mod.Has(backend.ModAlt):
			a.typeDefinition()
		case ev.Mod.Has(backend.ModShift):
			a.references()
		default:
			a.definition()
		}
		return false
	case backend.KeyCtrlO:
		a.documentSymbols()
		return false
	case backend.KeyCtrlT:
		a.workspaceSymbols()
		return false
	case backend.KeyCtrlSpace:
		a.completion()
		return false

	case backend.KeyCtrlZ:
		a.undo()
		return false
	case backend.KeyCtrlY:
		a.redo()
		return false

	case backend.KeyCtrlX:
		if text, ok := a.editor.Copy(); ok {
			_ = a.clipboard.Push(text)
			if !a.opts.ReadOnly {
				a.editor.Backspace()
				a.syncIncremental()
			}
		}
		return false
	case backend.KeyCtrlK:
		if text, ok := a.editor.Copy(); ok {
			_ = a.clipboard.Push(text)
		}
		return false
	case backend.KeyCtrlV:
		if a.opts.ReadOnly {
			return false
		}
		if text, ok := a.clipboard.Pull(); ok {
			a.editor.Paste(text)
			a.syncIncremental()
		}
		return false

	case backend.KeyUp:
		if ev.Mod.Has(backend.ModAlt) {
			if !a.opts.ReadOnly {
				a.editor.MoveLineUp()
				a.syncIncremental()
			}
			return false
		}
		a.editor.Up(selecting)
	case backend.KeyDown:
		if ev.Mod.Has(backend.ModAlt) {
			if !a.opts.ReadOnly {
				a.editor.MoveLineDown()
				a.syncIncremental()
			}
			return false
		}
		a.editor.Down(selecting)
	case backend.KeyLeft:
		if ev.Mod.Has(backend.ModCtrl) {
			a.editor.JumpLeft(selecting)
		} else {
			a.editor.Left(selecting)
		}
	case backend.KeyRight:
		if ev.Mod.Has(backend.ModCtrl) {
			a.editor.JumpRight(selecting)
		} else {
			a.editor.Right(selecting)
		}
	case backend.KeyHome:
		a.editor.StartOfLine(selecting)
	case backend.KeyEnd:
		a.editor.EndOfLine(selecting)
	case backend.KeyPageUp:
		a.editor.ScreenUp(selecting)
	case backend.KeyPageDown:
		a.editor.ScreenDown(selecting)

	case backend.KeyEnter:
		if a.opts.ReadOnly {
			return false
		}
		if ev.Mod.Has(backend.ModAlt) {
			a.editor.NewLineKeepingCursor()
		} else {
			a.editor.NewLine()
		}
		a.syncIncremental()
	case backend.KeyTab:
		if a.opts.ReadOnly {
			return false
		}
		a.editor.Indent()
		a.syncIncremental()
	case backend.KeyBackspace:
		if a.opts.ReadOnly {
			return false
		}
		a.editor.Backspace()
		a.syncIncremental()
	case backend.KeyDelete:
		if a.opts.ReadOnly {
			return false
		}
		a.editor.Delete()
		a.syncIncremental()

	case backend.KeyCtrlA:
		a.editor.NewCursorUp()
	case backend.KeyCtrlD:
		a.editor.NewCursorDown()
	case backend.KeyCtrlL:
		if a.opts.ReadOnly {
			return false
		}
		a.editor.RemoveLine()
		a.syncIncremental()

	case backend.KeyRune:
		if a.opts.ReadOnly {
			return false
		}
		a.editor.InsertChar(string(ev.Rune))
		a.syncIncremental()
		a.maybeSignatureHelp(ev.Rune)
	}

	return false
}

func (a *App) undo() {
	if a.opts.ReadOnly {
		return
	}
	// A coalescing run still sitting in the ActionBuffer has to reach the
	// undo stack first, or the keystrokes it holds would be unreachable.
	a.editor.FlushActionBuffer()
	if _, _, err := a.doc.Undo(); err == nil {
		a.syncShadow()
	}
}

func (a *App) redo() {
	if a.opts.ReadOnly {
		return
	}
	a.editor.FlushActionBuffer()
	if _, _, err := a.doc.Redo(); err == nil {
		a.syncShadow()
	}
}

// syncShadow pushes the document's current text to the LSP proxy as a
// full-document resync. Used for undo/redo, where the reversed edit's
// change events aren't reconstructed (see Document.Undo/Redo), and as the
// fallback syncIncremental takes when there's nothing queued to diff.
func (a *App) syncShadow() {
	if a.proxy == nil {
		return
	}
	outcome, err := a.proxy.Dispatch(lsp.Payload{
		Kind:    lsp.PayloadFullSync,
		URI:     a.uri,
		Version: int(a.doc.Revision()),
		Text:    a.doc.Text(),
		Path:    a.pathOrScratch(),
	})
	a.forwardAndRetokenize(outcome, err, 0)
}

// syncIncremental drains the change events queued by the mutation that
// just ran and forwards them to the LSP proxy as a Sync payload, which
// applies them to the shadow document and — per the capability table —
// either forwards them as-is or downgrades them to a full resync, entirely
// inside Dispatch. Falls back to a full resync if nothing was queued (the
// mutation bypassed ApplyAction/QueueChangeEvents, or there was nothing to
// change).
func (a *App) syncIncremental() {
	if a.proxy == nil {
		a.retokenizeAll()
		return
	}
	events := a.doc.DrainChangeEvents()
	if len(events) == 0 {
		a.syncShadow()
		return
	}
	firstLine := events[0].Start.Line
	outcome, err := a.proxy.Dispatch(lsp.Payload{
		Kind:    lsp.PayloadSync,
		URI:     a.uri,
		Version: int(a.doc.Revision()),
		Changes: changeEventsToLSP(events),
		Path:    a.pathOrScratch(),
	})
	a.forwardAndRetokenize(outcome, err, firstLine)
}

// forwardAndRetokenize ships outcome.Forward to the real server, bounded
// by a short timeout so a stalled server can't block the input loop, then
// repaints tokens starting at the earliest line the edit touched. Errors
// from a dead or misbehaving server are logged, never surfaced to the
// user: enrichment is best-effort.
func (a *App) forwardAndRetokenize(outcome lsp.Outcome, dispatchErr error, fromLine int) {
	if dispatchErr != nil {
		a.logger.WithComponent("lsp").Warn("dispatch failed: %v", dispatchErr)
	} else if a.proxy != nil && outcome.Forward != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.proxy.Forward(ctx, outcome); err != nil {
			a.logger.WithComponent("lsp").Warn("failed to forward document change to language server: %v", err)
		}
		cancel()
	}

	if a.proxy != nil && a.proxy.HasSemanticTokens() {
		a.refreshServerTokens()
		return
	}
	a.retokenizeFrom(fromLine)
}

func changeEventsToLSP(events []edit.ChangeEvent) []lsp.TextDocumentContentChangeEvent {
	changes := make([]lsp.TextDocumentContentChangeEvent, len(events))
	for i, ev := range events {
		changes[i] = lsp.TextDocumentContentChangeEvent{
			Range: &lsp.Range{
				Start: lsp.Position{Line: ev.Start.Line, Character: ev.Start.Unit},
				End:   lsp.Position{Line: ev.End.Line, Character: ev.End.Unit},
			},
			Text: ev.Text,
		}
	}
	return changes
}
