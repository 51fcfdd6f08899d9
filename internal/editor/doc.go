// Package editor implements the high-level operations dispatched from
// key events: navigation, indent/comment/paste, bracket auto-completion,
// and multi-cursor consolidation, all producing EditActions that flow
// into the Document's edit log.
package editor
