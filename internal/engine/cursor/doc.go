// Package cursor implements caret position(s) and selection state: a
// single Cursor value type, navigation primitives that move a cursor
// against a line.Source, and CursorSet for multi-cursor editing
// (consolidation, bottom-up edit application, index-shift propagation).
//
// Unlike byte-offset cursors over a rope, a Cursor here addresses
// (line, char) pairs directly against the editor's EditorLine array, so
// no translation step sits between a cursor and the content it indexes.
package cursor
