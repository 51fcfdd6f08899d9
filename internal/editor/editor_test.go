package editor

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/document"
)

func TestAutoCloseWithSelectionWrapsInBrackets(t *testing.T) {
	d := document.NewFromString(" asd ")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 4, true))

	e.InsertChar("[")

	if got := d.LineText(0); got != " [asd] " {
		t.Fatalf("expected %q, got %q", " [asd] ", got)
	}
	sel := e.Cursors.Primary().Selection()
	if sel.From.Char != 2 || sel.To.Char != 5 {
		t.Errorf("expected selection (2,5), got (%d,%d)", sel.From.Char, sel.To.Char)
	}
}

func TestNewLineInsideBracketsIndentsAndPlacesClosingBracket(t *testing.T) {
	d := document.NewFromString("foo() {}")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 7, false))

	e.NewLine()

	if d.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", d.LineCount())
	}
	if d.LineText(0) != "foo() {" {
		t.Errorf("expected %q, got %q", "foo() {", d.LineText(0))
	}
	if d.LineText(1) != "    " {
		t.Errorf("expected %q, got %q", "    ", d.LineText(1))
	}
	if d.LineText(2) != "}" {
		t.Errorf("expected %q, got %q", "}", d.LineText(2))
	}
	p := e.Cursors.Primary()
	if p.Line != 1 || p.Char != 4 {
		t.Errorf("expected cursor at (1,4), got (%d,%d)", p.Line, p.Char)
	}
}

func TestBackspaceCollapsesWholeIndent(t *testing.T) {
	d := document.NewFromString("    foo")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 4, false))

	e.Backspace()

	if got := d.LineText(0); got != "foo" {
		t.Fatalf("expected %q, got %q", "foo", got)
	}
	if p := e.Cursors.Primary(); p.Char != 0 {
		t.Errorf("expected caret at 0, got %d", p.Char)
	}
}

func TestInsertCharCoalescesIntoOneUndoStep(t *testing.T) {
	d := document.NewFromString("")
	e := New(d)
	e.InsertChar("h")
	e.InsertChar("i")
	e.FlushActionBuffer()

	if !d.History().CanUndo() {
		t.Fatal("expected undo available")
	}
	d.Undo()
	if got := d.LineText(0); got != "" {
		t.Errorf("expected single coalesced undo to restore empty line, got %q", got)
	}
}

func TestMultiCursorInsertAppliesToEveryCursor(t *testing.T) {
	d := document.NewFromString("a\nb\nc")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))
	e.Cursors.Add(cursor.New(1, 1))
	e.Cursors.Add(cursor.New(2, 1))

	e.InsertChar("!")

	if d.LineText(0) != "a!" || d.LineText(1) != "b!" || d.LineText(2) != "c!" {
		t.Fatalf("expected each line suffixed with !, got %q %q %q", d.LineText(0), d.LineText(1), d.LineText(2))
	}
}

func TestIndentAndUnindentRoundTrip(t *testing.T) {
	d := document.NewFromString("foo")
	e := New(d)
	e.Indent()
	if got := d.LineText(0); got != "    foo" {
		t.Fatalf("expected indented line, got %q", got)
	}
	e.Unindent()
	if got := d.LineText(0); got != "foo" {
		t.Fatalf("expected unindent to restore, got %q", got)
	}
}

func TestCommentOutTogglesPrefix(t *testing.T) {
	d := document.NewFromString("foo")
	e := New(d)
	e.CommentOut()
	if got := d.LineText(0); got != "// foo" {
		t.Fatalf("expected commented line, got %q", got)
	}
	e.CommentOut()
	if got := d.LineText(0); got != "foo" {
		t.Fatalf("expected comment removed, got %q", got)
	}
}

func TestPasteLineAboveCaret(t *testing.T) {
	d := document.NewFromString("first\nsecond")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 2, false))

	e.Paste("inserted\n")

	if d.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", d.LineCount())
	}
	if d.LineText(1) != "inserted" || d.LineText(2) != "second" {
		t.Errorf("expected line-paste above caret, got %q / %q", d.LineText(1), d.LineText(2))
	}
}

func TestCopySingleLineSelection(t *testing.T) {
	d := document.NewFromString("hello world")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 0, false))
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 5, true))

	got, ok := e.Copy()
	if !ok || got != "hello" {
		t.Fatalf("expected %q, true, got %q, %v", "hello", got, ok)
	}
}

func TestCopyMultiLineSelection(t *testing.T) {
	d := document.NewFromString("abc\ndef\nghi")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(2, 2, true))

	got, ok := e.Copy()
	if !ok || got != "bc\ndef\ngh" {
		t.Fatalf("expected %q, true, got %q, %v", "bc\ndef\ngh", got, ok)
	}
}

func TestCopyWithoutSelectionReturnsFalse(t *testing.T) {
	d := document.NewFromString("abc")
	e := New(d)
	if _, ok := e.Copy(); ok {
		t.Fatal("expected no selection to copy")
	}
}

func TestMoveLineDownPastOpenerIndents(t *testing.T) {
	d := document.NewFromString("x()\nif a {\n}")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))

	e.MoveLineDown()

	if d.LineText(0) != "if a {" || d.LineText(1) != "    x()" || d.LineText(2) != "}" {
		t.Fatalf("expected moved line indented into block, got %q / %q / %q",
			d.LineText(0), d.LineText(1), d.LineText(2))
	}
	if p := e.Cursors.Primary(); p.Line != 1 || p.Char != 5 {
		t.Errorf("expected caret carried to (1,5), got (%d,%d)", p.Line, p.Char)
	}

	d.Undo()
	if d.LineText(0) != "x()" || d.LineText(1) != "if a {" {
		t.Errorf("expected undo to restore order, got %q / %q", d.LineText(0), d.LineText(1))
	}
}

func TestMoveLineUpOutOfBlockUnindents(t *testing.T) {
	d := document.NewFromString("if a {\n    x()\n}")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 5, false))

	e.MoveLineUp()

	if d.LineText(0) != "x()" || d.LineText(1) != "if a {" || d.LineText(2) != "}" {
		t.Fatalf("expected moved line unindented out of block, got %q / %q / %q",
			d.LineText(0), d.LineText(1), d.LineText(2))
	}
	if p := e.Cursors.Primary(); p.Line != 0 || p.Char != 1 {
		t.Errorf("expected caret carried to (0,1), got (%d,%d)", p.Line, p.Char)
	}
}

func TestMoveLineAtBoundaryIsNoOp(t *testing.T) {
	d := document.NewFromString("a\nb")
	e := New(d)
	e.MoveLineUp()
	if d.LineText(0) != "a" || d.LineText(1) != "b" {
		t.Errorf("expected move-up on first line to be a no-op")
	}
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 0, false))
	e.MoveLineDown()
	if d.LineText(0) != "a" || d.LineText(1) != "b" {
		t.Errorf("expected move-down on last line to be a no-op")
	}
}

func TestRemoveLineMiddle(t *testing.T) {
	d := document.NewFromString("a\nb\nc")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 0, false))

	e.RemoveLine()

	if d.LineCount() != 2 || d.LineText(0) != "a" || d.LineText(1) != "c" {
		t.Fatalf("expected middle line removed, got %d lines", d.LineCount())
	}
	if p := e.Cursors.Primary(); p.Line != 1 || p.Char != 0 {
		t.Errorf("expected caret at (1,0), got (%d,%d)", p.Line, p.Char)
	}

	d.Undo()
	if d.LineCount() != 3 || d.LineText(1) != "b" {
		t.Errorf("expected undo to restore removed line, got %d lines, line 1 %q",
			d.LineCount(), d.LineText(1))
	}
}

func TestRemoveLastLineCollapsesOntoPrevious(t *testing.T) {
	d := document.NewFromString("a\nb")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 1, false))

	e.RemoveLine()

	if d.LineCount() != 1 || d.LineText(0) != "a" {
		t.Fatalf("expected only %q left, got %d lines", "a", d.LineCount())
	}
	if p := e.Cursors.Primary(); p.Line != 0 || p.Char != 0 {
		t.Errorf("expected caret at (0,0), got (%d,%d)", p.Line, p.Char)
	}
}

func TestRemoveOnlyLineEmptiesBuffer(t *testing.T) {
	d := document.NewFromString("solo")
	e := New(d)
	e.RemoveLine()
	if d.LineCount() != 1 || d.LineText(0) != "" {
		t.Fatalf("expected a single empty line, got %d lines, %q", d.LineCount(), d.LineText(0))
	}
}

func TestRemoveLineMultiCursorDeletesEachAndConsolidates(t *testing.T) {
	d := document.NewFromString("l0\nl1\nl2\nl3\nl4\nl5\nl6")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(1, 0, false))
	e.Cursors.Add(cursor.New(3, 0))
	e.Cursors.Add(cursor.New(5, 0))

	e.RemoveLine()

	want := []string{"l0", "l2", "l4", "l6"}
	if d.LineCount() != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), d.LineCount())
	}
	for i, w := range want {
		if d.LineText(i) != w {
			t.Errorf("line %d: expected %q, got %q", i, w, d.LineText(i))
		}
	}
	wantLines := []int{1, 2, 3}
	all := e.Cursors.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 cursors, got %d", len(all))
	}
	for i, c := range all {
		if c.Line != wantLines[i] || c.Char != 0 {
			t.Errorf("cursor %d: expected (%d,0), got (%d,%d)", i, wantLines[i], c.Line, c.Char)
		}
	}

	d.Undo()
	if d.LineCount() != 7 {
		t.Fatalf("expected single undo to restore 7 lines, got %d", d.LineCount())
	}
	for i := 0; i < 7; i++ {
		want := "l" + string(rune('0'+i))
		if d.LineText(i) != want {
			t.Errorf("line %d: expected %q after undo, got %q", i, want, d.LineText(i))
		}
	}
}

func TestMultiCursorNewLineSplitsEveryLine(t *testing.T) {
	d := document.NewFromString("ab\ncd")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))
	e.Cursors.Add(cursor.New(1, 1))

	e.NewLine()

	want := []string{"a", "b", "c", "d"}
	if d.LineCount() != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), d.LineCount())
	}
	for i, w := range want {
		if d.LineText(i) != w {
			t.Errorf("line %d: expected %q, got %q", i, w, d.LineText(i))
		}
	}
	all := e.Cursors.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 cursors, got %d", len(all))
	}
	if all[0].Line != 1 || all[0].Char != 0 || all[1].Line != 3 || all[1].Char != 0 {
		t.Errorf("expected cursors at (1,0) and (3,0), got (%d,%d) and (%d,%d)",
			all[0].Line, all[0].Char, all[1].Line, all[1].Char)
	}

	d.Undo()
	if d.LineCount() != 2 || d.LineText(0) != "ab" || d.LineText(1) != "cd" {
		t.Errorf("expected single undo to restore both splits, got %d lines", d.LineCount())
	}
}

func TestNewLineKeepingCursorLeavesCursorAtSplit(t *testing.T) {
	d := document.NewFromString("ab")
	e := New(d)
	e.Cursors.SetPrimary(e.Cursors.Primary().MoveTo(0, 1, false))

	e.NewLineKeepingCursor()

	if d.LineCount() != 2 || d.LineText(0) != "a" || d.LineText(1) != "b" {
		t.Fatalf("expected split into a/b, got %d lines", d.LineCount())
	}
	if e.Cursors.Len() != 2 {
		t.Fatalf("expected 2 cursors, got %d", e.Cursors.Len())
	}
	all := e.Cursors.All()
	if all[0].Line != 0 || all[0].Char != 1 || all[1].Line != 1 || all[1].Char != 0 {
		t.Errorf("expected cursors at (0,1) and (1,0), got (%d,%d) and (%d,%d)",
			all[0].Line, all[0].Char, all[1].Line, all[1].Char)
	}
}
