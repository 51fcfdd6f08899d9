package cursor

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/edit"
	"github.com/halvorsen/ligature/internal/engine/line"
)

type fakeSource struct {
	lines []string
}

func (s fakeSource) LineCount() int { return len(s.lines) }

func (s fakeSource) LineText(lineIdx int) string { return s.lines[lineIdx] }

func TestCursorLeftRightCrossLines(t *testing.T) {
	src := fakeSource{lines: []string{"ab", "cd"}}
	c := New(0, 2)
	c = c.Right(src, false)
	if c.Line != 1 || c.Char != 0 {
		t.Errorf("expected (1,0), got (%d,%d)", c.Line, c.Char)
	}
	c = c.Left(src, false)
	if c.Line != 0 || c.Char != 2 {
		t.Errorf("expected (0,2), got (%d,%d)", c.Line, c.Char)
	}
}

func TestCursorSelectSetsAnchor(t *testing.T) {
	src := fakeSource{lines: []string{"hello"}}
	c := New(0, 0)
	c = c.Right(src, true)
	c = c.Right(src, true)
	if !c.HasSelection() {
		t.Fatal("expected selection after select-right twice")
	}
	sel := c.Selection()
	if sel.From.Char != 0 || sel.To.Char != 2 {
		t.Errorf("expected selection [0,2), got [%d,%d)", sel.From.Char, sel.To.Char)
	}
}

func TestJumpRightSkipsWord(t *testing.T) {
	src := fakeSource{lines: []string{"foo bar"}}
	c := New(0, 0)
	c = c.JumpRight(src, false)
	if c.Char != 3 {
		t.Errorf("expected char 3 after jump, got %d", c.Char)
	}
}

func TestStartOfLineSkipsWhitespace(t *testing.T) {
	src := fakeSource{lines: []string{"    x"}}
	c := New(0, 5)
	c = c.StartOfLine(src, false)
	if c.Char != 4 {
		t.Errorf("expected char 4, got %d", c.Char)
	}
}

func TestCursorSetConsolidatesCoincidentCursors(t *testing.T) {
	cs := NewCursorSet(New(0, 0))
	cs.Add(New(0, 0))
	cs.Consolidate()
	if cs.Len() != 1 {
		t.Errorf("expected coincident cursors to collapse to 1, got %d", cs.Len())
	}
}

func TestCursorSetConsolidatesOverlappingSelections(t *testing.T) {
	a := New(0, 0).WithAnchor(New(0, 0).Position())
	a.Line, a.Char = 0, 5
	b := New(0, 3).WithAnchor(New(0, 3).Position())
	b.Line, b.Char = 0, 8

	cs := NewCursorSet(a)
	cs.Add(b)
	cs.Consolidate()
	if cs.Len() != 1 {
		t.Fatalf("expected overlapping selections to merge, got %d cursors", cs.Len())
	}
}

func TestShiftAfterEditMovesLaterCursors(t *testing.T) {
	c := New(5, 2)
	m := edit.Meta{StartLine: 2, FromLineCount: 1, ToLineCount: 3}
	shifted := ShiftAfterEdit(c, m)
	if shifted.Line != 7 {
		t.Errorf("expected line shifted to 7, got %d", shifted.Line)
	}
}

func TestShiftAfterEditLeavesEarlierCursorsAlone(t *testing.T) {
	c := New(1, 2)
	m := edit.Meta{StartLine: 2, FromLineCount: 1, ToLineCount: 3}
	shifted := ShiftAfterEdit(c, m)
	if shifted.Line != 1 || shifted.Char != 2 {
		t.Errorf("expected cursor unaffected, got (%d,%d)", shifted.Line, shifted.Char)
	}
}

func TestMultiCursorRemoveLineConsolidatesDistinctPositions(t *testing.T) {
	// Cursors at lines 1, 3, 5 with no selection, command RemoveLine.
	// Removals run bottom-up; each removal above an already-processed
	// cursor renumbers the lines below it, so the finished cursors must
	// come out at the post-image indices of the lines that followed the
	// removed ones: 1, 2, 3.
	cs := NewCursorSet(New(1, 0))
	cs.Add(New(3, 0))
	cs.Add(New(5, 0))

	err := cs.ApplyBottomUp(func(c Cursor) (edit.Meta, line.Position, error) {
		m := edit.Meta{StartLine: c.Line, FromLineCount: 1, ToLineCount: 0}
		return m, line.NewPosition(c.Line, 0), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Len() != 3 {
		t.Fatalf("expected 3 distinct cursors, got %d", cs.Len())
	}
	want := []int{1, 2, 3}
	for i, c := range cs.All() {
		if c.Line != want[i] || c.Char != 0 {
			t.Errorf("cursor %d: expected (%d,0), got (%d,%d)", i, want[i], c.Line, c.Char)
		}
	}
}
