package edit

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// fakeContent is a minimal Content implementation backed by a plain slice,
// used to exercise EditAction/History without pulling in the document
// package (which itself depends on edit).
type fakeContent struct {
	lines []*line.EditorLine
}

func newFakeContent(texts ...string) *fakeContent {
	c := &fakeContent{}
	for _, t := range texts {
		c.lines = append(c.lines, line.New(t))
	}
	return c
}

func (c *fakeContent) LineCount() int { return len(c.lines) }

func (c *fakeContent) Line(i int) *line.EditorLine {
	if i < 0 || i >= len(c.lines) {
		return nil
	}
	return c.lines[i]
}

func (c *fakeContent) InsertLine(i int, l *line.EditorLine) {
	c.lines = append(c.lines, nil)
	copy(c.lines[i+1:], c.lines[i:])
	c.lines[i] = l
}

func (c *fakeContent) RemoveLine(i int) *line.EditorLine {
	l := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return l
}

func (c *fakeContent) ReplaceLine(i int, l *line.EditorLine) {
	c.lines[i] = l
}

func (c *fakeContent) texts() []string {
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.Text()
	}
	return out
}

func TestSingleLineApplyAndReverse(t *testing.T) {
	c := newFakeContent("hello world")
	a := &SingleLineAction{Pos: line.NewPosition(0, 5), Inserted: ",", Removed: " "}

	pos, _, err := a.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.lines[0].Text() != "hello,world" {
		t.Errorf("expected %q, got %q", "hello,world", c.lines[0].Text())
	}
	if pos.Char != 6 {
		t.Errorf("expected cursor char 6, got %d", pos.Char)
	}

	if _, _, err := a.ApplyReverse(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.lines[0].Text() != "hello world" {
		t.Errorf("expected round trip to restore %q, got %q", "hello world", c.lines[0].Text())
	}
}

func TestMultiLineApplyAndReverse(t *testing.T) {
	c := newFakeContent("foo() {}")
	a := &MultiLineAction{
		Pos:           line.NewPosition(0, 7),
		InsertedLines: []string{"", "    ", "}"},
		RemovedLines:  []string{"}"},
	}
	_, _, err := a.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.texts()
	want := []string{"foo() {", "    ", "}"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if _, _, err := a.ApplyReverse(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = c.texts()
	if len(got) != 1 || got[0] != "foo() {}" {
		t.Errorf("expected round trip to restore [\"foo() {}\"], got %v", got)
	}
}

func TestActionBufferCoalescesWordChars(t *testing.T) {
	b := NewActionBuffer()
	if f := b.RecordInsert(line.NewPosition(0, 0), "h"); f != nil {
		t.Fatalf("expected no flush on first insert, got %v", f)
	}
	if f := b.RecordInsert(line.NewPosition(0, 1), "i"); f != nil {
		t.Fatalf("expected coalescing, got flush %v", f)
	}
	if b.Kind() != KindInsert {
		t.Fatalf("expected KindInsert, got %v", b.Kind())
	}
	a := b.Flush()
	sl, ok := a.(*SingleLineAction)
	if !ok {
		t.Fatalf("expected *SingleLineAction, got %T", a)
	}
	if sl.Inserted != "hi" {
		t.Errorf("expected coalesced insert %q, got %q", "hi", sl.Inserted)
	}
}

func TestActionBufferPunctuationFlushesImmediately(t *testing.T) {
	b := NewActionBuffer()
	b.RecordInsert(line.NewPosition(0, 0), "h")
	flushed := b.RecordInsert(line.NewPosition(0, 1), ".")
	if len(flushed) != 2 {
		t.Fatalf("expected two flushed actions (prior run + punctuation), got %d", len(flushed))
	}
	if !b.IsEmpty() {
		t.Error("expected buffer empty after punctuation flush")
	}
}

func TestActionBufferBackspaceCoalesces(t *testing.T) {
	b := NewActionBuffer()
	b.RecordBackspace(line.NewPosition(0, 8), "x")
	b.RecordBackspace(line.NewPosition(0, 7), "x")
	a := b.Flush()
	sl := a.(*SingleLineAction)
	if sl.Removed != "xx" {
		t.Errorf("expected coalesced removal %q, got %q", "xx", sl.Removed)
	}
	if sl.Pos.Char != 6 {
		t.Errorf("expected anchor char 6, got %d", sl.Pos.Char)
	}
}

func TestHistoryUndoRedoRestoresContent(t *testing.T) {
	c := newFakeContent("hello")
	h := NewHistory(0)

	a1 := &SingleLineAction{Pos: line.NewPosition(0, 5), Inserted: " world"}
	a1.Apply(c)
	h.Push(a1)

	if c.lines[0].Text() != "hello world" {
		t.Fatalf("setup failed: %q", c.lines[0].Text())
	}

	if _, _, err := h.Undo(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.lines[0].Text() != "hello" {
		t.Errorf("expected undo to restore %q, got %q", "hello", c.lines[0].Text())
	}
	if !h.CanRedo() {
		t.Error("expected redo available after undo")
	}

	if _, _, err := h.Redo(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.lines[0].Text() != "hello world" {
		t.Errorf("expected redo to reapply, got %q", c.lines[0].Text())
	}
}

func TestHistoryUndoEmptyReturnsError(t *testing.T) {
	h := NewHistory(0)
	c := newFakeContent("x")
	if _, _, err := h.Undo(c); err != ErrNothingToUndo {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestSwapApplyAndReverseWithIndentDelta(t *testing.T) {
	c := newFakeContent("x()", "if a {", "}")
	a := &SwapAction{LineA: 0, LineB: 1, IndentDelta: 4}

	if _, _, err := a.Apply(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"if a {", "    x()", "}"}
	for i, w := range want {
		if c.lines[i].Text() != w {
			t.Errorf("line %d: expected %q, got %q", i, w, c.lines[i].Text())
		}
	}

	if _, _, err := a.ApplyReverse(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored := []string{"x()", "if a {", "}"}
	for i, w := range restored {
		if c.lines[i].Text() != w {
			t.Errorf("line %d after reverse: expected %q, got %q", i, w, c.lines[i].Text())
		}
	}
}

func TestSwapMetaSpansBothLines(t *testing.T) {
	a := &SwapAction{LineA: 4, LineB: 2}
	m := a.Meta()
	if m.StartLine != 2 || m.FromLineCount != 3 || m.ToLineCount != 3 {
		t.Errorf("expected meta (2,3,3), got (%d,%d,%d)", m.StartLine, m.FromLineCount, m.ToLineCount)
	}
}

func TestSwapChangeEventsSpanPreImageExtent(t *testing.T) {
	c := newFakeContent("alpha", "beta")
	a := &SwapAction{LineA: 0, LineB: 1}
	events := a.ChangeEvents(UTF32Encoding, c)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	ev := events[0]
	if ev.Start.Line != 0 || ev.Start.Unit != 0 || ev.End.Line != 1 || ev.End.Unit != 4 {
		t.Errorf("expected range (0,0)-(1,4), got (%d,%d)-(%d,%d)",
			ev.Start.Line, ev.Start.Unit, ev.End.Line, ev.End.Unit)
	}
	if ev.Text != "beta\nalpha" {
		t.Errorf("expected swapped text, got %q", ev.Text)
	}
}
