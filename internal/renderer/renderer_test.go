package renderer

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/cursor"
	"github.com/halvorsen/ligature/internal/engine/document"
	"github.com/halvorsen/ligature/internal/renderer/backend"
	"github.com/halvorsen/ligature/internal/renderer/core"
)

func TestGutterWidth(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{1, 2},
		{9, 2},
		{10, 3},
		{99, 3},
		{100, 4},
	}
	for _, c := range cases {
		if got := GutterWidth(c.lines); got != c.want {
			t.Errorf("GutterWidth(%d) = %d, want %d", c.lines, got, c.want)
		}
	}
}

func newTestDoc(text string) (*document.Document, *cursor.CursorSet) {
	doc := document.NewFromString(text)
	cs := cursor.NewCursorSet(cursor.New(0, 0))
	return doc, cs
}

func TestRenderPaintsGutterAndText(t *testing.T) {
	doc, cs := newTestDoc("hello\nworld")
	b := backend.NewNullBackend(40, 10)
	r := New(b, DefaultTheme())

	rect := core.RectFromSize(0, 0, 10, 40)
	r.Render(doc, cs, rect, 0)

	gutterW := GutterWidth(doc.LineCount())
	cell := b.GetCell(gutterW+1, 0)
	if cell.Rune != 'h' {
		t.Fatalf("expected 'h' at first text column, got %q", cell.Rune)
	}
}

func TestFastRenderSkipsUnchangedLines(t *testing.T) {
	doc, cs := newTestDoc("hello\nworld")
	b := backend.NewNullBackend(40, 10)
	r := New(b, DefaultTheme())
	rect := core.RectFromSize(0, 0, 10, 40)

	r.Render(doc, cs, rect, 0)
	gutterW := GutterWidth(doc.LineCount())

	// Mutate the backend directly to detect whether FastRender repaints.
	b.SetCell(gutterW+1, 0, core.NewStyledCell('Z', core.DefaultStyle()))
	r.FastRender(doc, cs, rect, 0)

	cell := b.GetCell(gutterW+1, 0)
	if cell.Rune != 'Z' {
		t.Fatalf("expected FastRender to skip an unchanged line, but it repainted (got %q)", cell.Rune)
	}
}

func TestFastRenderRepaintsAfterEdit(t *testing.T) {
	doc, cs := newTestDoc("hello\nworld")
	b := backend.NewNullBackend(40, 10)
	r := New(b, DefaultTheme())
	rect := core.RectFromSize(0, 0, 10, 40)

	r.Render(doc, cs, rect, 0)
	gutterW := GutterWidth(doc.LineCount())

	doc.Line(0).Push("!")
	doc.Touch()
	b.SetCell(gutterW+1, 0, core.NewStyledCell('Z', core.DefaultStyle()))
	r.FastRender(doc, cs, rect, 0)

	cell := b.GetCell(gutterW+1, 0)
	if cell.Rune != 'h' {
		t.Fatalf("expected FastRender to repaint a line whose revision changed, got %q", cell.Rune)
	}
}

func TestRenderWrapsLongLines(t *testing.T) {
	doc, cs := newTestDoc("abcdefghij")
	b := backend.NewNullBackend(10, 5) // gutter(2) + 1 => textWidth ~ 7
	r := New(b, DefaultTheme())
	rect := core.RectFromSize(0, 0, 5, 10)

	r.Render(doc, cs, rect, 0)

	gutterW := GutterWidth(doc.LineCount())
	textWidth := rect.Width() - gutterW - 1
	if textWidth < len([]rune("abcdefghij")) {
		marker := b.GetCell(rect.Left+gutterW+textWidth, 0)
		if marker.Rune != wrapMarkerRight && marker.Rune != wrapMarkerLeft {
			t.Fatalf("expected a wrap marker at the end of the truncated row, got %q", marker.Rune)
		}
	}
}

func TestGutterWidthCrossingInvalidatesCache(t *testing.T) {
	lines := make([]string, 9)
	for i := range lines {
		lines[i] = "x"
	}
	doc, cs := newTestDoc(joinLines(lines))
	b := backend.NewNullBackend(20, 12)
	r := New(b, DefaultTheme())
	rect := core.RectFromSize(0, 0, 12, 20)

	r.Render(doc, cs, rect, 0)
	if r.lastGutterW != GutterWidth(9) {
		t.Fatalf("expected lastGutterW %d, got %d", GutterWidth(9), r.lastGutterW)
	}

	// Grow past the 10-line boundary: gutter width must widen from 2 to 3.
	doc.InsertLine(9, doc.Line(8))
	r.Render(doc, cs, rect, 0)
	if r.lastGutterW != GutterWidth(10) {
		t.Fatalf("expected gutter width to grow to %d after crossing 10 lines, got %d", GutterWidth(10), r.lastGutterW)
	}
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

func TestFastRenderAfterEditSkipsUntouchedLines(t *testing.T) {
	doc, cs := newTestDoc("hello\nworld")
	b := backend.NewNullBackend(40, 10)
	r := New(b, DefaultTheme())
	rect := core.RectFromSize(0, 0, 10, 40)

	r.Render(doc, cs, rect, 0)
	gutterW := GutterWidth(doc.LineCount())

	// Editing line 0 must not disturb line 1's cache: plant sentinels in
	// the backend and check only line 0's is overwritten.
	doc.Line(0).Push("!")
	b.SetCell(gutterW+1, 0, core.NewStyledCell('Z', core.DefaultStyle()))
	b.SetCell(gutterW+1, 1, core.NewStyledCell('Z', core.DefaultStyle()))
	r.FastRender(doc, cs, rect, 0)

	if cell := b.GetCell(gutterW+1, 0); cell.Rune != 'h' {
		t.Fatalf("expected the edited line repainted, got %q", cell.Rune)
	}
	if cell := b.GetCell(gutterW+1, 1); cell.Rune != 'Z' {
		t.Fatalf("expected the untouched line's paint skipped, got %q", cell.Rune)
	}
}
