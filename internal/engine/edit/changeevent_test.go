package edit

import (
	"testing"

	"github.com/halvorsen/ligature/internal/engine/line"
)

// rocketLine is "a🚀b": a BMP rune, an astral-plane rune (U+1F680, encoded
// as a UTF-16 surrogate pair), then another BMP rune.
const rocketLine = "a🚀b"

func TestEncodePositionUTF8CountsBytesAcrossAstralRune(t *testing.T) {
	c := newFakeContent(rocketLine)
	pos := line.NewPosition(0, 2) // char index 2 = after "a🚀"
	got := encodePos(UTF8Encoding, c, pos)
	// 'a' is 1 byte, 🚀 is 4 bytes.
	if got.Unit != 5 {
		t.Errorf("expected byte offset 5, got %d", got.Unit)
	}
	if got.Line != 0 {
		t.Errorf("expected line 0, got %d", got.Line)
	}
}

func TestEncodePositionUTF16CountsSurrogatePairAsTwoUnits(t *testing.T) {
	c := newFakeContent(rocketLine)
	pos := line.NewPosition(0, 2)
	got := encodePos(UTF16Encoding, c, pos)
	// 'a' is 1 unit, 🚀 is a surrogate pair (2 units).
	if got.Unit != 3 {
		t.Errorf("expected UTF-16 offset 3, got %d", got.Unit)
	}
}

func TestEncodePositionUTF32CountsEachRuneAsOneUnit(t *testing.T) {
	c := newFakeContent(rocketLine)
	pos := line.NewPosition(0, 2)
	got := encodePos(UTF32Encoding, c, pos)
	if got.Unit != 2 {
		t.Errorf("expected UTF-32 offset 2 (char index itself), got %d", got.Unit)
	}
}

func TestCharUnitsPerEncodingForAstralRune(t *testing.T) {
	rocket := []rune(rocketLine)[1]

	if n := UTF8Encoding.CharUnits(rocket); n != 4 {
		t.Errorf("UTF-8: expected 4 bytes for astral rune, got %d", n)
	}
	if n := UTF16Encoding.CharUnits(rocket); n != 2 {
		t.Errorf("UTF-16: expected 2 code units (surrogate pair) for astral rune, got %d", n)
	}
	if n := UTF32Encoding.CharUnits(rocket); n != 1 {
		t.Errorf("UTF-32: expected 1 scalar unit for astral rune, got %d", n)
	}
}

func TestSingleLineActionChangeEventsEncodesPastAstralRune(t *testing.T) {
	c := newFakeContent(rocketLine)
	// Insert "!" right after the rocket: char index 2 (a, 🚀, |).
	a := &SingleLineAction{Pos: line.NewPosition(0, 2), Inserted: "!"}

	for _, tc := range []struct {
		enc      Encoding
		wantUnit int
	}{
		{UTF8Encoding, 5},
		{UTF16Encoding, 3},
		{UTF32Encoding, 2},
	} {
		events := a.ChangeEvents(tc.enc, c)
		if len(events) != 1 {
			t.Fatalf("%s: expected 1 change event, got %d", tc.enc.Name, len(events))
		}
		ev := events[0]
		if ev.Start.Unit != tc.wantUnit || ev.End.Unit != tc.wantUnit {
			t.Errorf("%s: expected start/end unit %d, got start=%d end=%d", tc.enc.Name, tc.wantUnit, ev.Start.Unit, ev.End.Unit)
		}
		if ev.Start.Line != 0 || ev.End.Line != 0 {
			t.Errorf("%s: expected both endpoints on line 0, got start=%d end=%d", tc.enc.Name, ev.Start.Line, ev.End.Line)
		}
		if ev.Text != "!" {
			t.Errorf("%s: expected inserted text %q, got %q", tc.enc.Name, "!", ev.Text)
		}
	}
}

func TestMultiLineActionChangeEventsSpansAstralRuneAcrossLines(t *testing.T) {
	c := newFakeContent(rocketLine, "tail")
	a := &MultiLineAction{
		Pos:           line.NewPosition(0, 1), // right after "a", before 🚀
		InsertedLines: []string{"X", "Y"},
		RemovedLines:  []string{"🚀b"},
	}

	events := a.ChangeEvents(UTF16Encoding, c)
	if len(events) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(events))
	}
	ev := events[0]
	if ev.Start.Line != 0 || ev.Start.Unit != 1 {
		t.Errorf("expected start {0,1}, got {%d,%d}", ev.Start.Line, ev.Start.Unit)
	}
	// RemovedLines has one entry "🚀b": end char = 1 (pos.Char) + len("🚀b") runes = 1+2 = 3,
	// encoded in UTF-16 units: 🚀 (2) + b (1) = 3, plus the 'a' prefix already counted in Start.
	if ev.End.Line != 0 {
		t.Errorf("expected end line 0, got %d", ev.End.Line)
	}
	if ev.End.Unit != 4 {
		t.Errorf("expected end unit 4 (1 + surrogate pair + 'b'), got %d", ev.End.Unit)
	}
	if ev.Text != "X\nY" {
		t.Errorf("expected replacement text %q, got %q", "X\nY", ev.Text)
	}
}
