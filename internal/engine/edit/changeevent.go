package edit

import "github.com/halvorsen/ligature/internal/engine/line"

// EncodedPosition is a (line, encoded_char) pair where encoded_char has
// already been translated into the negotiated wire encoding (UTF-8 bytes,
// UTF-16 code units, or UTF-32 scalars).
type EncodedPosition struct {
	Line int
	Unit int
}

// ChangeEvent mirrors the shape of an LSP
// TextDocumentContentChangeEvent: a range in the negotiated encoding plus
// the replacement text.
type ChangeEvent struct {
	Start EncodedPosition
	End   EncodedPosition
	Text  string
}

// Encoding binds the two position-translation strategies chosen once at
// server negotiation: EncodePosition translates a char index within
// lineText to the negotiated unit, and CharUnits reports how many such
// units a single rune occupies. Neither is dispatched dynamically inside
// the hot edit/render loops.
type Encoding struct {
	Name         string
	EncodePosition func(lineText []rune, charIdx int) int
	CharUnits      func(r rune) int
}

// UTF32Encoding treats char index as the unit directly (scalar count).
var UTF32Encoding = Encoding{
	Name: "utf-32",
	EncodePosition: func(lineText []rune, charIdx int) int {
		return charIdx
	},
	CharUnits: func(r rune) int { return 1 },
}

// UTF8Encoding encodes positions as byte offsets.
var UTF8Encoding = Encoding{
	Name: "utf-8",
	EncodePosition: func(lineText []rune, charIdx int) int {
		n := 0
		for _, r := range lineText[:clampRunes(lineText, charIdx)] {
			n += runeLenUTF8(r)
		}
		return n
	},
	CharUnits: runeLenUTF8,
}

// UTF16Encoding encodes positions as UTF-16 code-unit offsets.
var UTF16Encoding = Encoding{
	Name: "utf-16",
	EncodePosition: func(lineText []rune, charIdx int) int {
		n := 0
		for _, r := range lineText[:clampRunes(lineText, charIdx)] {
			n += runeLenUTF16(r)
		}
		return n
	},
	CharUnits: runeLenUTF16,
}

func clampRunes(lineText []rune, idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > len(lineText) {
		return len(lineText)
	}
	return idx
}

func runeLenUTF8(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

func runeLenUTF16(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func encodePos(enc Encoding, content Content, pos line.Position) EncodedPosition {
	var lineText []rune
	if l := content.Line(pos.Line); l != nil {
		lineText = l.Runes()
	}
	return EncodedPosition{Line: pos.Line, Unit: enc.EncodePosition(lineText, pos.Char)}
}
