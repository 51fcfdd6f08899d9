package renderer

import (
	"github.com/halvorsen/ligature/internal/engine/line"
	"github.com/halvorsen/ligature/internal/renderer/core"
)

// Theme maps token types and diagnostic severities to display styles.
// The selection, gutter and muted text colors are derived from the base
// background and foreground with go-colorful blends (core.Color.Lighten/
// Darken); the accent colors for keywords, strings, numbers, types,
// functions, decorators, enum members and the info/warning/error
// severities are fixed RGB values.
type Theme struct {
	Background      core.Color
	Foreground      core.Color
	Selection       core.Color
	Gutter          core.Color
	GutterText      core.Color
	SecondaryCursor core.Color

	tokenStyles map[line.TokenType]core.Style
	severityFg  map[line.Severity]core.Color
}

// DefaultTheme returns a dark theme: a base background and foreground,
// colors lightened or darkened from those two, and fixed RGB accent
// colors per token category.
func DefaultTheme() Theme {
	bg := core.Color{R: 0x1e, G: 0x1e, B: 0x2e}
	fg := core.Color{R: 0xcd, G: 0xd6, B: 0xf4}

	t := Theme{
		Background:      bg,
		Foreground:      fg,
		Selection:       bg.Lighten(0.25),
		Gutter:          bg.Lighten(0.08),
		GutterText:      fg.Darken(0.35),
		SecondaryCursor: core.ColorFromRGB(0xf9, 0xe2, 0xaf),
	}

	keyword := core.ColorFromRGB(0xcb, 0xa6, 0xf7)
	str := core.ColorFromRGB(0xa6, 0xe3, 0xa1)
	num := core.ColorFromRGB(0xfa, 0xb3, 0x87)
	typ := core.ColorFromRGB(0xf9, 0xe2, 0xaf)
	fn := core.ColorFromRGB(0x89, 0xb4, 0xfa)
	variable := fg
	comment := fg.Darken(0.4)
	decorator := core.ColorFromRGB(0xf5, 0xc2, 0xe7)
	enumMember := core.ColorFromRGB(0x94, 0xe2, 0xd5)
	operator := fg.Darken(0.1)
	punctuation := fg.Darken(0.15)

	t.tokenStyles = map[line.TokenType]core.Style{
		line.TokenNone:        core.NewStyle(fg),
		line.TokenKeyword:     core.NewStyle(keyword).Bold(),
		line.TokenString:      core.NewStyle(str),
		line.TokenNumber:      core.NewStyle(num),
		line.TokenType_:       core.NewStyle(typ),
		line.TokenFunction:    core.NewStyle(fn),
		line.TokenVariable:    core.NewStyle(variable),
		line.TokenComment:     core.NewStyle(comment).Italic(),
		line.TokenDecorator:   core.NewStyle(decorator),
		line.TokenEnumMember:  core.NewStyle(enumMember),
		line.TokenOperator:    core.NewStyle(operator),
		line.TokenPunctuation: core.NewStyle(punctuation),
	}

	t.severityFg = map[line.Severity]core.Color{
		line.SeverityHint:    fg.Darken(0.2),
		line.SeverityInfo:    core.ColorFromRGB(0x89, 0xb4, 0xfa),
		line.SeverityWarning: core.ColorFromRGB(0xf9, 0xe2, 0xaf),
		line.SeverityError:   core.ColorFromRGB(0xf3, 0x8b, 0xa8),
	}

	return t
}

// StyleForToken returns the display style for a token type.
func (t Theme) StyleForToken(tt line.TokenType) core.Style {
	if s, ok := t.tokenStyles[tt]; ok {
		return s
	}
	return core.NewStyle(t.Foreground)
}

// UnderlineColorForSeverity returns the underline color for a diagnostic
// severity; line.SeverityNone returns the zero Color and should not be
// applied.
func (t Theme) UnderlineColorForSeverity(sev line.Severity) core.Color {
	return t.severityFg[sev]
}
