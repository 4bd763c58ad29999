package renderer

import "github.com/lucasb-eyer/go-colorful"

// Color represents a true color value. Default marks the terminal's
// default color.
type Color struct {
	R, G, B uint8
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// Style describes how a cell is drawn.
type Style struct {
	FG      Color
	Bold    bool
	Reverse bool
	Dim     bool
}

// StyleDefault draws with the terminal's defaults.
var StyleDefault = Style{FG: ColorDefault}

// fromColorful converts a colorful color to a Color.
func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// categoryStyles maps each byte category to its style. Hues are spread
// so the dump reads at a glance: nulls recede, text pops, control and
// high bytes sit apart from both.
var categoryStyles = map[ByteCategory]Style{
	CatNull:      {FG: fromColorful(colorful.Hsv(0, 0, 0.45)), Dim: true},
	CatPrintable: {FG: ColorDefault},
	CatSpace:     {FG: fromColorful(colorful.Hsv(190, 0.55, 0.85))},
	CatControl:   {FG: fromColorful(colorful.Hsv(30, 0.70, 0.95))},
	CatHigh:      {FG: fromColorful(colorful.Hsv(280, 0.45, 0.90))},
}

// StyleFor returns the style for a byte's category.
func StyleFor(b byte) Style {
	return categoryStyles[CategoryOf(b)]
}

// Cell is one styled screen cell.
type Cell struct {
	Rune  rune
	Style Style
}
