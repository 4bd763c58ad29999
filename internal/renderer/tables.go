package renderer

import "fmt"

// VisualMode selects how the text column renders each byte.
type VisualMode uint8

const (
	// VisualUnicode shows control pictures for control bytes.
	VisualUnicode VisualMode = iota
	// VisualASCII shows a dot for anything unprintable.
	VisualASCII
	// VisualOff hides the text column.
	VisualOff
)

// ParseVisualMode maps a config string to a mode, defaulting to
// Unicode.
func ParseVisualMode(s string) VisualMode {
	switch s {
	case "ascii":
		return VisualASCII
	case "off":
		return VisualOff
	default:
		return VisualUnicode
	}
}

// String returns the config spelling of the mode.
func (m VisualMode) String() string {
	switch m {
	case VisualASCII:
		return "ascii"
	case VisualOff:
		return "off"
	default:
		return "unicode"
	}
}

// ByteCategory classifies a byte value for styling.
type ByteCategory uint8

const (
	CatNull ByteCategory = iota
	CatPrintable
	CatSpace
	CatControl
	CatHigh
)

// CategoryOf returns the styling category of a byte value.
func CategoryOf(b byte) ByteCategory {
	switch {
	case b == 0x00:
		return CatNull
	case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
		return CatSpace
	case b >= 0x21 && b <= 0x7E:
		return CatPrintable
	case b < 0x80:
		return CatControl
	default:
		return CatHigh
	}
}

// hexTable holds the two-digit upper-case rendering of every byte.
var hexTable [256]string

func init() {
	for i := range hexTable {
		hexTable[i] = fmt.Sprintf("%02X", i)
	}
}

// HexString returns the two-digit hex rendering of b.
func HexString(b byte) string {
	return hexTable[b]
}

// VisualRune returns the text-column glyph for b in the given mode.
// Unicode mode maps control bytes to the U+2400 control pictures so
// every byte stays one cell wide and visually distinct.
func VisualRune(b byte, mode VisualMode) rune {
	if mode == VisualASCII {
		if b >= 0x20 && b <= 0x7E {
			return rune(b)
		}
		return '.'
	}
	switch {
	case b < 0x20:
		return rune(0x2400 + rune(b))
	case b == 0x7F:
		return '␡'
	case b <= 0x7E:
		return rune(b)
	default:
		return '·'
	}
}
