package renderer

import (
	"fmt"

	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/engine/viewport"
)

// largeAddressThreshold switches the gutter to 16 hex digits for files
// whose offsets do not fit in 32 bits.
const largeAddressThreshold = int64(1) << 32

// View renders the visible byte range as hex dump rows.
type View struct {
	groupSize int
	mode      VisualMode
}

// NewView creates a view grouping hex columns every groupSize bytes.
func NewView(groupSize int, mode VisualMode) *View {
	if groupSize < 1 {
		groupSize = 8
	}
	return &View{groupSize: groupSize, mode: mode}
}

// Mode returns the current visual mode.
func (v *View) Mode() VisualMode {
	return v.mode
}

// SetMode changes the visual mode.
func (v *View) SetMode(mode VisualMode) {
	v.mode = mode
}

// Frame is one rendered screen of hex dump rows plus the cursor's
// screen position.
type Frame struct {
	Rows    [][]Cell
	CursorX int
	CursorY int
}

// GutterWidth returns the offset gutter width for a document length,
// including the 0x prefix.
func GutterWidth(docLen int64) int {
	if docLen >= largeAddressThreshold {
		return 2 + 16
	}
	return 2 + 8
}

// RowWidth returns the full width of a rendered row.
func (v *View) RowWidth(docLen int64, bytesPerRow int) int {
	w := GutterWidth(docLen) + 2 + v.hexWidth(bytesPerRow)
	if v.mode != VisualOff {
		w += 2 + bytesPerRow
	}
	return w
}

// hexWidth is the width of the hex column area.
func (v *View) hexWidth(bytesPerRow int) int {
	return bytesPerRow*3 - 1 + (bytesPerRow-1)/v.groupSize
}

// hexX returns the x position of hex column col within the hex area.
func (v *View) hexX(col int) int {
	return col*3 + col/v.groupSize
}

// Render reads the viewport's visible range from the document and
// produces a frame. The cursor cell is rendered even when it sits at
// the append position one past the last byte.
func (v *View) Render(doc *engine.Document, vp *viewport.Viewport) (*Frame, error) {
	visible := vp.VisibleRange()
	data := make([]byte, visible.Len())
	if err := doc.ReadInto(data, visible.Start); err != nil {
		return nil, err
	}

	docLen := doc.Len()
	rows := vp.Rows()
	bpr := vp.BytesPerRow()
	sel := vp.Selection()
	cursor := vp.Cursor()
	gutterW := GutterWidth(docLen)
	hexStart := gutterW + 2
	visStart := hexStart + v.hexWidth(bpr) + 2

	frame := &Frame{Rows: make([][]Cell, rows), CursorX: -1, CursorY: -1}
	gutterStyle := Style{FG: ColorDefault, Dim: true}

	for row := 0; row < rows; row++ {
		base := visible.Start + int64(row)*int64(bpr)
		if base > docLen {
			frame.Rows[row] = nil
			continue
		}

		width := v.RowWidth(docLen, bpr)
		line := make([]Cell, width)
		for i := range line {
			line[i] = Cell{Rune: ' ', Style: StyleDefault}
		}

		var gutter string
		if gutterW == 18 {
			gutter = fmt.Sprintf("0x%016X", base)
		} else {
			gutter = fmt.Sprintf("0x%08X", base)
		}
		for i, r := range gutter {
			line[i] = Cell{Rune: r, Style: gutterStyle}
		}

		for col := 0; col < bpr; col++ {
			off := base + int64(col)
			if off > docLen {
				break
			}
			x := hexStart + v.hexX(col)

			if off == docLen {
				// Append position: visible only as the cursor.
				if off == cursor {
					st := StyleDefault
					st.Reverse = true
					line[x] = Cell{Rune: ' ', Style: st}
					line[x+1] = Cell{Rune: ' ', Style: st}
					frame.CursorX, frame.CursorY = x, row
				}
				break
			}

			b := data[off-visible.Start]
			st := StyleFor(b)
			if sel.Contains(off) {
				st.Reverse = true
			}
			if off == cursor {
				st.Reverse = true
				st.Bold = true
				frame.CursorX, frame.CursorY = x, row
			}
			hx := hexTable[b]
			line[x] = Cell{Rune: rune(hx[0]), Style: st}
			line[x+1] = Cell{Rune: rune(hx[1]), Style: st}

			if v.mode != VisualOff {
				line[visStart+col] = Cell{Rune: VisualRune(b, v.mode), Style: st}
			}
		}
		frame.Rows[row] = line
	}
	return frame, nil
}
