package renderer

import (
	"strings"
	"testing"

	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/engine/viewport"
)

func TestHexString(t *testing.T) {
	tests := []struct {
		b    byte
		want string
	}{
		{0x00, "00"},
		{0x0F, "0F"},
		{0xAB, "AB"},
		{0xFF, "FF"},
	}
	for _, tt := range tests {
		if got := HexString(tt.b); got != tt.want {
			t.Errorf("HexString(%#x) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestVisualRune(t *testing.T) {
	tests := []struct {
		b    byte
		mode VisualMode
		want rune
	}{
		{0x00, VisualUnicode, '␀'},
		{0x0A, VisualUnicode, '␊'},
		{0x1F, VisualUnicode, '␟'},
		{0x41, VisualUnicode, 'A'},
		{0x7E, VisualUnicode, '~'},
		{0x7F, VisualUnicode, '␡'},
		{0x80, VisualUnicode, '·'},
		{0xFF, VisualUnicode, '·'},
		{0x00, VisualASCII, '.'},
		{0x41, VisualASCII, 'A'},
		{0x20, VisualASCII, ' '},
		{0x7F, VisualASCII, '.'},
		{0xC3, VisualASCII, '.'},
	}
	for _, tt := range tests {
		if got := VisualRune(tt.b, tt.mode); got != tt.want {
			t.Errorf("VisualRune(%#x, %v) = %q, want %q", tt.b, tt.mode, got, tt.want)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		b    byte
		want ByteCategory
	}{
		{0x00, CatNull},
		{' ', CatSpace},
		{'\n', CatSpace},
		{'A', CatPrintable},
		{'~', CatPrintable},
		{0x01, CatControl},
		{0x7F, CatControl},
		{0x80, CatHigh},
		{0xFF, CatHigh},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.b); got != tt.want {
			t.Errorf("CategoryOf(%#x) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestParseVisualMode(t *testing.T) {
	if ParseVisualMode("ascii") != VisualASCII {
		t.Error("ascii not parsed")
	}
	if ParseVisualMode("off") != VisualOff {
		t.Error("off not parsed")
	}
	if ParseVisualMode("anything") != VisualUnicode {
		t.Error("default is not unicode")
	}
}

func TestGutterWidth(t *testing.T) {
	if got := GutterWidth(100); got != 10 {
		t.Errorf("GutterWidth(100) = %d, want 10", got)
	}
	if got := GutterWidth(int64(1)<<32 - 1); got != 10 {
		t.Errorf("GutterWidth(2^32-1) = %d, want 10", got)
	}
	if got := GutterWidth(int64(1) << 32); got != 18 {
		t.Errorf("GutterWidth(2^32) = %d, want 18", got)
	}
}

func rowString(row []Cell, from, to int) string {
	var sb strings.Builder
	for _, c := range row[from:to] {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

func testDoc(t *testing.T, content string) *engine.Document {
	t.Helper()
	d := engine.NewMemory()
	t.Cleanup(func() { d.Close() })
	if err := d.Insert(0, []byte(content)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return d
}

func TestRenderRow(t *testing.T) {
	d := testDoc(t, "0123456789abcdef")
	vp := viewport.New(2, 16)
	vp.SetDocLen(d.Len())

	v := NewView(8, VisualASCII)
	frame, err := v.Render(d, vp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(frame.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(frame.Rows))
	}

	row := frame.Rows[0]
	if got := rowString(row, 0, 10); got != "0x00000000" {
		t.Errorf("gutter = %q, want 0x00000000", got)
	}

	hexStart := GutterWidth(d.Len()) + 2
	wantHex := "30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66"
	if got := rowString(row, hexStart, hexStart+len(wantHex)); got != wantHex {
		t.Errorf("hex area = %q, want %q", got, wantHex)
	}

	visStart := hexStart + len(wantHex) + 2
	if got := rowString(row, visStart, visStart+16); got != "0123456789abcdef" {
		t.Errorf("visual column = %q", got)
	}
}

func TestRenderCursorAndSelection(t *testing.T) {
	d := testDoc(t, "0123456789abcdef")
	vp := viewport.New(2, 16)
	vp.SetDocLen(d.Len())
	vp.SetCursor(2)
	vp.ExtendSelection(5)

	v := NewView(8, VisualOff)
	frame, err := v.Render(d, vp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	hexStart := GutterWidth(d.Len()) + 2
	row := frame.Rows[0]

	// Selected bytes render reversed; the cursor cell is also bold.
	if !row[hexStart+3*3].Style.Reverse {
		t.Error("selected byte 3 not reversed")
	}
	if row[hexStart+3*6].Style.Reverse {
		t.Error("byte 6 outside selection is reversed")
	}
	cx := hexStart + 3*5 + 0 // cursor at byte 5, before the group gap
	if !row[cx].Style.Reverse || !row[cx].Style.Bold {
		t.Error("cursor cell not reverse+bold")
	}
	if frame.CursorY != 0 || frame.CursorX != cx {
		t.Errorf("cursor = (%d, %d), want (%d, 0)", frame.CursorX, frame.CursorY, cx)
	}
}

func TestRenderAppendPositionCursor(t *testing.T) {
	d := testDoc(t, "0123456789abcdef")
	vp := viewport.New(2, 16)
	vp.SetDocLen(d.Len())
	vp.SetCursor(16) // one past the last byte

	v := NewView(8, VisualASCII)
	frame, err := v.Render(d, vp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.CursorY != 1 {
		t.Fatalf("CursorY = %d, want 1", frame.CursorY)
	}
	hexStart := GutterWidth(d.Len()) + 2
	cell := frame.Rows[1][hexStart]
	if cell.Rune != ' ' || !cell.Style.Reverse {
		t.Errorf("append cursor cell = %+v, want reversed blank", cell)
	}
}

func TestRenderRowWidthModes(t *testing.T) {
	v := NewView(8, VisualOff)
	withOff := v.RowWidth(100, 16)
	v.SetMode(VisualASCII)
	withVis := v.RowWidth(100, 16)
	if withVis != withOff+2+16 {
		t.Errorf("RowWidth: off=%d with=%d, want difference of 18", withOff, withVis)
	}
}
