package viewport

import (
	"sync"

	"github.com/dshills/hexstorm/internal/engine/overlay"
)

// DefaultBytesPerRow matches the classic 16-byte hex dump row.
const DefaultBytesPerRow = 16

// Viewport tracks the visible window and the cursor/selection pair.
// All methods are safe for concurrent use.
type Viewport struct {
	mu sync.RWMutex

	top         int64 // logical offset of the first visible row
	rows        int
	bytesPerRow int

	// Selection endpoints. anchor == pos is a collapsed cursor.
	anchor int64
	pos    int64

	docLen int64
}

// New creates a viewport showing rows rows of bytesPerRow bytes.
func New(rows, bytesPerRow int) *Viewport {
	if rows < 1 {
		rows = 1
	}
	if bytesPerRow < 1 {
		bytesPerRow = DefaultBytesPerRow
	}
	return &Viewport{rows: rows, bytesPerRow: bytesPerRow}
}

// Resize changes the number of visible rows.
func (v *Viewport) Resize(rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if rows < 1 {
		rows = 1
	}
	v.rows = rows
	v.ensureVisibleLocked()
}

// Rows returns the number of visible rows.
func (v *Viewport) Rows() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rows
}

// BytesPerRow returns the row width in bytes.
func (v *Viewport) BytesPerRow() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bytesPerRow
}

// SetBytesPerRow changes the row width in bytes.
func (v *Viewport) SetBytesPerRow(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 1 {
		return
	}
	v.bytesPerRow = n
	v.top = v.rowStartLocked(v.top)
	v.ensureVisibleLocked()
}

// SetDocLen informs the viewport of the document's current length so
// cursor and scroll positions stay clamped to [0, docLen].
func (v *Viewport) SetDocLen(n int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 0 {
		n = 0
	}
	v.docLen = n
	v.anchor = v.clampLocked(v.anchor)
	v.pos = v.clampLocked(v.pos)
	v.ensureVisibleLocked()
}

// VisibleRange returns the logical range covered by the visible rows,
// clamped to the document length.
func (v *Viewport) VisibleRange() overlay.Range {
	v.mu.RLock()
	defer v.mu.RUnlock()
	end := v.top + int64(v.rows)*int64(v.bytesPerRow)
	if end > v.docLen {
		end = v.docLen
	}
	if end < v.top {
		end = v.top
	}
	return overlay.NewRange(v.top, end)
}

// Top returns the logical offset of the first visible row.
func (v *Viewport) Top() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.top
}

// Cursor returns the cursor position.
func (v *Viewport) Cursor() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pos
}

// Selection returns the normalized selection range. A collapsed cursor
// yields an empty range at the cursor position.
func (v *Viewport) Selection() overlay.Range {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.anchor <= v.pos {
		return overlay.NewRange(v.anchor, v.pos)
	}
	return overlay.NewRange(v.pos, v.anchor)
}

// SetCursor moves the cursor, collapses the selection, and scrolls the
// cursor into view.
func (v *Viewport) SetCursor(off int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = v.clampLocked(off)
	v.anchor = v.pos
	v.ensureVisibleLocked()
}

// ExtendSelection moves the cursor while keeping the anchor in place.
func (v *Viewport) ExtendSelection(off int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = v.clampLocked(off)
	v.ensureVisibleLocked()
}

// ScrollTo adjusts the scroll position so off becomes visible, with the
// window clamped inside the document.
func (v *Viewport) ScrollTo(off int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	off = v.clampLocked(off)
	row := v.rowStartLocked(off)
	window := int64(v.rows) * int64(v.bytesPerRow)
	if row < v.top {
		v.top = row
	} else if row >= v.top+window {
		v.top = row - window + int64(v.bytesPerRow)
	}
	v.clampTopLocked()
}

// MoveCursor moves the cursor by delta bytes, collapsing the selection.
func (v *Viewport) MoveCursor(delta int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = v.clampLocked(v.pos + delta)
	v.anchor = v.pos
	v.ensureVisibleLocked()
}

// LineUp moves the cursor one row up.
func (v *Viewport) LineUp() { v.MoveCursor(-int64(v.BytesPerRow())) }

// LineDown moves the cursor one row down.
func (v *Viewport) LineDown() { v.MoveCursor(int64(v.BytesPerRow())) }

// PageUp moves the cursor one window up.
func (v *Viewport) PageUp() {
	v.MoveCursor(-int64(v.Rows()) * int64(v.BytesPerRow()))
}

// PageDown moves the cursor one window down.
func (v *Viewport) PageDown() {
	v.MoveCursor(int64(v.Rows()) * int64(v.BytesPerRow()))
}

// CursorRowCol returns the cursor's row and column within the visible
// window. The row may be negative or past the last row if the cursor
// is off screen.
func (v *Viewport) CursorRowCol() (row, col int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rel := v.pos - v.top
	bpr := int64(v.bytesPerRow)
	r := rel / bpr
	c := rel % bpr
	if c < 0 {
		c += bpr
		r--
	}
	return int(r), int(c)
}

// clampLocked limits an offset to [0, docLen]. The position at docLen
// is valid: it is where an append lands.
func (v *Viewport) clampLocked(off int64) int64 {
	if off < 0 {
		return 0
	}
	if off > v.docLen {
		return v.docLen
	}
	return off
}

// rowStartLocked returns the offset of the row containing off.
func (v *Viewport) rowStartLocked(off int64) int64 {
	bpr := int64(v.bytesPerRow)
	return off - off%bpr
}

// ensureVisibleLocked scrolls just enough to bring the cursor on
// screen.
func (v *Viewport) ensureVisibleLocked() {
	row := v.rowStartLocked(v.pos)
	window := int64(v.rows) * int64(v.bytesPerRow)
	if row < v.top {
		v.top = row
	} else if row >= v.top+window {
		v.top = row - window + int64(v.bytesPerRow)
	}
	v.clampTopLocked()
}

// clampTopLocked keeps the window inside [0, last row].
func (v *Viewport) clampTopLocked() {
	if v.top < 0 {
		v.top = 0
		return
	}
	maxTop := v.rowStartLocked(v.docLen)
	if v.top > maxTop {
		v.top = maxTop
	}
}
