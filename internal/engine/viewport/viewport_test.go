package viewport

import "testing"

func TestVisibleRangeClampsToDocument(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(40)
	r := v.VisibleRange()
	if r.Start != 0 || r.End != 40 {
		t.Errorf("VisibleRange = %v, want [0:40)", r)
	}
}

func TestCursorClampsToAppendPosition(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(10)
	v.SetCursor(99)
	if got := v.Cursor(); got != 10 {
		t.Errorf("Cursor = %d, want 10 (append position)", got)
	}
	v.MoveCursor(-100)
	if got := v.Cursor(); got != 0 {
		t.Errorf("Cursor = %d, want 0", got)
	}
}

func TestScrollFollowsCursor(t *testing.T) {
	v := New(2, 16) // window covers 32 bytes
	v.SetDocLen(1000)

	v.SetCursor(100)
	r := v.VisibleRange()
	if !r.Contains(100) {
		t.Errorf("cursor 100 outside visible %v", r)
	}
	// Scrolled down just enough: cursor row is the last visible row.
	if got := v.Top(); got != 96-16 {
		t.Errorf("Top = %d, want 80", got)
	}

	v.SetCursor(0)
	if got := v.Top(); got != 0 {
		t.Errorf("Top after scroll up = %d, want 0", got)
	}
}

func TestLineAndPageMovement(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(1000)
	v.SetCursor(40)

	v.LineDown()
	if got := v.Cursor(); got != 56 {
		t.Errorf("LineDown: Cursor = %d, want 56", got)
	}
	v.LineUp()
	if got := v.Cursor(); got != 40 {
		t.Errorf("LineUp: Cursor = %d, want 40", got)
	}
	v.PageDown()
	if got := v.Cursor(); got != 104 {
		t.Errorf("PageDown: Cursor = %d, want 104", got)
	}
	v.PageUp()
	if got := v.Cursor(); got != 40 {
		t.Errorf("PageUp: Cursor = %d, want 40", got)
	}
}

func TestSelectionNormalizes(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(100)
	v.SetCursor(50)
	v.ExtendSelection(30)
	r := v.Selection()
	if r.Start != 30 || r.End != 50 {
		t.Errorf("Selection = %v, want [30:50)", r)
	}

	v.SetCursor(10)
	if !v.Selection().IsEmpty() {
		t.Errorf("Selection after SetCursor = %v, want empty", v.Selection())
	}
}

func TestCursorRowCol(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(1000)
	v.ScrollTo(0)
	v.SetCursor(35)
	row, col := v.CursorRowCol()
	if row != 2 || col != 3 {
		t.Errorf("CursorRowCol = (%d, %d), want (2, 3)", row, col)
	}
}

func TestShrinkingDocumentPullsCursorBack(t *testing.T) {
	v := New(4, 16)
	v.SetDocLen(100)
	v.SetCursor(100)
	v.SetDocLen(20)
	if got := v.Cursor(); got != 20 {
		t.Errorf("Cursor = %d, want 20 after shrink", got)
	}
}

func TestResizeKeepsCursorVisible(t *testing.T) {
	v := New(10, 16)
	v.SetDocLen(1000)
	v.SetCursor(500)
	v.Resize(2)
	if !v.VisibleRange().Contains(500) {
		t.Errorf("cursor 500 outside visible %v after resize", v.VisibleRange())
	}
}
