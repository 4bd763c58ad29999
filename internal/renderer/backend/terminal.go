// Package backend drives the terminal through tcell.
package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hexstorm/internal/renderer"
)

// Terminal wraps a tcell screen for the renderer and the app loop.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal creates a terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// Init takes over the terminal.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Init()
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// Size returns the screen dimensions.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// SetCell draws one cell.
func (t *Terminal) SetCell(x, y int, c renderer.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, c.Rune, nil, convertStyle(c.Style))
}

// SetText draws a string left to right from (x, y).
func (t *Terminal) SetText(x, y int, s string, st renderer.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	style := convertStyle(st)
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Clear blanks the screen buffer.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

// Show flushes the buffer to the terminal.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

// Events delivers tcell events on a channel until quit closes.
func (t *Terminal) Events(quit <-chan struct{}) <-chan tcell.Event {
	ch := make(chan tcell.Event, 8)
	go t.screen.ChannelEvents(ch, quit)
	return ch
}

// convertStyle maps a renderer style onto tcell.
func convertStyle(st renderer.Style) tcell.Style {
	style := tcell.StyleDefault
	if !st.FG.Default {
		style = style.Foreground(tcell.NewRGBColor(int32(st.FG.R), int32(st.FG.G), int32(st.FG.B)))
	}
	if st.Bold {
		style = style.Bold(true)
	}
	if st.Reverse {
		style = style.Reverse(true)
	}
	if st.Dim {
		style = style.Dim(true)
	}
	return style
}
