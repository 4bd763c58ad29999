package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hexstorm/internal/config"
	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/engine/viewport"
	"github.com/dshills/hexstorm/internal/log"
	"github.com/dshills/hexstorm/internal/renderer"
	"github.com/dshills/hexstorm/internal/renderer/backend"
	"github.com/dshills/hexstorm/internal/session"
)

// ErrQuit signals a normal user-requested exit.
var ErrQuit = errors.New("quit")

// Options configure the application at startup.
type Options struct {
	ConfigPath string
	Path       string // file to open; empty starts a new document
	ReadOnly   bool
}

// App owns the editor state and event loop.
type App struct {
	cfg  config.Config
	doc  *engine.Document
	vp   *viewport.Viewport
	view *renderer.View
	term *backend.Terminal

	status        string
	prompt        *prompt
	insert        bool
	pendingNibble int
	quitArmed     bool
	warnedDepth   bool

	lastPat      engine.Pattern
	lastDir      engine.Direction
	searchCh     <-chan engine.SearchResult
	searchCancel context.CancelFunc

	quit     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// New builds the application: configuration, document, viewport, and
// terminal backend. The previous session for the file, if any, is
// restored.
func New(opts Options) (*App, error) {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	engOpts := []engine.Option{
		engine.WithPageSize(cfg.Engine.PageSizeKiB * 1024),
		engine.WithCacheBudget(int64(cfg.Engine.CacheBudgetMiB) << 20),
		engine.WithUndoDepth(cfg.Engine.UndoDepth),
		engine.WithSearchChunkSize(cfg.Engine.SearchChunkKiB * 1024),
	}
	if opts.ReadOnly {
		engOpts = append(engOpts, engine.WithReadOnly())
	}

	var doc *engine.Document
	if opts.Path != "" {
		doc, err = engine.Open(opts.Path, engOpts...)
		if err != nil {
			return nil, err
		}
	} else {
		doc = engine.NewMemory(engOpts...)
	}

	vp := viewport.New(24, cfg.View.BytesPerRow)
	vp.SetDocLen(doc.Len())

	visual := cfg.View.VisualMode
	if opts.Path != "" {
		if st, err := session.Load(opts.Path); err == nil {
			doc.SetBookmarks(st.Bookmarks)
			vp.SetCursor(st.Cursor)
			vp.ScrollTo(st.Top)
			if st.VisualMode != "" {
				visual = st.VisualMode
			}
		} else {
			log.Get("app").Debugf("session restore failed: %v", err)
		}
	}

	term, err := backend.NewTerminal()
	if err != nil {
		doc.Close()
		return nil, err
	}

	return &App{
		cfg:           cfg,
		doc:           doc,
		vp:            vp,
		view:          renderer.NewView(cfg.View.GroupSize, renderer.ParseVisualMode(visual)),
		term:          term,
		pendingNibble: -1,
		quit:          make(chan struct{}),
		stop:          make(chan struct{}),
	}, nil
}

// Stop requests a shutdown from outside the event loop, as on SIGTERM.
func (a *App) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Run drives the event loop until quit or error.
func (a *App) Run() error {
	if err := a.term.Init(); err != nil {
		return err
	}
	defer a.term.Fini()

	w, h := a.term.Size()
	a.layout(w, h)
	events := a.term.Events(a.quit)
	a.draw()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				w, h := ev.Size()
				a.layout(w, h)
			case *tcell.EventKey:
				if err := a.handleKey(ev); err != nil {
					if errors.Is(err, ErrQuit) {
						a.shutdown()
						return nil
					}
					a.shutdown()
					return err
				}
			}
			a.draw()
		case res := <-a.searchResults():
			a.finishSearch(res)
			a.draw()
		case <-a.stop:
			a.shutdown()
			return nil
		}
	}
}

// searchResults returns the in-flight search channel, or nil (which
// never delivers) when no search is running.
func (a *App) searchResults() <-chan engine.SearchResult {
	return a.searchCh
}

// finishSearch applies an asynchronous search result, discarding it if
// the document has mutated since the scan started.
func (a *App) finishSearch(res engine.SearchResult) {
	a.searchCh = nil
	a.searchCancel = nil

	switch {
	case res.Err != nil && errors.Is(res.Err, context.Canceled):
		a.status = "search cancelled"
	case res.Err != nil:
		a.status = fmt.Sprintf("search failed: %v", res.Err)
	case res.Generation != a.doc.Generation():
		a.status = "search result discarded: document changed"
	case res.Found:
		a.vp.SetCursor(res.Offset)
		a.status = fmt.Sprintf("match at 0x%X", res.Offset)
	default:
		a.status = "pattern not found"
	}
}

// cancelSearch aborts any in-flight search.
func (a *App) cancelSearch() {
	if a.searchCancel != nil {
		a.searchCancel()
	}
}

// shutdown persists the session and closes the document.
func (a *App) shutdown() {
	a.cancelSearch()
	close(a.quit)
	if path := a.doc.Path(); path != "" {
		st := session.State{
			Path:       path,
			Cursor:     a.vp.Cursor(),
			Top:        a.vp.Top(),
			Bookmarks:  a.doc.Bookmarks(),
			VisualMode: a.view.Mode().String(),
		}
		if err := session.Save(st); err != nil {
			log.Get("app").Debugf("session save failed: %v", err)
		}
	}
	if err := a.doc.Close(); err != nil {
		log.Get("app").Debugf("close failed: %v", err)
	}
}

// layout resizes the viewport to the screen, reserving the status row.
func (a *App) layout(w, h int) {
	rows := h - 1
	if rows < 1 {
		rows = 1
	}
	_ = w
	a.vp.Resize(rows)
}

// draw renders one full frame plus the status line.
func (a *App) draw() {
	a.term.Clear()

	frame, err := a.view.Render(a.doc, a.vp)
	if err != nil {
		a.status = fmt.Sprintf("render failed: %v", err)
	} else {
		for y, row := range frame.Rows {
			for x, c := range row {
				a.term.SetCell(x, y, c)
			}
		}
	}

	a.drawStatus()
	a.term.Show()
}

// drawStatus paints the bottom row: prompt when active, otherwise
// document identity, mode, and the transient message.
func (a *App) drawStatus() {
	w, h := a.term.Size()
	y := h - 1
	st := renderer.Style{FG: renderer.ColorDefault, Reverse: true}

	var line string
	if a.prompt != nil {
		line = a.prompt.label() + string(a.prompt.input)
	} else {
		name := a.doc.Path()
		if name == "" {
			name = "[untitled]"
		}
		marks := ""
		if a.doc.Dirty() {
			marks += "*"
		}
		if a.doc.ReadOnly() {
			marks += " [ro]"
		}
		mode := "over"
		if a.insert {
			mode = "ins"
		}
		left := fmt.Sprintf(" %s%s  %s", name, marks, mode)
		right := fmt.Sprintf("0x%X/0x%X ", a.vp.Cursor(), a.doc.Len())
		pad := w - len(left) - len(right) - len(a.status) - 2
		if pad < 1 {
			pad = 1
		}
		line = left + "  " + a.status + fmt.Sprintf("%*s", pad+len(right), right)
	}
	if len(line) > w {
		line = line[:w]
	}
	a.term.SetText(0, y, fmt.Sprintf("%-*s", w, line), st)
}
