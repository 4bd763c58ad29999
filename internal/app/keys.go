package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/engine/search"
	"github.com/dshills/hexstorm/internal/renderer"
)

type promptKind uint8

const (
	promptSearch promptKind = iota
	promptSearchBack
	promptGoto
)

// prompt is a one-line input on the status row.
type prompt struct {
	kind  promptKind
	input []rune
}

func (p *prompt) label() string {
	switch p.kind {
	case promptSearchBack:
		return "?"
	case promptGoto:
		return "goto: "
	default:
		return "/"
	}
}

// handleKey dispatches one key event. It returns ErrQuit to leave the
// loop.
func (a *App) handleKey(ev *tcell.EventKey) error {
	if a.prompt != nil {
		a.handlePromptKey(ev)
		return nil
	}

	// Any key but a quit request disarms the dirty-quit confirmation.
	armed := a.quitArmed
	a.quitArmed = false
	a.status = ""

	switch ev.Key() {
	case tcell.KeyEscape:
		a.pendingNibble = -1
		a.cancelSearch()
		return nil
	case tcell.KeyLeft:
		a.vp.MoveCursor(-1)
		return nil
	case tcell.KeyRight:
		a.vp.MoveCursor(1)
		return nil
	case tcell.KeyUp:
		a.vp.LineUp()
		return nil
	case tcell.KeyDown:
		a.vp.LineDown()
		return nil
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		a.vp.PageUp()
		return nil
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		a.vp.PageDown()
		return nil
	case tcell.KeyHome:
		a.vp.SetCursor(0)
		return nil
	case tcell.KeyEnd:
		a.vp.SetCursor(a.doc.Len())
		return nil
	case tcell.KeyDelete:
		a.deleteByte()
		return nil
	case tcell.KeyCtrlR:
		a.redo()
		return nil
	case tcell.KeyCtrlS:
		a.save()
		return nil
	case tcell.KeyCtrlC:
		return a.requestQuit(armed)
	case tcell.KeyTab:
		a.cycleVisualMode()
		return nil
	}

	if ev.Key() != tcell.KeyRune {
		return nil
	}
	r := ev.Rune()
	switch r {
	case 'q':
		return a.requestQuit(armed)
	case 'h':
		a.vp.MoveCursor(-1)
	case 'l':
		a.vp.MoveCursor(1)
	case 'k':
		a.vp.LineUp()
	case 'j':
		a.vp.LineDown()
	case 'g':
		a.vp.SetCursor(0)
	case 'G':
		a.vp.SetCursor(a.doc.Len())
	case 'i':
		a.insert = !a.insert
		a.pendingNibble = -1
	case 'x':
		a.deleteByte()
	case 'u':
		a.undo()
	case 'm':
		if a.doc.ToggleBookmark(a.vp.Cursor()) {
			a.status = "bookmark set"
		} else {
			a.status = "bookmark cleared"
		}
	case 'B':
		a.nextBookmark()
	case '/':
		a.prompt = &prompt{kind: promptSearch}
	case '?':
		a.prompt = &prompt{kind: promptSearchBack}
	case ':':
		a.prompt = &prompt{kind: promptGoto}
	case 'n':
		a.repeatSearch(a.lastDir)
	case 'N':
		a.repeatSearch(opposite(a.lastDir))
	default:
		if d, ok := hexDigit(r); ok {
			a.editNibble(d)
		}
	}
	return nil
}

// requestQuit quits immediately when clean; a dirty document needs the
// quit key pressed twice.
func (a *App) requestQuit(armed bool) error {
	if a.doc.Dirty() && !armed {
		a.quitArmed = true
		a.status = "unsaved changes: press again to quit, ctrl-s to save"
		return nil
	}
	return ErrQuit
}

// handlePromptKey edits or commits the active prompt.
func (a *App) handlePromptKey(ev *tcell.EventKey) {
	p := a.prompt
	switch ev.Key() {
	case tcell.KeyEscape:
		a.prompt = nil
		a.status = ""
	case tcell.KeyEnter:
		a.prompt = nil
		a.commitPrompt(p)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
	}
}

// commitPrompt acts on a committed prompt line.
func (a *App) commitPrompt(p *prompt) {
	text := strings.TrimSpace(string(p.input))
	if text == "" {
		a.status = ""
		return
	}
	switch p.kind {
	case promptGoto:
		off, err := parseOffset(text)
		if err != nil {
			a.status = fmt.Sprintf("bad offset %q", text)
			return
		}
		a.vp.SetCursor(off)
		a.status = ""
	case promptSearchBack:
		a.startSearch(text, engine.Backward)
	default:
		a.startSearch(text, engine.Forward)
	}
}

// startSearch parses the pattern and kicks off an asynchronous scan.
// Input is hex bytes with ?? and nibble wildcards; anything that does
// not parse as hex is searched as a literal byte string.
func (a *App) startSearch(text string, dir engine.Direction) {
	pat, err := search.ParseHex(text)
	if err != nil {
		pat = search.Exact([]byte(text))
	}
	a.lastPat = pat
	a.lastDir = dir
	a.launchSearch(dir)
}

// repeatSearch re-runs the last pattern in the given direction.
func (a *App) repeatSearch(dir engine.Direction) {
	if len(a.lastPat.Bytes) == 0 {
		a.status = "no previous search"
		return
	}
	a.launchSearch(dir)
}

func (a *App) launchSearch(dir engine.Direction) {
	a.cancelSearch()
	start := a.vp.Cursor()
	if dir == engine.Forward {
		start++
	} else {
		start--
	}
	a.searchCh, a.searchCancel = a.doc.FindAsync(a.lastPat, start, dir, true)
	a.status = "searching..."
}

// editNibble applies one hex digit at the cursor. The first digit of a
// byte starts an undo group and writes the high nibble; the second
// completes the byte and advances.
func (a *App) editNibble(d byte) {
	cur := a.vp.Cursor()
	if a.pendingNibble < 0 {
		a.doc.GroupBoundary()
		var err error
		if a.insert || cur >= a.doc.Len() {
			err = a.doc.Insert(cur, []byte{d << 4})
		} else {
			err = a.doc.Overwrite(cur, []byte{d << 4})
		}
		if a.reportEdit(err) {
			a.pendingNibble = int(d)
		}
	} else {
		b := byte(a.pendingNibble)<<4 | d
		if a.reportEdit(a.doc.Overwrite(cur, []byte{b})) {
			a.pendingNibble = -1
			a.vp.SetDocLen(a.doc.Len())
			a.vp.MoveCursor(1)
			return
		}
	}
	a.vp.SetDocLen(a.doc.Len())
}

// deleteByte removes the byte under the cursor as its own undo step.
func (a *App) deleteByte() {
	cur := a.vp.Cursor()
	if cur >= a.doc.Len() {
		return
	}
	a.pendingNibble = -1
	a.doc.GroupBoundary()
	if a.reportEdit(a.doc.Delete(cur, 1)) {
		a.vp.SetDocLen(a.doc.Len())
	}
}

// reportEdit surfaces a mutation error and checks the history cap.
func (a *App) reportEdit(err error) bool {
	switch {
	case err == nil:
		if a.doc.HistoryCapacityExceeded() && !a.warnedDepth {
			a.warnedDepth = true
			a.status = "undo depth exceeded: oldest steps dropped"
		}
		return true
	case errors.Is(err, engine.ErrReadOnly):
		a.status = "document is read-only"
	case errors.Is(err, engine.ErrMutationInFlight):
		a.status = "busy: another mutation is in flight"
	default:
		a.status = fmt.Sprintf("edit failed: %v", err)
	}
	return false
}

func (a *App) undo() {
	a.pendingNibble = -1
	r, err := a.doc.Undo()
	if err != nil {
		if errors.Is(err, engine.ErrNothingToUndo) {
			a.status = "nothing to undo"
		} else {
			a.status = fmt.Sprintf("undo failed: %v", err)
		}
		return
	}
	a.vp.SetDocLen(a.doc.Len())
	a.vp.SetCursor(r.Start)
	a.status = "undone"
}

func (a *App) redo() {
	a.pendingNibble = -1
	r, err := a.doc.Redo()
	if err != nil {
		if errors.Is(err, engine.ErrNothingToRedo) {
			a.status = "nothing to redo"
		} else {
			a.status = fmt.Sprintf("redo failed: %v", err)
		}
		return
	}
	a.vp.SetDocLen(a.doc.Len())
	a.vp.SetCursor(r.Start)
	a.status = "redone"
}

// save flushes the document to its backing file.
func (a *App) save() {
	a.pendingNibble = -1
	if err := a.doc.Flush(); err != nil {
		switch {
		case errors.Is(err, engine.ErrNoPath):
			a.status = "no file to save to"
		case errors.Is(err, engine.ErrReadOnly):
			a.status = "document is read-only"
		default:
			a.status = fmt.Sprintf("save failed: %v", err)
		}
		return
	}
	a.vp.SetDocLen(a.doc.Len())
	a.status = fmt.Sprintf("wrote %s", a.doc.Path())
}

// nextBookmark jumps to the first bookmark past the cursor, wrapping.
func (a *App) nextBookmark() {
	marks := a.doc.Bookmarks()
	if len(marks) == 0 {
		a.status = "no bookmarks"
		return
	}
	cur := a.vp.Cursor()
	for _, off := range marks {
		if off > cur {
			a.vp.SetCursor(off)
			return
		}
	}
	a.vp.SetCursor(marks[0])
}

// cycleVisualMode rotates unicode -> ascii -> off.
func (a *App) cycleVisualMode() {
	switch a.view.Mode() {
	case renderer.VisualUnicode:
		a.view.SetMode(renderer.VisualASCII)
	case renderer.VisualASCII:
		a.view.SetMode(renderer.VisualOff)
	default:
		a.view.SetMode(renderer.VisualUnicode)
	}
}

func opposite(dir engine.Direction) engine.Direction {
	if dir == engine.Forward {
		return engine.Backward
	}
	return engine.Forward
}

// parseOffset accepts 0x-prefixed hex or plain decimal.
func parseOffset(s string) (int64, error) {
	s = strings.ToLower(s)
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return strconv.ParseInt(rest, 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// hexDigit maps a rune to its nibble value.
func hexDigit(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	}
	return 0, false
}
