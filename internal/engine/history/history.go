package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/hexstorm/internal/engine/overlay"
	"github.com/dshills/hexstorm/internal/log"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxDepth bounds the undo stack when no limit is configured.
const DefaultMaxDepth = 1000

// step is one undoable unit: the deltas of every mutation recorded
// between two group boundaries.
type step struct {
	deltas    []overlay.Delta
	timestamp time.Time
}

// History manages the undo and redo stacks for one document.
// All methods are safe for concurrent use, though mutations are
// expected to arrive from a single coordinating goroutine.
type History struct {
	mu sync.Mutex

	undoStack []*step
	redoStack []*step

	// open marks the top undo step as still accepting records.
	open bool

	maxDepth  int
	truncated bool
}

// New creates a history manager bounded to maxDepth undo steps.
func New(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &History{maxDepth: maxDepth}
}

// Record pushes a mutation delta and clears the redo stack. Deltas
// recorded since the last Boundary call join the current undo step.
// Empty deltas are ignored.
func (h *History) Record(d overlay.Delta) {
	if d.Empty() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil

	if h.open && len(h.undoStack) > 0 {
		top := h.undoStack[len(h.undoStack)-1]
		top.deltas = append(top.deltas, d)
		return
	}

	h.undoStack = append(h.undoStack, &step{
		deltas:    []overlay.Delta{d},
		timestamp: time.Now(),
	})
	h.open = true

	if len(h.undoStack) > h.maxDepth {
		excess := len(h.undoStack) - h.maxDepth
		h.undoStack = h.undoStack[excess:]
		if !h.truncated {
			h.truncated = true
			log.Get("history").Warnf("undo history exceeded %d steps; oldest edits are no longer undoable", h.maxDepth)
		}
	}
}

// Boundary marks that the next Record begins a new undo step.
func (h *History) Boundary() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open = false
}

// Undo rolls back the most recent undo step on the overlay and moves it
// to the redo stack. It returns the logical range that changed, for
// re-rendering.
func (h *History) Undo(ov *overlay.Overlay) (overlay.Range, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return overlay.Range{}, ErrNothingToUndo
	}
	s := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.open = false
	h.mu.Unlock()

	var changed overlay.Range
	for i := len(s.deltas) - 1; i >= 0; i-- {
		inv := s.deltas[i].Inverse()
		if err := ov.Apply(inv); err != nil {
			// Put the step back; the overlay was not touched by the
			// failing delta.
			h.mu.Lock()
			h.undoStack = append(h.undoStack, s)
			h.mu.Unlock()
			return overlay.Range{}, err
		}
		changed = extend(changed, i == len(s.deltas)-1, inv)
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, s)
	h.mu.Unlock()
	return changed, nil
}

// Redo re-applies the most recently undone step. It is the mirror of
// Undo and likewise returns the changed logical range.
func (h *History) Redo(ov *overlay.Overlay) (overlay.Range, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return overlay.Range{}, ErrNothingToRedo
	}
	s := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.open = false
	h.mu.Unlock()

	var changed overlay.Range
	for i, d := range s.deltas {
		if err := ov.Apply(d); err != nil {
			h.mu.Lock()
			h.redoStack = append(h.redoStack, s)
			h.mu.Unlock()
			return overlay.Range{}, err
		}
		changed = extend(changed, i == 0, d)
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, s)
	h.mu.Unlock()
	return changed, nil
}

// extend grows the changed range to cover the span touched by d.
func extend(r overlay.Range, first bool, d overlay.Delta) overlay.Range {
	span := d.InsertedLen()
	if rem := d.RemovedLen(); rem > span {
		span = rem
	}
	touched := overlay.NewRange(d.Off, d.Off+span)
	if first {
		return touched
	}
	return r.Union(touched)
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// CapacityExceeded reports whether the depth cap has ever forced the
// oldest step to be dropped this session.
func (h *History) CapacityExceeded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.truncated
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.open = false
}
