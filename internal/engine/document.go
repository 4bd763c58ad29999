package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dshills/hexstorm/internal/engine/history"
	"github.com/dshills/hexstorm/internal/engine/overlay"
	"github.com/dshills/hexstorm/internal/engine/pagestore"
	"github.com/dshills/hexstorm/internal/engine/search"
)

// Re-export commonly used types for convenience.
type (
	// Range is a logical byte range in the document.
	Range = overlay.Range

	// Piece describes one span of the piece table.
	Piece = overlay.Piece

	// Delta is a reversible record of one piece-table mutation.
	Delta = overlay.Delta

	// Pattern is a search pattern with optional wildcard mask.
	Pattern = search.Pattern

	// Direction selects forward or backward search.
	Direction = search.Direction
)

// Re-export constants.
const (
	Forward  = search.Forward
	Backward = search.Backward
)

// Document is the root handle of the byte engine. It owns the page
// store, the edit overlay, and the undo/redo history for one file.
type Document struct {
	path     string
	readOnly bool

	mu    sync.RWMutex // guards store/ov swaps and bookmarks
	store *pagestore.Store
	ov    *overlay.Overlay
	hist  *history.History

	dirty    atomic.Bool
	gen      atomic.Uint64
	mutating atomic.Bool
	closed   atomic.Bool

	bookmarks []int64

	// Retained option values, reused when the store is reopened after
	// a flush.
	pageSize    int
	cacheBudget int64
	undoDepth   int
	chunkSize   int
	noWatch     bool
}

// Open opens the file at path as a document.
func Open(path string, opts ...Option) (*Document, error) {
	d := newDocument(opts)
	store, err := pagestore.Open(path, d.storeOptions()...)
	if err != nil {
		return nil, err
	}
	d.path = path
	d.store = store
	d.ov = overlay.New(store)
	return d, nil
}

// NewMemory creates an empty in-memory document with no backing file.
func NewMemory(opts ...Option) *Document {
	d := newDocument(opts)
	d.store = pagestore.NewMemory()
	d.ov = overlay.New(d.store)
	return d
}

func newDocument(opts []Option) *Document {
	d := &Document{
		undoDepth: history.DefaultMaxDepth,
		chunkSize: search.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.hist = history.New(d.undoDepth)
	return d
}

func (d *Document) storeOptions() []pagestore.Option {
	var opts []pagestore.Option
	if d.pageSize > 0 {
		opts = append(opts, pagestore.WithPageSize(d.pageSize))
	}
	if d.cacheBudget > 0 {
		opts = append(opts, pagestore.WithBudget(d.cacheBudget))
	}
	if d.noWatch {
		opts = append(opts, pagestore.WithoutWatcher())
	}
	return opts
}

// Path returns the backing file path, empty for in-memory documents.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Len returns the document's total logical length.
func (d *Document) Len() int64 {
	return d.currentOverlay().Len()
}

// Dirty reports whether there are unflushed edits.
func (d *Document) Dirty() bool {
	return d.dirty.Load()
}

// ReadOnly reports whether the document rejects mutations.
func (d *Document) ReadOnly() bool {
	return d.readOnly
}

// Generation returns the mutation counter. It increases on every
// successful mutation, undo, redo, and flush; asynchronous results
// computed against an older generation must be discarded.
func (d *Document) Generation() uint64 {
	return d.gen.Load()
}

// SourceChanged reports whether the backing file was modified outside
// the session.
func (d *Document) SourceChanged() bool {
	return d.currentStore().SourceChanged()
}

// Read returns n bytes starting at logical offset off.
func (d *Document) Read(off, n int64) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	return d.currentOverlay().Read(off, n)
}

// ReadInto fills dst with bytes starting at logical offset off.
func (d *Document) ReadInto(dst []byte, off int64) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.currentOverlay().ReadInto(dst, off)
}

// Overwrite replaces the bytes at off with b, appending any part that
// extends past the current end.
func (d *Document) Overwrite(off int64, b []byte) error {
	return d.mutate(func(ov *overlay.Overlay) (overlay.Delta, error) {
		return ov.Overwrite(off, b)
	})
}

// Insert places b at off, growing the document.
func (d *Document) Insert(off int64, b []byte) error {
	return d.mutate(func(ov *overlay.Overlay) (overlay.Delta, error) {
		return ov.Insert(off, b)
	})
}

// Delete removes n bytes at off, shrinking the document.
func (d *Document) Delete(off, n int64) error {
	return d.mutate(func(ov *overlay.Overlay) (overlay.Delta, error) {
		return ov.Delete(off, n)
	})
}

// mutate runs one overlay mutation under the single-mutator guard,
// records its delta, and bumps the generation. A failed mutation has
// no side effect; a no-op mutation records nothing.
func (d *Document) mutate(fn func(*overlay.Overlay) (overlay.Delta, error)) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}
	if !d.mutating.CompareAndSwap(false, true) {
		return ErrMutationInFlight
	}
	defer d.mutating.Store(false)

	delta, err := fn(d.currentOverlay())
	if err != nil {
		return err
	}
	if delta.Empty() {
		return nil
	}
	d.hist.Record(delta)
	d.dirty.Store(true)
	d.gen.Add(1)
	return nil
}

// GroupBoundary marks that the next edit begins a new undo step.
// Edits issued without crossing a boundary undo as one unit.
func (d *Document) GroupBoundary() {
	d.hist.Boundary()
}

// Undo rolls back the most recent undo step and returns the logical
// range that changed.
func (d *Document) Undo() (Range, error) {
	return d.replay((*history.History).Undo)
}

// Redo re-applies the most recently undone step and returns the
// logical range that changed.
func (d *Document) Redo() (Range, error) {
	return d.replay((*history.History).Redo)
}

func (d *Document) replay(fn func(*history.History, *overlay.Overlay) (overlay.Range, error)) (Range, error) {
	if d.closed.Load() {
		return Range{}, ErrClosed
	}
	if !d.mutating.CompareAndSwap(false, true) {
		return Range{}, ErrMutationInFlight
	}
	defer d.mutating.Store(false)

	r, err := fn(d.hist, d.currentOverlay())
	if err != nil {
		return Range{}, err
	}
	d.dirty.Store(true)
	d.gen.Add(1)
	return r, nil
}

// CanUndo reports whether an undo step is available.
func (d *Document) CanUndo() bool { return d.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (d *Document) CanRedo() bool { return d.hist.CanRedo() }

// HistoryCapacityExceeded reports whether the undo depth cap has
// dropped the oldest step this session.
func (d *Document) HistoryCapacityExceeded() bool {
	return d.hist.CapacityExceeded()
}

// Pieces returns a snapshot of the piece sequence, for inspection.
func (d *Document) Pieces() []Piece {
	return d.currentOverlay().Pieces()
}

// AddBookmark records a bookmark at off. Bookmarks form an ordered set
// of offsets; duplicates are ignored.
func (d *Document) AddBookmark(off int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := sort.Search(len(d.bookmarks), func(i int) bool { return d.bookmarks[i] >= off })
	if i < len(d.bookmarks) && d.bookmarks[i] == off {
		return
	}
	d.bookmarks = append(d.bookmarks, 0)
	copy(d.bookmarks[i+1:], d.bookmarks[i:])
	d.bookmarks[i] = off
}

// RemoveBookmark drops the bookmark at off, if present.
func (d *Document) RemoveBookmark(off int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := sort.Search(len(d.bookmarks), func(i int) bool { return d.bookmarks[i] >= off })
	if i < len(d.bookmarks) && d.bookmarks[i] == off {
		d.bookmarks = append(d.bookmarks[:i], d.bookmarks[i+1:]...)
	}
}

// ToggleBookmark adds or removes a bookmark at off and reports whether
// one is present afterwards.
func (d *Document) ToggleBookmark(off int64) bool {
	d.mu.Lock()
	present := false
	i := sort.Search(len(d.bookmarks), func(i int) bool { return d.bookmarks[i] >= off })
	if i < len(d.bookmarks) && d.bookmarks[i] == off {
		d.bookmarks = append(d.bookmarks[:i], d.bookmarks[i+1:]...)
	} else {
		d.bookmarks = append(d.bookmarks, 0)
		copy(d.bookmarks[i+1:], d.bookmarks[i:])
		d.bookmarks[i] = off
		present = true
	}
	d.mu.Unlock()
	return present
}

// Bookmarks returns the ordered bookmark offsets. The engine has no
// opinion on how a session serializer encodes them.
func (d *Document) Bookmarks() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]int64(nil), d.bookmarks...)
}

// SetBookmarks replaces the bookmark set, as when restoring a session.
func (d *Document) SetBookmarks(offsets []int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookmarks = append([]int64(nil), offsets...)
	sort.Slice(d.bookmarks, func(i, j int) bool { return d.bookmarks[i] < d.bookmarks[j] })
}

// EvictToBudget asks the page store to shed cached pages down to max
// resident bytes.
func (d *Document) EvictToBudget(max int64) {
	d.currentStore().EvictToBudget(max)
}

// Close releases the document. Further operations fail with ErrClosed.
func (d *Document) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.currentStore().Close()
}

func (d *Document) currentOverlay() *overlay.Overlay {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ov
}

func (d *Document) currentStore() *pagestore.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store
}
