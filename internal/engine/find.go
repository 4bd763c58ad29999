package engine

import (
	"context"

	"github.com/dshills/hexstorm/internal/engine/search"
)

// SearchResult is the outcome of an asynchronous search. Generation is
// the document generation the scan ran against; if it no longer equals
// Document.Generation() the result is stale and must be discarded.
type SearchResult struct {
	Offset     int64
	Found      bool
	Generation uint64
	Err        error
}

// Find scans the logical byte sequence for pat from start. It blocks
// until a result, the end of the scan, or ctx cancellation.
func (d *Document) Find(ctx context.Context, pat Pattern, start int64, dir Direction, wrap bool) (int64, bool, error) {
	if d.closed.Load() {
		return 0, false, ErrClosed
	}
	s := search.New(d.currentOverlay(), search.WithChunkSize(d.chunkSize))
	return s.Find(ctx, pat, start, dir, wrap)
}

// FindAsync runs Find on a worker goroutine and delivers one result on
// the returned channel. The cancel function stops the scan between
// chunks; a cancelled scan delivers a result carrying ctx's error.
// The result is tagged with the generation the scan started against.
func (d *Document) FindAsync(pat Pattern, start int64, dir Direction, wrap bool) (<-chan SearchResult, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := d.gen.Load()
	ch := make(chan SearchResult, 1)

	go func() {
		defer close(ch)
		off, found, err := d.Find(ctx, pat, start, dir, wrap)
		ch <- SearchResult{Offset: off, Found: found, Generation: gen, Err: err}
	}()
	return ch, cancel
}
