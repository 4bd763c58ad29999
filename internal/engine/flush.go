package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/hexstorm/internal/engine/overlay"
	"github.com/dshills/hexstorm/internal/engine/pagestore"
	"github.com/dshills/hexstorm/internal/log"
)

// flushChunk is the streaming buffer size for writes; the logical
// sequence is never materialized whole.
const flushChunk = 1 << 20

// Flush writes the current logical byte sequence back to the backing
// path. The write goes to a temporary file in the same directory which
// is fsynced and atomically renamed over the original, so an
// interrupted flush leaves the original intact. On success the dirty
// flag clears, the page store re-anchors on the new file, and undo
// history is discarded.
func (d *Document) Flush() error {
	path := d.Path()
	if path == "" {
		return ErrNoPath
	}
	return d.FlushTo(path)
}

// FlushTo writes the document to path, adopting it as the backing path.
// Used for save-as and for giving an in-memory document a home.
func (d *Document) FlushTo(path string) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}
	// A flush participates in mutation exclusion: edits issued while
	// the flush streams would write a torn mixture.
	if !d.mutating.CompareAndSwap(false, true) {
		return ErrMutationInFlight
	}
	defer d.mutating.Store(false)

	if err := d.writeTo(path); err != nil {
		return err
	}

	// Re-anchor on the freshly written file: the overlay collapses to
	// a single original piece and recorded deltas no longer describe
	// reachable state.
	store, err := pagestore.Open(path, d.storeOptions()...)
	if err != nil {
		return fmt.Errorf("reopening after flush: %w", err)
	}

	d.mu.Lock()
	old := d.store
	d.path = path
	d.store = store
	d.ov = overlay.New(store)
	d.mu.Unlock()

	d.hist.Clear()
	d.dirty.Store(false)
	d.gen.Add(1)

	if old != nil {
		if err := old.Close(); err != nil {
			log.Get("engine").Debugf("closing old store: %v", err)
		}
	}
	return nil
}

// writeTo streams the logical sequence into a temp file beside path
// and renames it into place.
func (d *Document) writeTo(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".hexstorm-flush-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	ov := d.currentOverlay()
	total := ov.Len()
	buf := make([]byte, flushChunk)
	for off := int64(0); off < total; {
		n := total - off
		if n > flushChunk {
			n = flushChunk
		}
		if err := ov.ReadInto(buf[:n], off); err != nil {
			return fail(err)
		}
		if _, err := tmp.Write(buf[:n]); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
		}
		off += n
	}

	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Keep the original's permissions when replacing an existing file.
	if fi, err := os.Stat(path); err == nil {
		os.Chmod(tmpName, fi.Mode().Perm())
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
