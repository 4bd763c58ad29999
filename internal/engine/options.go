package engine

// Option configures a Document at open time.
type Option func(*Document)

// WithPageSize sets the page store's page size in bytes.
func WithPageSize(size int) Option {
	return func(d *Document) {
		d.pageSize = size
	}
}

// WithCacheBudget sets the page store's resident-byte budget.
func WithCacheBudget(budget int64) Option {
	return func(d *Document) {
		d.cacheBudget = budget
	}
}

// WithUndoDepth caps the number of undo steps kept. Past the cap the
// oldest step is dropped.
func WithUndoDepth(depth int) Option {
	return func(d *Document) {
		if depth > 0 {
			d.undoDepth = depth
		}
	}
}

// WithReadOnly opens the document with mutations rejected.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}

// WithSearchChunkSize sets the search scan chunk size in bytes.
func WithSearchChunkSize(size int) Option {
	return func(d *Document) {
		if size > 0 {
			d.chunkSize = size
		}
	}
}

// WithoutSourceWatch disables the fsnotify watch on the backing file.
// Out-of-band changes are still caught by the stat check at page load.
func WithoutSourceWatch() Option {
	return func(d *Document) {
		d.noWatch = true
	}
}
