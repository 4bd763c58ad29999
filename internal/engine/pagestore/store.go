package pagestore

import (
	"container/list"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/hexstorm/internal/log"
)

// Errors returned by page store operations.
var (
	// ErrStorageUnavailable indicates the backing file could not be read.
	ErrStorageUnavailable = errors.New("backing storage unavailable")

	// ErrSourceChanged indicates the backing file was modified, replaced,
	// or removed outside the session since it was opened.
	ErrSourceChanged = errors.New("backing file changed outside the session")

	// ErrOutOfRange indicates a request beyond the backing file's length.
	ErrOutOfRange = errors.New("offset beyond backing file")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("page store is closed")
)

// Default sizing. A 64 KiB page amortizes syscall cost without keeping
// much more resident than a screenful of context per page.
const (
	DefaultPageSize = 64 * 1024
	DefaultBudget   = 16 << 20
)

// inflightLoad tracks a page load in progress so concurrent requests
// for the same offset share a single file read.
type inflightLoad struct {
	wg  sync.WaitGroup
	err error
}

// Store caches fixed-size pages of one backing file.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	size     int64
	modTime  time.Time
	pageSize int
	budget   int64
	used     int64
	pages    map[int64]*Page
	lru      *list.List // front is most recently used
	inflight map[int64]*inflightLoad
	watcher  *sourceWatcher
	changed  atomic.Bool
	closed   bool
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the page size in bytes.
func WithPageSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithBudget sets the resident-byte budget.
func WithBudget(budget int64) Option {
	return func(s *Store) {
		if budget > 0 {
			s.budget = budget
		}
	}
}

// WithoutWatcher disables the fsnotify source watch. Stat-based
// detection at load time still applies.
func WithoutWatcher() Option {
	return func(s *Store) {
		s.watcher = nil
	}
}

func newStore(opts []Option) *Store {
	s := &Store{
		pageSize: DefaultPageSize,
		budget:   DefaultBudget,
		pages:    make(map[int64]*Page),
		lru:      list.New(),
		inflight: make(map[int64]*inflightLoad),
		watcher:  &sourceWatcher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a store over the file at path.
func Open(path string, opts ...Option) (*Store, error) {
	s := newStore(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.file = f
	s.path = path
	s.size = fi.Size()
	s.modTime = fi.ModTime()

	if s.watcher != nil {
		if err := s.watcher.watch(s); err != nil {
			// Detection falls back to the stat check at load time.
			log.Get("pagestore").Debugf("source watch unavailable: %v", err)
			s.watcher = nil
		}
	}
	return s, nil
}

// NewMemory returns a store with no backing file, for documents created
// from scratch. Its size is zero and every load fails out of range.
func NewMemory(opts ...Option) *Store {
	s := newStore(opts)
	s.watcher = nil
	return s
}

// Size returns the backing file's length as recorded at open.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// PageSize returns the configured page size.
func (s *Store) PageSize() int {
	return s.pageSize
}

// Resident returns the number of cached bytes currently resident.
func (s *Store) Resident() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// Acquire returns the pinned page starting at the page-aligned offset
// off, loading it from the backing file if necessary. The caller must
// hand the page back with Release.
func (s *Store) Acquire(off int64) (*Page, error) {
	if off%int64(s.pageSize) != 0 {
		return nil, fmt.Errorf("%w: unaligned page offset %d", ErrOutOfRange, off)
	}

	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return nil, ErrClosed
		}
		if s.file == nil || off >= s.size {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: offset %d, file size %d", ErrOutOfRange, off, s.size)
		}
		if p, ok := s.pages[off]; ok {
			p.refs++
			s.lru.MoveToFront(p.elem)
			s.mu.Unlock()
			return p, nil
		}
		fl, ok := s.inflight[off]
		if !ok {
			break
		}
		// Another goroutine is loading this page; wait for it, then
		// retry the cache. The page can be evicted between its load and
		// our retry, in which case we load it again ourselves.
		s.mu.Unlock()
		fl.wg.Wait()
		if fl.err != nil {
			return nil, fl.err
		}
		s.mu.Lock()
	}

	fl := &inflightLoad{}
	fl.wg.Add(1)
	s.inflight[off] = fl
	s.mu.Unlock()

	data, err := s.loadPage(off)

	s.mu.Lock()
	delete(s.inflight, off)
	if err != nil {
		fl.err = err
		s.mu.Unlock()
		fl.wg.Done()
		return nil, err
	}
	p := &Page{off: off, data: data, refs: 1}
	p.elem = s.lru.PushFront(p)
	s.pages[off] = p
	s.used += int64(len(data))
	s.evictLocked(s.budget)
	s.mu.Unlock()
	fl.wg.Done()
	return p, nil
}

// Release unpins a page previously returned by Acquire.
func (s *Store) Release(p *Page) {
	if p == nil {
		return
	}
	s.mu.Lock()
	if p.refs > 0 {
		p.refs--
	}
	s.mu.Unlock()
}

// ReadAt fills dst with backing-file bytes starting at off, crossing
// page boundaries as needed. It is a full read: anything short of
// len(dst) bytes is an error.
func (s *Store) ReadAt(dst []byte, off int64) error {
	if off < 0 || off+int64(len(dst)) > s.Size() {
		return fmt.Errorf("%w: read [%d:%d)", ErrOutOfRange, off, off+int64(len(dst)))
	}
	for len(dst) > 0 {
		pageOff := off - off%int64(s.pageSize)
		p, err := s.Acquire(pageOff)
		if err != nil {
			return err
		}
		n := copy(dst, p.Data()[off-pageOff:])
		s.Release(p)
		if n == 0 {
			return fmt.Errorf("%w: empty page at %d", ErrSourceChanged, pageOff)
		}
		dst = dst[n:]
		off += int64(n)
	}
	return nil
}

// EvictToBudget drops least-recently-used unpinned pages until resident
// bytes are at or below max. Pinned pages are skipped.
func (s *Store) EvictToBudget(max int64) {
	s.mu.Lock()
	s.evictLocked(max)
	s.mu.Unlock()
}

func (s *Store) evictLocked(max int64) {
	e := s.lru.Back()
	for e != nil && s.used > max {
		prev := e.Prev()
		p := e.Value.(*Page)
		if p.refs == 0 {
			s.lru.Remove(e)
			delete(s.pages, p.off)
			s.used -= int64(len(p.data))
		}
		e = prev
	}
}

// SourceChanged reports whether an out-of-band change to the backing
// file has been observed.
func (s *Store) SourceChanged() bool {
	return s.changed.Load()
}

// Close releases the backing file and stops the source watch. Cached
// pages are discarded; pinned pages remain readable by their holders
// but the store will not serve further loads.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pages = make(map[int64]*Page)
	s.lru.Init()
	s.used = 0
	w := s.watcher
	f := s.file
	s.mu.Unlock()

	if w != nil {
		w.stop()
	}
	if f != nil {
		return f.Close()
	}
	return nil
}

// loadPage reads one page from the backing file, verifying the source
// has not changed underneath the session first.
func (s *Store) loadPage(off int64) ([]byte, error) {
	if err := s.checkSource(); err != nil {
		return nil, err
	}
	n := s.pageSize
	if off+int64(n) > s.size {
		n = int(s.size - off)
	}
	buf := make([]byte, n)
	if _, err := s.file.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// The file is shorter than it was at open.
			s.changed.Store(true)
			return nil, fmt.Errorf("%w: file shrank during read at %d", ErrSourceChanged, off)
		}
		return nil, fmt.Errorf("%w: read at %d: %v", ErrStorageUnavailable, off, err)
	}
	return buf, nil
}

// checkSource stats the backing path and compares size and mtime with
// what was recorded at open.
func (s *Store) checkSource() error {
	if s.changed.Load() {
		return fmt.Errorf("%w: %s", ErrSourceChanged, s.path)
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.changed.Store(true)
			return fmt.Errorf("%w: %s removed", ErrSourceChanged, s.path)
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if fi.Size() != s.size || !fi.ModTime().Equal(s.modTime) {
		s.changed.Store(true)
		return fmt.Errorf("%w: %s", ErrSourceChanged, s.path)
	}
	return nil
}
