package pagestore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	data := pattern(100)
	s, err := Open(writeTemp(t, data), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	p, err := s.Acquire(0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !bytes.Equal(p.Data(), data[:64]) {
		t.Errorf("page 0 data mismatch")
	}
	s.Release(p)

	// Last page is short.
	p, err = s.Acquire(64)
	if err != nil {
		t.Fatalf("Acquire last: %v", err)
	}
	if p.Len() != 36 || !bytes.Equal(p.Data(), data[64:]) {
		t.Errorf("last page = %d bytes, want 36", p.Len())
	}
	s.Release(p)
}

func TestAcquireUnaligned(t *testing.T) {
	s, err := Open(writeTemp(t, pattern(100)), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, err := s.Acquire(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("unaligned Acquire: err = %v, want ErrOutOfRange", err)
	}
	if _, err := s.Acquire(128); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Acquire past end: err = %v, want ErrOutOfRange", err)
	}
}

func TestReadAtCrossesPages(t *testing.T) {
	data := pattern(300)
	s, err := Open(writeTemp(t, data), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	dst := make([]byte, 200)
	if err := s.ReadAt(dst, 50); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(dst, data[50:250]) {
		t.Errorf("cross-page read mismatch")
	}

	if err := s.ReadAt(make([]byte, 10), 295); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("read past end: err = %v, want ErrOutOfRange", err)
	}
}

func TestEvictionRespectsBudget(t *testing.T) {
	s, err := Open(writeTemp(t, pattern(256)), WithPageSize(64), WithBudget(128), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for off := int64(0); off < 256; off += 64 {
		p, err := s.Acquire(off)
		if err != nil {
			t.Fatalf("Acquire %d: %v", off, err)
		}
		s.Release(p)
	}
	if got := s.Resident(); got > 128 {
		t.Errorf("Resident = %d, want <= budget 128", got)
	}
}

func TestEvictionSkipsPinnedPages(t *testing.T) {
	s, err := Open(writeTemp(t, pattern(256)), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	pinned, err := s.Acquire(0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if p2, err := s.Acquire(64); err == nil {
		s.Release(p2)
	}

	s.EvictToBudget(0)
	if got := s.Resident(); got != 64 {
		t.Errorf("Resident = %d, want 64 (pinned page survives)", got)
	}
	if !bytes.Equal(pinned.Data(), pattern(256)[:64]) {
		t.Errorf("pinned page data changed under eviction")
	}
	s.Release(pinned)
}

func TestConcurrentAcquireSharesLoad(t *testing.T) {
	data := pattern(64)
	s, err := Open(writeTemp(t, data), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Acquire(0)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(p.Data(), data) {
				errs <- errors.New("page data mismatch")
			}
			s.Release(p)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Acquire: %v", err)
	}
}

func TestSourceChangeDetectedOnLoad(t *testing.T) {
	data := pattern(200)
	path := writeTemp(t, data)
	s, err := Open(path, WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	// Cached pages keep serving.
	p, err := s.Acquire(0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s.Release(p)

	// Shrink the file out from under the store.
	if err := os.Truncate(path, 100); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	if _, err := s.Acquire(64); !errors.Is(err, ErrSourceChanged) {
		t.Fatalf("Acquire after truncate: err = %v, want ErrSourceChanged", err)
	}
	if !s.SourceChanged() {
		t.Error("SourceChanged = false after detection")
	}

	// The already-cached page still reads.
	p, err = s.Acquire(0)
	if err != nil {
		t.Errorf("cached page after change: %v", err)
	} else {
		s.Release(p)
	}
}

func TestSourceRemovedDetected(t *testing.T) {
	path := writeTemp(t, pattern(128))
	s, err := Open(path, WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Acquire(0); !errors.Is(err, ErrSourceChanged) {
		t.Errorf("Acquire after remove: err = %v, want ErrSourceChanged", err)
	}
}

func TestNewMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	if s.Size() != 0 {
		t.Errorf("Size = %d, want 0", s.Size())
	}
	if _, err := s.Acquire(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Acquire on memory store: err = %v, want ErrOutOfRange", err)
	}
	if err := s.ReadAt(nil, 0); err != nil {
		t.Errorf("empty ReadAt: %v", err)
	}
}

func TestCloseRejectsFurtherLoads(t *testing.T) {
	s, err := Open(writeTemp(t, pattern(64)), WithPageSize(64), WithoutWatcher())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Acquire(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Acquire after Close: err = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
