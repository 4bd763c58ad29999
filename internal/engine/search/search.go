package search

import (
	"context"
)

// Direction selects which way a search proceeds from its start offset.
type Direction uint8

const (
	// Forward searches toward the end of the document.
	Forward Direction = iota
	// Backward searches toward the start of the document.
	Backward
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Reader is the logical byte sequence a search scans.
// *overlay.Overlay satisfies it.
type Reader interface {
	ReadInto(dst []byte, off int64) error
	Len() int64
}

// DefaultChunkSize is how many match positions one chunk covers.
const DefaultChunkSize = 256 * 1024

// Searcher scans a Reader for byte patterns.
type Searcher struct {
	r         Reader
	chunkSize int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithChunkSize sets the scan chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Searcher) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New creates a searcher over r.
func New(r Reader, opts ...Option) *Searcher {
	s := &Searcher{r: r, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns the offset of the first occurrence of pat, scanning in
// the given direction from start. Forward searches consider matches at
// or after start; backward searches matches at or before start. With
// wrap the scan continues from the opposite end, visiting every
// position exactly once. A missing match is (0, false, nil), not an
// error. Cancellation through ctx is checked once per chunk.
func (s *Searcher) Find(ctx context.Context, pat Pattern, start int64, dir Direction, wrap bool) (int64, bool, error) {
	if err := pat.Validate(); err != nil {
		return 0, false, err
	}

	docLen := s.r.Len()
	last := docLen - int64(len(pat.Bytes)) // highest possible match position
	if last < 0 {
		return 0, false, nil
	}
	if start < 0 {
		start = 0
	}
	if start > docLen {
		start = docLen
	}

	if dir == Backward {
		lo := int64(0)
		hi := start
		if hi > last {
			hi = last
		}
		if off, ok, err := s.scanBackward(ctx, pat, lo, hi); ok || err != nil {
			return off, ok, err
		}
		if wrap && start < last {
			return s.scanBackward(ctx, pat, start+1, last)
		}
		return 0, false, nil
	}

	if start <= last {
		if off, ok, err := s.scanForward(ctx, pat, start, last); ok || err != nil {
			return off, ok, err
		}
	}
	if wrap && start > 0 {
		hi := start - 1
		if hi > last {
			hi = last
		}
		return s.scanForward(ctx, pat, 0, hi)
	}
	return 0, false, nil
}

// scanForward finds the lowest match position in [lo, hi].
func (s *Searcher) scanForward(ctx context.Context, pat Pattern, lo, hi int64) (int64, bool, error) {
	m := int64(len(pat.Bytes))
	buf := make([]byte, s.chunkSize+len(pat.Bytes)-1)

	for base := lo; base <= hi; base += int64(s.chunkSize) {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		positions := hi - base + 1
		if positions > int64(s.chunkSize) {
			positions = int64(s.chunkSize)
		}
		// Overlap of m-1 bytes so a match straddling the chunk edge is
		// seen by the chunk its start position belongs to.
		readLen := positions + m - 1
		if base+readLen > s.r.Len() {
			readLen = s.r.Len() - base
		}
		if readLen < m {
			return 0, false, nil
		}
		if err := s.r.ReadInto(buf[:readLen], base); err != nil {
			return 0, false, err
		}
		if idx, ok := pat.firstMatch(buf[:readLen]); ok {
			return base + int64(idx), true, nil
		}
	}
	return 0, false, nil
}

// scanBackward finds the highest match position in [lo, hi].
func (s *Searcher) scanBackward(ctx context.Context, pat Pattern, lo, hi int64) (int64, bool, error) {
	if hi < lo {
		return 0, false, nil
	}
	m := int64(len(pat.Bytes))
	buf := make([]byte, s.chunkSize+len(pat.Bytes)-1)

	end := hi
	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		base := end - int64(s.chunkSize) + 1
		if base < lo {
			base = lo
		}
		readLen := (end - base) + m
		if base+readLen > s.r.Len() {
			readLen = s.r.Len() - base
		}
		if readLen >= m {
			if err := s.r.ReadInto(buf[:readLen], base); err != nil {
				return 0, false, err
			}
			if idx, ok := pat.lastMatch(buf[:readLen], int(end-base)); ok {
				return base + int64(idx), true, nil
			}
		}
		if base == lo {
			return 0, false, nil
		}
		end = base - 1
	}
}
