package overlay

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrRangeOutOfBounds indicates a requested offset or length exceeds
// the document's logical length.
var ErrRangeOutOfBounds = errors.New("range exceeds document length")

// Source provides byte-range reads of the original file's content.
// *pagestore.Store satisfies it.
type Source interface {
	// ReadAt fills dst with bytes starting at the file offset off.
	// A short read is an error.
	ReadAt(dst []byte, off int64) error
	// Size returns the original file's length.
	Size() int64
}

// emptySource backs documents created without a file.
type emptySource struct{}

func (emptySource) ReadAt(dst []byte, off int64) error {
	if len(dst) == 0 {
		return nil
	}
	return fmt.Errorf("%w: no backing file", ErrRangeOutOfBounds)
}

func (emptySource) Size() int64 { return 0 }

// Overlay presents the original file plus all recorded edits as one
// logical byte sequence. Reads are safe for concurrent use; mutations
// must be driven by a single coordinating goroutine, which the engine
// package enforces.
type Overlay struct {
	mu     sync.RWMutex
	src    Source
	edits  EditBuffer
	pieces []Piece
	starts []int64 // starts[i] is the logical start of pieces[i]
	length int64
}

// New creates an overlay whose initial content is the whole source.
func New(src Source) *Overlay {
	if src == nil {
		src = emptySource{}
	}
	o := &Overlay{src: src, length: src.Size()}
	if o.length > 0 {
		o.pieces = []Piece{{Kind: KindOriginal, Off: 0, Len: o.length}}
		o.starts = []int64{0}
	}
	return o
}

// Len returns the document's total logical length.
func (o *Overlay) Len() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.length
}

// Pieces returns a snapshot of the piece sequence.
func (o *Overlay) Pieces() []Piece {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Piece(nil), o.pieces...)
}

// Read returns n bytes starting at logical offset off.
func (o *Overlay) Read(off, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrRangeOutOfBounds, n)
	}
	dst := make([]byte, n)
	if err := o.ReadInto(dst, off); err != nil {
		return nil, err
	}
	return dst, nil
}

// ReadInto fills dst with bytes starting at logical offset off,
// resolving each sub-range to the edit buffer or the source.
func (o *Overlay) ReadInto(dst []byte, off int64) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if off < 0 || off+int64(len(dst)) > o.length {
		return fmt.Errorf("%w: read [%d:%d) of %d", ErrRangeOutOfBounds, off, off+int64(len(dst)), o.length)
	}
	if len(dst) == 0 {
		return nil
	}

	i, start := o.find(off)
	skip := off - start
	for len(dst) > 0 {
		p := o.pieces[i]
		n := p.Len - skip
		if n > int64(len(dst)) {
			n = int64(len(dst))
		}
		if p.Kind == KindInserted {
			copy(dst[:n], o.edits.Slice(p.Off+skip, n))
		} else {
			if err := o.src.ReadAt(dst[:n], p.Off+skip); err != nil {
				return err
			}
		}
		dst = dst[n:]
		skip = 0
		i++
	}
	return nil
}

// Insert places b at logical offset off, growing the document.
// A zero-length insert is a no-op and returns an empty delta.
func (o *Overlay) Insert(off int64, b []byte) (Delta, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if off < 0 || off > o.length {
		return Delta{}, fmt.Errorf("%w: insert at %d of %d", ErrRangeOutOfBounds, off, o.length)
	}
	if len(b) == 0 {
		return Delta{}, nil
	}

	bufOff := o.edits.Append(b)
	ins := []Piece{{Kind: KindInserted, Off: bufOff, Len: int64(len(b))}}
	o.replace(off, 0, ins)
	return Delta{Off: off, Inserted: ins}, nil
}

// Overwrite replaces the bytes at [off, off+len(b)) with b. The part
// of b extending past the current end, if any, is appended, so an
// overwrite at off == Len() behaves as an insert.
func (o *Overlay) Overwrite(off int64, b []byte) (Delta, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if off < 0 || off > o.length {
		return Delta{}, fmt.Errorf("%w: overwrite at %d of %d", ErrRangeOutOfBounds, off, o.length)
	}
	if len(b) == 0 {
		return Delta{}, nil
	}

	span := int64(len(b))
	if off+span > o.length {
		span = o.length - off
	}
	bufOff := o.edits.Append(b)
	ins := []Piece{{Kind: KindInserted, Off: bufOff, Len: int64(len(b))}}
	removed := o.replace(off, span, ins)
	return Delta{Off: off, Removed: removed, Inserted: ins}, nil
}

// Delete removes n bytes at logical offset off, shrinking the document.
// A zero-length delete is a no-op and returns an empty delta.
func (o *Overlay) Delete(off, n int64) (Delta, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if off < 0 || n < 0 || off+n > o.length {
		return Delta{}, fmt.Errorf("%w: delete [%d:%d) of %d", ErrRangeOutOfBounds, off, off+n, o.length)
	}
	if n == 0 {
		return Delta{}, nil
	}

	removed := o.replace(off, n, nil)
	return Delta{Off: off, Removed: removed}, nil
}

// Apply replaces the span described by the delta's removed run with its
// inserted run. Applying a delta re-applies the mutation it records
// (redo); applying its Inverse rolls it back (undo).
func (o *Overlay) Apply(d Delta) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	remLen := d.RemovedLen()
	if d.Off < 0 || d.Off+remLen > o.length {
		return fmt.Errorf("%w: apply [%d:%d) of %d", ErrRangeOutOfBounds, d.Off, d.Off+remLen, o.length)
	}
	o.replace(d.Off, remLen, d.Inserted)
	return nil
}

// find returns the index and logical start of the piece containing off.
// Requires 0 <= off < length.
func (o *Overlay) find(off int64) (int, int64) {
	i := sort.Search(len(o.starts), func(i int) bool { return o.starts[i] > off }) - 1
	return i, o.starts[i]
}

// splitAt ensures a piece boundary exists at logical offset off and
// returns the index of the piece starting there. When off equals the
// document length it returns len(pieces).
func (o *Overlay) splitAt(off int64) int {
	if off == o.length {
		return len(o.pieces)
	}
	i, start := o.find(off)
	if start == off {
		return i
	}
	p := o.pieces[i]
	head := Piece{Kind: p.Kind, Off: p.Off, Len: off - start}
	tail := Piece{Kind: p.Kind, Off: p.Off + head.Len, Len: p.Len - head.Len}

	o.pieces = append(o.pieces, Piece{})
	copy(o.pieces[i+2:], o.pieces[i+1:])
	o.pieces[i] = head
	o.pieces[i+1] = tail

	o.starts = append(o.starts, 0)
	copy(o.starts[i+2:], o.starts[i+1:])
	o.starts[i+1] = off
	return i + 1
}

// replace substitutes the logical span [off, off+remLen) with the run
// ins, returning a snapshot of the pieces it displaced. Neighboring
// pieces with contiguous sources are coalesced at the seams.
func (o *Overlay) replace(off, remLen int64, ins []Piece) []Piece {
	i := o.splitAt(off)
	j := o.splitAt(off + remLen)

	removed := append([]Piece(nil), o.pieces[i:j]...)

	tail := append([]Piece(nil), o.pieces[j:]...)
	o.pieces = append(o.pieces[:i], ins...)
	o.pieces = append(o.pieces, tail...)
	o.length += piecesLen(ins) - remLen

	o.coalesceAround(i, len(ins))
	o.rebuildStarts()
	return removed
}

// coalesceAround merges joinable neighbors in the window surrounding an
// inserted run of count pieces starting at index i.
func (o *Overlay) coalesceAround(i, count int) {
	lo := i - 1
	if lo < 0 {
		lo = 0
	}
	hi := i + count
	if hi > len(o.pieces)-1 {
		hi = len(o.pieces) - 1
	}
	for k := hi; k > lo; k-- {
		if o.pieces[k-1].joins(o.pieces[k]) {
			o.pieces[k-1].Len += o.pieces[k].Len
			o.pieces = append(o.pieces[:k], o.pieces[k+1:]...)
		}
	}
}

// rebuildStarts recomputes the cumulative-start index after a mutation.
// Lookup stays logarithmic; maintenance is linear in piece count, which
// is bounded by the number of distinct edits, never by file size.
func (o *Overlay) rebuildStarts() {
	if cap(o.starts) < len(o.pieces) {
		o.starts = make([]int64, len(o.pieces))
	} else {
		o.starts = o.starts[:len(o.pieces)]
	}
	var at int64
	for i, p := range o.pieces {
		o.starts[i] = at
		at += p.Len
	}
}
