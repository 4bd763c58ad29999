package overlay

import "fmt"

// Kind discriminates a piece's byte source. It is a closed two-case
// variant: bytes come from the original file or from the edit buffer.
type Kind uint8

const (
	// KindOriginal sources bytes from the backing file.
	KindOriginal Kind = iota
	// KindInserted sources bytes from the edit buffer.
	KindInserted
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindOriginal:
		return "original"
	case KindInserted:
		return "inserted"
	default:
		return "unknown"
	}
}

// Piece describes one contiguous logical span. Off is a backing-file
// offset for KindOriginal and an edit-buffer offset for KindInserted.
// Pieces are small value descriptors; copying one never copies bytes.
type Piece struct {
	Kind Kind
	Off  int64
	Len  int64
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d)", p.Kind, p.Off, p.Off+p.Len)
}

// end returns the piece's exclusive source end offset.
func (p Piece) end() int64 {
	return p.Off + p.Len
}

// joins reports whether next continues p: same kind, contiguous source.
func (p Piece) joins(next Piece) bool {
	return p.Kind == next.Kind && p.end() == next.Off
}

// piecesLen sums the logical length of a piece run.
func piecesLen(pieces []Piece) int64 {
	var n int64
	for _, p := range pieces {
		n += p.Len
	}
	return n
}

// Delta is a reversible record of one piece-sequence mutation: at
// logical offset Off, the Removed run was replaced by the Inserted run.
type Delta struct {
	Off      int64
	Removed  []Piece
	Inserted []Piece
}

// Inverse returns the delta that undoes d.
func (d Delta) Inverse() Delta {
	return Delta{Off: d.Off, Removed: d.Inserted, Inserted: d.Removed}
}

// RemovedLen returns the logical length of the removed run.
func (d Delta) RemovedLen() int64 {
	return piecesLen(d.Removed)
}

// InsertedLen returns the logical length of the inserted run.
func (d Delta) InsertedLen() int64 {
	return piecesLen(d.Inserted)
}

// Empty reports whether the delta records no change.
func (d Delta) Empty() bool {
	return len(d.Removed) == 0 && len(d.Inserted) == 0
}
