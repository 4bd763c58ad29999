package overlay

import "fmt"

// Range represents a logical byte range in the document.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start int64
	End   int64
}

// NewRange creates a Range from start and end offsets.
func NewRange(start, end int64) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns true if the given offset is within the range.
func (r Range) Contains(off int64) bool {
	return off >= r.Start && off < r.End
}

// Union returns the smallest range containing both ranges.
func (r Range) Union(other Range) Range {
	if other.Start < r.Start {
		r.Start = other.Start
	}
	if other.End > r.End {
		r.End = other.End
	}
	return r
}
