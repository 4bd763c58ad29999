package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPattern indicates an empty or malformed search pattern.
var ErrInvalidPattern = errors.New("invalid search pattern")

// Pattern is a byte sequence to search for, with an optional per-byte
// mask. Mask bit 1 means the bit must match; 0 means don't-care. A nil
// mask requires an exact match. A zero mask byte matches anything.
type Pattern struct {
	Bytes []byte
	Mask  []byte
}

// Exact returns a pattern matching b exactly.
func Exact(b []byte) Pattern {
	return Pattern{Bytes: b}
}

// Validate checks that the pattern is non-empty and the mask, if
// present, covers every pattern byte.
func (p Pattern) Validate() error {
	if len(p.Bytes) == 0 {
		return fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if p.Mask != nil && len(p.Mask) != len(p.Bytes) {
		return fmt.Errorf("%w: mask length %d, pattern length %d", ErrInvalidPattern, len(p.Mask), len(p.Bytes))
	}
	return nil
}

// exact reports whether the pattern has no effective wildcards.
func (p Pattern) exact() bool {
	if p.Mask == nil {
		return true
	}
	for _, m := range p.Mask {
		if m != 0xFF {
			return false
		}
	}
	return true
}

// ParseHex parses a hex pattern such as "DE AD ?? EF" or "dead??ef".
// Each byte is two hex digits; a '?' digit marks that nibble as
// don't-care, so "?F" matches any byte whose low nibble is F.
func ParseHex(s string) (Pattern, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if len(clean) == 0 || len(clean)%2 != 0 {
		return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
	}

	n := len(clean) / 2
	p := Pattern{Bytes: make([]byte, n), Mask: make([]byte, n)}
	wild := false
	for i := 0; i < n; i++ {
		hi, hiMask, err := parseNibble(clean[2*i])
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
		}
		lo, loMask, err := parseNibble(clean[2*i+1])
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
		}
		p.Bytes[i] = hi<<4 | lo
		p.Mask[i] = hiMask<<4 | loMask
		if p.Mask[i] != 0xFF {
			wild = true
		}
	}
	if !wild {
		p.Mask = nil
	}
	return p, nil
}

func parseNibble(c byte) (val, mask byte, err error) {
	switch {
	case c == '?':
		return 0, 0, nil
	case c >= '0' && c <= '9':
		return c - '0', 0xF, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, 0xF, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, 0xF, nil
	default:
		return 0, 0, fmt.Errorf("bad hex digit %q", c)
	}
}

// matchAt reports whether the pattern matches buf at position i.
// The caller guarantees i+len(p.Bytes) <= len(buf).
func (p Pattern) matchAt(buf []byte, i int) bool {
	if p.Mask == nil {
		for k, b := range p.Bytes {
			if buf[i+k] != b {
				return false
			}
		}
		return true
	}
	for k, b := range p.Bytes {
		if (buf[i+k]^b)&p.Mask[k] != 0 {
			return false
		}
	}
	return true
}

// firstMatch returns the lowest match position in buf.
func (p Pattern) firstMatch(buf []byte) (int, bool) {
	m := len(p.Bytes)
	if m > len(buf) {
		return 0, false
	}
	if p.exact() {
		// Boyer-Moore-Horspool: skip by the last byte of the window.
		var skip [256]int
		for i := range skip {
			skip[i] = m
		}
		for i := 0; i < m-1; i++ {
			skip[p.Bytes[i]] = m - 1 - i
		}
		for i := 0; i <= len(buf)-m; {
			if p.matchAt(buf, i) {
				return i, true
			}
			i += skip[buf[i+m-1]]
		}
		return 0, false
	}
	for i := 0; i <= len(buf)-m; i++ {
		if p.matchAt(buf, i) {
			return i, true
		}
	}
	return 0, false
}

// lastMatch returns the highest match position in buf no greater than
// maxPos.
func (p Pattern) lastMatch(buf []byte, maxPos int) (int, bool) {
	m := len(p.Bytes)
	if hi := len(buf) - m; maxPos > hi {
		maxPos = hi
	}
	for i := maxPos; i >= 0; i-- {
		if p.matchAt(buf, i) {
			return i, true
		}
	}
	return 0, false
}
