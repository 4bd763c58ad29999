package search

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// byteSeq is an in-memory Reader.
type byteSeq []byte

func (b byteSeq) ReadInto(dst []byte, off int64) error {
	copy(dst, b[off:])
	return nil
}

func (b byteSeq) Len() int64 { return int64(len(b)) }

func find(t *testing.T, r Reader, pat Pattern, start int64, dir Direction, wrap bool, opts ...Option) (int64, bool) {
	t.Helper()
	off, ok, err := New(r, opts...).Find(context.Background(), pat, start, dir, wrap)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	return off, ok
}

func TestFindForward(t *testing.T) {
	data := byteSeq("the quick brown fox")
	off, ok := find(t, data, Exact([]byte("quick")), 0, Forward, false)
	if !ok || off != 4 {
		t.Errorf("Find = (%d, %v), want (4, true)", off, ok)
	}

	// A forward search starting past the match misses without wrap.
	if _, ok := find(t, data, Exact([]byte("quick")), 5, Forward, false); ok {
		t.Error("found match before start without wrap")
	}
}

func TestFindForwardWraps(t *testing.T) {
	data := byteSeq("abcabc")
	off, ok := find(t, data, Exact([]byte("ab")), 4, Forward, true)
	if !ok || off != 0 {
		t.Errorf("wrapped Find = (%d, %v), want (0, true)", off, ok)
	}
}

func TestFindBackward(t *testing.T) {
	data := byteSeq("abcabcabc")
	off, ok := find(t, data, Exact([]byte("abc")), 8, Backward, false)
	if !ok || off != 6 {
		t.Errorf("backward Find = (%d, %v), want (6, true)", off, ok)
	}

	// At or before start: a match starting exactly at start counts.
	off, ok = find(t, data, Exact([]byte("abc")), 3, Backward, false)
	if !ok || off != 3 {
		t.Errorf("backward Find at start = (%d, %v), want (3, true)", off, ok)
	}
}

func TestFindBackwardWraps(t *testing.T) {
	data := byteSeq("xxabxx")
	off, ok := find(t, data, Exact([]byte("ab")), 1, Backward, true)
	if !ok || off != 2 {
		t.Errorf("backward wrapped Find = (%d, %v), want (2, true)", off, ok)
	}
}

func TestFindNotFound(t *testing.T) {
	data := byteSeq("aaaa")
	if off, ok := find(t, data, Exact([]byte("b")), 0, Forward, true); ok {
		t.Errorf("found %d in data without the pattern", off)
	}
}

func TestFindPatternLongerThanDocument(t *testing.T) {
	if _, ok := find(t, byteSeq("ab"), Exact([]byte("abc")), 0, Forward, true); ok {
		t.Error("matched a pattern longer than the document")
	}
}

func TestFindStraddlesChunkBoundary(t *testing.T) {
	data := make([]byte, 64)
	copy(data[30:], "NEEDLE") // crosses the 32-byte chunk edge
	off, ok := find(t, byteSeq(data), Exact([]byte("NEEDLE")), 0, Forward, false, WithChunkSize(32))
	if !ok || off != 30 {
		t.Errorf("straddling Find = (%d, %v), want (30, true)", off, ok)
	}
}

func TestFindBackwardChunked(t *testing.T) {
	data := make([]byte, 100)
	copy(data[10:], "ab")
	copy(data[70:], "ab")
	off, ok := find(t, byteSeq(data), Exact([]byte("ab")), 99, Backward, false, WithChunkSize(16))
	if !ok || off != 70 {
		t.Errorf("backward chunked Find = (%d, %v), want (70, true)", off, ok)
	}
}

func TestFindMasked(t *testing.T) {
	pat, err := ParseHex("DE ?? EF")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	data := byteSeq{0x00, 0xDE, 0x42, 0xEF, 0x00}
	off, ok := find(t, data, pat, 0, Forward, false)
	if !ok || off != 1 {
		t.Errorf("masked Find = (%d, %v), want (1, true)", off, ok)
	}
}

func TestFindNibbleMask(t *testing.T) {
	pat, err := ParseHex("?F")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	data := byteSeq{0x10, 0x2F, 0x30}
	off, ok := find(t, data, pat, 0, Forward, false)
	if !ok || off != 1 {
		t.Errorf("nibble mask Find = (%d, %v), want (1, true)", off, ok)
	}
}

func TestFindInvalidPattern(t *testing.T) {
	_, _, err := New(byteSeq("abc")).Find(context.Background(), Pattern{}, 0, Forward, false)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("empty pattern: err = %v, want ErrInvalidPattern", err)
	}

	bad := Pattern{Bytes: []byte{1, 2}, Mask: []byte{0xFF}}
	_, _, err = New(byteSeq("abc")).Find(context.Background(), bad, 0, Forward, false)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("short mask: err = %v, want ErrInvalidPattern", err)
	}
}

func TestFindCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New(byteSeq(make([]byte, 1024))).Find(ctx, Exact([]byte{0xFF}), 0, Forward, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Find: err = %v, want context.Canceled", err)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in        string
		wantBytes []byte
		wantMask  []byte
		wantErr   bool
	}{
		{in: "DEADBEEF", wantBytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{in: "de ad be ef", wantBytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{in: "??", wantBytes: []byte{0x00}, wantMask: []byte{0x00}},
		{in: "A?", wantBytes: []byte{0xA0}, wantMask: []byte{0xF0}},
		{in: "?5", wantBytes: []byte{0x05}, wantMask: []byte{0x0F}},
		{in: "", wantErr: true},
		{in: "ABC", wantErr: true},
		{in: "GG", wantErr: true},
	}
	for _, tt := range tests {
		pat, err := ParseHex(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("ParseHex(%q): err = %v, want ErrInvalidPattern", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHex(%q): %v", tt.in, err)
			continue
		}
		if !bytes.Equal(pat.Bytes, tt.wantBytes) || !bytes.Equal(pat.Mask, tt.wantMask) {
			t.Errorf("ParseHex(%q) = (% X, % X), want (% X, % X)", tt.in, pat.Bytes, pat.Mask, tt.wantBytes, tt.wantMask)
		}
	}
}

func TestWrapVisitsEveryPositionOnce(t *testing.T) {
	// One match only, placed just before the start offset: only the
	// wrapped pass can see it, and it must be seen exactly there.
	data := make([]byte, 40)
	copy(data[5:], "zq")
	off, ok := find(t, byteSeq(data), Exact([]byte("zq")), 7, Forward, true, WithChunkSize(8))
	if !ok || off != 5 {
		t.Errorf("wrap Find = (%d, %v), want (5, true)", off, ok)
	}

	off, ok = find(t, byteSeq(data), Exact([]byte("zq")), 3, Backward, true, WithChunkSize(8))
	if !ok || off != 5 {
		t.Errorf("backward wrap Find = (%d, %v), want (5, true)", off, ok)
	}
}
