package app

import "testing"

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "1234", want: 1234},
		{in: "0x10", want: 16},
		{in: "0XFF", want: 255},
		{in: "0xdeadbeef", want: 0xDEADBEEF},
		{in: "zz", wantErr: true},
		{in: "0x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseOffset(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseOffset(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseOffset(%q) = (%d, %v), want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestHexDigit(t *testing.T) {
	for r, want := range map[rune]byte{'0': 0, '9': 9, 'a': 10, 'f': 15, 'A': 10, 'F': 15} {
		got, ok := hexDigit(r)
		if !ok || got != want {
			t.Errorf("hexDigit(%q) = (%d, %v), want (%d, true)", r, got, ok, want)
		}
	}
	for _, r := range "ghz G?" {
		if _, ok := hexDigit(r); ok {
			t.Errorf("hexDigit(%q) accepted", r)
		}
	}
}
