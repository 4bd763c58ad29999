package session

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := State{
		ID:         "abc-123",
		Path:       "/tmp/firmware.bin",
		Cursor:     4096,
		Top:        4080,
		Bookmarks:  []int64{0, 512, 4095},
		VisualMode: "ascii",
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestEncodeAssignsID(t *testing.T) {
	data, err := Encode(State{Path: "/tmp/x"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	st, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if st.ID == "" {
		t.Error("Encode did not assign an ID")
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("{broken")); err == nil {
		t.Error("Decode accepted invalid JSON")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	st := State{
		Path:      "/data/core.dump",
		Cursor:    77,
		Top:       64,
		Bookmarks: []int64{8, 16},
	}
	if err := Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(st.Path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Cursor != 77 || got.Top != 64 || !reflect.DeepEqual(got.Bookmarks, st.Bookmarks) {
		t.Errorf("Load = %+v", got)
	}
}

func TestLoadMissingIsEmptyState(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	st, err := Load("/never/saved.bin")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Cursor != 0 || st.Path != "/never/saved.bin" {
		t.Errorf("Load missing = %+v", st)
	}
}

func TestDistinctPathsDistinctFiles(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := Save(State{Path: "/a", Cursor: 1}); err != nil {
		t.Fatalf("Save /a: %v", err)
	}
	if err := Save(State{Path: "/b", Cursor: 2}); err != nil {
		t.Fatalf("Save /b: %v", err)
	}
	a, err := Load("/a")
	if err != nil {
		t.Fatalf("Load /a: %v", err)
	}
	if a.Cursor != 1 {
		t.Errorf("session for /a clobbered: %+v", a)
	}
}
