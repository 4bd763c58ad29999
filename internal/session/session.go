package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State is everything remembered about one document between runs.
type State struct {
	ID         string
	Path       string
	Cursor     int64
	Top        int64
	Bookmarks  []int64
	VisualMode string
}

// Encode serializes the state to JSON. A missing ID is assigned.
func Encode(st State) ([]byte, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	js := "{}"
	var err error
	set := func(key string, value any) {
		if err == nil {
			js, err = sjson.Set(js, key, value)
		}
	}
	set("id", st.ID)
	set("path", st.Path)
	set("cursor", st.Cursor)
	set("top", st.Top)
	set("bookmarks", st.Bookmarks)
	set("visual_mode", st.VisualMode)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return []byte(js), nil
}

// Decode parses a session file's JSON.
func Decode(data []byte) (State, error) {
	if !gjson.ValidBytes(data) {
		return State{}, fmt.Errorf("invalid session data")
	}
	root := gjson.ParseBytes(data)
	st := State{
		ID:         root.Get("id").String(),
		Path:       root.Get("path").String(),
		Cursor:     root.Get("cursor").Int(),
		Top:        root.Get("top").Int(),
		VisualMode: root.Get("visual_mode").String(),
	}
	for _, bm := range root.Get("bookmarks").Array() {
		st.Bookmarks = append(st.Bookmarks, bm.Int())
	}
	return st, nil
}

// Save writes the state for its document path.
func Save(st State) error {
	file, err := fileFor(st.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := Encode(st)
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

// Load reads the saved state for a document path. A missing session is
// an empty state, not an error.
func Load(docPath string) (State, error) {
	file, err := fileFor(docPath)
	if err != nil {
		return State{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return State{Path: docPath}, nil
		}
		return State{}, fmt.Errorf("reading session: %w", err)
	}
	return Decode(data)
}

// fileFor maps a document path to its session file, keyed by a content
// hash of the absolute path so unrelated files never collide.
func fileFor(docPath string) (string, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", docPath, err)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:8]) + ".json"
	return filepath.Join(dir, "hexstorm", "sessions", name), nil
}
