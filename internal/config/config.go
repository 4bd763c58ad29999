package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root of the hexstorm configuration.
type Config struct {
	Engine Engine `toml:"engine"`
	View   View   `toml:"view"`
}

// Engine configures the document engine.
type Engine struct {
	// PageSizeKiB is the page store's page size.
	PageSizeKiB int `toml:"page_size_kib"`
	// CacheBudgetMiB caps resident page-cache bytes.
	CacheBudgetMiB int `toml:"cache_budget_mib"`
	// UndoDepth caps the number of undo steps kept.
	UndoDepth int `toml:"undo_depth"`
	// SearchChunkKiB is the search scan chunk size.
	SearchChunkKiB int `toml:"search_chunk_kib"`
}

// View configures the hex dump presentation.
type View struct {
	// BytesPerRow is the hex dump row width.
	BytesPerRow int `toml:"bytes_per_row"`
	// GroupSize inserts a gap every GroupSize bytes.
	GroupSize int `toml:"group_size"`
	// VisualMode selects the text column: "ascii", "unicode" or "off".
	VisualMode string `toml:"visual_mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			PageSizeKiB:    64,
			CacheBudgetMiB: 16,
			UndoDepth:      1000,
			SearchChunkKiB: 256,
		},
		View: View{
			BytesPerRow: 16,
			GroupSize:   8,
			VisualMode:  "unicode",
		},
	}
}

// Load reads the configuration at path, layered over the defaults.
// A missing file returns the defaults with no error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// DefaultPath returns the per-user configuration path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hexstorm", "config.toml")
}

// normalize clamps out-of-range values back to the defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Engine.PageSizeKiB < 4 {
		c.Engine.PageSizeKiB = def.Engine.PageSizeKiB
	}
	if c.Engine.CacheBudgetMiB < 1 {
		c.Engine.CacheBudgetMiB = def.Engine.CacheBudgetMiB
	}
	if c.Engine.UndoDepth < 1 {
		c.Engine.UndoDepth = def.Engine.UndoDepth
	}
	if c.Engine.SearchChunkKiB < 4 {
		c.Engine.SearchChunkKiB = def.Engine.SearchChunkKiB
	}
	if c.View.BytesPerRow < 1 {
		c.View.BytesPerRow = def.View.BytesPerRow
	}
	if c.View.GroupSize < 1 {
		c.View.GroupSize = def.View.GroupSize
	}
	switch c.View.VisualMode {
	case "ascii", "unicode", "off":
	default:
		c.View.VisualMode = def.View.VisualMode
	}
}
