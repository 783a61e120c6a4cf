// Package hconfig loads the heap's tunable constants from a TOML file.
// Every field has a sensible default, so an unconfigured Heap behaves
// exactly like a default one.
package hconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config tunes the heap's allocator and collector without changing any
// externally-visible byte layout.
type Config struct {
	// PageSize is the granularity new pages are rounded up to, in bytes.
	PageSize uint32 `toml:"page_size"`

	// InitialSizeLimit bounds a freshly-created space before the first
	// Swap recomputes it; 0 means "2x page size", space.New's default.
	InitialSizeLimit uint32 `toml:"initial_size_limit"`

	// OldSpaceGeneration is the generation counter threshold at which an
	// object is tenured into old-space rather than copied within
	// new-space.
	OldSpaceGeneration byte `toml:"old_space_generation"`

	// InitialMapCapacity is the slot count a freshly-allocated empty
	// Object or Array's property map starts with.
	InitialMapCapacity uint32 `toml:"initial_map_capacity"`
}

// Default returns the configuration used when no override file is
// present: a 1 MiB page, old-space threshold 5, initial map capacity 16.
func Default() Config {
	return Config{
		PageSize:           1 << 20,
		InitialSizeLimit:   0,
		OldSpaceGeneration: 5,
		InitialMapCapacity: 16,
	}
}

// Load reads a TOML file at path and overlays it on Default(); a zero
// value for any field in the file falls back to the default rather than
// being written as zero, so a partial file is safe.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("hconfig: cannot read %s: %w", path, err)
	}

	var overlay Config
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("hconfig: parse error in %s: %w", path, err)
	}

	if overlay.PageSize != 0 {
		cfg.PageSize = overlay.PageSize
	}
	if overlay.InitialSizeLimit != 0 {
		cfg.InitialSizeLimit = overlay.InitialSizeLimit
	}
	if overlay.OldSpaceGeneration != 0 {
		cfg.OldSpaceGeneration = overlay.OldSpaceGeneration
	}
	if overlay.InitialMapCapacity != 0 {
		cfg.InitialMapCapacity = overlay.InitialMapCapacity
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would break a byte-exact layout
// invariant (map capacity must stay a power of two).
func (c Config) Validate() error {
	if c.InitialMapCapacity == 0 || c.InitialMapCapacity&(c.InitialMapCapacity-1) != 0 {
		return fmt.Errorf("hconfig: initial_map_capacity must be a power of two, got %d", c.InitialMapCapacity)
	}
	if c.PageSize == 0 {
		return fmt.Errorf("hconfig: page_size must be nonzero")
	}
	return nil
}
