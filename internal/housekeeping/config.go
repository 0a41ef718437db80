// Package housekeeping exposes the lock protocol and auto-trigger
// heuristics that the repository housekeeping driver (the sibling
// orchestrator for ref-packing, repack, prune, and reflog expiry) consults
// before running. This package implements only that exposed contract —
// spec.md §1 treats the orchestrator itself as an external collaborator.
package housekeeping

import (
	"context"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the gc.* defaults spec.md §6 names.
type Config struct {
	Auto             int    `toml:"auto"`
	AutoPackLimit    int    `toml:"autopacklimit"`
	AutoDetach       bool   `toml:"autodetach"`
	PruneExpire      string `toml:"pruneexpire"`
	PruneReposExpire string `toml:"prunereposexpire"`
	AggressiveDepth  int    `toml:"aggressivedepth"`
	AggressiveWindow int    `toml:"aggressivewindow"`
}

// DefaultConfig returns the documented defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		Auto:             6700,
		AutoPackLimit:    50,
		AutoDetach:       true,
		PruneExpire:      "2.weeks.ago",
		PruneReposExpire: "3.months.ago",
		AggressiveDepth:  50,
		AggressiveWindow: 250,
	}
}

type tomlFile struct {
	GC Config `toml:"gc"`
}

// LoadConfig parses a TOML document's [gc] table on top of DefaultConfig,
// following the same "unmarshal into a typed wrapper struct" idiom as
// internal/trailer's config loading (and the teacher's ForgeConfig).
func LoadConfig(_ context.Context, data []byte) (Config, error) {
	doc := tomlFile{GC: DefaultConfig()}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, err
	}
	return doc.GC, nil
}
