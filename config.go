package pyjamaz

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultCacheDir resolves the result cache's default location: XDG_CACHE_HOME
// if set, otherwise $HOME/.cache, joined with "pyjamaz". Callers that want a
// different location set Options.CacheDir explicitly.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pyjamaz")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "pyjamaz-cache")
	}
	return filepath.Join(home, ".cache", "pyjamaz")
}

// Options configures an Optimize / OptimizeBatch call.
type Options struct {
	// Constraints bounds the search (size/diff caps, format set, worker count).
	Constraints Constraints

	// CacheDir, if non-empty, enables the result cache at this directory.
	// Empty disables caching entirely — every call runs the full search.
	CacheDir string

	// CacheBudgetBytes bounds the cache's on-disk size; eviction runs when
	// exceeded. 0 means the cache package's default (1 GiB).
	CacheBudgetBytes int64

	// AutoOrient reads EXIF orientation from JPEG input and rotates the
	// decoded raster to match before the search runs. Default true.
	AutoOrient bool

	// Logger receives structured progress events. Nil (the zero value)
	// stays silent.
	Logger *zerolog.Logger
}

// logger resolves the effective logger, defaulting to silence.
func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return silentLogger()
	}
	return *o.Logger
}

// DefaultOptions returns sensible defaults: unconstrained search across all
// four formats, result caching enabled at DefaultCacheDir, EXIF
// auto-orientation on, logging silent.
func DefaultOptions() Options {
	return Options{
		Constraints:      Constraints{},
		CacheDir:         DefaultCacheDir(),
		CacheBudgetBytes: 0,
		AutoOrient:       true,
	}
}
