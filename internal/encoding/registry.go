// Package encoding wraps the real codecs this engine searches over behind
// a single Encoder interface, so the search engine never imports
// image/jpeg, image/png, chai2010/webp, or the AVIF cgo bridge directly.
package encoding

import (
	"fmt"
	"image"
	"sync"
)

// Encoder is an opaque encode primitive for one output format. Quality is
// the format's raw, native quality value (see the per-format domains in
// the root package). The lossy encoders range-check it and hand it to the
// underlying codec; the PNG encoder maps it onto a compression level.
type Encoder interface {
	// Encode compresses img at the given raw quality and returns the
	// encoded bytes.
	Encode(img *image.NRGBA, quality int) ([]byte, error)
	// Decode reconstructs pixels from previously encoded bytes, used by
	// the metric evaluator to compare against the reference raster.
	Decode(data []byte) (*image.NRGBA, error)
	// Name is the registry key ("jpeg", "webp", "avif", "png").
	Name() string
}

type registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

var defaultRegistry = &registry{encoders: make(map[string]Encoder)}

// Register adds an Encoder under its Name(). Called from each codec file's
// init().
func Register(e Encoder) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.encoders[e.Name()] = e
}

// Get looks up a registered Encoder by name.
func Get(name string) (Encoder, error) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	e, ok := defaultRegistry.encoders[name]
	if !ok {
		return nil, fmt.Errorf("encoding: no encoder registered for %q", name)
	}
	return e, nil
}

// List returns the names of every registered Encoder.
func List() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	names := make([]string, 0, len(defaultRegistry.encoders))
	for n := range defaultRegistry.encoders {
		names = append(names, n)
	}
	return names
}
