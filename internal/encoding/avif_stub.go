//go:build !cgo

package encoding

import (
	"fmt"
	"image"
)

// avifEncoder without cgo: AVIF always fails, which the search engine
// treats as an ordinary per-format encode error (see FormatError in the
// root package) — a build without cgo simply never wins AVIF, the other
// three formats still run.
type avifEncoder struct{}

func init() { Register(avifEncoder{}) }

func (avifEncoder) Name() string { return "avif" }

func (avifEncoder) Encode(img *image.NRGBA, quality int) ([]byte, error) {
	return nil, fmt.Errorf("avif: unavailable in a non-cgo build")
}

func (avifEncoder) Decode(data []byte) (*image.NRGBA, error) {
	return nil, fmt.Errorf("avif: unavailable in a non-cgo build")
}
