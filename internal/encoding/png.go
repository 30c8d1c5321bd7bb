package encoding

import (
	"bytes"
	"image"
	"image/png"
)

type pngEncoder struct{}

func init() { Register(pngEncoder{}) }

func (pngEncoder) Name() string { return "png" }

// Encode ignores quality beyond selecting a compression effort bucket — PNG
// is lossless, so "quality" here only trades encode time for output size,
// never fidelity. The search engine calls this exactly once per run since
// PNG has no quality domain to search.
func (pngEncoder) Encode(img *image.NRGBA, quality int) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: compressionLevel(quality)}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pngEncoder) Decode(data []byte) (*image.NRGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// compressionLevel buckets an arbitrary quality value onto three of the
// levels image/png supports (BestSpeed, DefaultCompression,
// BestCompression); NoCompression is never chosen.
func compressionLevel(quality int) png.CompressionLevel {
	switch {
	case quality <= 0:
		return png.DefaultCompression
	case quality < 34:
		return png.BestSpeed
	case quality < 67:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
