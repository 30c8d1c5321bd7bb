package encoding

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
)

type webpEncoder struct{}

func init() { Register(webpEncoder{}) }

func (webpEncoder) Name() string { return "webp" }

// Encode always produces lossy WebP (lossless WebP is a different format
// tag this engine never emits — see the WebP constant in the root package).
// Grounded on github.com/chai2010/webp's Encode/Options, the same library
// the catwatch and Watermarck image pipelines use for WebP output.
func (webpEncoder) Encode(img *image.NRGBA, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("webp: quality %d out of range [1,100]", quality)
	}
	var buf bytes.Buffer
	opt := &webp.Options{Lossless: false, Quality: float32(quality)}
	if err := webp.Encode(&buf, img, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (webpEncoder) Decode(data []byte) (*image.NRGBA, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}
