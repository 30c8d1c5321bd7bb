package encoding

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

type jpegEncoder struct{}

func init() { Register(jpegEncoder{}) }

func (jpegEncoder) Name() string { return "jpeg" }

func (jpegEncoder) Encode(img *image.NRGBA, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg: quality %d out of range [1,100]", quality)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (jpegEncoder) Decode(data []byte) (*image.NRGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}
