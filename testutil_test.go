package pyjamaz

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
)

// makeTestImage builds a deterministic, non-trivial gradient+noise NRGBA
// image so encoders have something more interesting to compress than a
// flat color.
func makeTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8((x * 255) / maxInt(w-1, 1))
			g := uint8((y * 255) / maxInt(h-1, 1))
			b := uint8(128 + 127*math.Sin(float64(x+y)/8))
			img.Set(x, y, color.NRGBA{r, g, b, 255})
		}
	}
	return img
}

func makeTestImageWithAlpha(w, h int) *image.NRGBA {
	img := makeTestImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*img.Stride + x*4
			if x < w/2 {
				img.Pix[off+3] = 128
			}
		}
	}
	return img
}

func makeSolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func encodeJPEGBytes(img image.Image) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNGBytes(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
