package encoding

import (
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 255) / maxInt(w-1, 1)),
				G: uint8((y * 255) / maxInt(h-1, 1)),
				B: 128,
				A: 255,
			})
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

func TestRegistryHasJPEGAndPNG(t *testing.T) {
	names := map[string]bool{}
	for _, n := range List() {
		names[n] = true
	}
	if !names["jpeg"] {
		t.Errorf("want jpeg registered, got %v", List())
	}
	if !names["png"] {
		t.Errorf("want png registered, got %v", List())
	}
}

func TestGetUnknownEncoderErrors(t *testing.T) {
	if _, err := Get("does-not-exist"); err == nil {
		t.Errorf("want an error for an unregistered encoder name")
	}
}

func TestJPEGEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := Get("jpeg")
	if err != nil {
		t.Fatalf("Get(jpeg): %v", err)
	}
	img := testImage(32, 32)
	data, err := enc.Encode(img, 85)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty encoded output")
	}
	decoded, err := enc.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestJPEGEncodeRejectsOutOfRangeQuality(t *testing.T) {
	enc, _ := Get("jpeg")
	img := testImage(8, 8)
	if _, err := enc.Encode(img, 0); err == nil {
		t.Errorf("want an error for quality 0")
	}
	if _, err := enc.Encode(img, 101); err == nil {
		t.Errorf("want an error for quality 101")
	}
}

func TestPNGEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := Get("png")
	if err != nil {
		t.Fatalf("Get(png): %v", err)
	}
	img := testImage(16, 16)
	data, err := enc.Encode(img, 50)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := enc.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if decoded.NRGBAAt(x, y) != img.NRGBAAt(x, y) {
				t.Fatalf("lossless round trip mismatch at (%d,%d): got %v want %v", x, y, decoded.NRGBAAt(x, y), img.NRGBAAt(x, y))
			}
		}
	}
}

func TestPNGCompressionLevelBuckets(t *testing.T) {
	cases := []struct {
		q    int
		want png.CompressionLevel
	}{
		{0, png.DefaultCompression},
		{10, png.BestSpeed},
		{50, png.DefaultCompression},
		{90, png.BestCompression},
	}
	for _, c := range cases {
		if got := compressionLevel(c.q); got != c.want {
			t.Errorf("compressionLevel(%d) = %v, want %v", c.q, got, c.want)
		}
	}
}
