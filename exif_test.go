package pyjamaz

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestApplyOrientationDimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	img.Pix[0] = 255
	img.Pix[3] = 255

	normal := applyOrientation(img, orientNormal)
	if normal.Bounds().Dx() != 100 || normal.Bounds().Dy() != 50 {
		t.Fatalf("orientNormal should keep 100x50, got %dx%d", normal.Bounds().Dx(), normal.Bounds().Dy())
	}

	rotated := applyOrientation(img, orientRotate90CW)
	if rotated.Bounds().Dx() != 50 || rotated.Bounds().Dy() != 100 {
		t.Fatalf("orientRotate90CW should swap to 50x100, got %dx%d", rotated.Bounds().Dx(), rotated.Bounds().Dy())
	}

	rot180 := applyOrientation(img, orientRotate180)
	if rot180.Bounds().Dx() != 100 || rot180.Bounds().Dy() != 50 {
		t.Fatalf("orientRotate180 should keep 100x50, got %dx%d", rot180.Bounds().Dx(), rot180.Bounds().Dy())
	}
}

// TestApplyOrientationPixelMapping checks the rotation math moves a marked
// pixel to the position a real EXIF-respecting viewer would show it, not
// just that the bounds come out right.
func TestApplyOrientationPixelMapping(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(0, 0, red)

	rotated := applyOrientation(img, orientRotate90CW)
	// A 90CW rotation of a 4x2 image moves the top-left pixel to the
	// top-right corner of the resulting 2x4 image.
	if got := rotated.NRGBAAt(1, 0); got != red {
		t.Errorf("orientRotate90CW: top-left pixel should land at (1,0), got %v", got)
	}

	flipped := applyOrientation(img, orientFlipH)
	if got := flipped.NRGBAAt(3, 0); got != red {
		t.Errorf("orientFlipH: top-left pixel should land at (3,0), got %v", got)
	}
}

// buildJPEGWithOrientation encodes img as JPEG then splices in a minimal
// APP1/EXIF segment carrying the given orientation tag, right after SOI.
func buildJPEGWithOrientation(t *testing.T, img image.Image, o orientation) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	body := buf.Bytes()
	if len(body) < 2 || body[0] != 0xFF || body[1] != 0xD8 {
		t.Fatalf("encoded JPEG missing SOI marker")
	}

	tiff := []byte{
		'I', 'I', 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // IFD offset = 8
		0x01, 0x00, // entry count = 1
		0x12, 0x01, // tag 0x0112 (orientation)
		0x03, 0x00, // type SHORT
		0x01, 0x00, 0x00, 0x00, // count = 1
		byte(o), 0x00, 0x00, 0x00, // value + padding
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)

	segLen := len(payload) + 2
	app1 := []byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen)}
	app1 = append(app1, payload...)

	out := make([]byte, 0, len(body)+len(app1))
	out = append(out, body[:2]...) // SOI
	out = append(out, app1...)
	out = append(out, body[2:]...)
	return out
}

func TestReadOrientationParsesRealExifTag(t *testing.T) {
	img := makeTestImage(16, 8)
	data := buildJPEGWithOrientation(t, img, orientRotate90CW)
	if got := readOrientation(data); got != orientRotate90CW {
		t.Fatalf("readOrientation = %d, want orientRotate90CW (%d)", got, orientRotate90CW)
	}
}

func TestReadOrientationDefaultsToNormalForNonJPEG(t *testing.T) {
	if got := readOrientation([]byte("not a jpeg at all")); got != orientNormal {
		t.Errorf("non-JPEG input should read as orientNormal, got %d", got)
	}
}

func TestReadOrientationDefaultsToNormalWithoutExif(t *testing.T) {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, makeTestImage(8, 8), &jpeg.Options{Quality: 90})
	if got := readOrientation(buf.Bytes()); got != orientNormal {
		t.Errorf("JPEG without an EXIF APP1 segment should read as orientNormal, got %d", got)
	}
}

func TestDecodeAppliesAutoOrient(t *testing.T) {
	img := makeTestImage(16, 8) // 16 wide, 8 tall
	data := buildJPEGWithOrientation(t, img, orientRotate90CW)

	oriented, err := decode(data, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if oriented.Width != 8 || oriented.Height != 16 {
		t.Errorf("auto-oriented raster should be 8x16 (swapped), got %dx%d", oriented.Width, oriented.Height)
	}

	unoriented, err := decode(data, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if unoriented.Width != 16 || unoriented.Height != 8 {
		t.Errorf("non-auto-oriented raster should keep the raw 16x8 JPEG dimensions, got %dx%d", unoriented.Width, unoriented.Height)
	}
}
