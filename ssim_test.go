package pyjamaz

import (
	"image/color"
	"testing"
)

func TestSSIMIdentical(t *testing.T) {
	img := makeTestImage(64, 64)
	s, err := ssim(img, img)
	if err != nil {
		t.Fatalf("ssim: %v", err)
	}
	if s < 0.999 {
		t.Errorf("identical images: want ssim ~1.0, got %f", s)
	}
}

func TestSSIMDifferent(t *testing.T) {
	a := makeSolidImage(64, 64, color.NRGBA{0, 0, 0, 255})
	b := makeSolidImage(64, 64, color.NRGBA{255, 255, 255, 255})
	s, err := ssim(a, b)
	if err != nil {
		t.Fatalf("ssim: %v", err)
	}
	if s > 0.5 {
		t.Errorf("black vs white: want low ssim, got %f", s)
	}
}

func TestSSIMDimensionMismatch(t *testing.T) {
	a := makeTestImage(32, 32)
	b := makeTestImage(16, 16)
	if _, err := ssim(a, b); err != ErrDimensionMismatch {
		t.Fatalf("want ErrDimensionMismatch, got %v", err)
	}
}

func TestMSSSIMIdentical(t *testing.T) {
	img := makeTestImage(128, 128)
	m, err := msssim(img, img)
	if err != nil {
		t.Fatalf("msssim: %v", err)
	}
	if m < 0.99 {
		t.Errorf("identical images: want msssim ~1.0, got %f", m)
	}
}

func TestSmallImagePixelPath(t *testing.T) {
	a := makeTestImage(4, 4)
	b := makeTestImage(4, 4)
	s, err := ssim(a, b)
	if err != nil {
		t.Fatalf("ssim on tiny image: %v", err)
	}
	if s < 0.999 {
		t.Errorf("want ~1.0 for identical tiny images, got %f", s)
	}
}
