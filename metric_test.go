package pyjamaz

import (
	"image/color"
	"testing"
)

func TestCompareMetricNoneAlwaysZero(t *testing.T) {
	a := makeTestImage(32, 32)
	b := makeSolidImage(32, 32, color.NRGBA{1, 2, 3, 255})
	d, err := compareMetric(MetricNone, a, b)
	if err != nil {
		t.Fatalf("compareMetric: %v", err)
	}
	if d != 0 {
		t.Errorf("MetricNone: want 0, got %f", d)
	}
}

func TestCompareMetricDSSIMIdentical(t *testing.T) {
	img := makeTestImage(32, 32)
	d, err := compareMetric(MetricDSSIM, img, img)
	if err != nil {
		t.Fatalf("compareMetric: %v", err)
	}
	if d > 0.01 {
		t.Errorf("dssim on identical images: want ~0, got %f", d)
	}
}

func TestCompareMetricDSSIMDifferent(t *testing.T) {
	a := makeSolidImage(32, 32, color.NRGBA{0, 0, 0, 255})
	b := makeSolidImage(32, 32, color.NRGBA{255, 255, 255, 255})
	d, err := compareMetric(MetricDSSIM, a, b)
	if err != nil {
		t.Fatalf("compareMetric: %v", err)
	}
	if d < 0.3 {
		t.Errorf("dssim on black vs white: want high dissimilarity, got %f", d)
	}
}

func TestCompareMetricSSIMULACRA2Identical(t *testing.T) {
	img := makeTestImage(64, 64)
	d, err := compareMetric(MetricSSIMULACRA2, img, img)
	if err != nil {
		t.Fatalf("compareMetric: %v", err)
	}
	if d > 1.0 {
		t.Errorf("ssimulacra2 approx on identical images: want near 0, got %f", d)
	}
}

func TestCompareMetricDimensionMismatchIsFormatSafe(t *testing.T) {
	a := makeTestImage(32, 32)
	b := makeTestImage(16, 16)
	if _, err := compareMetric(MetricDSSIM, a, b); err != ErrDimensionMismatch {
		t.Fatalf("want ErrDimensionMismatch, got %v", err)
	}
}
