package pyjamaz

import "image"

// compareMetric scores a candidate's decoded pixels against the reference
// raster using the selected metric. Lower is always better across every
// MetricKind, and 0 always means "no measurable difference" — this holds
// for MetricNone trivially, for MetricDSSIM because dssim = 1 - ssim, and
// for MetricSSIMULACRA2 by construction of the approximation below.
func compareMetric(kind MetricKind, reference, candidate *image.NRGBA) (float64, error) {
	switch kind {
	case MetricNone:
		return 0, nil
	case MetricDSSIM:
		s, err := ssim(reference, candidate)
		if err != nil {
			return 0, err
		}
		return dssimFromSSIM(s), nil
	case MetricSSIMULACRA2:
		return ssimulacra2Approx(reference, candidate)
	default:
		return 0, nil
	}
}

// dssimFromSSIM converts an SSIM score in [-1, 1] (practically [0, 1] for
// natural images) to a structural-dissimilarity score where 0 means
// identical and larger means more different.
func dssimFromSSIM(s float64) float64 {
	d := 1 - s
	if d < 0 {
		return 0
	}
	return d
}

// ssimulacra2Approx approximates the SSIMULACRA2 perceptual metric using
// multi-scale SSIM over luma and re-expressed so lower is better and 0 is
// identical, matching this engine's uniform "lower is better" metric
// contract (the real ssimulacra2 tool reports higher-is-better, typically
// around 90 for visually lossless output — this is a deliberate
// reinterpretation, not a drop-in replacement for the reference tool).
// No pack dependency implements SSIMULACRA2; this is grounded on the same
// windowed-SSIM machinery the teacher used for its own MSSSIM, scaled to
// occupy a wider numeric range than plain DSSIM so the two metrics are
// visibly distinguishable to a caller comparing them.
func ssimulacra2Approx(reference, candidate *image.NRGBA) (float64, error) {
	m, err := msssim(reference, candidate)
	if err != nil {
		return 0, err
	}
	d := (1 - m) * 100
	if d < 0 {
		return 0, nil
	}
	return d, nil
}
