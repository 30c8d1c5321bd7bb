package pyjamaz

import "testing"

func testRaster(w, h int) *ReferenceRaster {
	pix := makeTestImage(w, h)
	return &ReferenceRaster{Pix: pix, Width: w, Height: h, HasAlpha: hasAlpha(pix)}
}

func TestSearchFormatJPEGCompletes(t *testing.T) {
	raster := testRaster(64, 64)
	trace := searchFormat(raster, JPEG, Constraints{Metric: MetricDSSIM})
	if trace.State != StateComplete {
		t.Fatalf("JPEG search state = %s, err = %v", trace.State, trace.Err)
	}
	if len(trace.Candidates) == 0 {
		t.Fatalf("expected at least one candidate")
	}
	if trace.EncodeCalls > maxEncodeCallsPerFormat {
		t.Errorf("JPEG search used %d encode calls, budget is %d", trace.EncodeCalls, maxEncodeCallsPerFormat)
	}
	for _, c := range trace.Candidates {
		if c.Bytes <= 0 {
			t.Errorf("candidate has non-positive size: %+v", c)
		}
	}
}

func TestSearchFormatPNGIsSingleShot(t *testing.T) {
	raster := testRaster(32, 32)
	trace := searchFormat(raster, PNG, Constraints{Metric: MetricDSSIM})
	if trace.State != StateComplete {
		t.Fatalf("PNG search state = %s, err = %v", trace.State, trace.Err)
	}
	if trace.EncodeCalls != 1 {
		t.Errorf("PNG has no quality domain, want exactly 1 encode call, got %d", trace.EncodeCalls)
	}
	if len(trace.Candidates) != 1 {
		t.Fatalf("want exactly 1 PNG candidate, got %d", len(trace.Candidates))
	}
	if trace.Candidates[0].Diff > 0.001 {
		t.Errorf("PNG is lossless, want near-zero diff, got %f", trace.Candidates[0].Diff)
	}
}

func TestSearchFormatRespectsMaxDiff(t *testing.T) {
	raster := testRaster(96, 96)
	maxDiff := 0.15
	trace := searchFormat(raster, JPEG, Constraints{Metric: MetricDSSIM, MaxDiff: &maxDiff})
	if trace.State != StateComplete {
		t.Fatalf("search state = %s, err = %v", trace.State, trace.Err)
	}
	winner := trace.Candidates[len(trace.Candidates)-1]
	// The bisection's final best-so-far isn't always the last appended
	// candidate positionally, so scan for the lowest-byte passing one.
	var bestPassing *Candidate
	for i := range trace.Candidates {
		c := trace.Candidates[i]
		if c.Diff <= maxDiff && (bestPassing == nil || c.Bytes < bestPassing.Bytes) {
			bestPassing = &c
		}
	}
	if bestPassing == nil {
		t.Fatalf("expected at least one candidate meeting maxDiff=%.2f among %+v", maxDiff, trace.Candidates)
	}
	_ = winner
}

func TestSearchFormatUnknownEncoderErrors(t *testing.T) {
	raster := testRaster(16, 16)
	// Format(99) has no registered encoder; searchFormat must record the
	// failure on the trace rather than panicking.
	trace := searchFormat(raster, Format(99), Constraints{})
	if trace.State != StateErrored {
		t.Fatalf("want StateErrored for an unregistered format, got %s", trace.State)
	}
	if trace.Err == nil {
		t.Errorf("want a non-nil trace error")
	}
}

func TestBracketQualitiesSpansDomain(t *testing.T) {
	qs := bracketQualities(1, 100, 5)
	if qs[0] != 1 || qs[len(qs)-1] != 100 {
		t.Errorf("bracketQualities(1,100,5) = %v, want first=1 last=100", qs)
	}
	if len(qs) != 5 {
		t.Errorf("want 5 probes, got %d", len(qs))
	}
}
