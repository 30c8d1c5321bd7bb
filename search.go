package pyjamaz

import (
	"fmt"
	"image"
	"sort"

	"github.com/pyjamaz/pyjamaz/internal/encoding"
)

// maxEncodeCallsPerFormat bounds the bracket+refine search per spec: a
// handful of bracket probes plus bounded bisection refinement, never more
// than 13 total encode() calls for a single format in a single Optimize run.
const maxEncodeCallsPerFormat = 13

const bracketProbes = 5

// defaultTargetDiff is the fidelity floor the search aims for when the
// caller supplies no explicit MaxDiff — searching still needs a target to
// bracket against, so an unconstrained call optimizes toward "very close
// to the original" rather than degenerating to the cheapest possible file.
func defaultTargetDiff(metric MetricKind) float64 {
	switch metric {
	case MetricDSSIM:
		return 0.02
	case MetricSSIMULACRA2:
		return 2.0
	default:
		return 0
	}
}

// searchFormat runs the two-phase bracket-then-refine quality search for a
// single format and returns its trace. A format-local failure never
// returns a Go error — it's recorded on the trace's Err field so the
// caller can continue with the remaining formats per the per-format error
// recovery policy.
func searchFormat(raster *ReferenceRaster, f Format, c Constraints) *FormatTrace {
	trace := &FormatTrace{Format: f, State: StatePending}

	enc, err := encoding.Get(f.String())
	if err != nil {
		trace.State = StateErrored
		trace.Err = newEncodeError(f, err)
		return trace
	}

	pix := raster.Pix
	if f == JPEG && raster.HasAlpha {
		pix = flattenAlpha(pix)
	}

	if f == PNG {
		trace.State = StateProbing
		cand, cerr := evaluate(enc, f, pix, raster.Pix, c.Metric, 0)
		trace.EncodeCalls++
		if cerr != nil {
			trace.State = StateErrored
			trace.Err = cerr
			return trace
		}
		trace.Candidates = append(trace.Candidates, *cand)
		trace.State = StateComplete
		return trace
	}

	lo, hi, _ := f.qualityDomain()
	td := defaultTargetDiff(c.Metric)
	if c.MaxDiff != nil {
		td = *c.MaxDiff
	}

	trace.State = StateProbing
	probed := make([]Candidate, 0, bracketProbes)
	for _, q := range bracketQualities(lo, hi, bracketProbes) {
		if trace.EncodeCalls >= maxEncodeCallsPerFormat {
			break
		}
		cand, cerr := evaluate(enc, f, pix, raster.Pix, c.Metric, q)
		trace.EncodeCalls++
		if cerr != nil {
			trace.State = StateErrored
			trace.Err = cerr
			return trace
		}
		probed = append(probed, *cand)
	}
	trace.Candidates = append(trace.Candidates, probed...)

	sort.Slice(probed, func(i, j int) bool {
		return f.normalize(probed[i].Quality) < f.normalize(probed[j].Quality)
	})

	trace.State = StateRefining
	best, berr := bisectToTarget(enc, f, pix, raster.Pix, c.Metric, td, probed, trace, lo, hi)
	if berr != nil {
		trace.State = StateErrored
		trace.Err = berr
		return trace
	}

	if c.MaxBytes != nil && !best.fitsSize(c.MaxBytes) {
		tightened, terr := tightenToSize(enc, f, pix, raster.Pix, c.Metric, *c.MaxBytes, best, trace, lo, hi)
		if terr == nil && tightened != nil {
			best = tightened
		}
	}

	trace.State = StateComplete
	return trace
}

// evaluate encodes pix at the given raw quality, decodes the result back,
// and scores it against reference for the selected metric.
func evaluate(enc encoding.Encoder, f Format, pix, reference *image.NRGBA, metric MetricKind, quality int) (*Candidate, error) {
	data, err := enc.Encode(pix, quality)
	if err != nil {
		return nil, newEncodeError(f, err)
	}

	diff := 0.0
	if metric != MetricNone {
		decoded, derr := enc.Decode(data)
		if derr != nil {
			return nil, newMetricError(f, derr)
		}
		d, merr := compareMetric(metric, reference, decoded)
		if merr != nil {
			return nil, newMetricError(f, merr)
		}
		diff = d
	}

	return &Candidate{
		Format:  f,
		Quality: quality,
		Data:    data,
		Diff:    diff,
		Bytes:   int64(len(data)),
	}, nil
}

// bracketQualities returns n raw quality values evenly spaced across
// [lo, hi] inclusive of both ends.
func bracketQualities(lo, hi, n int) []int {
	if n < 2 {
		n = 2
	}
	out := make([]int, 0, n)
	span := hi - lo
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out = append(out, lo+int(t*float64(span)+0.5))
	}
	return out
}

// bisectToTarget finds the candidate with the lowest bytes whose Diff still
// satisfies targetDiff, bisecting between the bracket pair that straddles
// the target. probed must already be sorted low-fidelity to high-fidelity
// (i.e. ascending normalized quality). If no probe meets targetDiff it
// returns the lowest-diff probe without bisecting; if the encode-call
// budget runs out first it returns the best passing candidate found so far.
func bisectToTarget(enc encoding.Encoder, f Format, pix, reference *image.NRGBA, metric MetricKind, targetDiff float64, probed []Candidate, trace *FormatTrace, lo, hi int) (*Candidate, error) {
	if len(probed) == 0 {
		return nil, fmt.Errorf("pyjamaz: %s: no probes to refine", f)
	}

	passing := filterPassingDiff(probed, targetDiff)

	if len(passing) == 0 {
		// Nothing meets the fidelity floor — report the closest (lowest
		// diff, i.e. highest-fidelity) probe as the best-effort result.
		best := passing0Closest(probed)
		return &best, nil
	}

	// passing is sorted ascending by fidelity; passing[0] is the
	// lowest-quality (smallest, cheapest) candidate that still meets the
	// target. Bisect the gap below it — between the domain floor (or the
	// next-lower failing probe) and passing[0] — to shrink further
	// without losing the fidelity guarantee.
	bestSoFar := passing[0]

	// probed is sorted ascending by normalized quality; qLo starts at the
	// worst-fidelity/smallest-bytes end of the domain (denormalize(0) is
	// direction-correct even for AVIF's inverted native scale, where the
	// smallest files sit at the *high* raw quantizer end) and climbs to
	// the last failing probe below bestSoFar.
	qLo := f.denormalize(0)
	for _, cand := range probed {
		if f.normalize(cand.Quality) >= f.normalize(bestSoFar.Quality) {
			break
		}
		if cand.Diff > targetDiff {
			qLo = cand.Quality
		}
	}
	qHi := bestSoFar.Quality

	for i := 0; i < 6 && trace.EncodeCalls < maxEncodeCallsPerFormat; i++ {
		if normDist(f, qLo, qHi) <= 1 {
			break
		}
		mid := midpoint(f, qLo, qHi)
		if mid == qLo || mid == qHi {
			break
		}
		cand, err := evaluate(enc, f, pix, reference, metric, mid)
		trace.EncodeCalls++
		if err != nil {
			return nil, err
		}
		trace.Candidates = append(trace.Candidates, *cand)

		if cand.Diff <= targetDiff {
			if cand.Bytes < bestSoFar.Bytes {
				bestSoFar = *cand
			}
			qHi = mid
		} else {
			qLo = mid
		}
	}

	return &bestSoFar, nil
}

// tightenToSize spends any remaining encode-call budget bisecting purely
// on byte size once the fidelity-optimal candidate still exceeds maxBytes.
func tightenToSize(enc encoding.Encoder, f Format, pix, reference *image.NRGBA, metric MetricKind, maxBytes int64, start *Candidate, trace *FormatTrace, lo, hi int) (*Candidate, error) {
	// qLo sits at the smallest-bytes end of the domain regardless of
	// whether the format's native scale is inverted (AVIF).
	qLo, qHi := f.denormalize(0), start.Quality
	if normDist(f, qLo, qHi) == 0 {
		return start, nil
	}

	best := start
	for i := 0; i < maxEncodeCallsPerFormat && trace.EncodeCalls < maxEncodeCallsPerFormat; i++ {
		if normDist(f, qLo, qHi) <= 1 {
			break
		}
		mid := midpoint(f, qLo, qHi)
		if mid == qLo || mid == qHi {
			break
		}
		cand, err := evaluate(enc, f, pix, reference, metric, mid)
		trace.EncodeCalls++
		if err != nil {
			return best, err
		}
		trace.Candidates = append(trace.Candidates, *cand)

		if cand.Bytes <= maxBytes {
			if best.Bytes > maxBytes || cand.Bytes < best.Bytes || f.normalize(cand.Quality) > f.normalize(best.Quality) {
				best = cand
			}
			qLo = mid
		} else {
			qHi = mid
		}
	}
	return best, nil
}

// filterPassingDiff returns the subset of candidates with Diff <= target,
// preserving input order (ascending fidelity).
func filterPassingDiff(cands []Candidate, target float64) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Diff <= target {
			out = append(out, c)
		}
	}
	return out
}

// passing0Closest returns the candidate with the lowest Diff score.
func passing0Closest(cands []Candidate) Candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Diff < best.Diff {
			best = c
		}
	}
	return best
}

// normDist returns the absolute distance between two raw quality values
// for a format, or 0 for a format with no quality domain. The bisection
// loops stop once it is within 1 native unit.
func normDist(f Format, a, b int) int {
	lo, hi, _ := f.qualityDomain()
	span := hi - lo
	if span == 0 {
		return 0
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	// Scale so termination happens once the raw gap is within 1 native unit.
	return d
}

// midpoint returns the raw quality value halfway between a and b.
func midpoint(f Format, a, b int) int {
	return a + (b-a)/2
}
