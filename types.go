// Package pyjamaz searches across JPEG, WebP, AVIF, and PNG encodings of an
// image and returns the smallest one that satisfies a caller's byte-size and
// perceptual-fidelity constraints.
package pyjamaz

import (
	"fmt"
	"image"
)

// Version is the library version reported across the FFI boundary.
const Version = "1.0.0"

// Format identifies a candidate output image format.
type Format int

const (
	// JPEG is a lossy format with a quality domain of 1-100.
	JPEG Format = iota
	// WebP is a lossy format (this engine never emits lossless WebP) with
	// a quality domain of 1-100.
	WebP
	// AVIF is a lossy format with an inverted quality domain: 0-63 where
	// lower values mean higher fidelity. The search engine normalizes this
	// internally so "higher normalized quality is always better fidelity"
	// holds across every format.
	AVIF
	// PNG is lossless. It has no quality domain — there is exactly one
	// candidate per cache run, encoded once and never searched.
	PNG
)

// String returns the format's canonical lowercase tag, used for cache file
// extensions and log fields.
func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case WebP:
		return "webp"
	case AVIF:
		return "avif"
	case PNG:
		return "png"
	default:
		return "unknown"
	}
}

// AllFormats is the default candidate set tried by Optimize when Constraints
// does not restrict it.
var AllFormats = []Format{JPEG, WebP, AVIF, PNG}

// qualityDomain returns the inclusive [min, max] raw quality range a format
// accepts, and whether the scale is inverted (lower raw value == higher
// fidelity, as with AVIF's quantizer-style quality).
func (f Format) qualityDomain() (lo, hi int, inverted bool) {
	switch f {
	case JPEG, WebP:
		return 1, 100, false
	case AVIF:
		return 0, 63, true
	case PNG:
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

// normalize maps a raw quality value for this format onto [0, 1] where 1.0
// is always the highest-fidelity setting, regardless of the format's native
// scale direction.
func (f Format) normalize(raw int) float64 {
	lo, hi, inverted := f.qualityDomain()
	if hi == lo {
		return 1.0
	}
	t := float64(raw-lo) / float64(hi-lo)
	if inverted {
		t = 1.0 - t
	}
	return t
}

// denormalize is the inverse of normalize: given a fidelity fraction in
// [0, 1], returns the raw quality value to pass to the encoder.
func (f Format) denormalize(t float64) int {
	lo, hi, inverted := f.qualityDomain()
	if hi == lo {
		return lo
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if inverted {
		t = 1.0 - t
	}
	return lo + int(t*float64(hi-lo)+0.5)
}

// MetricKind selects the perceptual-fidelity metric used to score a
// candidate encoding against the reference raster.
type MetricKind int

const (
	// MetricNone skips fidelity measurement entirely — Diff on every
	// candidate is 0, and MaxDiff constraints are vacuously satisfied.
	// Useful when only a byte budget matters.
	MetricNone MetricKind = iota
	// MetricDSSIM is a structural-dissimilarity score derived from
	// windowed SSIM. Lower is better; identical images score ~0.
	MetricDSSIM
	// MetricSSIMULACRA2 is a wider-range perceptual difference score across
	// multiple scales. Lower is better; identical images score ~0. This
	// engine computes an approximation from luma only (see metric.go).
	MetricSSIMULACRA2
)

func (m MetricKind) String() string {
	switch m {
	case MetricNone:
		return "none"
	case MetricDSSIM:
		return "dssim"
	case MetricSSIMULACRA2:
		return "ssimulacra2"
	default:
		return "unknown"
	}
}

// Constraints bounds an Optimize call. Either field may be left at its zero
// value to mean "unconstrained" — see the Null/zero distinction tracked by
// the cache fingerprint in internal/cache.
type Constraints struct {
	// MaxBytes caps the size of the winning candidate. Nil means no cap.
	MaxBytes *int64
	// MaxDiff caps the fidelity score (per Metric) of the winning
	// candidate — a candidate scoring above MaxDiff is disqualified even
	// if it fits MaxBytes. Nil means no cap.
	MaxDiff *float64
	// Metric selects which fidelity score MaxDiff is measured against.
	Metric MetricKind
	// Formats restricts the candidate format set. Nil or empty means
	// AllFormats.
	Formats []Format
	// Workers bounds how many formats are searched concurrently. 0 means
	// the engine default (4), capped at 16.
	Workers int
}

// formats returns the effective candidate format list.
func (c Constraints) formats() []Format {
	if len(c.Formats) == 0 {
		return AllFormats
	}
	return c.Formats
}

// workers returns the effective worker pool size.
func (c Constraints) workers() int {
	switch {
	case c.Workers <= 0:
		return 4
	case c.Workers > 16:
		return 16
	default:
		return c.Workers
	}
}

// Candidate is one evaluated encoding of the reference raster.
type Candidate struct {
	Format  Format
	Quality int // raw, format-native quality value used to produce Data
	Data    []byte
	Diff    float64 // fidelity score per the Constraints.Metric in effect
	Bytes   int64
}

func (c Candidate) fitsSize(max *int64) bool {
	return max == nil || c.Bytes <= *max
}

func (c Candidate) fitsDiff(max *float64) bool {
	return max == nil || c.Diff <= *max
}

// Selection is the outcome of an Optimize call: the best candidate found
// (if any) across every searched format, plus a per-format trace.
type Selection struct {
	// Passed is true when Winner satisfies every Constraints bound.
	// When false, Winner still holds the best-effort closest candidate
	// found (smallest that fit what could be fit), for callers that want
	// to inspect it, and the error returned is ErrNoCandidateMetConstraints.
	Passed bool
	Winner *Candidate
	Traces map[Format]*FormatTrace
	// CacheHit is true when Winner was served from the result cache
	// without running the search engine.
	CacheHit bool
}

// FormatTrace records what happened while searching one format.
type FormatTrace struct {
	Format      Format
	State       SearchState
	Candidates  []Candidate
	EncodeCalls int
	Err         error
}

// SearchState is the per-format state machine defined by the search engine.
type SearchState int

const (
	StatePending SearchState = iota
	StateProbing
	StateRefining
	StateComplete
	StateErrored
)

func (s SearchState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProbing:
		return "probing"
	case StateRefining:
		return "refining"
	case StateComplete:
		return "complete"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ReferenceRaster is the decoded, EXIF-oriented pixel buffer every format's
// search runs against. It is produced once per Optimize call and never
// mutated afterward.
type ReferenceRaster struct {
	Pix    *image.NRGBA
	Width  int
	Height int
	// HasAlpha records whether any pixel had alpha < 0xff at decode time.
	// The search engine still tries JPEG (no alpha channel) for such a
	// raster: it flattens alpha against a black matte (flattenAlpha)
	// before handing the pixels to the JPEG encoder.
	HasAlpha bool
}

func (r *ReferenceRaster) String() string {
	return fmt.Sprintf("raster %dx%d alpha=%v", r.Width, r.Height, r.HasAlpha)
}
