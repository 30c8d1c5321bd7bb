package pyjamaz

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Optimize. Check with errors.Is.
var (
	// ErrDecodeFailed means the input bytes could not be decoded into a
	// ReferenceRaster. Fatal — no search runs.
	ErrDecodeFailed = errors.New("pyjamaz: decode failed")

	// ErrAllFormatsFailed means every candidate format's encoder errored
	// out during the search. Fatal.
	ErrAllFormatsFailed = errors.New("pyjamaz: all candidate formats failed")

	// ErrNoCandidateMetConstraints is a soft failure: the search produced
	// a well-formed Selection, but no candidate satisfied both MaxBytes
	// and MaxDiff. Selection.Winner still holds the closest candidate.
	ErrNoCandidateMetConstraints = errors.New("pyjamaz: no candidate met constraints")

	// ErrOutOfMemory means the engine could not allocate the buffers
	// needed to decode or search the image. Fatal.
	ErrOutOfMemory = errors.New("pyjamaz: out of memory")
)

// FormatError wraps a failure specific to one candidate format. It never
// aborts Optimize on its own — the search engine records it on that
// format's FormatTrace and continues with the remaining formats, per the
// per-format error recovery policy.
type FormatError struct {
	Format Format
	Op     string // "encode", "decode", or "metric"
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pyjamaz: %s %s: %v", e.Format, e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// newEncodeError builds a FormatError for an encoder failure.
func newEncodeError(f Format, err error) *FormatError {
	return &FormatError{Format: f, Op: "encode", Err: err}
}

// newMetricError builds a FormatError for a fidelity-metric failure (for
// example a dimension mismatch between the decoded candidate and the
// reference raster). Per spec this is treated identically to an encode
// failure — it disqualifies the format, not the whole run.
func newMetricError(f Format, err error) *FormatError {
	return &FormatError{Format: f, Op: "metric", Err: err}
}

// ErrDimensionMismatch is wrapped by newMetricError when a decoded
// candidate's dimensions don't match the reference raster.
var ErrDimensionMismatch = errors.New("candidate dimensions do not match reference raster")
