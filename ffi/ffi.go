// Command ffi builds the C-ABI boundary described by this project's
// specification as a C shared library (`go build -buildmode=c-shared`).
// It is a thin marshalling shim: every byte buffer crossing the boundary
// is copied into/out of C-owned memory explicitly, and nothing here
// performs a real encode/search — it only adapts the pyjamaz package's Go
// API to the five exported C functions.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
    uint8_t *data;
    size_t   len;
    int      format;     // 0=jpeg 1=webp 2=avif 3=png, -1 on error
    double   diff;
    int      passed;     // 0/1
    int      error_code; // 0 = ok, see the err* constants in ffi.go
} pyjamaz_result;
*/
import "C"

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"unsafe"

	"github.com/pyjamaz/pyjamaz"
)

// Error codes returned in pyjamaz_result.error_code, mirroring the
// sentinel errors in errors.go. 0 means success.
const (
	errOK                        = 0
	errDecodeFailed              = 1
	errAllFormatsFailed          = 2
	errNoCandidateMetConstraints = 3
	errOutOfMemory               = 4
	errNotInitialized            = 5
	errInvalidConstraints        = 6
)

var (
	mu          sync.Mutex
	initialized bool
)

// pyjamaz_init must be called once before pyjamaz_optimize. Returns 0 on
// success, non-zero if already initialized.
//
//export pyjamaz_init
func pyjamaz_init() C.int {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return 1
	}
	initialized = true
	return 0
}

// pyjamaz_cleanup releases process-wide state. Safe to call even if init
// was never called.
//
//export pyjamaz_cleanup
func pyjamaz_cleanup() {
	mu.Lock()
	defer mu.Unlock()
	initialized = false
}

// pyjamaz_version returns a static, caller-must-not-free version string.
//
//export pyjamaz_version
func pyjamaz_version() *C.char {
	return versionCString
}

var versionCString = C.CString(pyjamaz.Version)

// jsonConstraints mirrors pyjamaz.Constraints in a form easy to decode
// from the constraints_json argument — the caller (typically a non-Go
// host process) builds this JSON rather than poking at Go struct layout
// directly.
type jsonConstraints struct {
	MaxBytes *int64   `json:"max_bytes"`
	MaxDiff  *float64 `json:"max_diff"`
	Metric   int      `json:"metric"`
	Formats  []int    `json:"formats"`
	Workers  int      `json:"workers"`
}

// pyjamaz_optimize runs the search over data[0:dataLen] and returns the
// winning encoding in a newly C-allocated pyjamaz_result. constraintsJSON
// may be NULL for default (unconstrained) behavior. The caller must pass
// the returned result to pyjamaz_free_result exactly once.
//
//export pyjamaz_optimize
func pyjamaz_optimize(data *C.uint8_t, dataLen C.size_t, constraintsJSON *C.char) C.pyjamaz_result {
	mu.Lock()
	ready := initialized
	mu.Unlock()
	if !ready {
		return C.pyjamaz_result{format: -1, error_code: errNotInitialized}
	}

	goData := C.GoBytes(unsafe.Pointer(data), C.int(dataLen))

	opts := pyjamaz.DefaultOptions()
	if constraintsJSON != nil {
		var jc jsonConstraints
		if err := json.Unmarshal([]byte(C.GoString(constraintsJSON)), &jc); err != nil {
			return C.pyjamaz_result{format: -1, error_code: errInvalidConstraints}
		}
		opts.Constraints.MaxBytes = jc.MaxBytes
		opts.Constraints.MaxDiff = jc.MaxDiff
		opts.Constraints.Metric = pyjamaz.MetricKind(jc.Metric)
		opts.Constraints.Workers = jc.Workers
		for _, f := range jc.Formats {
			opts.Constraints.Formats = append(opts.Constraints.Formats, pyjamaz.Format(f))
		}
	}

	sel, err := pyjamaz.Optimize(context.Background(), goData, opts)
	if err != nil && !errors.Is(err, pyjamaz.ErrNoCandidateMetConstraints) {
		return C.pyjamaz_result{format: -1, error_code: mapError(err)}
	}
	if sel == nil || sel.Winner == nil {
		return C.pyjamaz_result{format: -1, error_code: errAllFormatsFailed}
	}

	return resultToC(sel)
}

func mapError(err error) C.int {
	switch {
	case errors.Is(err, pyjamaz.ErrDecodeFailed):
		return errDecodeFailed
	case errors.Is(err, pyjamaz.ErrAllFormatsFailed):
		return errAllFormatsFailed
	case errors.Is(err, pyjamaz.ErrOutOfMemory):
		return errOutOfMemory
	default:
		return errAllFormatsFailed
	}
}

func resultToC(sel *pyjamaz.Selection) C.pyjamaz_result {
	w := sel.Winner
	cData := C.CBytes(w.Data)
	passed := 0
	if sel.Passed {
		passed = 1
	}
	return C.pyjamaz_result{
		data:       (*C.uint8_t)(cData),
		len:        C.size_t(len(w.Data)),
		format:     C.int(w.Format),
		diff:       C.double(w.Diff),
		passed:     C.int(passed),
		error_code: errOK,
	}
}

// pyjamaz_free_result releases the buffer allocated by pyjamaz_optimize.
// Unlike a generic free() that silently no-ops on data it doesn't own,
// this only frees the data pointer the result actually carries, and
// zeroes it out so a double-free is a visible NULL-free rather than a
// use-after-free.
//
//export pyjamaz_free_result
func pyjamaz_free_result(result *C.pyjamaz_result) {
	if result == nil || result.data == nil {
		return
	}
	C.free(unsafe.Pointer(result.data))
	result.data = nil
	result.len = 0
}

func main() {}
