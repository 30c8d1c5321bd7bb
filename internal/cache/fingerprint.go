// Package cache implements the content-addressed, bounded filesystem
// result cache: one fingerprint per (input bytes, constraints) pair maps
// to a cached winning encoding plus its metadata.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Key is the 32-byte cache fingerprint. sha256.Sum256 is the one
// stdlib-over-library choice in this engine — see DESIGN.md: no
// third-party hash in the example pack produces a 32-byte digest (xxhash
// is 64-bit and only ever appears as an indirect dependency), and the
// fingerprint is defined as exactly 32 bytes.
type Key [32]byte

// FingerprintInput is every value that changes the outcome of a search,
// fed into the digest in a fixed, length-prefixed order so no combination
// of inputs can collide by concatenation ambiguity (e.g. maxBytes=12,
// metric=1 must not hash the same as maxBytes=1, metric=2).
type FingerprintInput struct {
	Data      []byte
	MaxBytes  *int64
	MaxDiff   *float64
	Metric    int
	Formats   []int
	AutoOrient bool
}

// Fingerprint computes the 32-byte content-addressed key for a search
// input. Nil and zero are written distinctly: a present-but-zero MaxBytes
// (an explicit "must be empty", however degenerate) hashes differently
// from an absent MaxBytes (no cap at all).
func Fingerprint(in FingerprintInput) Key {
	h := sha256.New()

	writeLenPrefixed(h, in.Data)
	writeOptionalInt64(h, in.MaxBytes)
	writeOptionalFloat64(h, in.MaxDiff)
	writeUint64(h, uint64(in.Metric))

	writeUint64(h, uint64(len(in.Formats)))
	for _, f := range in.Formats {
		writeUint64(h, uint64(f))
	}

	if in.AutoOrient {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	var key Key
	copy(key[:], h.Sum(nil))
	return key
}

func writeLenPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	writeUint64(h, uint64(len(b)))
	h.Write(b)
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

// writeOptionalInt64 writes a presence byte followed by the value (or
// nothing if nil), so nil and 0 are never confusable.
func writeOptionalInt64(h interface{ Write([]byte) (int, error) }, v *int64) {
	if v == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{1})
	writeUint64(h, uint64(*v))
}

func writeOptionalFloat64(h interface{ Write([]byte) (int, error) }, v *float64) {
	if v == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{1})
	// Bit-pattern reinterpretation keeps the digest stable without
	// needing a canonical decimal string form of v.
	writeUint64(h, math.Float64bits(*v))
}
