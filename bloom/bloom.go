// Package bloom implements the per-column bloom filter of spec §4.3:
// FNV-1a 64-bit hashes split into two 32-bit halves and combined via
// double hashing (Kirsch-Mitzenmacher), sized at finalize time for a 5%
// target false-positive rate.
//
// One filter covers one column of one segment. Sizing happens only once the
// writer knows how many keys the column holds, so the filter is built in two
// stages: an Accumulator records every key's hash while the column is being
// written, and Finalize materializes the bit array once, when the segment is
// finalized. This mirrors the two-stage build/finalize shape used by
// this module's other index structures, generalized here from a
// fixed-layout header to a sized bit array.
package bloom

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/duskcore/olapcore/errs"
)

// targetFPR is the false-positive rate the filter is sized for, per
// spec §4.3.
const targetFPR = 0.05

// minBits is the smallest bit array the filter will ever allocate (64
// bytes), per spec §4.3, regardless of how few keys it holds.
const minBits = 64 * 8

// Filter is an immutable bloom filter over one column's keys within a segment.
type Filter struct {
	bits []byte
	m    uint32
	k    uint32
}

// Accumulator collects key hashes during a column write and produces a
// sized Filter once the segment is finalized.
type Accumulator struct {
	hashes []uint64
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func fnv1a64(key []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(key)
	return h.Sum64()
}

// Add records key for inclusion in the filter built by Finalize.
func (a *Accumulator) Add(key []byte) {
	a.hashes = append(a.hashes, fnv1a64(key))
}

// Len reports how many keys have been accumulated so far.
func (a *Accumulator) Len() int { return len(a.hashes) }

// Finalize sizes and builds the filter for every key recorded so far.
// Calling Finalize does not consume the accumulator; it may be called
// again after more Adds, though callers normally call it exactly once per
// column, at segment finalize.
func (a *Accumulator) Finalize() *Filter {
	n := len(a.hashes)
	m := numBits(n)
	k := numProbes(m, n)

	f := &Filter{bits: make([]byte, m/8), m: uint32(m), k: uint32(k)} //nolint:gosec
	for _, h := range a.hashes {
		f.insertHash(h)
	}
	return f
}

// numBits returns the bit-array size for n keys at targetFPR, rounded up
// to the next power of two and floored at minBits.
func numBits(n int) int {
	if n == 0 {
		return minBits
	}

	raw := -float64(n) * math.Log(targetFPR) / (math.Ln2 * math.Ln2)
	bits := int(math.Ceil(raw))
	if bits < minBits {
		bits = minBits
	}
	return nextPow2(bits)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// numProbes returns round(m/n * ln2), with a floor of 1.
func numProbes(m, n int) int {
	if n == 0 {
		n = 1
	}
	k := int(math.Round(float64(m) / float64(n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return k
}

func (f *Filter) insertHash(hash uint64) {
	h1 := uint32(hash)
	h2 := uint32(hash >> 32)
	for i := uint32(0); i < f.k; i++ {
		bit := (h1 + i*h2) % f.m
		f.bits[bit/8] |= 1 << (bit % 8)
	}
}

// MayContain reports whether key might be present. False positives are
// possible (bounded by the filter's target rate); false negatives never
// occur.
func (f *Filter) MayContain(key []byte) bool {
	hash := fnv1a64(key)
	h1 := uint32(hash)
	h2 := uint32(hash >> 32)
	for i := uint32(0); i < f.k; i++ {
		bit := (h1 + i*h2) % f.m
		if f.bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// Bytes serializes the filter as k (1 byte), m (4 bytes little-endian),
// then the bit array, for storage in a segment's index region.
func (f *Filter) Bytes() []byte {
	buf := make([]byte, 5+len(f.bits))
	buf[0] = byte(f.k) //nolint:gosec
	binary.LittleEndian.PutUint32(buf[1:5], f.m)
	copy(buf[5:], f.bits)
	return buf
}

// Parse reverses Bytes.
func Parse(data []byte) (*Filter, error) {
	if len(data) < 5 {
		return nil, errs.NewDecode(-1, "bloom: truncated filter header")
	}
	k := uint32(data[0])
	m := binary.LittleEndian.Uint32(data[1:5])
	expected := 5 + int(m)/8
	if len(data) < expected {
		return nil, errs.NewDecode(-1, "bloom: truncated filter bit array")
	}
	bits := make([]byte, m/8)
	copy(bits, data[5:expected])
	return &Filter{bits: bits, m: m, k: k}, nil
}
