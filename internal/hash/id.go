package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of data in one shot: the form used for deriving
// a short, stable identifier from an already-assembled string, such as the
// shard prefix in a blob store path.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Digest is a streaming xxHash64 accumulator for hashing a value that is
// naturally built up piece by piece rather than assembled into one string
// first: a schema's column list, or a row's bucketing column values.
// Schema digesting (schema.digest) and bucket routing (catalog.bucketIndex)
// both feed their pieces through a Digest instead of reaching for
// xxhash.New directly, so every multi-piece hash in this module goes
// through one shared abstraction.
type Digest struct {
	h *xxhash.Digest
}

// NewDigest returns an empty Digest ready for Write.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// Write feeds more bytes into the digest. xxhash.Digest.Write never
// returns an error, so Digest drops it rather than threading a
// can't-actually-fail error through every call site.
func (d *Digest) Write(p []byte) {
	_, _ = d.h.Write(p)
}

// Sum64 returns the hash accumulated so far.
func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}
