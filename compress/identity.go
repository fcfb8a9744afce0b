package compress

// IdentityCompressor implements the "identity" marker of spec §4.2: it
// passes payloads through unchanged. page.Build does not call it: when LZ4
// would not have shrunk a page, Build stores the encoded bytes as they are
// and leaves the page's compressed flag clear.
type IdentityCompressor struct{}

var _ Codec = (*IdentityCompressor)(nil)

// NewIdentityCompressor creates an identity codec.
func NewIdentityCompressor() IdentityCompressor {
	return IdentityCompressor{}
}

// Compress returns data unchanged. The returned slice shares the input's
// backing array; callers must not mutate it afterward.
func (c IdentityCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged.
func (c IdentityCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
