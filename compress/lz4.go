package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor implements LZ4 block compression per spec §4.2: a 4-byte
// little-endian uncompressed-length header followed by the raw LZ4 block.
// Storing the uncompressed length up front lets Decompress allocate the
// exact output buffer instead of growing an adaptive guess.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data using a pooled lz4.Compressor and prefixes the
// result with the original length.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, 4+dstSize)
	binary.LittleEndian.PutUint32(dst[:4], uint32(len(data))) //nolint:gosec

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[4:])
	if err != nil {
		return nil, err
	}

	return dst[:4+n], nil
}

// Decompress reads the length header and decompresses into an exactly
// sized buffer.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4: payload too short for length header (%d bytes)", len(data))
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[:4])
	if uncompressedSize == 0 {
		return nil, nil
	}

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[4:], dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}
