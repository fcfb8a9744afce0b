package compress

import (
	"fmt"

	"github.com/duskcore/olapcore/schema"
)

// Compressor compresses a page payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a page payload previously produced by the
// matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns the Codec for the given compression hint.
func CreateCodec(hint schema.CompressionHint) (Codec, error) {
	switch hint {
	case schema.CompressionNone:
		return NewIdentityCompressor(), nil
	case schema.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported compression hint %d", hint)
	}
}
