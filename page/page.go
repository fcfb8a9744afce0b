// Package page implements the data page layout of spec §4.3: up to 1024
// rows of one column, CRC-protected, with an optional null bitmap and an
// optionally compressed payload.
//
// The header layout follows a fixed-size Bytes()/Parse() round-tripping
// idiom used throughout this module's wire structs, generalized to the
// 16-byte page header this format specifies.
package page

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/duskcore/olapcore/compress"
	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/schema"
)

// HeaderSize is the fixed size, in bytes, of a page header.
const HeaderSize = 16

// MaxRows is the maximum number of rows a single page may hold.
const MaxRows = 1024

const (
	flagCompressed = 1 << 0
	flagHasNulls   = 1 << 1
)

// Header is the fixed 16-byte page header.
type Header struct {
	NumRows          uint32
	UncompressedSize uint32
	CompressedSize   uint32
	Flags            uint8
	Encoding         schema.EncodingHint
	// Reserved occupies the trailing 2 bytes of the header; always written
	// as zero and ignored on read.
}

func (h Header) Compressed() bool { return h.Flags&flagCompressed != 0 }
func (h Header) HasNulls() bool   { return h.Flags&flagHasNulls != 0 }

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(b[0:4], h.NumRows)
	engine.PutUint32(b[4:8], h.UncompressedSize)
	engine.PutUint32(b[8:12], h.CompressedSize)
	b[12] = h.Flags
	b[13] = byte(h.Encoding)
	engine.PutUint16(b[14:16], 0)

	return b
}

// ParseHeader parses a 16-byte page header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.NewCorruptData("", 0, 0, "page header too short")
	}

	engine := endian.GetLittleEndianEngine()

	return Header{
		NumRows:          engine.Uint32(data[0:4]),
		UncompressedSize: engine.Uint32(data[4:8]),
		CompressedSize:   engine.Uint32(data[8:12]),
		Flags:            data[12],
		Encoding:         schema.EncodingHint(data[13]),
	}, nil
}

// nullBitmapSize returns ceil(numRows/8).
func nullBitmapSize(numRows int) int {
	return (numRows + 7) / 8
}

// BuildNullBitmap packs a []bool into the page's null-bitmap representation:
// bit i (LSB-first within each byte) is set when row i is null.
func BuildNullBitmap(nulls []bool) []byte {
	bm := make([]byte, nullBitmapSize(len(nulls)))
	for i, isNull := range nulls {
		if isNull {
			bm[i/8] |= 1 << uint(i%8)
		}
	}
	return bm
}

// ReadNullBitmap unpacks a page's null bitmap into numRows booleans.
func ReadNullBitmap(bm []byte, numRows int) []bool {
	out := make([]bool, numRows)
	for i := range out {
		if bm[i/8]&(1<<uint(i%8)) != 0 {
			out[i] = true
		}
	}
	return out
}

// Build assembles a complete page (header || null_bitmap || payload || crc32)
// from already-encoded column bytes. It attempts compression when hint
// requests it, falling back to identity if the compressed form would not be
// smaller than the input, per spec §4.2.
func Build(encoded []byte, numRows int, enc schema.EncodingHint, hint schema.CompressionHint, nulls []byte) ([]byte, error) {
	if numRows > MaxRows {
		return nil, errs.NewInvalidArgument("page: num_rows exceeds 1024")
	}

	payload := encoded
	flags := uint8(0)
	if nulls != nil {
		flags |= flagHasNulls
	}

	if hint != schema.CompressionNone {
		codec, err := compress.CreateCodec(hint)
		if err != nil {
			return nil, err
		}

		compressed, err := codec.Compress(encoded)
		if err != nil {
			return nil, err
		}

		if len(compressed) < len(encoded) {
			payload = compressed
			flags |= flagCompressed
		}
	}

	header := Header{
		NumRows:          uint32(numRows), //nolint:gosec
		UncompressedSize: uint32(len(encoded)), //nolint:gosec
		CompressedSize:   uint32(len(payload)), //nolint:gosec
		Flags:            flags,
		Encoding:         enc,
	}

	buf := make([]byte, 0, HeaderSize+len(nulls)+len(payload)+4)
	buf = append(buf, header.Bytes()...)
	buf = append(buf, nulls...)
	buf = append(buf, payload...)

	sum := crc32.ChecksumIEEE(buf)
	crcBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcBytes, sum)
	buf = append(buf, crcBytes...)

	return buf, nil
}

// Parsed is a fully validated, decompressed page ready for codec decoding.
type Parsed struct {
	Header  Header
	Nulls   []bool // nil if the page has no nulls
	Payload []byte // decompressed encoded bytes
}

// Parse validates the CRC, decompresses the payload and unpacks the null
// bitmap of a single page. segmentID/column/pageIndex annotate any
// CorruptData error the page raises (CRC mismatch, truncation, inconsistent
// lengths); column also annotates decode errors.
func Parse(data []byte, segmentID string, column, pageIndex int) (Parsed, error) {
	if len(data) < HeaderSize+4 {
		return Parsed{}, errs.NewCorruptData(segmentID, column, pageIndex, "page shorter than header+crc")
	}

	stored := binary.LittleEndian.Uint32(data[len(data)-4:])
	body := data[:len(data)-4]

	if crc32.ChecksumIEEE(body) != stored {
		return Parsed{}, errs.NewCorruptData(segmentID, column, pageIndex, "crc32 mismatch")
	}

	header, err := ParseHeader(body)
	if err != nil {
		return Parsed{}, errs.NewCorruptData(segmentID, column, pageIndex, "malformed page header")
	}

	rest := body[HeaderSize:]

	var nulls []bool
	if header.HasNulls() {
		bmSize := nullBitmapSize(int(header.NumRows))
		if len(rest) < bmSize {
			return Parsed{}, errs.NewCorruptData(segmentID, column, pageIndex, "null bitmap truncated")
		}
		nulls = ReadNullBitmap(rest[:bmSize], int(header.NumRows))
		rest = rest[bmSize:]
	}

	if uint32(len(rest)) != header.CompressedSize { //nolint:gosec
		return Parsed{}, errs.NewCorruptData(segmentID, column, pageIndex, "payload length inconsistent with header")
	}

	payload := rest
	if header.Compressed() {
		codec := compress.NewLZ4Compressor()
		decompressed, err := codec.Decompress(payload)
		if err != nil {
			return Parsed{}, errs.NewDecode(column, "lz4 decompression failed: "+err.Error())
		}
		payload = decompressed
	}

	if uint32(len(payload)) != header.UncompressedSize { //nolint:gosec
		return Parsed{}, errs.NewDecode(column, "decompressed size mismatch")
	}

	return Parsed{Header: header, Nulls: nulls, Payload: payload}, nil
}
