package encoding

import (
	"encoding/binary"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// maxRunLength is 2^31-1, per spec §4.1: the encoder starts a new run once
// the current run has reached this length even if the value hasn't changed.
const maxRunLength = (1 << 31) - 1

// RLECodec implements spec §4.1's RLE encoding for integer and boolean
// columns: a sequence of (run_length varint, value fixed-width) pairs.
// Varint framing uses the standard AppendUvarint/Uvarint idiom via the
// stdlib encoding/binary helpers.
type RLECodec struct{}

var _ Codec = RLECodec{}

func (RLECodec) Kind() schema.EncodingHint { return schema.EncodingRLE }

func (RLECodec) Encode(values []value.Value, typ value.FieldType) ([]byte, error) {
	values = nonNull(values)
	engine := endian.GetLittleEndianEngine()
	width := typ.Width()
	if width == 0 {
		return nil, errs.NewInvalidArgument("rle: unsupported variable-width type")
	}

	buf := make([]byte, 0, len(values)*2)

	i := 0
	for i < len(values) {
		runLen := 1
		cur := values[i]
		for i+runLen < len(values) && runLen < maxRunLength && values[i+runLen].Compare(cur) == 0 {
			runLen++
		}

		buf = binary.AppendUvarint(buf, uint64(runLen))
		fixed := make([]byte, width)
		putFixed(fixed, cur, typ, engine)
		buf = append(buf, fixed...)

		i += runLen
	}

	return buf, nil
}

func (RLECodec) Decode(data []byte, count int, typ value.FieldType) ([]value.Value, error) {
	engine := endian.GetLittleEndianEngine()
	width := typ.Width()
	if width == 0 {
		return nil, errs.NewDecode(-1, "rle: unsupported variable-width type")
	}

	out := make([]value.Value, 0, count)
	offset := 0
	for len(out) < count {
		runLen, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return nil, errs.NewDecode(-1, "rle: malformed run-length varint")
		}
		offset += n

		if offset+width > len(data) {
			return nil, errs.NewDecode(-1, "rle: truncated run value")
		}
		v := readFixed(data[offset:offset+width], typ, engine)
		offset += width

		for k := uint64(0); k < runLen && len(out) < count; k++ {
			out = append(out, v)
		}
	}

	return out, nil
}
