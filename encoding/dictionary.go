package encoding

import (
	"encoding/binary"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/internal/bitpack"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// MaxDictionaryCardinality is the spec §4.1 ceiling (2^16) past which the
// column writer must fall back to Plain.
const MaxDictionaryCardinality = 1 << 16

// DictionaryCodec implements spec §4.1's Dictionary encoding: a
// deduplicated value table in first-occurrence order, Plain-encoded after a
// uvarint entry count, followed by one bit-width byte and then a stream of
// bit-packed codes (ceil(log2(dict_size)) bits each). The two-pass build
// (distinct table, then codes) mirrors the teacher's tag encoder's
// build-a-table-then-emit-codes shape, generalized from tag strings to
// arbitrary column values.
type DictionaryCodec struct{}

var _ Codec = DictionaryCodec{}

func (DictionaryCodec) Kind() schema.EncodingHint { return schema.EncodingDictionary }

// dictKey turns a Value into a comparable map key. Only used internally by
// the dictionary builder.
func dictKey(v value.Value, typ value.FieldType) string {
	if typ == value.TypeBytes {
		return v.AsString()
	}
	// Fixed-width types: reuse Plain's own byte layout as the key so that
	// equal values always collide, regardless of type.
	buf := make([]byte, typ.Width())
	putFixed(buf, v, typ, endian.GetLittleEndianEngine())
	return string(buf)
}

func (DictionaryCodec) Encode(values []value.Value, typ value.FieldType) ([]byte, error) {
	values = nonNull(values)

	dict := make([]value.Value, 0, 64)
	codes := make([]uint64, len(values))
	index := make(map[string]uint64, 64)

	for i, v := range values {
		key := dictKey(v, typ)
		code, ok := index[key]
		if !ok {
			if len(dict) >= MaxDictionaryCardinality {
				return nil, errs.NewResourceExhausted("dictionary: cardinality exceeds 2^16")
			}
			code = uint64(len(dict))
			index[key] = code
			dict = append(dict, v)
		}
		codes[i] = code
	}

	plainCodec := PlainCodec{}
	dictBytes, err := plainCodec.Encode(dict, typ)
	if err != nil {
		return nil, err
	}

	bitWidth := bitpack.BitWidth(uint64(maxUint64(codes)))

	buf := make([]byte, 0, 8+len(dictBytes)+len(codes))
	buf = binary.AppendUvarint(buf, uint64(len(dict)))
	buf = append(buf, dictBytes...)
	buf = append(buf, byte(bitWidth)) //nolint:gosec
	buf = append(buf, bitpack.Pack(codes, bitWidth)...)

	return buf, nil
}

func maxUint64(vs []uint64) uint64 {
	var m uint64
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

func (DictionaryCodec) Decode(data []byte, count int, typ value.FieldType) ([]value.Value, error) {
	dictSize, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errs.NewDecode(-1, "dictionary: malformed dict-size varint")
	}
	offset := n

	plainCodec := PlainCodec{}

	var dict []value.Value
	var err error
	if typ == value.TypeBytes {
		// Bytes entries are self-delimiting (each carries its own length
		// prefix), so decode them one at a time to find where the
		// dictionary ends.
		dict, offset, err = decodePlainBytesPrefix(data, offset, int(dictSize))
		if err != nil {
			return nil, err
		}
	} else {
		width := typ.Width()
		end := offset + width*int(dictSize)
		if end > len(data) {
			return nil, errs.NewDecode(-1, "dictionary: truncated dictionary payload")
		}
		dict, err = plainCodec.Decode(data[offset:end], int(dictSize), typ)
		if err != nil {
			return nil, err
		}
		offset = end
	}

	if offset >= len(data) {
		return nil, errs.NewDecode(-1, "dictionary: missing code bit-width byte")
	}
	bitWidth := int(data[offset])
	offset++

	packedLen := bitpack.ByteLen(count, bitWidth)
	if offset+packedLen > len(data) {
		return nil, errs.NewDecode(-1, "dictionary: truncated code stream")
	}
	codes := bitpack.Unpack(data[offset:offset+packedLen], count, bitWidth)

	out := make([]value.Value, count)
	for i, c := range codes {
		if int(c) >= len(dict) {
			return nil, errs.NewDecode(-1, "dictionary: code out of range")
		}
		out[i] = dict[c]
	}

	return out, nil
}

// decodePlainBytesPrefix decodes dictSize length-prefixed bytes entries
// starting at offset, returning the values and the offset just past them.
func decodePlainBytesPrefix(data []byte, offset, dictSize int) ([]value.Value, int, error) {
	engine := endian.GetLittleEndianEngine()
	out := make([]value.Value, 0, dictSize)
	for i := 0; i < dictSize; i++ {
		if offset+4 > len(data) {
			return nil, 0, errs.NewDecode(-1, "dictionary: truncated dictionary length prefix")
		}
		length := int(engine.Uint32(data[offset : offset+4]))
		offset += 4
		if offset+length > len(data) {
			return nil, 0, errs.NewDecode(-1, "dictionary: truncated dictionary bytes entry")
		}
		out = append(out, value.Bytes(append([]byte(nil), data[offset:offset+length]...)))
		offset += length
	}
	return out, offset, nil
}
