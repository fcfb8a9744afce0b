package encoding

import (
	"math"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// PlainCodec implements spec §4.1's Plain encoding: fixed-width values are
// packed little-endian back to back; variable-length bytes values are each
// prefixed with a 4-byte length. Nulls are never encoded here — the page's
// null bitmap carries that information, so PlainCodec only ever sees the
// non-null values for a page.
type PlainCodec struct{}

var _ Codec = PlainCodec{}

func (PlainCodec) Kind() schema.EncodingHint { return schema.EncodingPlain }

func (PlainCodec) Encode(values []value.Value, typ value.FieldType) ([]byte, error) {
	values = nonNull(values)
	engine := endian.GetLittleEndianEngine()

	if typ == value.TypeBytes {
		buf := make([]byte, 0, len(values)*8)
		for _, v := range values {
			b := v.AsBytes()
			buf = engine.AppendUint32(buf, uint32(len(b))) //nolint:gosec
			buf = append(buf, b...)
		}
		return buf, nil
	}

	width := typ.Width()
	buf := make([]byte, len(values)*width)
	for i, v := range values {
		putFixed(buf[i*width:(i+1)*width], v, typ, engine)
	}

	return buf, nil
}

func (PlainCodec) Decode(data []byte, count int, typ value.FieldType) ([]value.Value, error) {
	engine := endian.GetLittleEndianEngine()
	out := make([]value.Value, 0, count)

	if typ == value.TypeBytes {
		offset := 0
		for i := 0; i < count; i++ {
			if offset+4 > len(data) {
				return nil, errs.NewDecode(-1, "plain: truncated length prefix")
			}
			length := int(engine.Uint32(data[offset : offset+4]))
			offset += 4
			if offset+length > len(data) {
				return nil, errs.NewDecode(-1, "plain: truncated bytes payload")
			}
			out = append(out, value.Bytes(append([]byte(nil), data[offset:offset+length]...)))
			offset += length
		}
		return out, nil
	}

	width := typ.Width()
	if width == 0 {
		return nil, errs.NewDecode(-1, "plain: unknown fixed width for type")
	}
	if len(data) < count*width {
		return nil, errs.NewDecode(-1, "plain: truncated fixed-width payload")
	}

	for i := 0; i < count; i++ {
		out = append(out, readFixed(data[i*width:(i+1)*width], typ, engine))
	}

	return out, nil
}

func putFixed(dst []byte, v value.Value, typ value.FieldType, engine endian.EndianEngine) {
	switch typ {
	case value.TypeInt8:
		dst[0] = byte(v.AsInt64())
	case value.TypeUint8:
		dst[0] = byte(v.AsUint64())
	case value.TypeBool:
		if v.AsBool() {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case value.TypeInt16:
		engine.PutUint16(dst, uint16(v.AsInt64()))
	case value.TypeUint16:
		engine.PutUint16(dst, uint16(v.AsUint64()))
	case value.TypeInt32, value.TypeDate:
		engine.PutUint32(dst, uint32(v.AsInt64()))
	case value.TypeUint32:
		engine.PutUint32(dst, uint32(v.AsUint64()))
	case value.TypeFloat32:
		engine.PutUint32(dst, math.Float32bits(float32(v.AsFloat64())))
	case value.TypeInt64, value.TypeDecimal, value.TypeDatetime:
		engine.PutUint64(dst, uint64(v.AsInt64()))
	case value.TypeUint64:
		engine.PutUint64(dst, v.AsUint64())
	case value.TypeFloat64:
		engine.PutUint64(dst, math.Float64bits(v.AsFloat64()))
	}
}

func readFixed(src []byte, typ value.FieldType, engine endian.EndianEngine) value.Value {
	switch typ {
	case value.TypeInt8:
		return value.Int8(int8(src[0]))
	case value.TypeUint8:
		return value.Uint8(src[0])
	case value.TypeBool:
		return value.Bool(src[0] != 0)
	case value.TypeInt16:
		return value.Int16(int16(engine.Uint16(src)))
	case value.TypeUint16:
		return value.Uint16(engine.Uint16(src))
	case value.TypeInt32:
		return value.Int32(int32(engine.Uint32(src)))
	case value.TypeDate:
		return value.Date(int32(engine.Uint32(src)))
	case value.TypeUint32:
		return value.Uint32(engine.Uint32(src))
	case value.TypeFloat32:
		return value.Float32(math.Float32frombits(engine.Uint32(src)))
	case value.TypeInt64:
		return value.Int64(int64(engine.Uint64(src)))
	case value.TypeDecimal:
		return value.Decimal(int64(engine.Uint64(src)))
	case value.TypeDatetime:
		return value.Datetime(int64(engine.Uint64(src)))
	case value.TypeUint64:
		return value.Uint64(engine.Uint64(src))
	case value.TypeFloat64:
		return value.Float64(math.Float64frombits(engine.Uint64(src)))
	default:
		return value.Null()
	}
}
