package colindex

import (
	"encoding/binary"

	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/value"
)

const (
	zoneFlagHasNull = 1 << 0
	zoneFlagAllNull = 1 << 1
)

// ZoneMapEntry records the value range of one page for one column, letting
// a reader skip pages that cannot satisfy a predicate without decoding
// them.
type ZoneMapEntry struct {
	HasNull bool
	AllNull bool
	Min     value.Value
	Max     value.Value
}

// ZoneMapIndex is one ZoneMapEntry per page, in page order.
type ZoneMapIndex struct {
	Entries []ZoneMapEntry
}

// Add appends the zone map entry for the next page.
func (idx *ZoneMapIndex) Add(e ZoneMapEntry) {
	idx.Entries = append(idx.Entries, e)
}

// MayMatch reports whether a page's value range could contain a value
// equal to target. A false return means the page can be skipped entirely.
func (e ZoneMapEntry) MayMatch(target value.Value) bool {
	if e.AllNull {
		return target.IsNull()
	}
	if target.IsNull() {
		return e.HasNull
	}
	return target.Compare(e.Min) >= 0 && target.Compare(e.Max) <= 0
}

// Bytes serializes the zone map for typ-typed values: one flags byte per
// entry, followed by Min and Max (each Plain-encoded as a single value)
// when the page is not all-null.
func (idx *ZoneMapIndex) Bytes(typ value.FieldType) ([]byte, error) {
	codec := encoding.PlainCodec{}
	buf := make([]byte, 0, len(idx.Entries)*9)

	for _, e := range idx.Entries {
		var flags byte
		if e.HasNull {
			flags |= zoneFlagHasNull
		}
		if e.AllNull {
			flags |= zoneFlagAllNull
		}
		buf = append(buf, flags)

		if e.AllNull {
			continue
		}

		minBytes, err := codec.Encode([]value.Value{e.Min}, typ)
		if err != nil {
			return nil, err
		}
		maxBytes, err := codec.Encode([]value.Value{e.Max}, typ)
		if err != nil {
			return nil, err
		}
		buf = append(buf, minBytes...)
		buf = append(buf, maxBytes...)
	}

	return buf, nil
}

// ParseZoneMapIndex parses numPages zone map entries for typ-typed values.
func ParseZoneMapIndex(data []byte, typ value.FieldType, numPages int) (*ZoneMapIndex, error) {
	codec := encoding.PlainCodec{}
	idx := &ZoneMapIndex{Entries: make([]ZoneMapEntry, 0, numPages)}
	offset := 0

	for i := 0; i < numPages; i++ {
		if offset >= len(data) {
			return nil, errs.NewDecode(-1, "zonemap: truncated flags byte")
		}
		flags := data[offset]
		offset++

		entry := ZoneMapEntry{
			HasNull: flags&zoneFlagHasNull != 0,
			AllNull: flags&zoneFlagAllNull != 0,
		}
		if entry.AllNull {
			idx.Entries = append(idx.Entries, entry)
			continue
		}

		minVal, n, err := decodeOneValue(data, offset, typ, codec)
		if err != nil {
			return nil, err
		}
		offset += n
		maxVal, n, err := decodeOneValue(data, offset, typ, codec)
		if err != nil {
			return nil, err
		}
		offset += n

		entry.Min = minVal
		entry.Max = maxVal
		idx.Entries = append(idx.Entries, entry)
	}

	return idx, nil
}

func decodeOneValue(data []byte, offset int, typ value.FieldType, codec encoding.PlainCodec) (value.Value, int, error) {
	if typ == value.TypeBytes {
		if offset+4 > len(data) {
			return value.Value{}, 0, errs.NewDecode(-1, "zonemap: truncated bytes length prefix")
		}
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		end := offset + 4 + length
		if end > len(data) {
			return value.Value{}, 0, errs.NewDecode(-1, "zonemap: truncated bytes payload")
		}
		vals, err := codec.Decode(data[offset:end], 1, typ)
		if err != nil {
			return value.Value{}, 0, err
		}
		return vals[0], end - offset, nil
	}

	width := typ.Width()
	end := offset + width
	if end > len(data) {
		return value.Value{}, 0, errs.NewDecode(-1, "zonemap: truncated fixed-width value")
	}
	vals, err := codec.Decode(data[offset:end], 1, typ)
	if err != nil {
		return value.Value{}, 0, err
	}
	return vals[0], width, nil
}
