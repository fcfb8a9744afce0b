package segment

import (
	"github.com/duskcore/olapcore/bloom"
	"github.com/duskcore/olapcore/colindex"
	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/page"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// tlvHeaderSize is the tag(1)+length(4) prefix written by appendTLV.
const tlvHeaderSize = 5

// Reader opens a Segment V2 file for column reads, validating its footer
// and schema digest up front in Open before any column is decoded.
type Reader struct {
	id     string
	data   []byte
	schema *schema.TabletSchema
	footer Footer
	engine endian.EndianEngine
}

// Open validates data's header and footer and checks the embedded schema
// digest against expected. id is used purely to annotate error context.
func Open(id string, data []byte, expected *schema.TabletSchema) (*Reader, error) {
	if len(data) < HeaderSize {
		return nil, errs.NewCorruptData(id, -1, -1, "file shorter than header")
	}
	if string(data[:len(magic)]) != string(magic[:]) {
		return nil, errs.NewCorruptData(id, -1, -1, "bad magic")
	}
	if data[len(magic)] != Version {
		return nil, errs.NewCorruptData(id, -1, -1, "unsupported segment version")
	}

	engine := endian.GetLittleEndianEngine()
	footer, _, err := ParseFooter(data, engine)
	if err != nil {
		return nil, err
	}

	if expected != nil && footer.SchemaHash != expected.Hash() {
		return nil, errs.NewSchemaMismatch("segment.Open", expected.Hash(), footer.SchemaHash)
	}
	if expected != nil && len(footer.Columns) != len(expected.Columns) {
		return nil, errs.NewSchemaMismatch("segment.Open column count", len(expected.Columns), len(footer.Columns))
	}

	return &Reader{id: id, data: data, schema: expected, footer: footer, engine: engine}, nil
}

// RowCount returns the segment's total row count.
func (r *Reader) RowCount() int64 { return int64(r.footer.RowCount) } //nolint:gosec

func (r *Reader) tlvPayload(offset, length uint32) []byte {
	if length == 0 {
		return nil
	}
	start := int(offset) + tlvHeaderSize
	end := start + int(length)
	if end > len(r.data) {
		return nil
	}
	return r.data[start:end]
}

func (r *Reader) ordinalIndex(col int) (*colindex.OrdinalIndex, error) {
	d := r.footer.Columns[col]
	return colindex.ParseOrdinalIndex(r.tlvPayload(d.OrdinalOffset, d.OrdinalLength), r.engine)
}

func (r *Reader) zoneMapIndex(col int, typ value.FieldType) (*colindex.ZoneMapIndex, error) {
	d := r.footer.Columns[col]
	return colindex.ParseZoneMapIndex(r.tlvPayload(d.ZoneMapOffset, d.ZoneMapLength), typ, int(d.PageCount))
}

func (r *Reader) bloomFilter(col int) (*bloom.Filter, error) {
	d := r.footer.Columns[col]
	return bloom.Parse(r.tlvPayload(d.BloomOffset, d.BloomLength))
}

// ShortKeyIndex parses and returns the segment's short-key index, or nil
// if the schema's keys type carries none.
func (r *Reader) ShortKeyIndex() (*colindex.ShortKeyIndex, error) {
	if r.footer.ShortKeyLength == 0 {
		return nil, nil
	}
	return colindex.ParseShortKeyIndex(r.tlvPayload(r.footer.ShortKeyOffset, r.footer.ShortKeyLength), r.engine)
}

// ColumnMayContain reports whether column col's bloom filter indicates key
// might be present. A false return is conclusive; true is a hint only.
func (r *Reader) ColumnMayContain(col int, key value.Value) (bool, error) {
	filter, err := r.bloomFilter(col)
	if err != nil {
		return false, err
	}
	return filter.MayContain(bloomKey(key)), nil
}

// ReadColumn decodes every page of column col in order and returns its
// full set of values.
func (r *Reader) ReadColumn(col int) ([]value.Value, error) {
	return r.readColumnPages(col, nil)
}

// ReadColumnFiltered decodes only the pages whose zone map indicates they
// might contain a value matching target, skipping the rest. Rows from
// skipped pages are omitted from the result entirely (callers needing row
// alignment should use ReadColumn instead).
func (r *Reader) ReadColumnFiltered(col int, typ value.FieldType, target value.Value) ([]value.Value, error) {
	zm, err := r.zoneMapIndex(col, typ)
	if err != nil {
		return nil, err
	}

	keep := make(map[int]bool, len(zm.Entries))
	for i, e := range zm.Entries {
		keep[i] = e.MayMatch(target)
	}
	return r.readColumnPages(col, keep)
}

// readColumnPages decodes column col's pages, skipping any whose index is
// present in keep and false. keep == nil means decode every page.
func (r *Reader) readColumnPages(col int, keep map[int]bool) ([]value.Value, error) {
	if col < 0 || col >= len(r.footer.Columns) {
		return nil, errs.NewInvalidArgument("segment: column index out of range")
	}

	ord, err := r.ordinalIndex(col)
	if err != nil {
		return nil, err
	}

	var typ value.FieldType
	var colName string
	if r.schema != nil {
		typ = r.schema.Columns[col].Type
		colName = r.schema.Columns[col].Name
	}

	var out []value.Value
	for i, entry := range ord.Entries {
		if keep != nil && !keep[i] {
			continue
		}

		start := int(entry.PageOffset)
		end := start + int(entry.PageLength)
		if end > len(r.data) {
			return nil, errs.NewCorruptData(r.id, col, i, "page extends past end of file")
		}

		parsed, err := page.Parse(r.data[start:end], r.id, col, i)
		if err != nil {
			return nil, err
		}

		codec, err := encoding.ForHint(parsed.Header.Encoding)
		if err != nil {
			return nil, err
		}

		numRows := int(parsed.Header.NumRows)
		nonNullCount := numRows
		if parsed.Nulls != nil {
			nonNullCount = 0
			for _, isNull := range parsed.Nulls {
				if !isNull {
					nonNullCount++
				}
			}
		}

		decoded, err := codec.Decode(parsed.Payload, nonNullCount, typ)
		if err != nil {
			return nil, errs.NewDecode(col, colName+": "+err.Error())
		}

		values := make([]value.Value, numRows)
		if parsed.Nulls == nil {
			values = decoded
		} else {
			d := 0
			for j, isNull := range parsed.Nulls {
				if isNull {
					values[j] = value.Null()
				} else {
					values[j] = decoded[d]
					d++
				}
			}
		}

		out = append(out, values...)
	}

	return out, nil
}
