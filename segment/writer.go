package segment

import (
	"github.com/duskcore/olapcore/colindex"
	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/internal/options"
	"github.com/duskcore/olapcore/internal/pool"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// assemblyPool supplies the growable buffer Finalize assembles a segment's
// bytes into, reused across segments via internal/pool's ByteBufferPool
// rather than allocating fresh on every finalize.
var assemblyPool = pool.NewByteBufferPool(pool.SegmentBufferDefaultSize, pool.SegmentBufferMaxThreshold)

// WriterOption configures a Writer using the generic functional-options
// pattern in internal/options, generalized from per-encoder config to a
// per-segment one.
type WriterOption = options.Option[*Writer]

// WithDefaultCompression overrides the compression hint used for any
// column whose schema leaves Compression unset.
func WithDefaultCompression(hint schema.CompressionHint) WriterOption {
	return options.NoError[*Writer](func(w *Writer) {
		w.defaultCompression = hint
	})
}

// Writer builds a single Segment V2 file for one rowset's worth of rows
// conforming to one TabletSchema.
//
// A Writer is not thread-safe and not reusable: after Finalize, a new
// Writer must be created for further writes.
type Writer struct {
	schema *schema.TabletSchema
	cols   []*columnWriter

	defaultCompression schema.CompressionHint

	rowCount  int64
	shortKey  colindex.ShortKeyIndex
	finalized bool
}

// NewWriter creates a Writer for sch, applying any WriterOptions.
func NewWriter(sch *schema.TabletSchema, opts ...WriterOption) (*Writer, error) {
	if sch == nil {
		return nil, errs.NewInvalidArgument("segment: nil schema")
	}

	w := &Writer{schema: sch}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	w.cols = make([]*columnWriter, len(sch.Columns))
	for i, col := range sch.Columns {
		if col.Compression == schema.CompressionNone && w.defaultCompression != schema.CompressionNone {
			col.Compression = w.defaultCompression
		}
		w.cols[i] = newColumnWriter(col, i)
	}

	return w, nil
}

// AddRow appends one row. values must have exactly len(schema.Columns)
// entries, in column order.
func (w *Writer) AddRow(values []value.Value) error {
	if w.finalized {
		return errs.NewInvalidArgument("segment: writer already finalized")
	}
	if len(values) != len(w.cols) {
		return errs.NewSchemaMismatch("segment.AddRow", len(w.cols), len(values))
	}

	if w.schema.KeysType != schema.KeysDuplicate && w.schema.ShortKeyColumns > 0 &&
		w.rowCount%colindex.ShortKeyInterval == 0 {
		prefix, err := shortKeyPrefix(values, w.schema)
		if err != nil {
			return err
		}
		w.shortKey.Add(w.rowCount, prefix)
	}

	for i, v := range values {
		if err := w.cols[i].addValue(v); err != nil {
			return err
		}
	}

	w.rowCount++
	return nil
}

// shortKeyPrefix concatenates the Plain-encoded bytes of the leading
// sch.ShortKeyColumns key columns, truncated to
// colindex.MaxShortKeyPrefixBytes.
func shortKeyPrefix(values []value.Value, sch *schema.TabletSchema) ([]byte, error) {
	codec := encoding.PlainCodec{}
	buf := make([]byte, 0, colindex.MaxShortKeyPrefixBytes)

	for i := 0; i < sch.ShortKeyColumns && i < len(values); i++ {
		enc, err := codec.Encode([]value.Value{values[i]}, sch.Columns[i].Type)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
		if len(buf) >= colindex.MaxShortKeyPrefixBytes {
			break
		}
	}

	if len(buf) > colindex.MaxShortKeyPrefixBytes {
		buf = buf[:colindex.MaxShortKeyPrefixBytes]
	}
	return buf, nil
}

// Finalize seals any trailing partial pages and assembles the complete
// Segment V2 file, per spec §4: magic+version header, data region, index
// region, then footer.
func (w *Writer) Finalize() ([]byte, error) {
	if w.finalized {
		return nil, errs.NewInvalidArgument("segment: writer already finalized")
	}
	w.finalized = true

	engine := endian.GetLittleEndianEngine()

	for _, cw := range w.cols {
		if err := cw.sealPage(); err != nil {
			return nil, err
		}
	}

	bb := assemblyPool.Get()
	defer assemblyPool.Put(bb)

	bb.MustWrite(magic[:])
	bb.MustWrite([]byte{byte(Version)})

	descriptors := make([]ColumnDescriptor, len(w.cols))

	// Data region: every column's sealed pages, building the ordinal index
	// as each page's absolute file offset becomes known.
	ordinals := make([]colindex.OrdinalIndex, len(w.cols))
	for i, cw := range w.cols {
		for _, p := range cw.sealed {
			offset := uint32(bb.Len()) //nolint:gosec
			bb.MustWrite(p.bytes)
			ordinals[i].Add(p.firstRowID, offset, uint32(len(p.bytes))) //nolint:gosec
		}
		// Encoding here is the column's nominal choice, not a per-page
		// guarantee: an individual page may have fallen back to Plain, and
		// a reader resolves each page's actual codec from its own header.
		descriptors[i].Encoding = cw.resolvedEncoding
		descriptors[i].Compression = cw.col.Compression
		descriptors[i].PageCount = uint32(len(cw.sealed)) //nolint:gosec
	}

	// Index region: per column, ordinal + zone map + bloom, each a TLV
	// block so the region can be scanned independently of the footer.
	for i, cw := range w.cols {
		ordBytes := ordinals[i].Bytes(engine)
		descriptors[i].OrdinalOffset, descriptors[i].OrdinalLength = uint32(bb.Len()), uint32(len(ordBytes)) //nolint:gosec
		appendTLV(bb, tagOrdinal, ordBytes)

		zmBytes, err := cw.zoneMap.Bytes(cw.col.Type)
		if err != nil {
			return nil, err
		}
		descriptors[i].ZoneMapOffset, descriptors[i].ZoneMapLength = uint32(bb.Len()), uint32(len(zmBytes)) //nolint:gosec
		appendTLV(bb, tagZoneMap, zmBytes)

		bloomBytes := cw.bloomAcc.Finalize().Bytes()
		descriptors[i].BloomOffset, descriptors[i].BloomLength = uint32(bb.Len()), uint32(len(bloomBytes)) //nolint:gosec
		appendTLV(bb, tagBloom, bloomBytes)
	}

	footer := Footer{
		SchemaHash: w.schema.Hash(),
		RowCount:   uint64(w.rowCount), //nolint:gosec
		Columns:    descriptors,
	}

	if w.schema.KeysType != schema.KeysDuplicate && w.schema.ShortKeyColumns > 0 {
		skBytes := w.shortKey.Bytes(engine)
		footer.ShortKeyOffset, footer.ShortKeyLength = uint32(bb.Len()), uint32(len(skBytes)) //nolint:gosec
		appendTLV(bb, tagShortKey, skBytes)
	}

	bb.MustWrite(footer.Bytes(engine))

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

// appendTLV appends a tag byte, a 4-byte little-endian length and payload
// to bb.
func appendTLV(bb *pool.ByteBuffer, tag byte, payload []byte) {
	bb.MustWrite([]byte{tag})
	bb.MustWrite(endian.GetLittleEndianEngine().AppendUint32(nil, uint32(len(payload)))) //nolint:gosec
	bb.MustWrite(payload)
}
