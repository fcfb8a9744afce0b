package segment

import (
	"errors"

	"github.com/duskcore/olapcore/bloom"
	"github.com/duskcore/olapcore/colindex"
	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/page"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

type sealedPage struct {
	firstRowID int64
	bytes      []byte
}

// columnWriter buffers one column's values, sealing a page every
// page.MaxRows rows (or at Finalize for the trailing partial page) and
// accumulating that column's zone map and bloom filter as it goes.
type columnWriter struct {
	col   schema.ColumnSchema
	index int

	buffered []value.Value
	anyNull  bool
	allNull  bool
	bufMin   value.Value
	bufMax   value.Value
	haveMinMax bool

	sealed []sealedPage
	rowID  int64

	resolvedEncoding schema.EncodingHint
	encodingLocked   bool

	// dictSeen tracks distinct values across the whole column, not just the
	// page currently buffering: Dictionary's cardinality ceiling is a
	// column-wide limit (spec §4.1), and a page on its own, capped at
	// page.MaxRows rows, can never reach it. Once the running count would
	// exceed encoding.MaxDictionaryCardinality, dictOverflowed latches true
	// and every later page falls back to Plain; dictSeen is then dropped,
	// since it has nothing left to track.
	dictSeen       map[string]struct{}
	dictOverflowed bool

	zoneMap  colindex.ZoneMapIndex
	bloomAcc *bloom.Accumulator
}

func newColumnWriter(col schema.ColumnSchema, index int) *columnWriter {
	return &columnWriter{
		col:      col,
		index:    index,
		bloomAcc: bloom.NewAccumulator(),
		allNull:  true,
	}
}

func (cw *columnWriter) addValue(v value.Value) error {
	cw.buffered = append(cw.buffered, v)
	cw.rowID++

	if v.IsNull() {
		cw.anyNull = true
	} else {
		cw.allNull = false
		cw.bloomAcc.Add(bloomKey(v))
		cw.trackDictCardinality(v)
		if !cw.haveMinMax {
			cw.bufMin, cw.bufMax = v, v
			cw.haveMinMax = true
		} else {
			if v.Compare(cw.bufMin) < 0 {
				cw.bufMin = v
			}
			if v.Compare(cw.bufMax) > 0 {
				cw.bufMax = v
			}
		}
	}

	if len(cw.buffered) == page.MaxRows {
		return cw.sealPage()
	}
	return nil
}

// bloomKey produces the byte key the bloom filter hashes for a value,
// reusing Plain's single-value byte layout so inserts (here) and lookups
// (Reader.ColumnMayContain) always agree.
func bloomKey(v value.Value) []byte {
	b, _ := encoding.PlainCodec{}.Encode([]value.Value{v}, v.Type())
	return b
}

// trackDictCardinality updates the column-wide distinct-value count used to
// decide when Dictionary encoding must give way to Plain. It is a no-op
// once the column has already overflowed.
func (cw *columnWriter) trackDictCardinality(v value.Value) {
	if cw.dictOverflowed {
		return
	}
	if cw.dictSeen == nil {
		cw.dictSeen = make(map[string]struct{}, 64)
	}

	key := string(bloomKey(v))
	if _, ok := cw.dictSeen[key]; ok {
		return
	}
	if len(cw.dictSeen) >= encoding.MaxDictionaryCardinality {
		cw.dictOverflowed = true
		cw.dictSeen = nil
		return
	}
	cw.dictSeen[key] = struct{}{}
}

// sealPage encodes the current buffer. A column settles on its auto-selected
// encoding (or the schema's explicit hint) at its first page and reuses that
// choice for later pages, but once the column's running distinct-value
// count overflows Dictionary's cardinality ceiling, every page sealed from
// then on falls back to Plain instead. The page header records whichever
// encoding actually went out, so a column's pages are not required to
// agree with each other or with the column's nominal encoding.
func (cw *columnWriter) sealPage() error {
	if len(cw.buffered) == 0 {
		return nil
	}

	if !cw.encodingLocked {
		hint := cw.col.Encoding
		if hint == schema.EncodingAuto {
			hint = encoding.SelectAuto(cw.col.Type, cw.buffered)
		}
		cw.resolvedEncoding = hint
		cw.encodingLocked = true
	}

	pageEncoding := cw.resolvedEncoding
	if pageEncoding == schema.EncodingDictionary && cw.dictOverflowed {
		pageEncoding = schema.EncodingPlain
	}

	codec, err := encoding.ForHint(pageEncoding)
	if err != nil {
		return err
	}

	encoded, err := codec.Encode(cw.buffered, cw.col.Type)
	if errors.Is(err, errs.ErrResourceExhausted) {
		pageEncoding = schema.EncodingPlain
		codec = encoding.PlainCodec{}
		encoded, err = codec.Encode(cw.buffered, cw.col.Type)
	}
	if err != nil {
		return err
	}

	var nulls []byte
	if cw.anyNull {
		flags := make([]bool, len(cw.buffered))
		for i, v := range cw.buffered {
			flags[i] = v.IsNull()
		}
		nulls = page.BuildNullBitmap(flags)
	}

	built, err := page.Build(encoded, len(cw.buffered), pageEncoding, cw.col.Compression, nulls)
	if err != nil {
		return err
	}

	firstRowID := cw.rowID - int64(len(cw.buffered))
	cw.sealed = append(cw.sealed, sealedPage{firstRowID: firstRowID, bytes: built})

	entry := colindex.ZoneMapEntry{
		HasNull: cw.anyNull,
		AllNull: cw.allNull,
	}
	if !cw.allNull {
		entry.Min = cw.bufMin
		entry.Max = cw.bufMax
	}
	cw.zoneMap.Add(entry)

	cw.buffered = cw.buffered[:0]
	cw.anyNull = false
	cw.allNull = true
	cw.haveMinMax = false

	return nil
}
