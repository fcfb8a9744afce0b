package segment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/page"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// TestDictionaryColumnFallsBackToPlainAfterCardinalityOverflow exercises the
// boundary case where a Dictionary-encoded column accumulates more distinct
// values than encoding.MaxDictionaryCardinality over the course of many
// pages: the pages written before the overflow stay Dictionary-encoded, the
// ones written after fall back to Plain, and a reader decodes both kinds
// correctly off the same column.
func TestDictionaryColumnFallsBackToPlainAfterCardinalityOverflow(t *testing.T) {
	sch, err := schema.New([]schema.ColumnSchema{
		{Name: "tag", Type: value.TypeBytes, Encoding: schema.EncodingDictionary},
	}, schema.KeysDuplicate)
	require.NoError(t, err)

	w, err := NewWriter(sch)
	require.NoError(t, err)

	const rowCount = encoding.MaxDictionaryCardinality + 4000
	for i := 0; i < rowCount; i++ {
		require.NoError(t, w.AddRow([]value.Value{value.String(fmt.Sprintf("tag-%d", i))}))
	}

	cw := w.cols[0]
	require.True(t, cw.dictOverflowed, "column should have detected cardinality overflow")

	data, err := w.Finalize()
	require.NoError(t, err)

	r, err := Open("seg-dict-overflow", data, sch)
	require.NoError(t, err)
	require.Equal(t, int64(rowCount), r.RowCount())

	values, err := r.ReadColumn(0)
	require.NoError(t, err)
	require.Len(t, values, rowCount)
	for i, v := range values {
		require.Equal(t, fmt.Sprintf("tag-%d", i), v.AsString())
	}

	ord, err := r.ordinalIndex(0)
	require.NoError(t, err)

	var sawDictionary, sawPlain bool
	for i, entry := range ord.Entries {
		start := int(entry.PageOffset)
		end := start + int(entry.PageLength)
		parsed, err := page.Parse(r.data[start:end], "seg-dict-overflow", 0, i)
		require.NoError(t, err)

		switch parsed.Header.Encoding {
		case schema.EncodingDictionary:
			sawDictionary = true
		case schema.EncodingPlain:
			sawPlain = true
		}
	}

	require.True(t, sawDictionary, "expected at least one page still encoded as Dictionary")
	require.True(t, sawPlain, "expected at least one page to have fallen back to Plain")
}
