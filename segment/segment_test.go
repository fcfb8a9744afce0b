package segment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

func testSchema(t *testing.T) *schema.TabletSchema {
	t.Helper()
	sch, err := schema.New([]schema.ColumnSchema{
		{Name: "id", Type: value.TypeInt64, IsKey: true},
		{Name: "region", Type: value.TypeBytes, IsKey: true},
		{Name: "amount", Type: value.TypeFloat64},
		{Name: "note", Type: value.TypeBytes, Nullable: true},
	}, schema.KeysUnique)
	require.NoError(t, err)
	return sch
}

func buildRows(n int) [][]value.Value {
	regions := []string{"us-east", "us-west", "eu-west"}
	rows := make([][]value.Value, n)
	for i := 0; i < n; i++ {
		var note value.Value
		if i%7 == 0 {
			note = value.Null()
		} else {
			note = value.String("note")
		}
		rows[i] = []value.Value{
			value.Int64(int64(i)),
			value.String(regions[i%len(regions)]),
			value.Float64(float64(i) * 1.5),
			note,
		}
	}
	return rows
}

func TestWriterReaderRoundTrip(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)

	rows := buildRows(3000)
	for _, row := range rows {
		require.NoError(t, w.AddRow(row))
	}

	data, err := w.Finalize()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	r, err := Open("seg-1", data, sch)
	require.NoError(t, err)
	require.Equal(t, int64(len(rows)), r.RowCount())

	ids, err := r.ReadColumn(0)
	require.NoError(t, err)
	require.Len(t, ids, len(rows))
	for i, v := range ids {
		require.Equal(t, 0, v.Compare(value.Int64(int64(i))))
	}

	amounts, err := r.ReadColumn(2)
	require.NoError(t, err)
	for i, v := range amounts {
		require.Equal(t, 0, v.Compare(value.Float64(float64(i)*1.5)))
	}

	notes, err := r.ReadColumn(3)
	require.NoError(t, err)
	for i, v := range notes {
		if i%7 == 0 {
			require.True(t, v.IsNull())
		} else {
			require.Equal(t, "note", v.AsString())
		}
	}
}

func TestWriterRejectsSchemaMismatchRowWidth(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)

	err = w.AddRow([]value.Value{value.Int64(1)})
	require.Error(t, err)
}

func TestOpenRejectsForeignSchema(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)
	for _, row := range buildRows(10) {
		require.NoError(t, w.AddRow(row))
	}
	data, err := w.Finalize()
	require.NoError(t, err)

	other, err := schema.New([]schema.ColumnSchema{
		{Name: "different", Type: value.TypeInt32},
	}, schema.KeysDuplicate)
	require.NoError(t, err)

	_, err = Open("seg-1", data, other)
	require.Error(t, err)
}

func TestReadColumnFilteredSkipsNonMatchingPages(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)

	for _, row := range buildRows(3000) {
		require.NoError(t, w.AddRow(row))
	}
	data, err := w.Finalize()
	require.NoError(t, err)

	r, err := Open("seg-1", data, sch)
	require.NoError(t, err)

	values, err := r.ReadColumnFiltered(0, value.TypeInt64, value.Int64(5000000))
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestColumnMayContainBloomLookup(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)
	for _, row := range buildRows(500) {
		require.NoError(t, w.AddRow(row))
	}
	data, err := w.Finalize()
	require.NoError(t, err)

	r, err := Open("seg-1", data, sch)
	require.NoError(t, err)

	ok, err := r.ColumnMayContain(0, value.Int64(42))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ColumnMayContain(0, value.Int64(-1))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestShortKeyIndexBuilt(t *testing.T) {
	sch := testSchema(t)
	w, err := NewWriter(sch)
	require.NoError(t, err)
	for _, row := range buildRows(5000) {
		require.NoError(t, w.AddRow(row))
	}
	data, err := w.Finalize()
	require.NoError(t, err)

	r, err := Open("seg-1", data, sch)
	require.NoError(t, err)

	sk, err := r.ShortKeyIndex()
	require.NoError(t, err)
	require.NotNil(t, sk)
	require.Greater(t, len(sk.Entries), 1)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	_, err := Open("bad", []byte("not a segment file at all"), nil)
	require.Error(t, err)
}
