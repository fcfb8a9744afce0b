package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/rowset"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

func testSchema(t *testing.T) *schema.TabletSchema {
	t.Helper()
	sch, err := schema.New([]schema.ColumnSchema{
		{Name: "region", Type: value.TypeBytes, IsKey: true},
		{Name: "ts", Type: value.TypeInt64, IsKey: true},
		{Name: "amount", Type: value.TypeFloat64},
	}, schema.KeysDuplicate)
	require.NoError(t, err)
	return sch
}

func TestCreateDatabaseIdempotent(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
}

func TestCreateDatabaseRejectsConflictingName(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	err := c.CreateDatabase(1, "other")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestCreateTableWithPartitionsPreCreatesTablets(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))

	sch := testSchema(t)
	partition := PartitionInfo{Column: 1, Bounds: []value.Value{value.Int64(100), value.Int64(200)}}
	bucket := BucketSpec{Columns: []int{0}, NumBuckets: 4}

	tbl, err := c.CreateTableWithPartitions(1, 10, "events", sch, partition, bucket, 2)
	require.NoError(t, err)

	// 3 partitions * 4 buckets * 2 replicas
	for i := 0; i < 3*4*2; i++ {
		_, err := tbl.Tablet(uint64(i))
		require.NoError(t, err)
	}
	_, err = tbl.Tablet(uint64(3 * 4 * 2))
	require.Error(t, err)
}

func TestCreateTableWithPartitionsRejectsDuplicateID(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	sch := testSchema(t)
	partition := PartitionInfo{Column: 1, Bounds: nil}
	bucket := BucketSpec{Columns: []int{0}, NumBuckets: 1}

	_, err := c.CreateTableWithPartitions(1, 10, "events", sch, partition, bucket, 1)
	require.NoError(t, err)

	_, err = c.CreateTableWithPartitions(1, 10, "events-again", sch, partition, bucket, 1)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestTabletForRowIsDeterministic(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	sch := testSchema(t)
	partition := PartitionInfo{Column: 1, Bounds: []value.Value{value.Int64(100)}}
	bucket := BucketSpec{Columns: []int{0}, NumBuckets: 8}

	tbl, err := c.CreateTableWithPartitions(1, 10, "events", sch, partition, bucket, 1)
	require.NoError(t, err)

	row := []value.Value{value.String("us-east"), value.Int64(50), value.Float64(1.0)}
	id1, err := tbl.TabletForRow(row)
	require.NoError(t, err)
	id2, err := tbl.TabletForRow(row)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestTabletForRowRespectsPartitionBoundary(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	sch := testSchema(t)
	partition := PartitionInfo{Column: 1, Bounds: []value.Value{value.Int64(100)}}
	bucket := BucketSpec{Columns: []int{0}, NumBuckets: 1}

	tbl, err := c.CreateTableWithPartitions(1, 10, "events", sch, partition, bucket, 1)
	require.NoError(t, err)

	low := []value.Value{value.String("us-east"), value.Int64(50), value.Float64(1.0)}
	high := []value.Value{value.String("us-east"), value.Int64(150), value.Float64(1.0)}

	idLow, err := tbl.TabletForRow(low)
	require.NoError(t, err)
	idHigh, err := tbl.TabletForRow(high)
	require.NoError(t, err)
	require.NotEqual(t, idLow, idHigh)
}

func TestPublishRowsetThroughTable(t *testing.T) {
	c := NewCatalog(NewFakeClock(time.Unix(0, 0)))
	require.NoError(t, c.CreateDatabase(1, "analytics"))
	sch := testSchema(t)
	partition := PartitionInfo{Column: 1, Bounds: nil}
	bucket := BucketSpec{Columns: []int{0}, NumBuckets: 1}

	tbl, err := c.CreateTableWithPartitions(1, 10, "events", sch, partition, bucket, 1)
	require.NoError(t, err)

	row := []value.Value{value.String("us-east"), value.Int64(1), value.Float64(1.0)}
	tabletID, err := tbl.TabletForRow(row)
	require.NoError(t, err)

	err = tbl.PublishRowset(tabletID, rowset.Meta{
		ID:          1,
		VersionFrom: 0,
		VersionTo:   1,
		SchemaHash:  sch.Hash(),
		SegmentRefs: []string{"seg-0"},
		State:       rowset.Visible,
	})
	require.NoError(t, err)

	got, err := tbl.Tablet(tabletID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.MaxContinuousVersion())
}

func TestMemBlobStorePutGetDeleteExists(t *testing.T) {
	store := NewMemBlobStore()

	ok, err := store.Exists("a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Put("a", []byte("hello")))
	ok, err = store.Exists("a")
	require.NoError(t, err)
	require.True(t, ok)

	data, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete("a"))
	_, err = store.Get("a")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSegmentBlobPathDeterministicAndDistinct(t *testing.T) {
	p1 := SegmentBlobPath(42, rowset.ID(1), 0)
	p2 := SegmentBlobPath(42, rowset.ID(1), 0)
	require.Equal(t, p1, p2)

	p3 := SegmentBlobPath(42, rowset.ID(2), 0)
	require.NotEqual(t, p1, p3)
}

func TestFakeClockAdvance(t *testing.T) {
	c := NewFakeClock(time.Unix(1000, 0))
	require.Equal(t, time.Unix(1000, 0), c.Now())
	c.Advance(5 * time.Second)
	require.Equal(t, time.Unix(1005, 0), c.Now())
}
