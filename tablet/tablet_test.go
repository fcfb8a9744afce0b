package tablet

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
		{Name: "id", Type: value.TypeInt64, IsKey: true},
		{Name: "amount", Type: value.TypeFloat64},
	}, schema.KeysUnique)
	require.NoError(t, err)
	return sch
}

func TestPublishInsertsAndExtendsGraph(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	err := tb.Publish(rowset.Meta{
		ID:          tb.NextRowsetID(),
		VersionFrom: 0,
		VersionTo:   10,
		SchemaHash:  sch.Hash(),
		SegmentRefs: []string{"seg-1"},
		RowCount:    100,
		State:       rowset.Visible,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), tb.MaxContinuousVersion())
}

func TestPublishRejectsSchemaMismatch(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	err := tb.Publish(rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 10, SchemaHash: 999, State: rowset.Visible})
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestPublishRejectsInvertedRange(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	err := tb.Publish(rowset.Meta{ID: 1, VersionFrom: 10, VersionTo: 5, SchemaHash: sch.Hash(), State: rowset.Visible})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestPublishAcceptsSingleVersionRange(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	err := tb.Publish(rowset.Meta{ID: 1, VersionFrom: 10, VersionTo: 10, SchemaHash: sch.Hash(), State: rowset.Visible})
	require.NoError(t, err)
	require.Equal(t, int64(-1), tb.MaxContinuousVersion(), "a rowset starting at 10 leaves [0,9] uncovered")
}

func TestFreshTabletHasNoMaxContinuousVersion(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))
	require.Equal(t, int64(-1), tb.MaxContinuousVersion())
}

func TestPublishRejectsNonVisibleState(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	err := tb.Publish(rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 10, SchemaHash: sch.Hash(), State: rowset.Stale})
	require.Error(t, err)
}

func TestPublishRejectsDuplicateEdge(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	meta := rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 10, SchemaHash: sch.Hash(), State: rowset.Visible}
	require.NoError(t, tb.Publish(meta))

	meta2 := meta
	meta2.ID = 2
	err := tb.Publish(meta2)
	require.ErrorIs(t, err, errs.ErrDuplicateVersion)
}

func TestMarkStateRemovesEdgeFromGraph(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))

	require.NoError(t, tb.Publish(rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 10, SchemaHash: sch.Hash(), State: rowset.Visible}))
	require.NoError(t, tb.Publish(rowset.Meta{ID: 2, VersionFrom: 10, VersionTo: 20, SchemaHash: sch.Hash(), State: rowset.Visible}))
	require.Equal(t, int64(20), tb.MaxContinuousVersion())

	require.NoError(t, tb.MarkState(2, rowset.Stale))
	require.Equal(t, int64(10), tb.MaxContinuousVersion())

	m, ok := tb.Rowset(2)
	require.True(t, ok)
	require.Equal(t, rowset.Stale, m.State)
}

func TestCaptureConsistentVersionsDelegatesToGraph(t *testing.T) {
	sch := testSchema(t)
	tb := New(1, sch, time.Unix(0, 0))
	require.NoError(t, tb.Publish(rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 10, SchemaHash: sch.Hash(), State: rowset.Visible}))

	ids, err := tb.CaptureConsistentVersions(0, 10)
	require.NoError(t, err)
	require.Equal(t, []rowset.ID{1}, ids)
}

func TestManagerCreatePublishGet(t *testing.T) {
	sch := testSchema(t)
	mgr := NewManager()

	tb, err := mgr.CreateTablet(42, sch, time.Unix(0, 0))
	require.NoError(t, err)

	err = mgr.PublishRowset(42, sch.Hash(), rowset.Meta{
		ID:          tb.NextRowsetID(),
		VersionFrom: 0,
		VersionTo:   5,
		SchemaHash:  sch.Hash(),
		State:       rowset.Visible,
	})
	require.NoError(t, err)

	got, err := mgr.GetTablet(42, sch.Hash())
	require.NoError(t, err)
	require.Equal(t, int64(5), got.MaxContinuousVersion())
}

func TestManagerCreateTabletRejectsDuplicateID(t *testing.T) {
	sch := testSchema(t)
	mgr := NewManager()
	_, err := mgr.CreateTablet(1, sch, time.Unix(0, 0))
	require.NoError(t, err)

	_, err = mgr.CreateTablet(1, sch, time.Unix(0, 0))
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestManagerPublishRowsetUnknownTablet(t *testing.T) {
	mgr := NewManager()
	err := mgr.PublishRowset(999, 0, rowset.Meta{ID: 1, VersionFrom: 0, VersionTo: 1, State: rowset.Visible})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestManagerTabletsAcrossShards(t *testing.T) {
	sch := testSchema(t)
	mgr := NewManager()
	for i := uint64(0); i < 10; i++ {
		_, err := mgr.CreateTablet(i, sch, time.Unix(0, 0))
		require.NoError(t, err)
	}
	require.Len(t, mgr.Tablets(), 10)
}
