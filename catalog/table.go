package catalog

import (
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/rowset"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/tablet"
	"github.com/duskcore/olapcore/value"
)

// Table is one table's schema, partitioning/bucketing scheme and the
// sharded tablet registry backing it. One tablet exists per
// (partition, bucket, replica) triple, pre-created at table creation, per
// spec §6.2's create_table_with_partitions.
type Table struct {
	ID        uint64
	Name      string
	Schema    *schema.TabletSchema
	Partition PartitionInfo
	Bucket    BucketSpec
	Replicas  int

	tablets *tablet.Manager
}

// tabletID packs a (partition, bucket, replica) triple into the dense,
// collision-free id space [0, numPartitions*numBuckets*replicas).
func (t *Table) tabletID(partitionIdx, bucketIdx, replicaIdx int) uint64 {
	perPartition := t.Bucket.NumBuckets * t.Replicas
	return uint64(partitionIdx*perPartition + bucketIdx*t.Replicas + replicaIdx) //nolint:gosec
}

// TabletForRow routes values to a tablet id via (partition predicate ×
// hash(bucket columns) mod num_buckets), always selecting replica 0: replicas
// are treated as identical copies, and this routing layer has no
// replica-selection policy beyond that.
func (t *Table) TabletForRow(values []value.Value) (uint64, error) {
	if len(values) != len(t.Schema.Columns) {
		return 0, errs.NewSchemaMismatch("catalog.TabletForRow", len(t.Schema.Columns), len(values))
	}
	if t.Partition.Column < 0 || t.Partition.Column >= len(values) {
		return 0, errs.NewInvalidArgument("catalog: partition column index out of range")
	}

	pIdx := t.Partition.partitionIndex(values[t.Partition.Column])
	bIdx, err := bucketIndex(values, t.Schema, t.Bucket)
	if err != nil {
		return 0, err
	}

	return t.tabletID(pIdx, bIdx, 0), nil
}

// Tablet returns the Tablet handle for tabletID, pre-created at table
// creation time.
func (t *Table) Tablet(tabletID uint64) (*tablet.Tablet, error) {
	return t.tablets.GetTablet(tabletID, t.Schema.Hash())
}

// PublishRowset publishes meta to tabletID's tablet.
func (t *Table) PublishRowset(tabletID uint64, meta rowset.Meta) error {
	return t.tablets.PublishRowset(tabletID, t.Schema.Hash(), meta)
}

func (t *Table) tabletCount() int {
	return t.Partition.count() * t.Bucket.NumBuckets * t.Replicas
}
