package catalog

import (
	"sort"

	"github.com/duskcore/olapcore/encoding"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/internal/hash"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// PartitionInfo describes range partitioning over a single schema column,
// the conventional partitioning scheme spec §6.3 treats as a pure,
// non-algorithmically-interesting external collaborator.
type PartitionInfo struct {
	Column int           // index of the partitioning column in the table's schema
	Bounds []value.Value // ascending upper bounds; len(Bounds)+1 partitions total
}

// partitionIndex returns the index of the partition v falls into: the
// smallest i such that v < Bounds[i], or len(Bounds) if v is at or past the
// last bound.
func (p PartitionInfo) partitionIndex(v value.Value) int {
	return sort.Search(len(p.Bounds), func(i int) bool {
		return v.Compare(p.Bounds[i]) < 0
	})
}

func (p PartitionInfo) count() int {
	return len(p.Bounds) + 1
}

// BucketSpec describes hash bucketing over a set of schema columns within
// one partition.
type BucketSpec struct {
	Columns    []int // indices of the bucketing columns in the table's schema
	NumBuckets int
}

// bucketIndex hashes the bucketing columns' values with the same streaming
// digest the schema package uses for schema fingerprints, and reduces it
// mod NumBuckets.
func bucketIndex(values []value.Value, sch *schema.TabletSchema, spec BucketSpec) (int, error) {
	d := hash.NewDigest()
	codec := encoding.PlainCodec{}

	for _, colIdx := range spec.Columns {
		if colIdx < 0 || colIdx >= len(values) {
			return 0, errs.NewInvalidArgument("catalog: bucket column index out of range")
		}
		enc, err := codec.Encode([]value.Value{values[colIdx]}, sch.Columns[colIdx].Type)
		if err != nil {
			return 0, err
		}
		d.Write(enc)
	}

	return int(d.Sum64() % uint64(spec.NumBuckets)), nil //nolint:gosec
}
