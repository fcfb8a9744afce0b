// Package olapcore provides a columnar storage engine core for analytical
// (OLAP) workloads: an immutable Segment V2 file format for columnar data,
// and a tablet versioning subsystem that publishes rowsets of segments as
// atomic, queryable snapshots.
//
// # Core Features
//
//   - Per-column encoding (Plain, RLE, Delta-binary, Dictionary) chosen by
//     schema hint, with LZ4 or identity page compression
//   - Three auxiliary indexes per column: ordinal (page locators), zone map
//     (predicate pushdown) and bloom filter (point-lookup skipping), plus a
//     per-segment sparse short-key index for unique and aggregate key
//     tables; segments of duplicate-key tables carry no short-key index
//   - A per-tablet version DAG: rowsets publish as edges over a version
//     range, and a consistent snapshot for any requested range is the
//     smallest set of edges that covers it
//   - A sharded tablet registry and a thin catalog/routing layer mapping
//     (database, table, row) to a tablet via range partitioning and hash
//     bucketing
//
// # Basic Usage
//
// Building and publishing a segment:
//
//	sch, _ := schema.New([]schema.ColumnSchema{
//	    {Name: "region", Type: value.TypeBytes, IsKey: true},
//	    {Name: "ts", Type: value.TypeInt64, IsKey: true},
//	    {Name: "amount", Type: value.TypeFloat64},
//	}, schema.KeysDuplicate)
//
//	w, _ := segment.NewWriter(sch)
//	w.AddRow([]value.Value{value.String("us-east"), value.Int64(1), value.Float64(1.5)})
//	data, _ := w.Finalize()
//
//	reader, _ := segment.Open("seg-0", data, sch)
//	amounts, _ := reader.ReadColumn(2)
//
// Routing a row to a tablet and publishing its rowset through a catalog
// Table is shown end to end in this package's integration test.
package olapcore
