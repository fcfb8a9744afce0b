// Package schema defines ColumnSchema and TabletSchema, the metadata that
// segment writers/readers validate against. The schema digest is computed
// with internal/hash's Digest, a streaming xxHash64 accumulator shared with
// every other multi-piece hash in this module.
package schema

import (
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/internal/hash"
	"github.com/duskcore/olapcore/value"
)

// KeysType selects the tablet's aggregation model. The core never acts on
// this beyond storing and validating it: merge/aggregation timing is left
// to a compaction layer outside this module (spec.md §9 Open Question).
type KeysType uint8

const (
	KeysDuplicate KeysType = iota
	KeysUnique
	KeysAggregate
)

// AggFunc names an aggregate function attached to a value column in an
// Aggregate-keyed tablet. The core stores it but never evaluates it.
type AggFunc uint8

const (
	AggNone AggFunc = iota
	AggSum
	AggMax
	AggMin
	AggReplace
)

// EncodingHint selects the per-column encoding, or Auto to let the column
// writer choose per spec.md §4.1.
type EncodingHint uint8

const (
	EncodingAuto EncodingHint = iota
	EncodingPlain
	EncodingRLE
	EncodingDeltaBinary
	EncodingDictionary
)

// CompressionHint selects the per-page compression codec.
type CompressionHint uint8

const (
	CompressionNone CompressionHint = iota
	CompressionLZ4
)

// ColumnSchema describes one column.
type ColumnSchema struct {
	Name        string
	Type        value.FieldType
	Nullable    bool
	IsKey       bool
	Agg         AggFunc
	Encoding    EncodingHint
	Compression CompressionHint
}

// maxShortKeyColumns and maxShortKeyBytes bound the short-key prefix per
// spec.md §3: the first 3 key columns or 36 bytes, whichever comes first.
const (
	maxShortKeyColumns = 3
	maxShortKeyBytes   = 36
)

// TabletSchema is the ordered column list plus the keys model and a stable
// digest used to detect drift between a segment and the schema a reader
// expects it to conform to.
type TabletSchema struct {
	Columns         []ColumnSchema
	KeysType        KeysType
	ShortKeyColumns int // number of leading columns included in the short-key prefix
	schemaHash      uint64
}

// New validates and constructs a TabletSchema, computing its schema hash and
// short-key prefix length.
func New(columns []ColumnSchema, keysType KeysType) (*TabletSchema, error) {
	if len(columns) == 0 {
		return nil, errs.NewInvalidArgument("schema: empty column list")
	}

	s := &TabletSchema{Columns: columns, KeysType: keysType}
	s.ShortKeyColumns = computeShortKeyColumns(columns)
	s.schemaHash = digest(columns, keysType, s.ShortKeyColumns)

	return s, nil
}

// computeShortKeyColumns walks the leading key columns, stopping at the
// first 3 key columns or once their fixed/variable width sum would exceed
// 36 bytes. Bytes columns are budgeted conservatively at their declared
// max width is unknown at schema time, so a bytes key column always closes
// the prefix after being counted once.
func computeShortKeyColumns(columns []ColumnSchema) int {
	budget := maxShortKeyBytes
	count := 0

	for _, col := range columns {
		if !col.IsKey || count >= maxShortKeyColumns {
			break
		}

		width := col.Type.Width()
		if width == 0 {
			// Variable-length key column: counts once, consumes the
			// remaining budget outright.
			count++
			break
		}

		if width > budget {
			break
		}

		budget -= width
		count++
	}

	return count
}

// KeyColumns returns the leading key columns in schema order.
func (s *TabletSchema) KeyColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range s.Columns {
		if !c.IsKey {
			break
		}
		out = append(out, c)
	}
	return out
}

// Hash returns the stable schema digest.
func (s *TabletSchema) Hash() uint64 { return s.schemaHash }

func digest(columns []ColumnSchema, keysType KeysType, shortKeyColumns int) uint64 {
	d := hash.NewDigest()

	var scratch [4]byte
	scratch[0] = byte(keysType)
	scratch[1] = byte(shortKeyColumns)
	d.Write(scratch[:2])

	for _, c := range columns {
		d.Write([]byte(c.Name))
		var b [4]byte
		b[0] = byte(c.Type)
		b[1] = boolByte(c.Nullable)
		b[2] = boolByte(c.IsKey)
		b[3] = byte(c.Agg)
		d.Write(b[:])
	}

	return d.Sum64()
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// Equal reports whether two schemas are interchangeable for segment
// validation purposes (same digest).
func (s *TabletSchema) Equal(other *TabletSchema) bool {
	return other != nil && s.schemaHash == other.schemaHash
}

// ColumnIndex returns the index of the named column, or -1.
func (s *TabletSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
