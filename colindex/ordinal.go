// Package colindex implements three of the four auxiliary indexes of
// spec §4.3: the per-column ordinal index and zone maps, and the
// segment-level short-key index (the fourth, the per-column bloom filter,
// lives in its own package since it has no page-local structure to
// traverse). Zone map entries are added as the column writer seals pages,
// ordinal entries as the segment writer lays out each page at Finalize, and
// short-key entries as rows are appended; all are then serialized into the
// segment's index region.
//
// The fixed-size entry + Bytes()/Parse() round-tripping mirrors the
// teacher's fixed-width index-entry structs, generalized from a per-metric
// timestamp/value offset pair to a single page locator keyed by first row
// id.
package colindex

import (
	"sort"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
)

// OrdinalEntrySize is the fixed on-disk size of one OrdinalEntry: an
// 8-byte row id plus two 4-byte page locators.
const OrdinalEntrySize = 16

// OrdinalEntry locates one page by the row id of its first row.
type OrdinalEntry struct {
	FirstRowID int64
	PageOffset uint32
	PageLength uint32
}

// Bytes serializes the entry using engine's byte order.
func (e OrdinalEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [OrdinalEntrySize]byte
	engine.PutUint64(b[0:8], uint64(e.FirstRowID)) //nolint:gosec
	engine.PutUint32(b[8:12], e.PageOffset)
	engine.PutUint32(b[12:16], e.PageLength)
	return b[:]
}

// ParseOrdinalEntry parses one OrdinalEntry from data.
func ParseOrdinalEntry(data []byte, engine endian.EndianEngine) (OrdinalEntry, error) {
	if len(data) < OrdinalEntrySize {
		return OrdinalEntry{}, errs.NewDecode(-1, "ordinal: truncated entry")
	}
	return OrdinalEntry{
		FirstRowID: int64(engine.Uint64(data[0:8])), //nolint:gosec
		PageOffset: engine.Uint32(data[8:12]),
		PageLength: engine.Uint32(data[12:16]),
	}, nil
}

// OrdinalIndex is a sorted-by-FirstRowID list of page locators for one
// column, enabling binary-search lookup of the page containing a given row.
type OrdinalIndex struct {
	Entries []OrdinalEntry
}

// Add appends a new page locator. Callers must add pages in increasing
// FirstRowID order, matching the order pages are sealed during a write.
func (idx *OrdinalIndex) Add(firstRowID int64, offset, length uint32) {
	idx.Entries = append(idx.Entries, OrdinalEntry{FirstRowID: firstRowID, PageOffset: offset, PageLength: length})
}

// PageForRow returns the index into Entries of the page that contains
// rowID: the last entry whose FirstRowID is <= rowID. found is false if
// rowID precedes every page's first row.
func (idx *OrdinalIndex) PageForRow(rowID int64) (pageIndex int, found bool) {
	entries := idx.Entries
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].FirstRowID > rowID
	})
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// Bytes serializes every entry back to back.
func (idx *OrdinalIndex) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, 0, len(idx.Entries)*OrdinalEntrySize)
	for _, e := range idx.Entries {
		buf = append(buf, e.Bytes(engine)...)
	}
	return buf
}

// ParseOrdinalIndex parses a contiguous run of OrdinalEntry records.
func ParseOrdinalIndex(data []byte, engine endian.EndianEngine) (*OrdinalIndex, error) {
	if len(data)%OrdinalEntrySize != 0 {
		return nil, errs.NewDecode(-1, "ordinal: index length not a multiple of entry size")
	}
	count := len(data) / OrdinalEntrySize
	idx := &OrdinalIndex{Entries: make([]OrdinalEntry, 0, count)}
	for i := 0; i < count; i++ {
		e, err := ParseOrdinalEntry(data[i*OrdinalEntrySize:], engine)
		if err != nil {
			return nil, err
		}
		idx.Entries = append(idx.Entries, e)
	}
	return idx, nil
}
