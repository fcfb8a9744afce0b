package colindex

import (
	"bytes"
	"sort"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
)

// ShortKeyInterval is the row stride between short-key entries, per
// spec §4.3.
const ShortKeyInterval = 1024

// MaxShortKeyPrefixBytes bounds one entry's key prefix, per spec §4.3.
const MaxShortKeyPrefixBytes = 36

// ShortKeyEntry is a sparse checkpoint: the row id every ShortKeyInterval
// rows, paired with the concatenated leading key-column prefix at that
// row, truncated to MaxShortKeyPrefixBytes.
type ShortKeyEntry struct {
	RowID  int64
	Prefix []byte
}

// ShortKeyIndex is a sorted-by-RowID list of ShortKeyEntry, assuming the
// tablet's rows are stored in key order (true for Unique/Aggregate keys
// tables; Duplicate-key tables skip this index per spec §4.3).
type ShortKeyIndex struct {
	Entries []ShortKeyEntry
}

// Add appends the next checkpoint. Callers must add entries in increasing
// RowID order; a prefix longer than MaxShortKeyPrefixBytes is truncated.
func (idx *ShortKeyIndex) Add(rowID int64, prefix []byte) {
	if len(prefix) > MaxShortKeyPrefixBytes {
		prefix = prefix[:MaxShortKeyPrefixBytes]
	}
	idx.Entries = append(idx.Entries, ShortKeyEntry{RowID: rowID, Prefix: append([]byte(nil), prefix...)})
}

// Seek returns the row id of the last checkpoint whose prefix is <= target,
// i.e. the earliest row a scan for target needs to start from. found is
// false if target precedes every checkpoint's prefix, in which case the
// scan must start from row 0.
func (idx *ShortKeyIndex) Seek(target []byte) (rowID int64, found bool) {
	entries := idx.Entries
	i := sort.Search(len(entries), func(i int) bool {
		return bytes.Compare(entries[i].Prefix, target) > 0
	})
	if i == 0 {
		return 0, false
	}
	return entries[i-1].RowID, true
}

// Bytes serializes the index as a 4-byte little-endian entry count
// followed by, per entry: an 8-byte row id, a 1-byte prefix length, then
// the prefix bytes.
func (idx *ShortKeyIndex) Bytes(engine endian.EndianEngine) []byte {
	buf := engine.AppendUint32(nil, uint32(len(idx.Entries))) //nolint:gosec
	for _, e := range idx.Entries {
		buf = engine.AppendUint64(buf, uint64(e.RowID)) //nolint:gosec
		buf = append(buf, byte(len(e.Prefix)))          //nolint:gosec
		buf = append(buf, e.Prefix...)
	}
	return buf
}

// ParseShortKeyIndex reverses Bytes.
func ParseShortKeyIndex(data []byte, engine endian.EndianEngine) (*ShortKeyIndex, error) {
	if len(data) < 4 {
		return nil, errs.NewDecode(-1, "shortkey: truncated entry count")
	}
	count := int(engine.Uint32(data[:4]))
	offset := 4

	idx := &ShortKeyIndex{Entries: make([]ShortKeyEntry, 0, count)}
	for i := 0; i < count; i++ {
		if offset+9 > len(data) {
			return nil, errs.NewDecode(-1, "shortkey: truncated entry header")
		}
		rowID := int64(engine.Uint64(data[offset : offset+8])) //nolint:gosec
		prefixLen := int(data[offset+8])
		offset += 9

		if offset+prefixLen > len(data) {
			return nil, errs.NewDecode(-1, "shortkey: truncated prefix")
		}
		prefix := append([]byte(nil), data[offset:offset+prefixLen]...)
		offset += prefixLen

		idx.Entries = append(idx.Entries, ShortKeyEntry{RowID: rowID, Prefix: prefix})
	}

	return idx, nil
}
