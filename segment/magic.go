// Package segment implements the Segment V2 columnar file format of
// spec §4: an immutable file holding one rowset's worth of one tablet's
// columns, laid out as a data region of per-column pages, an index region
// of per-column auxiliary indexes, and a self-describing trailer footer.
//
// The writer/reader split, and the pattern of building indexes
// incrementally as pages seal and only materializing them at Finalize/Open,
// keeps a segment's on-disk layout self-describing: a reader never needs
// anything beyond the bytes themselves and the schema to validate against.
package segment

// Version is the current Segment V2 wire format version.
const Version = 2

// magic identifies a Segment V2 file. It appears both at the start of the
// file and, unversioned, as the trailing sentinel the footer ends with.
var magic = [8]byte{'O', 'L', 'A', 'P', 'S', 'E', 'G', 0}

// HeaderSize is the fixed size of the file's leading magic+version header.
const HeaderSize = len(magic) + 1

// index region TLV tags.
const (
	tagOrdinal  = 1
	tagZoneMap  = 2
	tagBloom    = 3
	tagShortKey = 4
)
