package segment

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/duskcore/olapcore/endian"
	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/schema"
)

// ColumnDescriptor locates one column's index-region blocks and records
// the encoding/compression it was written with.
type ColumnDescriptor struct {
	Encoding    schema.EncodingHint
	Compression schema.CompressionHint
	PageCount   uint32

	OrdinalOffset uint32
	OrdinalLength uint32
	ZoneMapOffset uint32
	ZoneMapLength uint32
	BloomOffset   uint32
	BloomLength   uint32
}

const columnDescriptorSize = 1 + 1 + 4 + 4 + 4 + 4 + 4 + 4 + 4

func (d ColumnDescriptor) appendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = append(buf, byte(d.Encoding), byte(d.Compression))
	buf = engine.AppendUint32(buf, d.PageCount)
	buf = engine.AppendUint32(buf, d.OrdinalOffset)
	buf = engine.AppendUint32(buf, d.OrdinalLength)
	buf = engine.AppendUint32(buf, d.ZoneMapOffset)
	buf = engine.AppendUint32(buf, d.ZoneMapLength)
	buf = engine.AppendUint32(buf, d.BloomOffset)
	buf = engine.AppendUint32(buf, d.BloomLength)
	return buf
}

func parseColumnDescriptor(data []byte, engine endian.EndianEngine) (ColumnDescriptor, error) {
	if len(data) < columnDescriptorSize {
		return ColumnDescriptor{}, errs.NewCorruptData("", 0, 0, "truncated column descriptor")
	}
	return ColumnDescriptor{
		Encoding:      schema.EncodingHint(data[0]),
		Compression:   schema.CompressionHint(data[1]),
		PageCount:     engine.Uint32(data[2:6]),
		OrdinalOffset: engine.Uint32(data[6:10]),
		OrdinalLength: engine.Uint32(data[10:14]),
		ZoneMapOffset: engine.Uint32(data[14:18]),
		ZoneMapLength: engine.Uint32(data[18:22]),
		BloomOffset:   engine.Uint32(data[22:26]),
		BloomLength:   engine.Uint32(data[26:30]),
	}, nil
}

// Footer is the trailer block describing how to locate every column's
// index-region data and the segment's overall shape.
type Footer struct {
	SchemaHash      uint64
	RowCount        uint64
	Columns         []ColumnDescriptor
	ShortKeyOffset  uint32
	ShortKeyLength  uint32
}

// bodyBytes serializes everything except the trailing CRC/length/magic.
func (f Footer) bodyBytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, 0, 20+len(f.Columns)*columnDescriptorSize+8)
	buf = engine.AppendUint64(buf, f.SchemaHash)
	buf = engine.AppendUint64(buf, f.RowCount)
	buf = engine.AppendUint32(buf, uint32(len(f.Columns))) //nolint:gosec
	for _, c := range f.Columns {
		buf = c.appendTo(buf, engine)
	}
	buf = engine.AppendUint32(buf, f.ShortKeyOffset)
	buf = engine.AppendUint32(buf, f.ShortKeyLength)
	return buf
}

// Bytes serializes the complete footer, including the trailing
// CRC32/length/magic sentinel a reader seeks to from EOF.
func (f Footer) Bytes(engine endian.EndianEngine) []byte {
	body := f.bodyBytes(engine)

	out := make([]byte, 0, len(body)+16)
	out = append(out, body...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(body))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body))) //nolint:gosec
	out = append(out, magic[:]...)
	return out
}

// ParseFooter locates and validates the footer at the end of a complete
// segment file, returning the footer and the offset in data where the
// data+index regions end (i.e. where the footer begins).
func ParseFooter(data []byte, engine endian.EndianEngine) (Footer, int, error) {
	const trailerSize = 16 // crc32(4) + length(4) + magic(8)
	if len(data) < HeaderSize+trailerSize {
		return Footer{}, 0, errs.NewCorruptData("", 0, 0, "file too short for footer trailer")
	}

	trailer := data[len(data)-trailerSize:]
	if string(trailer[8:]) != string(magic[:]) {
		return Footer{}, 0, errs.NewCorruptData("", 0, 0, "missing trailing magic")
	}

	storedCRC := binary.LittleEndian.Uint32(trailer[0:4])
	bodyLen := int(binary.LittleEndian.Uint32(trailer[4:8]))

	footerStart := len(data) - trailerSize - bodyLen
	if footerStart < HeaderSize {
		return Footer{}, 0, errs.NewCorruptData("", 0, 0, "footer length overruns file")
	}
	body := data[footerStart : footerStart+bodyLen]

	if crc32.ChecksumIEEE(body) != storedCRC {
		return Footer{}, 0, errs.NewCorruptData("", 0, 0, "footer crc32 mismatch")
	}

	f, err := parseFooterBody(body, engine)
	if err != nil {
		return Footer{}, 0, err
	}

	return f, footerStart, nil
}

func parseFooterBody(body []byte, engine endian.EndianEngine) (Footer, error) {
	if len(body) < 20 {
		return Footer{}, errs.NewCorruptData("", 0, 0, "truncated footer body")
	}

	f := Footer{
		SchemaHash: engine.Uint64(body[0:8]),
		RowCount:   engine.Uint64(body[8:16]),
	}
	columnCount := int(engine.Uint32(body[16:20]))
	offset := 20

	f.Columns = make([]ColumnDescriptor, 0, columnCount)
	for i := 0; i < columnCount; i++ {
		if offset+columnDescriptorSize > len(body) {
			return Footer{}, errs.NewCorruptData("", 0, 0, "truncated column descriptor list")
		}
		d, err := parseColumnDescriptor(body[offset:], engine)
		if err != nil {
			return Footer{}, err
		}
		f.Columns = append(f.Columns, d)
		offset += columnDescriptorSize
	}

	if offset+8 > len(body) {
		return Footer{}, errs.NewCorruptData("", 0, 0, "truncated short-key descriptor")
	}
	f.ShortKeyOffset = engine.Uint32(body[offset : offset+4])
	f.ShortKeyLength = engine.Uint32(body[offset+4 : offset+8])

	return f, nil
}
