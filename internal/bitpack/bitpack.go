// Package bitpack implements fixed bit-width packing of unsigned integers,
// the primitive shared by the Delta-binary block layout and the Dictionary
// code stream (spec §4.1). Values are packed LSB-first, matching the
// bit-packing convention used by Parquet's DELTA_BINARY_PACKED and
// dictionary-index encodings, which this module's layout is modeled on.
package bitpack

// BitWidth returns the minimal number of bits needed to represent every
// unsigned integer in [0, maxValue], i.e. ceil(log2(maxValue+1)), with 0
// for maxValue == 0.
func BitWidth(maxValue uint64) int {
	bits := 0
	for maxValue > 0 {
		bits++
		maxValue >>= 1
	}
	return bits
}

// Pack bit-packs values using bitWidth bits each, LSB-first within the
// output byte stream. The caller guarantees every value fits in bitWidth
// bits.
func Pack(values []uint64, bitWidth int) []byte {
	if bitWidth == 0 {
		return nil
	}

	totalBits := len(values) * bitWidth
	out := make([]byte, (totalBits+7)/8)

	bitPos := 0
	for _, v := range values {
		for b := 0; b < bitWidth; b++ {
			if v&(1<<uint(b)) != 0 {
				out[bitPos/8] |= 1 << uint(bitPos%8)
			}
			bitPos++
		}
	}

	return out
}

// Unpack reverses Pack, reading exactly count values of bitWidth bits each.
func Unpack(data []byte, count int, bitWidth int) []uint64 {
	out := make([]uint64, count)
	if bitWidth == 0 {
		return out
	}

	bitPos := 0
	for i := 0; i < count; i++ {
		var v uint64
		for b := 0; b < bitWidth; b++ {
			byteIdx := bitPos / 8
			if byteIdx < len(data) && data[byteIdx]&(1<<uint(bitPos%8)) != 0 {
				v |= 1 << uint(b)
			}
			bitPos++
		}
		out[i] = v
	}

	return out
}

// ByteLen returns the number of bytes Pack(values, bitWidth) would produce
// for a count-length slice.
func ByteLen(count, bitWidth int) int {
	return (count*bitWidth + 7) / 8
}
