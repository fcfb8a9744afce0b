package bitpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 5, 3, 0, 7}
	width := BitWidth(7)
	require.Equal(t, 3, width)

	packed := Pack(values, width)
	require.Equal(t, ByteLen(len(values), width), len(packed))

	out := Unpack(packed, len(values), width)
	require.Equal(t, values, out)
}

func TestBitWidthZero(t *testing.T) {
	require.Equal(t, 0, BitWidth(0))
	packed := Pack([]uint64{0, 0, 0}, 0)
	require.Nil(t, packed)
	out := Unpack(packed, 3, 0)
	require.Equal(t, []uint64{0, 0, 0}, out)
}

func TestBitWidthLarge(t *testing.T) {
	require.Equal(t, 16, BitWidth(65535))
	require.Equal(t, 17, BitWidth(65536))
}
