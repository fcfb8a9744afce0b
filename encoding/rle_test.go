package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskcore/olapcore/value"
)

func TestRLERoundTrip(t *testing.T) {
	codec := RLECodec{}
	values := []value.Value{
		value.Int32(1), value.Int32(1), value.Int32(1),
		value.Int32(2),
		value.Int32(3), value.Int32(3),
	}

	encoded, err := codec.Encode(values, value.TypeInt32)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeInt32)
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for i, v := range values {
		require.Equal(t, 0, v.Compare(decoded[i]))
	}
}

func TestRLESingleRun(t *testing.T) {
	codec := RLECodec{}
	values := make([]value.Value, 5000)
	for i := range values {
		values[i] = value.Bool(true)
	}

	encoded, err := codec.Encode(values, value.TypeBool)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeBool)
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for _, v := range decoded {
		require.True(t, v.AsBool())
	}
}

func TestRLEAllDistinct(t *testing.T) {
	codec := RLECodec{}
	values := []value.Value{value.Int8(1), value.Int8(2), value.Int8(3), value.Int8(4)}

	encoded, err := codec.Encode(values, value.TypeInt8)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeInt8)
	require.NoError(t, err)
	for i, v := range values {
		require.Equal(t, 0, v.Compare(decoded[i]))
	}
}
