package encoding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskcore/olapcore/value"
)

func TestDictionaryRoundTripBytes(t *testing.T) {
	codec := DictionaryCodec{}
	raw := []string{"us-east", "eu-west", "us-east", "ap-south", "us-east", "eu-west"}
	values := make([]value.Value, len(raw))
	for i, s := range raw {
		values[i] = value.Bytes([]byte(s))
	}

	encoded, err := codec.Encode(values, value.TypeBytes)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeBytes)
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for i, s := range raw {
		require.Equal(t, s, decoded[i].AsString())
	}
}

func TestDictionaryRoundTripFixedWidth(t *testing.T) {
	codec := DictionaryCodec{}
	values := []value.Value{
		value.Int32(7), value.Int32(7), value.Int32(9), value.Int32(7), value.Int32(11),
	}

	encoded, err := codec.Encode(values, value.TypeInt32)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeInt32)
	require.NoError(t, err)
	for i, v := range values {
		require.Equal(t, 0, v.Compare(decoded[i]))
	}
}

func TestDictionarySingleDistinctValue(t *testing.T) {
	codec := DictionaryCodec{}
	values := []value.Value{value.Bool(true), value.Bool(true), value.Bool(true)}

	encoded, err := codec.Encode(values, value.TypeBool)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded, len(values), value.TypeBool)
	require.NoError(t, err)
	for _, v := range decoded {
		require.True(t, v.AsBool())
	}
}

func TestDictionaryCardinalityOverflow(t *testing.T) {
	codec := DictionaryCodec{}
	values := make([]value.Value, MaxDictionaryCardinality+1)
	for i := range values {
		values[i] = value.Bytes([]byte(fmt.Sprintf("v%d", i)))
	}

	_, err := codec.Encode(values, value.TypeBytes)
	require.Error(t, err)
}
