// Package encoding implements the four column encodings of spec §4.1:
// Plain, RLE, Delta-binary and Dictionary. Each codec operates on a
// []value.Value for one column and a known value.FieldType: one
// Encode/Decode pair per encoding, generalized to the full Value variant
// rather than any single numeric type.
package encoding

import (
	"fmt"

	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/value"
)

// Codec encodes and decodes one page's worth of values for a single column.
type Codec interface {
	Kind() schema.EncodingHint
	Encode(values []value.Value, typ value.FieldType) ([]byte, error)
	Decode(data []byte, count int, typ value.FieldType) ([]value.Value, error)
}

// ForHint resolves a non-auto encoding hint to its codec.
func ForHint(hint schema.EncodingHint) (Codec, error) {
	switch hint {
	case schema.EncodingPlain:
		return PlainCodec{}, nil
	case schema.EncodingRLE:
		return RLECodec{}, nil
	case schema.EncodingDeltaBinary:
		return DeltaBinaryCodec{}, nil
	case schema.EncodingDictionary:
		return DictionaryCodec{}, nil
	default:
		return nil, fmt.Errorf("encoding: unsupported hint %d", hint)
	}
}

// SelectAuto implements the auto-selection rule of spec §4.1: sorted integer
// columns prefer Delta-binary; bytes columns with low cardinality in their
// first 4096 rows prefer Dictionary; everything else is Plain.
//
// sample is the first up-to-4096 values accumulated so far for this column
// (the column writer passes its row buffer before the first page seals).
func SelectAuto(typ value.FieldType, sample []value.Value) schema.EncodingHint {
	const sampleCap = 4096
	const dictCardinalityCap = 256

	if len(sample) > sampleCap {
		sample = sample[:sampleCap]
	}

	if typ.IsInteger() && isSorted(sample) {
		return schema.EncodingDeltaBinary
	}

	if typ == value.TypeBytes {
		seen := make(map[string]struct{}, dictCardinalityCap+1)
		for _, v := range sample {
			if v.IsNull() {
				continue
			}
			seen[string(v.AsBytes())] = struct{}{}
			if len(seen) > dictCardinalityCap {
				return schema.EncodingPlain
			}
		}
		return schema.EncodingDictionary
	}

	return schema.EncodingPlain
}

func isSorted(values []value.Value) bool {
	var prev value.Value
	have := false
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if have && v.Compare(prev) < 0 {
			return false
		}
		prev = v
		have = true
	}
	return true
}

// nonNull returns only the non-null values, in their original order;
// encoders never encode nulls, the page's null bitmap rehydrates them on
// decode.
func nonNull(values []value.Value) []value.Value {
	out := make([]value.Value, 0, len(values))
	for _, v := range values {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}
