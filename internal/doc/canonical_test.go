package doc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"sorted keys", Object{"b": Int(1), "a": Int(2)}, `{"a":2,"b":1}`},
		{"no html escaping", String("<a&b>"), `"<a&b>"`},
		{"nfc", String("e\u0301"), "\"\u00e9\""},
		{"line separators kept", String("a\u2028b\u2029c"), "\"a\u2028b\u2029c\""},
		{"escaped backslash before text", String(`\u2028`), `"\\u2028"`},
		{"control chars escaped", String("a\nb"), `"a\nb"`},
		{"integer float", Float(3), `3`},
		{"fraction", Float(0.1), `0.1`},
		{"large", Float(1e21), `1e+21`},
		{"small", Float(1e-7), `1e-7`},
		{"negative zero", Float(math.Copysign(0, -1)), `0`},
		{"nan becomes wrapper", Float(math.NaN()), `{"$numberDouble":"NaN"}`},
		{"regex", Regex{Pattern: "x$", Options: "i"}, `{"$regularExpression":{"options":"i","pattern":"x$"}}`},
		{"nested", Object{"z": Array{Object{"y": Bool(true), "x": Null{}}}}, `{"z":[{"x":null,"y":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	v := Object{"c": Int(3), "a": Array{String("x"), Float(1.5)}, "b": Object{"k": Null{}}}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	for range 20 {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
