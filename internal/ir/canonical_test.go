package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"html chars unescaped", String("<a&b>"), `"<a&b>"`},
		{"line separator literal", String("a\u2028b"), "\"a\u2028b\""},
		{"escaped backslash then u2028 text", String(`\u2028`), `"\\u2028"`},
		{"control char", String("a\x01b\n"), `"a\u0001b\n"`},
		{"quote", String(`say "hi"`), `"say \"hi\""`},
		{"int", Int(-42), "-42"},
		{"bool", Bool(true), "true"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"sorted object", Object{"b": Int(1), "a": Int(2)}, `{"a":2,"b":1}`},
		{"go map", map[string]any{"z": "y", "a": []any{1, true}}, `{"a":[1,true],"z":"y"}`},
		{"amount", Amount(100000, "USD"), `{"@type":"Amount","quantity":100000,"token":"USD"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	got, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for name, in := range map[string]any{
		"nil":         nil,
		"null":        Null{},
		"float":       1.5,
		"nested null": Object{"a": Null{}},
		"struct":      struct{}{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(in)
			assert.Error(t, err)
		})
	}
}
