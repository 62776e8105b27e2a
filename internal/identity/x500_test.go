package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerload/internal/scenario"
)

func TestParseX500(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"O=Notary,L=London,C=GB", "O=Notary,L=London,C=GB"},
		{"C=gb, L=London, O=Notary", "O=Notary,L=London,C=GB"},
		{"cn=Node 1, OU=Ops, O=Bank A, L=London, ST=Greater London, C=GB", "CN=Node 1,OU=Ops,O=Bank A,L=London,ST=Greater London,C=GB"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Canonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseX500_Errors(t *testing.T) {
	tests := map[string]string{
		"":                               "malformed attribute",
		"Notary":                         "malformed attribute",
		"O=Notary,L=London":              "missing attribute C",
		"O=Notary,L=London,C=GBR":        "two-letter",
		"O=Notary,O=Other,L=London,C=GB": "duplicate attribute O",
		"O=Notary,L=London,C=GB,X=1":     "unsupported attribute X",
		"O=,L=London,C=GB":               "malformed attribute",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseX500(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
			assert.True(t, scenario.IsConfigurationError(err))
		})
	}
}

func TestParseX500_ErrorNamesValue(t *testing.T) {
	_, err := ParseX500("O=Notary,L=London")
	require.Error(t, err)
	assert.Equal(t, `configuration error: "O=Notary,L=London": invalid X500 name: missing attribute C`, err.Error())
}
