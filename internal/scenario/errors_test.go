package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigurationError
		want string
	}{
		{"parameter and value", &ConfigurationError{Parameter: "amount", Value: "x", Reason: "not an integer"},
			`configuration error: parameter "amount" = "x": not an integer`},
		{"parameter only", &ConfigurationError{Parameter: "otherPartyName", Reason: "value is required"},
			`configuration error: parameter "otherPartyName": value is required`},
		{"value only", &ConfigurationError{Value: "O=Bank", Reason: "invalid X500 name"},
			`configuration error: "O=Bank": invalid X500 name`},
		{"reason only", &ConfigurationError{Reason: "no template"},
			`configuration error: no template`},
		{"wrapped", &ConfigurationError{Reason: "bad", Err: errors.New("cause")},
			`configuration error: bad: cause`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
