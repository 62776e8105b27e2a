package scenario

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or malformed parameter, or an
// invocation that cannot be built from the configured values. It is fatal
// to a sampler instance.
type ConfigurationError struct {
	// Parameter names the offending parameter, if any.
	Parameter string
	// Value is the raw value that failed to parse.
	Value  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var msg string
	switch {
	case e.Parameter != "" && e.Value != "":
		msg = fmt.Sprintf("parameter %q = %q: %s", e.Parameter, e.Value, e.Reason)
	case e.Parameter != "":
		msg = fmt.Sprintf("parameter %q: %s", e.Parameter, e.Reason)
	case e.Value != "":
		msg = fmt.Sprintf("%q: %s", e.Value, e.Reason)
	default:
		msg = e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", msg, e.Err)
	}
	return "configuration error: " + msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
