package scenario

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Values are the raw strings a test plan supplies for a scenario's declared
// parameters. Lookups fall back to the declared default.
type Values struct {
	declared Parameters
	supplied map[string]string
}

// NewValues binds supplied strings to a declaration set. The map is copied.
func NewValues(declared Parameters, supplied map[string]string) *Values {
	cp := make(map[string]string, len(supplied))
	for k, v := range supplied {
		cp[k] = v
	}
	return &Values{declared: declared, supplied: cp}
}

// Declared returns the declaration set the values are bound to.
func (v *Values) Declared() Parameters {
	return v.declared
}

// Raw returns the supplied value for name, or its default. Surrounding
// whitespace is trimmed. Asking for an undeclared name is a
// ConfigurationError: the scenario forgot to declare what it uses.
func (v *Values) Raw(name string) (string, error) {
	p, ok := v.declared.Lookup(name)
	if !ok {
		return "", &ConfigurationError{Parameter: name, Reason: "not declared by the scenario"}
	}
	raw, supplied := v.supplied[name]
	if !supplied {
		raw = p.Default
	}
	raw = strings.TrimSpace(raw)
	if p.Required && raw == "" {
		return "", &ConfigurationError{Parameter: name, Reason: "value is required"}
	}
	return raw, nil
}

// String returns the value of a parameter.
func (v *Values) String(name string) (string, error) {
	return v.Raw(name)
}

// Bool parses "true" or "false", case-insensitively. Any other value is a
// ConfigurationError.
func (v *Values) Bool(name string) (bool, error) {
	raw, err := v.Raw(name)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &ConfigurationError{Parameter: name, Value: raw, Reason: `expected "true" or "false"`}
	}
}

// Int parses a base-10 int64.
func (v *Values) Int(name string) (int64, error) {
	raw, err := v.Raw(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ConfigurationError{Parameter: name, Value: raw, Reason: "expected an integer", Err: err}
	}
	return n, nil
}

// Currency parses an ISO 4217 code and returns it upper-cased.
func (v *Values) Currency(name string) (string, error) {
	raw, err := v.Raw(name)
	if err != nil {
		return "", err
	}
	unit, err := currency.ParseISO(strings.ToUpper(raw))
	if err != nil {
		return "", &ConfigurationError{Parameter: name, Value: raw, Reason: "expected an ISO 4217 currency code", Err: err}
	}
	return unit.String(), nil
}

// Validate checks every declared parameter against its kind. All failures
// are returned joined.
func (v *Values) Validate() error {
	var errs []error
	for _, p := range v.declared {
		var err error
		switch p.Kind {
		case KindBool:
			_, err = v.Bool(p.Name)
		case KindInt:
			_, err = v.Int(p.Name)
		case KindCurrency:
			_, err = v.Currency(p.Name)
		default:
			_, err = v.Raw(p.Name)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unknown returns supplied names that no parameter declares, sorted.
func (v *Values) Unknown() []string {
	var out []string
	for name := range v.supplied {
		if _, ok := v.declared.Lookup(name); !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
