package flow

import (
	"fmt"

	"github.com/roach88/ledgerload/internal/scenario"
)

// Choice maps a selector value to one of a fixed set of templates. Each
// variant carries its own argument contract.
type Choice[K comparable] struct {
	selector string
	variants map[K]Template
}

// NewChoice creates a Choice keyed by the named selector parameter. The
// variants map is copied.
func NewChoice[K comparable](selector string, variants map[K]Template) Choice[K] {
	cp := make(map[K]Template, len(variants))
	for k, t := range variants {
		cp[k] = t
	}
	return Choice[K]{selector: selector, variants: cp}
}

// Select returns the template for k. An unknown key is a configuration
// error.
func (c Choice[K]) Select(k K) (Template, error) {
	t, ok := c.variants[k]
	if !ok {
		return Template{}, &scenario.ConfigurationError{
			Parameter: c.selector,
			Value:     fmt.Sprint(k),
			Reason:    "no flow template for value",
		}
	}
	return t, nil
}
