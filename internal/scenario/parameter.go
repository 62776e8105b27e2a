// Package scenario declares the parameters a sampler exposes to a test plan
// and parses the string values the plan supplies for them.
//
// Values cross the test-plan boundary as strings. A Parameter's Kind says
// how the string is interpreted; Party and Notary kinds name identities
// that the lifecycle controller resolves once during setup.
package scenario

import (
	"slices"
	"strings"

	"github.com/roach88/ledgerload/internal/ir"
)

// Kind describes how a parameter's raw string is interpreted.
type Kind string

const (
	KindString   Kind = "string"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindCurrency Kind = "currency"
	// KindParty is an X.500 name resolved to a well-known party.
	KindParty Kind = "party"
	// KindNotary is an X.500 name resolved against the notary list.
	// An empty value selects the first notary.
	KindNotary Kind = "notary"
)

// IsIdentity reports whether values of this kind are resolved via RPC.
func (k Kind) IsIdentity() bool {
	return k == KindParty || k == KindNotary
}

// Parameter is one configurable value of a scenario.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Default     string `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	// Required parameters must resolve to a non-empty value.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// NotaryParameter is the notary identity shared by samplers whose flows
// take a notary argument.
var NotaryParameter = Parameter{
	Name:        "notaryName",
	Default:     "",
	Description: "The X500 name of the notary. Empty selects the first notary on the network.",
	Kind:        KindNotary,
}

// Parameters is a set of parameter declarations kept sorted by name.
type Parameters []Parameter

// NewParameters builds a Parameters set. A later declaration of the same
// name replaces an earlier one.
func NewParameters(ps ...Parameter) Parameters {
	byName := make(map[string]Parameter, len(ps))
	for _, p := range ps {
		byName[p.Name] = p
	}
	out := make(Parameters, 0, len(byName))
	for _, p := range byName {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Parameter) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Lookup returns the declaration for name.
func (ps Parameters) Lookup(name string) (Parameter, bool) {
	i, found := slices.BinarySearchFunc(ps, name, func(p Parameter, n string) int {
		return strings.Compare(p.Name, n)
	})
	if !found {
		return Parameter{}, false
	}
	return ps[i], true
}

// Names returns the declared names in order.
func (ps Parameters) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Identities returns the declarations whose values are resolved via RPC.
func (ps Parameters) Identities() Parameters {
	var out Parameters
	for _, p := range ps {
		if p.Kind.IsIdentity() {
			out = append(out, p)
		}
	}
	return out
}

// MarshalCanonical renders the declarations as canonical JSON, one object
// per parameter in name order.
func (ps Parameters) MarshalCanonical() ([]byte, error) {
	arr := make(ir.Array, len(ps))
	for i, p := range ps {
		arr[i] = ir.Object{
			"name":        ir.String(p.Name),
			"default":     ir.String(p.Default),
			"description": ir.String(p.Description),
			"kind":        ir.String(p.Kind),
			"required":    ir.Bool(p.Required),
		}
	}
	return ir.MarshalCanonical(arr)
}
