// Package samplers holds the concrete load-test scenarios: cash issuance,
// cash issue-and-pay, and IOU issuance.
package samplers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ledgerload/internal/sampler"
)

var registry = map[string]func() sampler.Scenario{
	CashIssueName:   func() sampler.Scenario { return &CashIssue{} },
	CashPaymentName: func() sampler.Scenario { return &CashPayment{} },
	IOUName:         func() sampler.Scenario { return &IOU{} },
}

// Lookup returns a new instance of the named scenario.
func Lookup(name string) (sampler.Scenario, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown sampler %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return mk(), nil
}

// Names returns the registered scenario names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
