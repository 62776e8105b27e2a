// Package identity resolves human-readable X.500 names to ledger parties.
//
// A Resolver belongs to one sampler instance for one test run. Each
// distinct name costs at most one directory round trip; afterwards the
// cached party is returned and never changes. Resolution happens during
// setup so that the network round trip stays out of timed iterations.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/ledgerload/internal/ir"
)

// Directory is the part of the RPC channel used for name resolution.
type Directory interface {
	// WellKnownParty returns the party with the given X.500 name, or nil
	// if the node does not know it.
	WellKnownParty(ctx context.Context, name string) (*ir.Party, error)

	// NotaryIdentities lists the notaries on the network, in node order.
	NotaryIdentities(ctx context.Context) ([]ir.Party, error)
}

// Resolved is a name resolved to a party. DisplayName is the name as the
// test plan wrote it.
type Resolved struct {
	DisplayName string
	Party       ir.Party
}

// NotFoundError reports that no identity matches a name.
type NotFoundError struct {
	Name   string
	Notary bool
}

func (e *NotFoundError) Error() string {
	if e.Notary {
		if e.Name == "" {
			return "identity not found: network has no notaries"
		}
		return fmt.Sprintf("identity not found: no notary named %q", e.Name)
	}
	return fmt.Sprintf("identity not found: %q", e.Name)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Resolver caches resolved identities. It is not safe for concurrent use;
// a sampler instance drives it from one goroutine.
type Resolver struct {
	dir      Directory
	parties  map[string]Resolved
	notaries []ir.Party
	lookups  int
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{
		dir:     dir,
		parties: make(map[string]Resolved),
	}
}

// Resolve returns the well-known party for name.
func (r *Resolver) Resolve(ctx context.Context, name string) (Resolved, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return Resolved{}, err
	}
	if res, ok := r.parties[canonical]; ok {
		return res, nil
	}

	r.lookups++
	party, err := r.dir.WellKnownParty(ctx, canonical)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve %q: %w", name, err)
	}
	if party == nil {
		return Resolved{}, &NotFoundError{Name: name}
	}

	res := Resolved{DisplayName: name, Party: *party}
	r.parties[canonical] = res
	return res, nil
}

// ResolveNotary returns the notary called name, or the first notary when
// name is empty. The notary list is fetched once per Resolver.
func (r *Resolver) ResolveNotary(ctx context.Context, name string) (Resolved, error) {
	if r.notaries == nil {
		r.lookups++
		notaries, err := r.dir.NotaryIdentities(ctx)
		if err != nil {
			return Resolved{}, fmt.Errorf("list notaries: %w", err)
		}
		if notaries == nil {
			notaries = []ir.Party{}
		}
		r.notaries = notaries
	}

	if name == "" {
		if len(r.notaries) == 0 {
			return Resolved{}, &NotFoundError{Notary: true}
		}
		first := r.notaries[0]
		return Resolved{DisplayName: first.Name, Party: first}, nil
	}

	canonical, err := Canonical(name)
	if err != nil {
		return Resolved{}, err
	}
	for _, n := range r.notaries {
		if nc, err := Canonical(n.Name); err == nil && nc == canonical {
			return Resolved{DisplayName: name, Party: n}, nil
		}
	}
	return Resolved{}, &NotFoundError{Name: name, Notary: true}
}

// Lookups returns how many directory round trips the Resolver has made.
func (r *Resolver) Lookups() int {
	return r.lookups
}
