// Package testutil provides deterministic test doubles shared by package
// tests: a stepping clock and a scriptable RPC channel.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/rpc"
)

// FakeChannel is a testify mock of the RPC channel a sampler controller
// uses. Script it with On; use Network for the common identity setup.
type FakeChannel struct {
	mock.Mock
}

// StartFlow records the call and returns the scripted response.
func (f *FakeChannel) StartFlow(ctx context.Context, inv flow.Invocation) (*rpc.FlowResponse, error) {
	args := f.Called(ctx, inv)
	resp, _ := args.Get(0).(*rpc.FlowResponse)
	return resp, args.Error(1)
}

// WellKnownParty records the call and returns the scripted party.
func (f *FakeChannel) WellKnownParty(ctx context.Context, name string) (*ir.Party, error) {
	args := f.Called(ctx, name)
	party, _ := args.Get(0).(*ir.Party)
	return party, args.Error(1)
}

// NotaryIdentities records the call and returns the scripted notaries.
func (f *FakeChannel) NotaryIdentities(ctx context.Context) ([]ir.Party, error) {
	args := f.Called(ctx)
	notaries, _ := args.Get(0).([]ir.Party)
	return notaries, args.Error(1)
}

// Network scripts the identity methods: the notary list, and a lookup for
// each party by its name. Unknown names resolve to nil. Names must be in
// canonical form, which is what a resolver sends.
func (f *FakeChannel) Network(notaries []ir.Party, parties ...ir.Party) *FakeChannel {
	f.On("NotaryIdentities", mock.Anything).Return(notaries, nil).Maybe()
	for _, p := range parties {
		p := p
		f.On("WellKnownParty", mock.Anything, p.Name).Return(&p, nil).Maybe()
	}
	f.On("WellKnownParty", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	return f
}

// Started returns the invocations passed to StartFlow, in call order.
func (f *FakeChannel) Started() []flow.Invocation {
	var out []flow.Invocation
	for _, call := range f.Calls {
		if call.Method == "StartFlow" {
			out = append(out, call.Arguments.Get(1).(flow.Invocation))
		}
	}
	return out
}

// Party returns a test party with a key derived from its name.
func Party(name string) ir.Party {
	return ir.Party{Name: name, OwningKey: "key:" + name}
}
