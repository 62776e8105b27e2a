// Package sampler drives one scenario through its load-test lifecycle.
//
// A Controller owns one scenario instance, one identity cache and one RPC
// channel. The host calls Setup once, RunIteration any number of times and
// Teardown once; a Controller is driven from a single goroutine. Many
// controllers may run in parallel, sharing nothing.
//
// Lifecycle:
//
//	Uninitialized --Setup--> Ready --RunIteration--> Running --Teardown--> TornDown
//
// Configuration and identity errors fail Setup before any timed work.
// A flow the node rejects yields a failed Outcome and the run continues.
// A broken channel or an invocation that cannot be built stops the
// controller: that iteration and every later one return the same error.
package sampler

import (
	"context"
	"log/slog"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/identity"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/rpc"
	"github.com/roach88/ledgerload/internal/scenario"
)

// Scenario is one kind of sampler: the parameters it accepts and how it
// prepares per-run state.
type Scenario interface {
	// Name identifies the scenario in test plans and logs.
	Name() string

	// Parameters declares every parameter the scenario reads. It must be
	// pure and return the same set on every call.
	Parameters() scenario.Parameters

	// Setup reads parameters and resolved identities from env and returns
	// the state used to build each iteration's invocation.
	Setup(ctx context.Context, env *Env) (State, error)
}

// State is the per-run state of a scenario.
type State interface {
	// Build returns the invocation for one iteration. It must not perform
	// network calls.
	Build() (flow.Invocation, error)
}

// Teardowner is implemented by states that hold resources.
type Teardowner interface {
	Teardown(ctx context.Context) error
}

// Enricher is implemented by states that copy fields from the node's
// response into the outcome. Enrich must not change Elapsed or Success.
type Enricher interface {
	Enrich(out *Outcome, resp *rpc.FlowResponse)
}

// FlowStarter starts flows on a node.
type FlowStarter interface {
	StartFlow(ctx context.Context, inv flow.Invocation) (*rpc.FlowResponse, error)
}

// Channel is the RPC channel a controller uses. *rpc.Client implements it.
type Channel interface {
	identity.Directory
	FlowStarter
}

// Env is what a scenario sees during Setup.
type Env struct {
	Params *scenario.Values
	Logger *slog.Logger

	identities map[string]identity.Resolved
}

// Identity returns the identity resolved for a Party or Notary parameter.
func (e *Env) Identity(param string) (identity.Resolved, error) {
	res, ok := e.identities[param]
	if !ok {
		return identity.Resolved{}, &scenario.ConfigurationError{
			Parameter: param,
			Reason:    "no identity resolved; declare it with kind party or notary",
		}
	}
	return res, nil
}

// Party is like Identity but returns only the party handle.
func (e *Env) Party(param string) (ir.Party, error) {
	res, err := e.Identity(param)
	if err != nil {
		return ir.Party{}, err
	}
	return res.Party, nil
}
