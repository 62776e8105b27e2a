package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/rpc"
)

// Clock supplies wall-clock readings. Elapsed times are computed with
// Time.Sub, so a real clock's monotonic reading is used.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Invoker times one StartFlow call per invocation.
type Invoker struct {
	starter FlowStarter
	clock   Clock
}

// NewInvoker creates an Invoker. A nil clock uses the system clock.
func NewInvoker(starter FlowStarter, clock Clock) *Invoker {
	if clock == nil {
		clock = systemClock{}
	}
	return &Invoker{starter: starter, clock: clock}
}

// Invoke starts the flow and returns its outcome. A flow that fails on the
// node is a failed Outcome with a nil error. Only a transport failure or an
// ended context is returned as an error, together with the partial outcome.
//
// enrich may be nil; it runs after timing has stopped and only on success.
// Changes it makes to Start, Elapsed or Success are discarded.
func (iv *Invoker) Invoke(ctx context.Context, inv flow.Invocation, enrich Enricher) (Outcome, error) {
	out := Outcome{Flow: inv.Flow, ClientID: inv.ClientID}

	out.Start = iv.clock.Now()
	resp, err := iv.starter.StartFlow(ctx, inv)
	out.Elapsed = iv.clock.Now().Sub(out.Start)

	if err != nil {
		out.Error = err.Error()
		if fatal(err) {
			return out, err
		}
		return out, nil
	}

	out.Success = true
	if enrich != nil && resp != nil {
		start, elapsed := out.Start, out.Elapsed
		enrich.Enrich(&out, resp)
		out.Start, out.Elapsed, out.Success = start, elapsed, true
	}
	return out, nil
}

func fatal(err error) bool {
	return rpc.IsTransport(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
