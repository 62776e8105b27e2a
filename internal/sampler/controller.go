package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/identity"
	"github.com/roach88/ledgerload/internal/rpc"
	"github.com/roach88/ledgerload/internal/scenario"
)

// Phase is a controller lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseRunning
	PhaseTornDown
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseTornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Controller runs one scenario instance. It is not safe for concurrent use.
type Controller struct {
	scn      Scenario
	resolver *identity.Resolver
	invoker  *Invoker
	logger   *slog.Logger
	runID    string

	phase Phase
	state State
	seq   int64
	fatal error
}

type controllerConfig struct {
	logger *slog.Logger
	clock  Clock
	runID  string
	runIDs flow.RunIDGenerator
}

// Option configures a Controller.
type Option func(*controllerConfig)

// WithLogger sets the controller's logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *controllerConfig) {
		c.logger = l
	}
}

// WithClock sets the clock used to time invocations.
func WithClock(clock Clock) Option {
	return func(c *controllerConfig) {
		c.clock = clock
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(c *controllerConfig) {
		c.runID = id
	}
}

// WithRunIDGenerator sets the source of run ids. The default generates
// UUIDv7s.
func WithRunIDGenerator(g flow.RunIDGenerator) Option {
	return func(c *controllerConfig) {
		c.runIDs = g
	}
}

// NewController creates a controller for scn talking to ch.
func NewController(scn Scenario, ch Channel, opts ...Option) *Controller {
	cfg := controllerConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: flow.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = cfg.runIDs.Generate()
	}

	return &Controller{
		scn:      scn,
		resolver: identity.NewResolver(ch),
		invoker:  NewInvoker(ch, cfg.clock),
		logger:   cfg.logger.With("scenario", scn.Name(), "run_id", cfg.runID),
		runID:    cfg.runID,
	}
}

// Parameters returns the scenario's declared parameters.
func (c *Controller) Parameters() scenario.Parameters {
	return c.scn.Parameters()
}

// Setup validates supplied parameter values, resolves every identity the
// scenario declares, and prepares the scenario state. On error the
// controller stays uninitialized.
func (c *Controller) Setup(ctx context.Context, supplied map[string]string) error {
	switch c.phase {
	case PhaseUninitialized:
	case PhaseTornDown:
		return ErrTornDown
	default:
		return ErrAlreadySetUp
	}

	values := scenario.NewValues(c.scn.Parameters(), supplied)
	if err := values.Validate(); err != nil {
		return fmt.Errorf("setup %s: %w", c.scn.Name(), err)
	}
	for _, name := range values.Unknown() {
		c.logger.Warn("ignoring undeclared parameter", "parameter", name)
	}

	identities, err := c.resolveIdentities(ctx, values)
	if err != nil {
		return fmt.Errorf("setup %s: %w", c.scn.Name(), err)
	}

	env := &Env{Params: values, Logger: c.logger, identities: identities}
	state, err := c.scn.Setup(ctx, env)
	if err != nil {
		return fmt.Errorf("setup %s: %w", c.scn.Name(), err)
	}

	c.state = state
	c.phase = PhaseReady
	c.logger.Info("sampler ready", "identities", len(identities), "lookups", c.resolver.Lookups())
	return nil
}

func (c *Controller) resolveIdentities(ctx context.Context, values *scenario.Values) (map[string]identity.Resolved, error) {
	out := make(map[string]identity.Resolved)
	for _, p := range values.Declared().Identities() {
		raw, err := values.Raw(p.Name)
		if err != nil {
			return nil, err
		}

		var res identity.Resolved
		switch p.Kind {
		case scenario.KindNotary:
			res, err = c.resolver.ResolveNotary(ctx, raw)
		default:
			if raw == "" {
				return nil, &scenario.ConfigurationError{Parameter: p.Name, Reason: "value is required"}
			}
			res, err = c.resolver.Resolve(ctx, raw)
		}
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}

		c.logger.Debug("identity resolved", "parameter", p.Name, "party", res.Party.Name)
		out[p.Name] = res
	}
	return out, nil
}

// RunIteration builds and times one invocation.
//
// A flow rejected by the node returns a failed Outcome and a nil error.
// Build failures, transport failures and an ended context return a
// *FatalError; once that happens every later call returns the same error.
func (c *Controller) RunIteration(ctx context.Context) (Outcome, error) {
	switch c.phase {
	case PhaseUninitialized:
		return Outcome{}, ErrNotReady
	case PhaseTornDown:
		return Outcome{}, ErrTornDown
	}
	if c.fatal != nil {
		return Outcome{}, c.fatal
	}

	c.phase = PhaseRunning
	c.seq++
	seq := c.seq

	inv, err := c.state.Build()
	if err == nil {
		inv, err = inv.WithClientID(c.runID, seq)
	}
	if err != nil {
		return Outcome{}, c.stop(CodeBuildFailed, seq, err)
	}

	enrich, _ := c.state.(Enricher)
	out, err := c.invoker.Invoke(ctx, inv, enrich)
	if err != nil {
		code := CodeCancelled
		if rpc.IsTransport(err) && !errors.Is(err, context.Canceled) {
			code = CodeTransport
		}
		return out, c.stop(code, seq, err)
	}

	if out.Success {
		c.logger.Debug("sample", "iteration", seq, "flow", out.Flow, "elapsed", out.Elapsed)
	} else {
		c.logger.Info("sample failed", "iteration", seq, "flow", out.Flow, "error", out.Error)
	}
	return out, nil
}

func (c *Controller) stop(code FatalCode, seq int64, err error) error {
	c.fatal = &FatalError{Code: code, Scenario: c.scn.Name(), Iteration: seq, Err: err}
	c.logger.Error("sampler stopped", "iteration", seq, "code", code, "error", err)
	return c.fatal
}

// Teardown releases scenario resources. It may be called in any phase and
// any number of times; the scenario's Teardown runs at most once.
func (c *Controller) Teardown(ctx context.Context) error {
	if c.phase == PhaseTornDown {
		return nil
	}
	c.phase = PhaseTornDown
	c.logger.Info("sampler torn down", "iterations", c.seq)

	td, ok := c.state.(Teardowner)
	if !ok {
		return nil
	}
	if err := td.Teardown(ctx); err != nil {
		return fmt.Errorf("teardown %s: %w", c.scn.Name(), err)
	}
	return nil
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// RunID returns the id that scopes this controller's client ids.
func (c *Controller) RunID() string {
	return c.runID
}

// Iterations returns how many iterations have started.
func (c *Controller) Iterations() int64 {
	return c.seq
}

// Lookups returns how many identity round trips Setup made.
func (c *Controller) Lookups() int {
	return c.resolver.Lookups()
}

// Err returns the error that stopped the controller, if any.
func (c *Controller) Err() error {
	return c.fatal
}
