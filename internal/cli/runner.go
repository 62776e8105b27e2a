package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/ledgerload/internal/plan"
	"github.com/roach88/ledgerload/internal/rpc"
	"github.com/roach88/ledgerload/internal/sampler"
	"github.com/roach88/ledgerload/internal/samplers"
)

// Sample is one timed iteration as reported by run and invoke.
type Sample struct {
	Thread    int            `json:"thread"`
	Iteration int64          `json:"iteration"`
	Flow      string         `json:"flow"`
	ClientID  string         `json:"client_id"`
	ElapsedUS int64          `json:"elapsed_us"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

func newSample(thread int, iteration int64, out sampler.Outcome) Sample {
	return Sample{
		Thread:    thread,
		Iteration: iteration,
		Flow:      out.Flow,
		ClientID:  out.ClientID,
		ElapsedUS: out.Elapsed.Microseconds(),
		Success:   out.Success,
		Error:     out.Error,
		Extra:     out.Extra,
	}
}

func (s Sample) String() string {
	status := "ok"
	if !s.Success {
		status = "FAIL"
	}
	line := fmt.Sprintf("%3d %5d %-4s %10s  %s", s.Thread, s.Iteration, status,
		time.Duration(s.ElapsedUS)*time.Microsecond, s.Flow)
	if s.Error != "" {
		line += "  " + s.Error
	}
	return line
}

// Summary totals a run.
type Summary struct {
	Plan       string   `json:"plan"`
	Sampler    string   `json:"sampler"`
	Threads    int      `json:"threads"`
	Iterations int      `json:"iterations"`
	Samples    int      `json:"samples"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	Results    []Sample `json:"results,omitempty"`
}

// OK reports whether every sample passed and no thread stopped early.
func (s *Summary) OK() bool {
	return s.Failed == 0 && len(s.Errors) == 0
}

// runner executes a plan: one controller and one connection per thread.
type runner struct {
	plan   *plan.Plan
	conn   plan.RPC
	logger *slog.Logger
	// report is called for every sample, serialised.
	report func(Sample)
}

func (r *runner) run(ctx context.Context) *Summary {
	sum := &Summary{
		Plan:       r.plan.Name,
		Sampler:    r.plan.Sampler,
		Threads:    r.plan.Threads,
		Iterations: r.plan.Iterations,
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(s Sample) {
		mu.Lock()
		defer mu.Unlock()
		sum.Samples++
		if s.Success {
			sum.Passed++
		} else {
			sum.Failed++
		}
		if r.report != nil {
			r.report(s)
		}
	}

	for thread := 1; thread <= r.plan.Threads; thread++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			if err := r.runThread(ctx, thread, record); err != nil {
				r.logger.Error("thread stopped", "thread", thread, "error", err)
				mu.Lock()
				sum.Errors = append(sum.Errors, fmt.Sprintf("thread %d: %v", thread, err))
				mu.Unlock()
			}
		}(thread)
	}
	wg.Wait()
	return sum
}

func (r *runner) runThread(ctx context.Context, thread int, record func(Sample)) error {
	logger := r.logger.With("thread", thread)

	scn, err := samplers.Lookup(r.plan.Sampler)
	if err != nil {
		return err
	}

	client, err := rpc.Dial(ctx, r.conn.Address,
		rpc.WithCredentials(r.conn.Username, r.conn.Password),
		rpc.WithCallTimeout(r.conn.CallTimeout),
		rpc.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	c := sampler.NewController(scn, client, sampler.WithLogger(logger))
	if err := c.Setup(ctx, r.plan.Parameters); err != nil {
		return err
	}
	defer func() {
		if err := c.Teardown(context.Background()); err != nil {
			logger.Warn("teardown failed", "error", err)
		}
	}()
	logger.Debug("sampler ready", "run_id", c.RunID())

	for i := 0; i < r.plan.Iterations; i++ {
		out, err := c.RunIteration(ctx)
		if out.Flow != "" {
			record(newSample(thread, c.Iterations(), out))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
