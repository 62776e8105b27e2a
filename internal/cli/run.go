package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/plan"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a test plan against a node",
		Long: `Run a test plan against a node.

Each of the plan's threads opens its own connection, sets up its own sampler
instance and runs the plan's iterations one after another. One line is
printed per sample, then a pass/fail count.

Connection settings in the plan can be overridden with flags or with
LEDGERLOAD_ADDRESS, LEDGERLOAD_USERNAME, LEDGERLOAD_PASSWORD and
LEDGERLOAD_CALL_TIMEOUT.

Example:
  ledgerload run plans/cash-issue.yaml
  LEDGERLOAD_ADDRESS=ws://node-b:10006/rpc ledgerload run plans/iou.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConnectionFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runPlan(rootOpts, args[0], cmd)
	}
	return cmd
}

func runPlan(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p, err := loadPlan(formatter, path)
	if err != nil {
		return err
	}
	conn := connection(bindEnv(cmd), p.RPC)
	if conn.Address == "" {
		_ = formatter.Error(ErrCodeConnection, "no node address: set rpc.address, --address or LEDGERLOAD_ADDRESS", nil)
		return NewExitError(ExitCommandError, "no node address")
	}

	return execute(cmd, formatter, p, conn)
}

// execute runs p and reports every sample, then the totals.
func execute(cmd *cobra.Command, formatter *OutputFormatter, p *plan.Plan, conn plan.RPC) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	r := &runner{plan: p, conn: conn, logger: formatter.Logger()}
	var results []Sample
	r.report = func(s Sample) {
		if formatter.JSON() {
			results = append(results, s)
			return
		}
		fmt.Fprintln(formatter.Writer, s)
	}

	sum := r.run(ctx)
	sum.Results = results
	return finishRun(formatter, sum)
}

func finishRun(formatter *OutputFormatter, sum *Summary) error {
	if formatter.JSON() {
		if sum.OK() {
			return formatter.Success(sum)
		}
		_ = formatter.Error(ErrCodeSamplesFailed, "run failed", sum)
		return NewExitError(ExitFailure, "run failed")
	}

	fmt.Fprintf(formatter.Writer, "\n%d sample(s): %d passed, %d failed\n", sum.Samples, sum.Passed, sum.Failed)
	for _, e := range sum.Errors {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", e)
	}
	if !sum.OK() {
		return NewExitError(ExitFailure, "run failed")
	}
	fmt.Fprintln(formatter.Writer, "✓ run passed")
	return nil
}
