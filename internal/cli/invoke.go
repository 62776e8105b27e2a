package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/plan"
	"github.com/roach88/ledgerload/internal/samplers"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Params     []string
	Iterations int
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <sampler>",
		Short: "Run one sampler iteration against a node",
		Long: `Set up a sampler, run it and tear it down, without a test plan.

Useful for smoke-testing a sampler and its parameters against a node.

Example:
  ledgerload invoke CashIssue --address ws://localhost:10006/rpc \
    --param notaryName="O=Notary,L=London,C=GB" --param amount=500`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeSampler(opts, args[0], cmd)
		},
	}

	addConnectionFlags(cmd)
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "sampler parameter as name=value (repeatable)")
	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 1, "number of iterations")

	return cmd
}

func invokeSampler(opts *InvokeOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := samplers.Lookup(name); err != nil {
		_ = formatter.Error(ErrCodeUnknown, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown sampler", err)
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		_ = formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --param", err)
	}
	if opts.Iterations < 1 {
		_ = formatter.Error(ErrCodeConfiguration, "--iterations must be at least 1", nil)
		return NewExitError(ExitCommandError, "invalid --iterations")
	}

	conn := connection(bindEnv(cmd), plan.RPC{})
	if conn.Address == "" {
		_ = formatter.Error(ErrCodeConnection, "no node address: set --address or LEDGERLOAD_ADDRESS", nil)
		return NewExitError(ExitCommandError, "no node address")
	}

	p := &plan.Plan{
		Name:       "invoke",
		Sampler:    name,
		Threads:    1,
		Iterations: opts.Iterations,
		Parameters: params,
	}
	return execute(cmd, formatter, p, conn)
}

// parseParams splits name=value pairs. A later pair overrides an earlier
// one of the same name.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q: expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
