package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/plan"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.yaml>",
		Short: "Validate a test plan without connecting to a node",
		Long: `Validate a test plan against the plan schema and the declared
parameters of the sampler it names.

Identity parameters are only checked for presence: resolving them needs a
node and happens when the plan runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p, err := loadPlan(formatter, path)
	if err != nil {
		return err
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{
			"valid":      true,
			"name":       p.Name,
			"sampler":    p.Sampler,
			"threads":    p.Threads,
			"iterations": p.Iterations,
		})
	}
	return formatter.Success(fmt.Sprintf("✓ plan %s is valid: %s, %d thread(s) x %d iteration(s)",
		p.Name, p.Sampler, p.Threads, p.Iterations))
}

// loadPlan loads path and reports failures through formatter. An invalid
// plan exits 1; an unreadable one exits 2.
func loadPlan(formatter *OutputFormatter, path string) (*plan.Plan, error) {
	p, err := plan.Load(path)
	if err == nil {
		formatter.VerboseLog("loaded plan %s from %s", p.Name, path)
		return p, nil
	}

	var ve *plan.ValidationError
	if errors.As(err, &ve) {
		if formatter.JSON() {
			_ = formatter.Error(ErrCodeInvalidPlan, "plan is invalid", ve.Problems)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s: plan is invalid\n", path)
			for _, prob := range ve.Problems {
				fmt.Fprintf(formatter.Writer, "  %s: %s\n", prob.Field, prob.Message)
			}
		}
		return nil, WrapExitError(ExitFailure, "invalid plan", err)
	}

	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return nil, WrapExitError(ExitCommandError, "failed to load plan", err)
}
