package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/samplers"
	"github.com/roach88/ledgerload/internal/scenario"
)

// SamplerParameters is the parameter listing of one sampler.
type SamplerParameters struct {
	Sampler    string               `json:"sampler"`
	Parameters scenario.Parameters `json:"parameters"`
}

// NewParamsCommand creates the params command.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params [sampler]",
		Short: "List the parameters a sampler accepts",
		Long: `List each sampler's parameters with their defaults and descriptions.

These are the names a test plan may set under "parameters". With no
argument every registered sampler is listed.

Example:
  ledgerload params CashIssue
  ledgerload params --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listParams(rootOpts, args, cmd)
		},
	}
}

func listParams(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	names := samplers.Names()
	if len(args) == 1 {
		names = args
	}

	listing := make([]SamplerParameters, 0, len(names))
	for _, name := range names {
		scn, err := samplers.Lookup(name)
		if err != nil {
			_ = formatter.Error(ErrCodeUnknown, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown sampler", err)
		}
		listing = append(listing, SamplerParameters{Sampler: name, Parameters: scn.Parameters()})
	}

	if formatter.JSON() {
		return formatter.Success(listing)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for i, s := range listing {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", s.Sampler)
		fmt.Fprintln(w, "  NAME\tKIND\tDEFAULT\tDESCRIPTION")
		for _, p := range s.Parameters {
			def := p.Default
			if p.Required {
				def = "(required)"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Name, p.Kind, def, p.Description)
		}
	}
	return w.Flush()
}
