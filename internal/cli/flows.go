package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/flow"
)

// FlowSignature describes one flow a node accepts.
type FlowSignature struct {
	Flow      string `json:"flow"`
	Signature string `json:"signature"`
	Arity     int    `json:"arity"`
}

// NewFlowsCommand creates the flows command.
func NewFlowsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List the flows samplers can start and their argument signatures",
		Long: `List every flow in the catalog with its argument names and types.

The dev node rejects a start whose arguments do not match the signature.

Example:
  ledgerload flows
  ledgerload flows --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			catalog := flow.Catalog()
			listing := make([]FlowSignature, len(catalog))
			for i, t := range catalog {
				listing[i] = FlowSignature{Flow: t.Flow, Signature: t.Signature(), Arity: len(t.Params)}
			}

			if formatter.JSON() {
				return formatter.Success(listing)
			}
			for _, f := range listing {
				fmt.Fprintln(formatter.Writer, f.Signature)
			}
			return nil
		},
	}
}
