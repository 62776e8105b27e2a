package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ledgerload/internal/devnode"
	"github.com/roach88/ledgerload/internal/store"
)

// DefaultNotary is registered when devnode is started without --notary.
const DefaultNotary = "O=Notary,L=London,C=GB"

// NewDevnodeCommand creates the devnode command.
func NewDevnodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devnode",
		Short: "Serve a development node for local runs",
		Long: `Serve a stand-in node that answers identity queries and "runs" flows.

Flows are checked against the known flow signatures and answered after the
configured latency. Nothing is notarised or persisted to a ledger; the node
only journals each client id so a repeated start returns the first result.

Every flag can also be set with a LEDGERLOAD_ variable, e.g.
LEDGERLOAD_FAIL_EVERY=10.

Example:
  ledgerload devnode --db /tmp/devnode.db \
    --party "O=Bank B,L=New York,C=US" --latency 20ms --fail-every 50`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.String("listen", ":10006", "address to listen on")
	f.String("db", "devnode.db", "path to the node's SQLite database")
	f.StringArray("notary", nil, "X.500 name of a notary (repeatable; default "+DefaultNotary+")")
	f.StringArray("party", nil, "X.500 name of a well-known party (repeatable)")
	f.Duration("latency", 0, "simulated time each flow takes")
	f.Int("fail-every", 0, "fail every Nth flow (0 never fails)")
	f.String("username", "", "require this RPC username")
	f.String("password", "", "require this RPC password")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serveDevnode(rootOpts, cmd)
	}
	return cmd
}

func serveDevnode(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := formatter.Logger()
	v := bindEnv(cmd)

	cfg := devnode.Config{
		Latency:   v.GetDuration("latency"),
		FailEvery: v.GetInt("fail-every"),
		Username:  v.GetString("username"),
		Password:  v.GetString("password"),
	}
	if cfg.FailEvery < 0 || cfg.Latency < 0 {
		_ = formatter.Error(ErrCodeConfiguration, "--fail-every and --latency must not be negative", nil)
		return NewExitError(ExitCommandError, "invalid devnode flags")
	}
	notaries := v.GetStringSlice("notary")
	if len(notaries) == 0 {
		notaries = []string{DefaultNotary}
	}

	network, err := devnode.Network(notaries, v.GetStringSlice("party"))
	if err != nil {
		_ = formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid network map", err)
	}

	st, err := store.Open(v.GetString("db"), store.WithNetwork(network))
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	known, err := st.Parties(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read network map", err)
	}
	logger.Info("network registered", "seeded", network.Size(), "known", len(known))
	for _, p := range known {
		logger.Debug("identity", "name", p.Name, "key", p.OwningKey)
	}

	node := devnode.New(st, cfg, devnode.WithLogger(logger))

	if err := node.ListenAndServe(ctx, v.GetString("listen")); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "devnode stopped", err)
	}
	logger.Info("devnode stopped")
	return nil
}
