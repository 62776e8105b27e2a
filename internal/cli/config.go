package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/ledgerload/internal/plan"
)

// EnvPrefix prefixes environment overrides, e.g. LEDGERLOAD_ADDRESS.
const EnvPrefix = "LEDGERLOAD"

// bindEnv returns a viper instance over the command's flags. A flag that
// was set wins, then the LEDGERLOAD_ environment variable, then any
// default registered on the instance, then the flag's own default.
func bindEnv(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

// addConnectionFlags registers the node connection flags.
func addConnectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("address", "", "node RPC address (ws://host:port/rpc)")
	f.String("username", "", "RPC username")
	f.String("password", "", "RPC password")
	f.Duration("call-timeout", 0, "bound on each RPC call (0 waits indefinitely)")
}

// connection merges flag and environment overrides over base.
func connection(v *viper.Viper, base plan.RPC) plan.RPC {
	v.SetDefault("address", base.Address)
	v.SetDefault("username", base.Username)
	v.SetDefault("password", base.Password)
	v.SetDefault("call-timeout", base.CallTimeout)

	return plan.RPC{
		Address:     v.GetString("address"),
		Username:    v.GetString("username"),
		Password:    v.GetString("password"),
		CallTimeout: v.GetDuration("call-timeout"),
	}
}
