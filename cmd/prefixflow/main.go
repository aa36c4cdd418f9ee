// Prefixflow — BGP prefix-filter generation and safe deployment
//
// prefixflow reads a YAML document describing routers and the IRR-derived
// prefix policies each should carry, expands AS-sets with bgpq4, compiles
// Junos set-statements, and deploys them over SSH with "commit confirmed"
// so a filter that severs the management path rolls itself back.
//
// Usage:
//
//	prefixflow generate -c prefix_policies.yaml    Generate config files only
//	prefixflow apply -c prefix_policies.yaml       Generate and deploy (confirmed commit)
//	prefixflow commit <router-ip>|all              Make pending changes permanent
//	prefixflow rollback <router-ip>                Revert to the previous configuration
//	prefixflow audit list                          Show past deployment actions
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prefixflow/prefixflow/pkg/audit"
	"github.com/prefixflow/prefixflow/pkg/settings"
	"github.com/prefixflow/prefixflow/pkg/util"
	"github.com/prefixflow/prefixflow/pkg/version"
)

var (
	configPath string
	verbose    bool
	logJSON    bool

	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "prefixflow",
	Short:             "BGP prefix-filter generation and safe deployment",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Prefixflow generates BGP prefix-filter policies from IRR AS-sets and
deploys them to Juniper routers with a confirmed-commit rollback window.

Applied changes are provisional: each device reverts automatically unless
'prefixflow commit <router-ip>' runs before the window expires.

  prefixflow apply -c prefix_policies.yaml --rollback-minutes 5`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "policy configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newApplyCmd(),
		newCommitCmd(),
		newRollbackCmd(),
		newAuditCmd(),
		newVersionCmd(),
	)
}

// requireConfigPath resolves the config file from:
// -c flag > PREFIXFLOW_CONFIG env > settings > default path.
func requireConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if v := os.Getenv("PREFIXFLOW_CONFIG"); v != "" {
		return v, nil
	}
	if userSettings.ConfigPath != "" {
		return userSettings.ConfigPath, nil
	}
	def := "configs/prefix_policies.yaml"
	if _, err := os.Stat(def); err == nil {
		return def, nil
	}
	return "", fmt.Errorf("config file required: use -c <file> or set PREFIXFLOW_CONFIG")
}

// openAudit opens the audit log, falling back to a no-op logger so a broken
// audit path never blocks a deployment.
func openAudit() audit.Logger {
	logger, err := audit.NewFileLogger(userSettings.GetAuditLog(), audit.RotationConfig{
		MaxSize:    10 << 20,
		MaxBackups: 5,
	})
	if err != nil {
		util.Warnf("Audit log unavailable: %v", err)
		return audit.NopLogger{}
	}
	return logger
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("prefixflow %s\n", version.String())
		},
	}
}
