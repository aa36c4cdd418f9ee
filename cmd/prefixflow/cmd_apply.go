package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prefixflow/prefixflow/pkg/deploy"
	"github.com/prefixflow/prefixflow/pkg/spec"
)

func newApplyCmd() *cobra.Command {
	var (
		outputDir       string
		rollbackMinutes int
		username        string
		password        string
		port            int
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Generate and deploy with a confirmed-commit rollback window",
		Long: `Generate prefix-filter configurations and apply them to each router over
SSH using 'commit confirmed'. Each device activates the change immediately
but reverts it automatically unless 'prefixflow commit <router-ip>' runs
before the window expires. The rollback timer runs on the device itself.

Examples:
  prefixflow apply -c configs/prefix_policies.yaml
  prefixflow apply --rollback-minutes 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rollbackMinutes < 1 {
				return fmt.Errorf("--rollback-minutes must be at least 1")
			}

			runner, cleanup, err := buildRunner(outputDir)
			if err != nil {
				return err
			}
			defer cleanup()

			runner.Credentials = spec.CredentialOptions{
				Username:    username,
				Password:    password,
				Port:        port,
				Interactive: term.IsTerminal(int(os.Stdin.Fd())),
			}

			outcomes, err := runner.Run(deploy.Options{
				Apply:          true,
				ConfirmMinutes: rollbackMinutes,
			})
			deploy.PrintSummary(os.Stdout, outcomes, true)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "generated-config directory")
	cmd.Flags().IntVar(&rollbackMinutes, "rollback-minutes", 3, "minutes before automatic rollback")
	cmd.Flags().StringVar(&username, "username", "", "username for authentication")
	cmd.Flags().StringVar(&password, "password", "", "password for authentication")
	cmd.Flags().IntVar(&port, "port", 0, "SSH port (default 22)")
	return cmd
}
