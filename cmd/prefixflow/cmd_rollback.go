package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prefixflow/prefixflow/pkg/spec"
)

func newRollbackCmd() *cobra.Command {
	var (
		username string
		password string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "rollback <router-ip>",
		Short: "Revert a router to its previous committed configuration",
		Long: `Open a fresh session and issue 'rollback 1' followed by a commit,
restoring the immediately prior committed configuration. This is the
operator path; automatic rollback of unconfirmed changes is handled by the
device's own timer and needs no command.

Examples:
  prefixflow rollback 192.0.2.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner("")
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

			outcome := runner.RollbackRouter(args[0])
			if !outcome.Success {
				return fmt.Errorf("rollback on %s failed: %s", outcome.Router, outcome.Error)
			}
			fmt.Printf("Rolled back %s to its previous configuration\n", outcome.Router)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username for authentication")
	cmd.Flags().StringVar(&password, "password", "", "password for authentication")
	cmd.Flags().IntVar(&port, "port", 0, "SSH port (default 22)")
	return cmd
}
