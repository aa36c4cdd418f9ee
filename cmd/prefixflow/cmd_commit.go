package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prefixflow/prefixflow/pkg/cli"
	"github.com/prefixflow/prefixflow/pkg/deploy"
	"github.com/prefixflow/prefixflow/pkg/spec"
)

func newCommitCmd() *cobra.Command {
	var (
		username string
		password string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "commit <router-ip>|all",
		Short: "Make pending confirmed-commit changes permanent",
		Long: `Open a fresh session against a previously-configured router and issue a
plain commit, cancelling its pending auto-rollback timer. Use 'all' to
commit every router in the config.

Examples:
  prefixflow commit 192.0.2.1
  prefixflow commit all --username noc`,
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

			var outcomes []deploy.Outcome
			if args[0] == "all" {
				outcomes = runner.CommitAll()
			} else {
				outcomes = []deploy.Outcome{runner.CommitRouter(args[0])}
			}

			succeeded := 0
			for _, o := range outcomes {
				fmt.Printf("  %s %s\n", cli.DotPad(o.Router, 30), cli.Status(o.Success))
				if o.Success {
					succeeded++
				}
			}
			fmt.Printf("\n  Committed: %d of %d\n", succeeded, len(outcomes))

			if succeeded < len(outcomes) {
				return fmt.Errorf("%d router(s) failed to commit", len(outcomes)-succeeded)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username for authentication")
	cmd.Flags().StringVar(&password, "password", "", "password for authentication")
	cmd.Flags().IntVar(&port, "port", 0, "SSH port (default 22)")
	return cmd
}
