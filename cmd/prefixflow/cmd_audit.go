package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/prefixflow/prefixflow/pkg/audit"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View deployment audit logs",
		Long: `View the audit log of generation, apply, commit, and rollback actions.

Examples:
  prefixflow audit list --router edge1-jnb
  prefixflow audit list --last 24h --failures`,
	}
	cmd.AddCommand(newAuditListCmd())
	return cmd
}

func newAuditListCmd() *cobra.Command {
	var (
		router   string
		action   string
		last     string
		limit    int
		failures bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit events",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := audit.Filter{
				Router:      router,
				Action:      audit.Action(action),
				Limit:       limit,
				FailureOnly: failures,
			}

			if last != "" {
				duration, err := time.ParseDuration(last)
				if err != nil {
					return fmt.Errorf("invalid duration: %s", last)
				}
				filter.StartTime = time.Now().Add(-duration)
			}

			logger := openAudit()
			defer logger.Close()

			events, err := logger.Query(filter)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No audit events found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tUSER\tROUTER\tACTION\tRESULT\tDETAIL")
			for _, e := range events {
				result := "ok"
				detail := e.ConfigFile
				if !e.Success {
					result = "failed"
					detail = e.Error
				} else if e.ManualCommitRequired {
					result = fmt.Sprintf("pending (%dm)", e.ConfirmMinutes)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.User, e.Router, e.Action, result, detail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&router, "router", "", "filter by router")
	cmd.Flags().StringVar(&action, "action", "", "filter by action (generate|apply|commit|rollback)")
	cmd.Flags().StringVar(&last, "last", "", "only events in the last duration (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to show")
	cmd.Flags().BoolVar(&failures, "failures", false, "only failed events")
	return cmd
}
