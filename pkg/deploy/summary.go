package deploy

import (
	"fmt"
	"io"

	"github.com/prefixflow/prefixflow/pkg/cli"
)

// PrintSummary writes the per-router and aggregate run summary. When any
// router is left awaiting confirmation it prints the follow-up reminder:
// the pending window is a deliberate intermediate outcome, not an error.
func PrintSummary(w io.Writer, outcomes []Outcome, applied bool) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No routers processed.")
		return
	}

	succeeded := 0
	failedPolicies := 0
	pending := false

	fmt.Fprintln(w, cli.Bold("Run summary:"))
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %s %s", cli.DotPad(o.Router, 30), cli.Status(o.Success))
		if len(o.FailedPolicies) > 0 {
			fmt.Fprintf(w, "  %s", cli.Yellow(fmt.Sprintf("(%d policy lookup(s) skipped)", len(o.FailedPolicies))))
		}
		if o.ManualCommitRequired {
			fmt.Fprintf(w, "  %s", cli.Yellow(fmt.Sprintf("commit required within %d min", o.ConfirmMinutes)))
			pending = true
		}
		fmt.Fprintln(w)

		if o.Success {
			succeeded++
		}
		failedPolicies += len(o.FailedPolicies)
	}

	fmt.Fprintf(w, "\n  Routers: %d total, %d succeeded, %d failed\n",
		len(outcomes), succeeded, len(outcomes)-succeeded)
	if failedPolicies > 0 {
		fmt.Fprintf(w, "  Policies skipped: %d\n", failedPolicies)
	}

	if applied && pending {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.Yellow("IMPORTANT: changes are provisional. Each device reverts when its"))
		fmt.Fprintln(w, cli.Yellow("confirmation window expires. Make them permanent with:"))
		fmt.Fprintln(w, cli.Bold("  prefixflow commit <router-ip>   (or 'prefixflow commit all')"))
	}
}
