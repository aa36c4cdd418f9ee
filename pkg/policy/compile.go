// Package policy compiles prefix-filter lookup results into Junos
// set-statement sequences. Pure text transformation: no I/O, no clock.
package policy

import (
	"fmt"

	"github.com/prefixflow/prefixflow/pkg/bgpq"
)

// Compile turns lookup entries into an ordered Junos statement sequence for
// one policy. The order is a correctness contract: the protocol-match term
// first, then one route-filter line per entry in input order, then the
// accept-and-continue line, then the unconditional reject term.
// Returns nil when there are no entries; the caller must treat that as a
// policy-level failure, not an empty configuration.
func Compile(entries []bgpq.Entry, policyName string) []string {
	if len(entries) == 0 {
		return nil
	}

	prefix := fmt.Sprintf("set policy-options policy-statement %s", policyName)

	statements := make([]string, 0, len(entries)+3)
	statements = append(statements, prefix+" term route-set1 from protocol bgp")
	for _, e := range entries {
		statements = append(statements,
			fmt.Sprintf("%s term route-set1 from route-filter %s %s", prefix, e.Prefix, e.Qualifier))
	}
	statements = append(statements,
		prefix+" term route-set1 then next policy",
		prefix+" term reject then reject",
	)

	return statements
}

// CommentHeader returns the inert comment line that prefixes a policy's
// block in generated artifacts. Comment lines are documentation only and
// are never transmitted to a device.
func CommentHeader(policyName, asSet string) string {
	return fmt.Sprintf("# BGP Prefix List for %s (%s)", policyName, asSet)
}
