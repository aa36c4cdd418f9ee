// Package bgpq wraps the external bgpq4 tool that expands IRR AS-sets into
// prefix lists. One invocation per policy, no retries: a failed lookup is a
// per-policy failure, a missing binary aborts the whole run.
package bgpq

import (
	"bytes"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/prefixflow/prefixflow/pkg/util"
)

// Entry is one (prefix, qualifier) pair extracted from bgpq4 output.
// Qualifier is either "exact" or an "upto /N" bound, carried verbatim.
type Entry struct {
	Prefix    string
	Qualifier string
}

// Result is a successful lookup: an ordered, non-empty list of entries
// plus the raw tool output for diagnostics.
type Result struct {
	ASSet   string
	Entries []Entry
	Raw     string
}

// Invoker resolves an AS-set into prefix-filter entries.
type Invoker interface {
	Lookup(asSet, policyName, rir string, maxLength int) (*Result, error)
}

// Runner invokes the bgpq4 binary.
type Runner struct {
	// Binary is the tool to execute; defaults to "bgpq4" on $PATH.
	Binary string
}

// NewRunner returns a Runner using the default bgpq4 binary.
func NewRunner() *Runner {
	return &Runner{Binary: "bgpq4"}
}

// routeFilterRe matches the Junos-format route-filter lines bgpq4 emits.
var routeFilterRe = regexp.MustCompile(`route-filter (\S+) (exact|upto /\d+);`)

// RouteSetLabel disambiguates the bgpq4 -l label: policy names that do not
// already denote a route-set or as-set get the default route-set suffix.
func RouteSetLabel(policyName string) string {
	lower := strings.ToLower(policyName)
	if strings.Contains(lower, "route-set") || strings.Contains(lower, "as-set") {
		return policyName
	}
	return policyName + "/route-set1"
}

// Lookup runs bgpq4 for one AS-set and parses its output.
// Returns util.ErrLookupToolNotFound when the binary is absent (the caller
// must abort the run), a *util.LookupError on non-zero exit or when the
// output contains no route-filter entries.
func (r *Runner) Lookup(asSet, policyName, rir string, maxLength int) (*Result, error) {
	args := []string{
		"-S", rir,
		"-A", // aggregate prefixes
		"-J", // Junos format
		"-E", // extended access-list / route-filter output
		"-l", RouteSetLabel(policyName),
		asSet,
		"-R", strconv.Itoa(maxLength),
		"-M", "protocol bgp",
	}

	cmd := exec.Command(r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	util.WithPolicy(policyName).Debugf("running: %s %s", r.Binary, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, util.ErrLookupToolNotFound
		}
		return nil, &util.LookupError{
			ASSet:  asSet,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	entries := ParseRouteFilters(stdout.String())
	if len(entries) == 0 {
		return nil, &util.LookupError{ASSet: asSet, Err: util.ErrEmptyLookup}
	}

	return &Result{
		ASSet:   asSet,
		Entries: entries,
		Raw:     stdout.String(),
	}, nil
}

// ParseRouteFilters extracts (prefix, qualifier) pairs from bgpq4 Junos
// output, preserving their order of appearance.
func ParseRouteFilters(output string) []Entry {
	matches := routeFilterRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, Entry{Prefix: m[1], Qualifier: m[2]})
	}
	return entries
}
