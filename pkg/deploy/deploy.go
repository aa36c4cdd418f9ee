// Package deploy orchestrates prefix-filter generation and deployment:
// routers and policies are processed strictly sequentially, one lookup and
// one compile per policy, one confirmed-commit apply per router.
package deploy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prefixflow/prefixflow/pkg/audit"
	"github.com/prefixflow/prefixflow/pkg/bgpq"
	"github.com/prefixflow/prefixflow/pkg/device"
	"github.com/prefixflow/prefixflow/pkg/policy"
	"github.com/prefixflow/prefixflow/pkg/spec"
	"github.com/prefixflow/prefixflow/pkg/util"
)

// ConfigSession is the slice of the device session the deployment flow
// drives. device.Session implements it; tests substitute fakes.
type ConfigSession interface {
	Connect() error
	ApplyConfirmed(statements []string, confirmMinutes int) (*device.ApplyResult, error)
	CommitPermanently() (string, error)
	RollbackOne() (string, error)
	Disconnect() error
	State() device.State
}

// SessionFactory opens a fresh session for one router. Exactly one session
// per router is open at any time; the sequential run loop guarantees it.
type SessionFactory func(host, addr string, creds spec.Credentials) ConfigSession

// Options controls one deployment run.
type Options struct {
	// Apply deploys the compiled statements; false generates artifacts only.
	Apply bool
	// ConfirmMinutes is the auto-rollback window for commit confirmed.
	ConfirmMinutes int
}

// Outcome is the per-router result record.
type Outcome struct {
	Router     string
	Success    bool
	Output     string
	ConfigFile string
	// ManualCommitRequired means the apply succeeded but a plain commit
	// must follow within ConfirmMinutes or the device reverts.
	ManualCommitRequired bool
	ConfirmMinutes       int
	AppliedPolicies      []string
	FailedPolicies       []string
	Error                string
}

// Runner drives a full generation/deployment run from a loaded config.
type Runner struct {
	Config    *spec.Config
	Lookup    bgpq.Invoker
	Sessions  SessionFactory
	Audit     audit.Logger
	OutputDir string
	// Credentials carries flag/env overrides for credential resolution.
	Credentials spec.CredentialOptions

	now func() time.Time
}

// NewRunner creates a Runner with the real bgpq4 invoker and SSH sessions.
func NewRunner(cfg *spec.Config, outputDir string) *Runner {
	return &Runner{
		Config: cfg,
		Lookup: bgpq.NewRunner(),
		Sessions: func(host, addr string, creds spec.Credentials) ConfigSession {
			return device.NewSession(host, addr, creds.Username, creds.Password)
		},
		Audit:     audit.NopLogger{},
		OutputDir: outputDir,
		now:       time.Now,
	}
}

// compiledPolicy is one policy's ready-to-send statement block.
type compiledPolicy struct {
	name       string
	asSet      string
	statements []string // comment header first, then set statements
}

// Run processes every router in declared order. Per-policy failures skip
// that policy, per-router failures skip that router; only a missing bgpq4
// binary aborts the run, since no policy could ever be generated.
func (r *Runner) Run(opts Options) ([]Outcome, error) {
	timestamp := r.now().Format("20060102_150405")
	var outcomes []Outcome

	for _, router := range r.Config.Routers {
		if router.Hostname == "" || router.IP == "" {
			util.Warnf("Skipping router with missing hostname or IP: %+v", router)
			continue
		}

		log := util.WithRouter(router.Hostname)
		log.Infof("Processing router %s (%s)", router.Hostname, router.IP)

		outcome := Outcome{Router: router.Hostname}
		compiled, failed, err := r.compileRouterPolicies(router)
		if err != nil {
			// bgpq4 missing: nothing in the run can proceed.
			return outcomes, err
		}
		outcome.FailedPolicies = failed
		for _, cp := range compiled {
			outcome.AppliedPolicies = append(outcome.AppliedPolicies, cp.name)
		}

		if len(compiled) == 0 {
			log.Warnf("No policies generated for %s", router.Hostname)
			outcome.Error = "no policies generated"
			outcomes = append(outcomes, outcome)
			continue
		}

		path, err := r.writeArtifact(router, compiled, timestamp)
		if err != nil {
			log.Errorf("Writing generated config: %v", err)
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.ConfigFile = path
		log.Infof("Configuration written to %s", path)

		if !opts.Apply {
			outcome.Success = true
			outcomes = append(outcomes, outcome)
			r.logAudit(audit.ActionGenerate, &outcome, opts)
			continue
		}

		r.applyToRouter(router, compiled, opts, &outcome)
		outcomes = append(outcomes, outcome)
		r.logAudit(audit.ActionApply, &outcome, opts)
	}

	return outcomes, nil
}

// compileRouterPolicies looks up and compiles each of a router's policies.
// Returns the compiled blocks in declared order and the names of policies
// that were skipped. A missing bgpq4 binary is returned as an error.
func (r *Runner) compileRouterPolicies(router spec.Router) ([]compiledPolicy, []string, error) {
	var compiled []compiledPolicy
	var failed []string

	for _, p := range router.Policies {
		if p.Name == "" || p.ASSet == "" {
			util.Warnf("Skipping policy with missing name or AS set: %+v", p)
			failed = append(failed, policyLabel(p))
			continue
		}

		log := util.WithPolicy(p.Name)
		log.Infof("Generating prefix list for %s", p.ASSet)

		result, err := r.Lookup.Lookup(p.ASSet, p.Name, r.Config.RIR(p), r.Config.MaxPrefixLength(p))
		if err != nil {
			if errors.Is(err, util.ErrLookupToolNotFound) {
				return nil, nil, util.ErrLookupToolNotFound
			}
			log.Errorf("Lookup failed: %v", err)
			failed = append(failed, p.Name)
			continue
		}

		statements := policy.Compile(result.Entries, p.Name)
		if statements == nil {
			log.Errorf("No statements compiled for %s", p.Name)
			failed = append(failed, p.Name)
			continue
		}

		block := append([]string{policy.CommentHeader(p.Name, p.ASSet)}, statements...)
		compiled = append(compiled, compiledPolicy{
			name:       p.Name,
			asSet:      p.ASSet,
			statements: block,
		})
	}

	return compiled, failed, nil
}

// applyToRouter opens one session and makes exactly one confirmed-commit
// apply call covering the router's entire batch, so the rollback window
// protects all of its policy changes as one unit.
func (r *Runner) applyToRouter(router spec.Router, compiled []compiledPolicy, opts Options, outcome *Outcome) {
	log := util.WithRouter(router.Hostname)

	creds, err := spec.ResolveCredentials(router, r.Credentials)
	if err != nil {
		log.Errorf("Credentials: %v", err)
		outcome.Error = err.Error()
		return
	}

	sess := r.Sessions(router.Hostname, fmt.Sprintf("%s:%d", router.IP, creds.Port), creds)
	if err := sess.Connect(); err != nil {
		log.Errorf("Connection failed: %v", err)
		outcome.Error = err.Error()
		return
	}

	var statements []string
	for _, cp := range compiled {
		statements = append(statements, cp.statements...)
	}

	log.Infof("Applying configuration with commit confirmed %d...", opts.ConfirmMinutes)
	result, err := sess.ApplyConfirmed(statements, opts.ConfirmMinutes)
	if result != nil {
		outcome.Output = result.Output
	}
	if err != nil {
		log.Errorf("Apply failed: %v", err)
		outcome.Error = err.Error()
		// The session is spent; the device's candidate/active separation
		// leaves the running config untouched.
		_ = sess.Disconnect()
		return
	}

	outcome.Success = true
	outcome.ManualCommitRequired = result.ManualCommitRequired

	if result.ManualCommitRequired {
		outcome.ConfirmMinutes = result.ConfirmMinutes
		// Deliberately no Disconnect here: the session stays alive while
		// the device-side rollback timer is the safety net. A fresh
		// session handles the later permanent commit.
		log.Warnf("Device %s rolls back in %d minutes unless committed: run 'prefixflow commit %s'",
			router.Hostname, result.ConfirmMinutes, router.IP)
		return
	}

	_ = sess.Disconnect()
}

// writeArtifact persists the concatenated statement batch for one router,
// named by router identity and generation timestamp.
func (r *Runner) writeArtifact(router spec.Router, compiled []compiledPolicy, timestamp string) (string, error) {
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Generated: %s\n", r.now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "# Router: %s (%s)\n\n", router.Hostname, router.IP)
	for _, cp := range compiled {
		sb.WriteString(strings.Join(cp.statements, "\n"))
		sb.WriteString("\n\n")
	}

	path := filepath.Join(r.OutputDir, fmt.Sprintf("%s_%s.conf", router.Hostname, timestamp))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (r *Runner) logAudit(action audit.Action, outcome *Outcome, opts Options) {
	ev := audit.NewEvent(currentUser(), outcome.Router, action).
		WithPolicies(outcome.AppliedPolicies).
		WithConfigFile(outcome.ConfigFile)
	if outcome.Success {
		ev.WithSuccess()
	} else {
		ev.WithError(errors.New(outcome.Error))
	}
	if outcome.ManualCommitRequired {
		ev.WithPendingConfirmation(outcome.ConfirmMinutes)
	}
	if err := r.Audit.Log(ev); err != nil {
		util.Warnf("audit: %v", err)
	}
}

func policyLabel(p spec.Policy) string {
	if p.Name != "" {
		return p.Name
	}
	return "(unnamed policy)"
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
