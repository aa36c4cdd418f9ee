package deploy

import (
	"fmt"

	"github.com/prefixflow/prefixflow/pkg/audit"
	"github.com/prefixflow/prefixflow/pkg/spec"
	"github.com/prefixflow/prefixflow/pkg/util"
)

// CommitRouter opens a fresh session against a previously-configured
// router and issues the permanent commit that cancels its pending rollback
// window. addr may be an IP or a hostname from the config; an address not
// present in the config is dialed as-is with the operator's credentials.
func (r *Runner) CommitRouter(addr string) Outcome {
	return r.followUp(addr, audit.ActionCommit, func(sess ConfigSession) (string, error) {
		return sess.CommitPermanently()
	})
}

// RollbackRouter reverts a router to its previous committed configuration
// via rollback-and-commit. Operator path only.
func (r *Runner) RollbackRouter(addr string) Outcome {
	return r.followUp(addr, audit.ActionRollback, func(sess ConfigSession) (string, error) {
		return sess.RollbackOne()
	})
}

// CommitAll issues the permanent commit against every router in the config,
// sequentially, and returns one outcome per router.
func (r *Runner) CommitAll() []Outcome {
	var outcomes []Outcome
	for _, router := range r.Config.Routers {
		if router.IP == "" {
			util.Warnf("Skipping router with missing IP: %+v", router)
			continue
		}
		util.WithRouter(router.Hostname).Info("Committing pending changes...")
		outcomes = append(outcomes, r.CommitRouter(router.IP))
	}
	return outcomes
}

// followUp runs one session-scoped operation against one router and always
// tears the session down afterwards.
func (r *Runner) followUp(addr string, action audit.Action, op func(ConfigSession) (string, error)) Outcome {
	router, ok := r.Config.FindRouter(addr)
	if !ok {
		router = spec.Router{Hostname: addr, IP: addr}
	}

	outcome := Outcome{Router: router.Hostname}
	log := util.WithRouter(router.Hostname)

	creds, err := spec.ResolveCredentials(router, r.Credentials)
	if err != nil {
		log.Errorf("Credentials: %v", err)
		outcome.Error = err.Error()
		r.logAudit(action, &outcome, Options{})
		return outcome
	}

	sess := r.Sessions(router.Hostname, fmt.Sprintf("%s:%d", router.IP, creds.Port), creds)
	if err := sess.Connect(); err != nil {
		log.Errorf("Connection failed: %v", err)
		outcome.Error = err.Error()
		r.logAudit(action, &outcome, Options{})
		return outcome
	}
	defer sess.Disconnect()

	out, err := op(sess)
	outcome.Output = out
	if err != nil {
		log.Errorf("%s failed: %v", action, err)
		outcome.Error = err.Error()
	} else {
		outcome.Success = true
		log.Infof("%s succeeded", action)
	}

	r.logAudit(action, &outcome, Options{})
	return outcome
}
