// Package audit provides audit logging for deployment actions.
package audit

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Action categorizes audit events
type Action string

const (
	ActionGenerate Action = "generate"
	ActionApply    Action = "apply"
	ActionCommit   Action = "commit"
	ActionRollback Action = "rollback"
)

// Event represents one auditable action against one router
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Router    string    `json:"router"`
	Action    Action    `json:"action"`
	Policies  []string  `json:"policies,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	// ConfigFile is the persisted artifact for generate/apply actions
	ConfigFile string `json:"config_file,omitempty"`
	// ManualCommitRequired is true when an apply left a pending
	// confirmation window on the device
	ManualCommitRequired bool          `json:"manual_commit_required,omitempty"`
	ConfirmMinutes       int           `json:"confirm_minutes,omitempty"`
	Duration             time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Router      string
	Action      Action
	StartTime   time.Time
	EndTime     time.Time
	FailureOnly bool
	Limit       int
}

// NewEvent creates a new audit event
func NewEvent(user, router string, action Action) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Router:    router,
		Action:    action,
	}
}

// WithPolicies sets the policy names covered by the action
func (e *Event) WithPolicies(policies []string) *Event {
	e.Policies = policies
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithConfigFile records the persisted artifact path
func (e *Event) WithConfigFile(path string) *Event {
	e.ConfigFile = path
	return e
}

// WithPendingConfirmation records a confirmed-commit window
func (e *Event) WithPendingConfirmation(minutes int) *Event {
	e.ManualCommitRequired = true
	e.ConfirmMinutes = minutes
	return e
}

// WithDuration sets the action duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}
