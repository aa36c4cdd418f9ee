// Package device implements the confirmed-commit deployment protocol
// against a single router's interactive CLI session.
//
// A Session is a state machine bound to exactly one device for its
// lifetime. Configuration is applied with "commit confirmed <minutes>":
// the change activates immediately but the device schedules an automatic
// revert unless a plain commit arrives before the window closes. A filter
// policy change can sever the very management path used to deploy it, so
// the bounded rollback window is the safety net for every deployment.
package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prefixflow/prefixflow/pkg/util"
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateConfigMode
	// StateAwaitingConfirmation: configuration applied with a pending
	// device-side rollback timer. The session stays alive; disconnecting
	// from this state is a caller error.
	StateAwaitingConfirmation
	StateConfirmed
	StateRolledBack
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateConfigMode:
		return "config-mode"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled-back"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Timeouts for the interactive protocol. Commit round-trips are allowed a
// much longer wait: the device may pause before returning control while it
// validates and activates the candidate configuration.
const (
	ConnectTimeout = 30 * time.Second
	CommandTimeout = 10 * time.Second
	CommitTimeout  = 90 * time.Second
)

// ApplyResult is the outcome of an ApplyConfirmed call. Output holds the
// full command/response transcript verbatim. On failure the result is still
// returned (alongside the error) so the transcript is available for
// diagnostics.
type ApplyResult struct {
	Output string
	// ManualCommitRequired is true after a successful confirmed commit:
	// a plain commit must follow within the window or the device reverts.
	ManualCommitRequired bool
	ConfirmMinutes       int
}

// Session owns one interactive connection to one router. Not safe for
// concurrent use; commands are strictly sequential by design.
type Session struct {
	host string
	addr string

	dial     func() (Transport, error)
	classify ResponseClassifier

	tr    Transport
	state State
	// A session is single-use: once connected (or once a connect attempt
	// fails) it must not be dialed again.
	used bool

	log *logrus.Entry
}

// NewSession creates a session for one router. host is the display name,
// addr the "ip:port" dial target.
func NewSession(host, addr, username, password string) *Session {
	return &Session{
		host: host,
		addr: addr,
		dial: func() (Transport, error) {
			return DialSSH(addr, username, password, ConnectTimeout)
		},
		classify: NewJunosClassifier(),
		state:    StateDisconnected,
		log:      util.WithRouter(host),
	}
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Connect opens the transport and prepares the CLI session. On failure the
// session remains Disconnected and must not be reused.
func (s *Session) Connect() error {
	if s.used || s.state != StateDisconnected {
		return fmt.Errorf("%w: connect from state %s", util.ErrInvalidState, s.state)
	}
	s.used = true

	s.log.Infof("Connecting to %s...", s.addr)
	tr, err := s.dial()
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.host, err)
	}

	// Drain the login banner and MOTD up to the first prompt.
	if _, err := tr.ReadUntilPrompt(ConnectTimeout); err != nil {
		tr.Close()
		return fmt.Errorf("connect %s: waiting for initial prompt: %w", s.host, err)
	}

	s.tr = tr
	// Disable paging so long command echoes come back in one read.
	if _, err := s.exchange("set cli screen-length 0", CommandTimeout); err != nil {
		tr.Close()
		s.tr = nil
		return fmt.Errorf("connect %s: session preparation: %w", s.host, err)
	}

	s.state = StateConnected
	s.log.Infof("Connected to %s", s.host)
	return nil
}

// ApplyConfirmed enters configuration mode, applies each statement one at a
// time, and schedules activation with "commit confirmed <minutes>".
//
// Statements are never pipelined: the line-oriented CLI has no framing to
// disambiguate overlapping responses. The first statement whose echo
// classifies as an error aborts the batch before the next statement is
// transmitted and fails the session; the device keeps the partial candidate
// configuration, which the candidate/active separation renders inert.
// Comment lines ("#"-prefixed) are documentation and never transmitted.
func (s *Session) ApplyConfirmed(statements []string, confirmMinutes int) (*ApplyResult, error) {
	if s.state != StateConnected {
		return nil, fmt.Errorf("%w: apply from state %s", util.ErrInvalidState, s.state)
	}

	var transcript strings.Builder
	fail := func(err error) (*ApplyResult, error) {
		s.state = StateFailed
		return &ApplyResult{Output: transcript.String()}, err
	}

	s.log.Info("Entering configuration mode...")
	out, err := s.exchange("configure", CommandTimeout)
	transcript.WriteString(out)
	if err != nil {
		return fail(fmt.Errorf("entering configuration mode: %w", err))
	}
	s.state = StateConfigMode

	s.log.Info("Sending configuration statements...")
	for _, stmt := range statements {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		s.log.Debugf("Sending: %s", trimmed)
		resp, err := s.exchange(trimmed, CommandTimeout)
		transcript.WriteString(fmt.Sprintf("%s\n%s\n", trimmed, resp))
		if err != nil {
			return fail(fmt.Errorf("command %q: %w", trimmed, err))
		}
		if s.classify.IsError(resp) {
			cmdErr := &util.CommandError{Command: trimmed, Response: resp}
			s.log.Error(cmdErr.Error())
			return fail(cmdErr)
		}
	}

	commitCmd := fmt.Sprintf("commit confirmed %d", confirmMinutes)
	s.log.Infof("Running %s...", commitCmd)
	out, err = s.exchange(commitCmd, CommitTimeout)
	transcript.WriteString(fmt.Sprintf("\n%s\n%s", commitCmd, out))
	if err != nil {
		return fail(fmt.Errorf("%s: %w", commitCmd, err))
	}

	// The device permits leaving configuration mode while the rollback
	// timer is pending.
	out, err = s.exchange("exit", CommandTimeout)
	transcript.WriteString(out)
	if err != nil {
		return fail(fmt.Errorf("exiting configuration mode: %w", err))
	}

	s.state = StateAwaitingConfirmation
	s.log.Warnf("Configuration applied with commit confirmed %d: the device reverts in %d minutes unless a commit follows", confirmMinutes, confirmMinutes)

	return &ApplyResult{
		Output:               transcript.String(),
		ManualCommitRequired: true,
		ConfirmMinutes:       confirmMinutes,
	}, nil
}

// CommitPermanently issues the plain commit that cancels a pending rollback
// timer and makes the active configuration permanent. Success is determined
// solely by the presence of the completion marker in the response.
func (s *Session) CommitPermanently() (string, error) {
	if err := s.ensureConfigMode(); err != nil {
		return "", err
	}

	s.log.Info("Committing configuration permanently...")
	out, err := s.exchange("commit", CommitTimeout)
	if err != nil {
		s.state = StateFailed
		return out, fmt.Errorf("commit: %w", err)
	}
	if !s.classify.IsComplete(out) {
		s.state = StateFailed
		return out, fmt.Errorf("commit failed: %s", strings.TrimSpace(out))
	}

	s.state = StateConfirmed
	s.log.Info("Configuration committed")
	return out, nil
}

// RollbackOne reverts to the immediately prior committed configuration via
// a rollback-and-commit pair. Operator path only: the deployment flow never
// rolls back itself, the device's own timer does.
func (s *Session) RollbackOne() (string, error) {
	if err := s.ensureConfigMode(); err != nil {
		return "", err
	}

	s.log.Info("Rolling back to previous configuration...")
	out, err := s.exchange("rollback 1", CommandTimeout)
	if err != nil {
		s.state = StateFailed
		return out, fmt.Errorf("rollback 1: %w", err)
	}

	commitOut, err := s.exchange("commit", CommitTimeout)
	out += "\n" + commitOut
	if err != nil {
		s.state = StateFailed
		return out, fmt.Errorf("committing rollback: %w", err)
	}
	if !s.classify.IsComplete(commitOut) {
		s.state = StateFailed
		return out, fmt.Errorf("rollback commit failed: %s", strings.TrimSpace(commitOut))
	}

	s.state = StateRolledBack
	s.log.Info("Rolled back to previous configuration")
	return out, nil
}

// Disconnect closes the transport. Disconnecting while a confirmation is
// pending is refused: the device-side rollback timer is the safety net for
// this session and the caller must keep it alive until the window resolves.
// (The timer itself runs on the device and is not cancelled by transport
// loss; the rule exists so the pending window is always a deliberate,
// visible hand-off.)
func (s *Session) Disconnect() error {
	if s.state == StateAwaitingConfirmation {
		return util.ErrConfirmationPending
	}
	if s.tr == nil {
		return nil
	}
	err := s.tr.Close()
	s.tr = nil
	s.state = StateDisconnected
	s.log.Infof("Disconnected from %s", s.host)
	return err
}

// ensureConfigMode validates connectivity and enters configuration mode if
// the session is not already there.
func (s *Session) ensureConfigMode() error {
	switch s.state {
	case StateConfigMode:
		return nil
	case StateConnected:
		if _, err := s.exchange("configure", CommandTimeout); err != nil {
			s.state = StateFailed
			return fmt.Errorf("entering configuration mode: %w", err)
		}
		s.state = StateConfigMode
		return nil
	case StateDisconnected:
		return util.ErrNotConnected
	default:
		return fmt.Errorf("%w: configure from state %s", util.ErrInvalidState, s.state)
	}
}

// exchange sends one line and reads the response up to the next prompt.
func (s *Session) exchange(line string, timeout time.Duration) (string, error) {
	if err := s.tr.SendLine(line); err != nil {
		return "", err
	}
	return s.tr.ReadUntilPrompt(timeout)
}
