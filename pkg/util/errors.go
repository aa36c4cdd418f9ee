// Package util provides the shared logger and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and lookup failures
var (
	ErrNotConnected        = errors.New("session not connected")
	ErrInvalidState        = errors.New("operation not valid in current session state")
	ErrConfirmationPending = errors.New("confirmation pending: disconnecting now would orphan the rollback window")
	ErrLookupToolNotFound  = errors.New("bgpq4 binary not found")
	ErrEmptyLookup         = errors.New("lookup produced no prefix entries")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// CommandError records a device command that was rejected mid-apply.
// Response holds the raw echo from the device, preserved verbatim for
// diagnostics.
type CommandError struct {
	Command  string
	Response string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("device rejected command %q: %s", e.Command, e.Response)
}

// LookupError records a failed external prefix-list lookup for one AS-set.
type LookupError struct {
	ASSet  string
	Stderr string
	Err    error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("prefix lookup for %s failed: %v", e.ASSet, e.Err)
	if e.Stderr != "" {
		msg += " (" + e.Stderr + ")"
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
