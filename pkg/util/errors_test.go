package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandError(t *testing.T) {
	err := &CommandError{
		Command:  "set policy-options broken",
		Response: "syntax error",
	}
	msg := err.Error()
	if !strings.Contains(msg, "set policy-options broken") || !strings.Contains(msg, "syntax error") {
		t.Errorf("CommandError.Error() = %q, missing command or response", msg)
	}
}

func TestLookupErrorUnwrap(t *testing.T) {
	err := &LookupError{ASSet: "AS-EXAMPLE", Err: ErrEmptyLookup}
	if !errors.Is(err, ErrEmptyLookup) {
		t.Error("LookupError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "AS-EXAMPLE") {
		t.Errorf("LookupError.Error() = %q, missing AS-set", err.Error())
	}

	withStderr := &LookupError{ASSet: "AS-X", Stderr: "no route objects", Err: fmt.Errorf("exit status 1")}
	if !strings.Contains(withStderr.Error(), "no route objects") {
		t.Errorf("LookupError.Error() = %q, missing stderr detail", withStderr.Error())
	}
}
