package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func tempLogger(t *testing.T) *FileLogger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger() error: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestLogAndQuery(t *testing.T) {
	logger := tempLogger(t)

	events := []*Event{
		NewEvent("alice", "edge1", ActionApply).WithPolicies([]string{"CUSTOMER-IN"}).WithSuccess().WithPendingConfirmation(5),
		NewEvent("alice", "edge2", ActionApply).WithError(errors.New("connection timeout")),
		NewEvent("bob", "edge1", ActionCommit).WithSuccess(),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	got, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Query(all) returned %d events, want 3", len(got))
	}

	got, err = logger.Query(Filter{Router: "edge1"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Query(router=edge1) returned %d events, want 2", len(got))
	}

	got, err = logger.Query(Filter{FailureOnly: true})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 1 || got[0].Router != "edge2" {
		t.Errorf("Query(failures) = %+v, want the edge2 failure", got)
	}

	got, err = logger.Query(Filter{Action: ActionCommit})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 1 || got[0].User != "bob" {
		t.Errorf("Query(action=commit) = %+v, want bob's commit", got)
	}
}

func TestQueryLimitKeepsMostRecent(t *testing.T) {
	logger := tempLogger(t)

	for i := 0; i < 5; i++ {
		e := NewEvent("alice", "edge1", ActionGenerate).WithSuccess()
		e.Timestamp = time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC)
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	got, err := logger.Query(Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Query(limit=2) returned %d events", len(got))
	}
	if got[0].Timestamp.Minute() != 3 || got[1].Timestamp.Minute() != 4 {
		t.Errorf("limit did not keep the most recent events: %v, %v",
			got[0].Timestamp, got[1].Timestamp)
	}
}

func TestQueryTimeWindow(t *testing.T) {
	logger := tempLogger(t)

	old := NewEvent("alice", "edge1", ActionApply).WithSuccess()
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	recent := NewEvent("alice", "edge1", ActionApply).WithSuccess()

	for _, e := range []*Event{old, recent} {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log() error: %v", err)
		}
	}

	got, err := logger.Query(Filter{StartTime: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query(last hour) returned %d events, want 1", len(got))
	}
}

func TestQueryMissingFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "audit.jsonl")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger() error: %v", err)
	}
	logger.Close()

	fresh := &FileLogger{path: filepath.Join(t.TempDir(), "never-written.jsonl")}
	got, err := fresh.Query(Filter{})
	if err != nil {
		t.Fatalf("Query() on missing file error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Query() on missing file returned %d events", len(got))
	}
}

func TestEventBuilders(t *testing.T) {
	e := NewEvent("alice", "edge1", ActionApply).
		WithPolicies([]string{"A", "B"}).
		WithConfigFile("/tmp/edge1.conf").
		WithPendingConfirmation(3).
		WithSuccess()

	if e.ID == "" {
		t.Error("event ID not generated")
	}
	if !e.Success || e.Error != "" {
		t.Errorf("success event malformed: %+v", e)
	}
	if !e.ManualCommitRequired || e.ConfirmMinutes != 3 {
		t.Errorf("pending confirmation not recorded: %+v", e)
	}

	failed := NewEvent("alice", "edge1", ActionApply).WithError(errors.New("boom"))
	if failed.Success || failed.Error != "boom" {
		t.Errorf("failure event malformed: %+v", failed)
	}
}
