package settings

import (
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsEmpty(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if s.ConfigPath != "" || s.OutputDir != "" {
		t.Errorf("missing file did not yield empty settings: %+v", s)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	s := &Settings{
		ConfigPath: "/etc/prefixflow/policies.yaml",
		OutputDir:  "/var/lib/prefixflow/generated",
	}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if loaded.ConfigPath != s.ConfigPath || loaded.OutputDir != s.OutputDir {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestOutputDirFallback(t *testing.T) {
	s := &Settings{}
	if got := s.GetOutputDir(); got != filepath.Join("configs", "generated") {
		t.Errorf("GetOutputDir() fallback = %q", got)
	}

	s.OutputDir = "/tmp/out"
	if got := s.GetOutputDir(); got != "/tmp/out" {
		t.Errorf("GetOutputDir() = %q, want /tmp/out", got)
	}
}
