package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usagegrid.log")

	logger, err := Setup(path, "release")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	logger.Info("feed loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"feed loaded"`) {
		t.Fatalf("expected JSON entry in log file, got %q", data)
	}
}

func TestSetupWithoutFile(t *testing.T) {
	logger, err := Setup("", "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Fatal("development logger should enable debug level")
	}
}
