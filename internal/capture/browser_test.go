package capture

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	got, err := FileURL(filepath.Join(dir, "dashboard.html"))
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/dashboard.html") {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestFileURLRelative(t *testing.T) {
	got, err := FileURL("dashboard.html")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	if strings.Contains(got, "file://dashboard.html") {
		t.Fatalf("relative path should be made absolute, got %q", got)
	}
}
