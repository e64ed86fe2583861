package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunReturnsExitCodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BACKEND_URL", "http://127.0.0.1:1")
	t.Setenv("MAX_RETRIES", "1")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("EXPORT_DIR", dir)
	t.Setenv("ARCHIVE_DRIVER", "sqlite")
	t.Setenv("ARCHIVE_PATH", filepath.Join(dir, "output", "archive.db"))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	tests := []struct {
		args []string
		want int
	}{
		{[]string{"pricewatch", "report"}, 1},
		{[]string{"pricewatch", "bogus"}, 2},
	}

	for _, tt := range tests {
		os.Args = tt.args
		if got := run(); got != tt.want {
			t.Errorf("run(%v): got %d, want %d", tt.args[1:], got, tt.want)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "output", "archive.db")); err != nil {
		t.Errorf("archive file: %v", err)
	}
}
