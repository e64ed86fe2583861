package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut)

	l.Debug("[test] hidden %d", 1)
	l.Info("[test] shown %d", 2)
	if strings.Contains(out.String(), "hidden") {
		t.Error("debug should be filtered at info level")
	}
	if !strings.Contains(out.String(), "[test] shown 2") {
		t.Errorf("info missing: %q", out.String())
	}

	l.SetLevel(LevelError)
	l.Warn("[test] quiet")
	l.Error("[test] loud")
	if strings.Contains(out.String(), "quiet") {
		t.Error("warn should be filtered at error level")
	}
	if !strings.Contains(errOut.String(), "[test] loud") {
		t.Errorf("error missing: %q", errOut.String())
	}
}
