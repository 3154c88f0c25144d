package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"mpvshadow/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestResultKind(t *testing.T) {
	tests := []struct {
		passed, optional bool
		want             statusKind
	}{
		{true, false, statusOK},
		{true, true, statusOK},
		{false, true, statusWarn},
		{false, false, statusError},
	}
	for _, tc := range tests {
		if got := resultKind(tc.passed, tc.optional); got != tc.want {
			t.Fatalf("resultKind(%v, %v) = %v, want %v", tc.passed, tc.optional, got, tc.want)
		}
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: false, Command: "ffmpeg", Detail: `binary "ffmpeg" not found`},
		{Name: "mpv", Available: true, Command: "mpv", Optional: true},
		{Name: "pactl", Available: false, Optional: true},
	}
	lines, missing := dependencyLines(statuses, false)
	if missing != 1 {
		t.Fatalf("expected 1 missing dependency, got %d", missing)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `[ERROR] binary "ffmpeg" not found`) {
		t.Fatalf("expected error detail first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (command: mpv)") {
		t.Fatalf("expected ready detail second, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not available (optional)") {
		t.Fatalf("expected optional warning third, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies") || !strings.Contains(lines[3], "FFmpeg") {
		t.Fatalf("expected missing summary last, got %q", lines[3])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
