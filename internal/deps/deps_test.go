package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mpvshadow/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 2 {
		t.Fatalf("expected two missing required binaries, got %d", len(missing))
	}
}

func TestRequirementsPactlOptionalOutsidePulse(t *testing.T) {
	cfg := config.Default()
	cfg.Mic.Backend = config.MicBackendUdev
	reqs := Requirements(&cfg)
	if reqs[0].Command != cfg.Clip.FFmpegBinary || reqs[0].Optional {
		t.Fatalf("ffmpeg requirement = %#v", reqs[0])
	}
	pactl := reqs[len(reqs)-1]
	if pactl.Command != "pactl" || !pactl.Optional {
		t.Fatalf("pactl should be optional for udev, got %#v", pactl)
	}

	cfg.Mic.Backend = config.MicBackendPulse
	reqs = Requirements(&cfg)
	if reqs[len(reqs)-1].Optional {
		t.Fatalf("pactl should be required for pulse backend")
	}
}

func TestCheckFFmpegInput(t *testing.T) {
	listing := []byte("Demuxers:\n D. = Demuxing supported\n --\n D  aac             raw ADTS AAC\n D  alsa            ALSA audio input\n D  mov,mp4,m4a     QuickTime / MOV\n")
	orig := commandOutput
	t.Cleanup(func() { commandOutput = orig })
	commandOutput = func(context.Context, string, ...string) ([]byte, error) {
		return listing, nil
	}

	if status := CheckFFmpegInput(context.Background(), "ffmpeg", "alsa"); !status.Available {
		t.Fatalf("expected alsa available, got %#v", status)
	}
	if status := CheckFFmpegInput(context.Background(), "ffmpeg", "mp4"); !status.Available {
		t.Fatalf("expected comma-separated alias to match, got %#v", status)
	}
	if status := CheckFFmpegInput(context.Background(), "ffmpeg", "pulse"); status.Available || status.Detail == "" {
		t.Fatalf("expected pulse unavailable, got %#v", status)
	}

	commandOutput = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exec failed")
	}
	if status := CheckFFmpegInput(context.Background(), "ffmpeg", "alsa"); status.Available {
		t.Fatalf("expected failure when ffmpeg cannot run")
	}
}
