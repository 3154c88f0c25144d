package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mpvshadow/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MPVSHADOW_SOCKET", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantClips := filepath.Join(tempHome, ".local", "share", "mpvshadow", "clips")
	if cfg.Paths.ClipsDir != wantClips {
		t.Fatalf("unexpected clips dir: got %q want %q", cfg.Paths.ClipsDir, wantClips)
	}
	if cfg.Player.SocketPath != "/tmp/mpvsocket" {
		t.Fatalf("unexpected socket path: %q", cfg.Player.SocketPath)
	}
	if cfg.Player.TriggerKeyword != "cut_current_sub" {
		t.Fatalf("unexpected trigger keyword: %q", cfg.Player.TriggerKeyword)
	}
	if cfg.Clip.PadSeconds != 0.10 {
		t.Fatalf("unexpected pad: %v", cfg.Clip.PadSeconds)
	}
	if cfg.Clip.Keep != 5 || cfg.Mic.Keep != 5 {
		t.Fatalf("unexpected keep counts: clip=%d mic=%d", cfg.Clip.Keep, cfg.Mic.Keep)
	}
	if got := cfg.ProbeTimeout().Milliseconds(); got != 200 {
		t.Fatalf("unexpected probe timeout: %dms", got)
	}
	wait, poll := cfg.MicReadyWait()
	if wait.Milliseconds() != 150 || poll.Milliseconds() != 25 {
		t.Fatalf("unexpected ready wait: %v/%v", wait, poll)
	}
	if !cfg.Pitch.Enabled || cfg.Pitch.SampleRate != 24000 {
		t.Fatalf("unexpected pitch defaults: %+v", cfg.Pitch)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MPVSHADOW_SOCKET", "")

	configPath := filepath.Join(tempHome, "config.toml")
	content := `
[paths]
clips_dir = "~/shadow"

[player]
socket_path = "/run/user/1000/mpv.sock"

[mic]
backend = "PULSE"
input_format = ""

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ClipsDir != filepath.Join(tempHome, "shadow") {
		t.Fatalf("unexpected clips dir: %q", cfg.Paths.ClipsDir)
	}
	if cfg.Player.SocketPath != "/run/user/1000/mpv.sock" {
		t.Fatalf("unexpected socket path: %q", cfg.Player.SocketPath)
	}
	if cfg.Mic.Backend != config.MicBackendPulse {
		t.Fatalf("expected pulse backend, got %q", cfg.Mic.Backend)
	}
	if cfg.Mic.InputFormat != "pulse" {
		t.Fatalf("expected pulse input format default, got %q", cfg.Mic.InputFormat)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadSocketFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MPVSHADOW_SOCKET", "/tmp/other.sock")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Player.SocketPath != "/tmp/other.sock" {
		t.Fatalf("expected env socket, got %q", cfg.Player.SocketPath)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Mic.Backend = "jack" }, "mic.backend"},
		{"keep", func(c *config.Config) { c.Clip.Keep = 0 }, "clip.keep"},
		{"pad", func(c *config.Config) { c.Clip.PadSeconds = -1 }, "clip.pad_seconds"},
		{"pitch range", func(c *config.Config) { c.Pitch.FminHz = 400 }, "pitch.fmin_hz"},
		{"threshold", func(c *config.Config) { c.Pitch.VoicingThreshold = 1.5 }, "pitch.voicing_threshold"},
		{"probe", func(c *config.Config) { c.Analysis.ProbeFrames = 0 }, "analysis.probe_frames"},
		{"socket", func(c *config.Config) { c.Player.SocketPath = "" }, "player.socket_path"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateSkipsDisabledPitch(t *testing.T) {
	cfg := config.Default()
	cfg.Pitch.Enabled = false
	cfg.Pitch.FminHz = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled pitch to skip validation, got %v", err)
	}
}

func TestCreateSampleProducesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config did not parse: %v", err)
	}
	if cfg.Player.TriggerKeyword != "cut_current_sub" {
		t.Fatalf("unexpected sample trigger keyword: %q", cfg.Player.TriggerKeyword)
	}
}

func TestEnsureDirectoriesCreatesHistoryParent(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ClipsDir = filepath.Join(base, "clips")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "db", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{"clips", "logs", "db"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
