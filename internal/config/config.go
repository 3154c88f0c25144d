package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	ClipsDir  string `toml:"clips_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Player contains the media player control channel settings.
type Player struct {
	SocketPath       string `toml:"socket_path"`
	ConnectBackoffMs int    `toml:"connect_backoff_ms"`
	TriggerKeyword   string `toml:"trigger_keyword"`
	OSDDurationMs    int    `toml:"osd_duration_ms"`
}

// Clip contains reference clip extraction settings.
type Clip struct {
	FFmpegBinary string  `toml:"ffmpeg_binary"`
	PadSeconds   float64 `toml:"pad_seconds"`
	Keep         int     `toml:"keep"`
	SampleRate   int     `toml:"sample_rate"`
}

// Mic contains microphone capture settings.
type Mic struct {
	// Backend selects device enumeration: "udev", "pulse", or "none".
	Backend string `toml:"backend"`
	// InputFormat is the ffmpeg demuxer used for capture (e.g. "alsa", "pulse").
	InputFormat string `toml:"input_format"`
	// Device seeds the selected capture device id. Empty means first enumerated.
	Device      string `toml:"device"`
	Keep        int    `toml:"keep"`
	ReadyWaitMs int    `toml:"ready_wait_ms"`
	ReadyPollMs int    `toml:"ready_poll_ms"`
}

// Analysis contains the leading-edge PCM probe settings.
type Analysis struct {
	ProbeTimeoutMs int `toml:"probe_timeout_ms"`
	ProbeFrames    int `toml:"probe_frames"`
}

// Pitch contains pitch contour estimation settings.
type Pitch struct {
	Enabled          bool    `toml:"enabled"`
	SampleRate       int     `toml:"sample_rate"`
	FrameMs          int     `toml:"frame_ms"`
	HopMs            int     `toml:"hop_ms"`
	FminHz           float64 `toml:"fmin_hz"`
	FmaxHz           float64 `toml:"fmax_hz"`
	VoicingThreshold float64 `toml:"voicing_threshold"`
}

// History toggles the SQLite take history.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for mpvshadow.
//
// Configuration sections by subsystem:
//   - Paths: clips directory, log directory, history database
//   - Player: mpv IPC socket, reconnect backoff, trigger keyword, OSD timing
//   - Clip: ffmpeg binary, window padding, clip retention
//   - Mic: capture device backend, ffmpeg input format, mic retention, readiness wait
//   - Analysis: PCM probe timeout and read size
//   - Pitch: contour estimator parameters for reference/take comparison
//   - History: SQLite take history
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Player   Player   `toml:"player"`
	Clip     Clip     `toml:"clip"`
	Mic      Mic      `toml:"mic"`
	Analysis Analysis `toml:"analysis"`
	Pitch    Pitch    `toml:"pitch"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPathPattern)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the clips and log directories plus the parent of
// the history database.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.ClipsDir, c.Paths.LogDir}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryDB) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ConnectBackoff returns the fixed retry delay used while waiting for the player.
func (c *Config) ConnectBackoff() time.Duration {
	return time.Duration(c.Player.ConnectBackoffMs) * time.Millisecond
}

// OSDDuration returns how long on-screen confirmations stay visible.
func (c *Config) OSDDuration() time.Duration {
	return time.Duration(c.Player.OSDDurationMs) * time.Millisecond
}

// ProbeTimeout returns the wall-clock bound on the leading-edge PCM probe.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Analysis.ProbeTimeoutMs) * time.Millisecond
}

// MicReadyWait returns the bound and poll interval for mic file readiness.
func (c *Config) MicReadyWait() (wait, poll time.Duration) {
	return time.Duration(c.Mic.ReadyWaitMs) * time.Millisecond, time.Duration(c.Mic.ReadyPollMs) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
