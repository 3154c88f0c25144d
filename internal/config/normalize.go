package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayer()
	c.normalizeClip()
	c.normalizeMic()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ClipsDir) == "" {
		c.Paths.ClipsDir = defaultClipsDir
	}
	if c.Paths.ClipsDir, err = expandPath(c.Paths.ClipsDir); err != nil {
		return fmt.Errorf("paths.clips_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizePlayer() {
	if value, ok := os.LookupEnv(socketPathEnv); ok && strings.TrimSpace(value) != "" {
		c.Player.SocketPath = strings.TrimSpace(value)
	}
	c.Player.SocketPath = strings.TrimSpace(c.Player.SocketPath)
	c.Player.TriggerKeyword = strings.TrimSpace(c.Player.TriggerKeyword)
	if c.Player.TriggerKeyword == "" {
		c.Player.TriggerKeyword = defaultTriggerKeyword
	}
}

func (c *Config) normalizeClip() {
	c.Clip.FFmpegBinary = strings.TrimSpace(c.Clip.FFmpegBinary)
	if c.Clip.FFmpegBinary == "" {
		c.Clip.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeMic() {
	c.Mic.Backend = strings.ToLower(strings.TrimSpace(c.Mic.Backend))
	if c.Mic.Backend == "" {
		c.Mic.Backend = defaultMicBackend
	}
	c.Mic.InputFormat = strings.ToLower(strings.TrimSpace(c.Mic.InputFormat))
	if c.Mic.InputFormat == "" {
		if c.Mic.Backend == MicBackendPulse {
			c.Mic.InputFormat = defaultPulseInputFormat
		} else {
			c.Mic.InputFormat = defaultMicInputFormat
		}
	}
	c.Mic.Device = strings.TrimSpace(c.Mic.Device)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
