package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateClip(); err != nil {
		return err
	}
	if err := c.validateMic(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validatePitch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlayer() error {
	if c.Player.SocketPath == "" {
		return fmt.Errorf("player.socket_path must be set (or export %s)", socketPathEnv)
	}
	if c.Player.ConnectBackoffMs <= 0 {
		return errors.New("player.connect_backoff_ms must be positive")
	}
	if c.Player.OSDDurationMs < 0 {
		return errors.New("player.osd_duration_ms must not be negative")
	}
	return nil
}

func (c *Config) validateClip() error {
	if c.Clip.PadSeconds < 0 {
		return errors.New("clip.pad_seconds must not be negative")
	}
	if c.Clip.Keep <= 0 {
		return errors.New("clip.keep must be positive")
	}
	if c.Clip.SampleRate <= 0 {
		return errors.New("clip.sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateMic() error {
	switch c.Mic.Backend {
	case MicBackendUdev, MicBackendPulse, MicBackendNone:
	default:
		return fmt.Errorf("mic.backend: unsupported value %q (use udev, pulse, or none)", c.Mic.Backend)
	}
	if c.Mic.Keep <= 0 {
		return errors.New("mic.keep must be positive")
	}
	if c.Mic.ReadyWaitMs < 0 || c.Mic.ReadyPollMs <= 0 {
		return errors.New("mic.ready_wait_ms must not be negative and mic.ready_poll_ms must be positive")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.ProbeTimeoutMs <= 0 {
		return errors.New("analysis.probe_timeout_ms must be positive")
	}
	if c.Analysis.ProbeFrames <= 0 {
		return errors.New("analysis.probe_frames must be positive")
	}
	return nil
}

func (c *Config) validatePitch() error {
	if !c.Pitch.Enabled {
		return nil
	}
	if c.Pitch.SampleRate <= 0 {
		return errors.New("pitch.sample_rate must be positive")
	}
	if c.Pitch.FrameMs <= 0 || c.Pitch.HopMs <= 0 {
		return errors.New("pitch.frame_ms and pitch.hop_ms must be positive")
	}
	if c.Pitch.FminHz <= 0 || c.Pitch.FminHz >= c.Pitch.FmaxHz {
		return errors.New("pitch.fmin_hz must be positive and below pitch.fmax_hz")
	}
	if c.Pitch.VoicingThreshold < 0 || c.Pitch.VoicingThreshold > 1 {
		return errors.New("pitch.voicing_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
