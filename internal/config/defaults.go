package config

const (
	defaultClipsDir          = "~/.local/share/mpvshadow/clips"
	defaultLogDir            = "~/.local/share/mpvshadow/logs"
	defaultHistoryDB         = "~/.local/share/mpvshadow/history.db"
	defaultSocketPath        = "/tmp/mpvsocket"
	defaultConnectBackoffMs  = 300
	defaultTriggerKeyword    = "cut_current_sub"
	defaultOSDDurationMs     = 1200
	defaultFFmpegBinary      = "ffmpeg"
	defaultPadSeconds        = 0.10
	defaultKeep              = 5
	defaultClipSampleRate    = 48000
	defaultMicBackend        = MicBackendUdev
	defaultMicInputFormat    = "alsa"
	defaultReadyWaitMs       = 150
	defaultReadyPollMs       = 25
	defaultProbeTimeoutMs    = 200
	defaultProbeFrames       = 4096
	defaultPitchSampleRate   = 24000
	defaultPitchFrameMs      = 40
	defaultPitchHopMs        = 10
	defaultPitchFminHz       = 70.0
	defaultPitchFmaxHz       = 350.0
	defaultVoicingThreshold  = 0.40
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultPulseInputFormat  = "pulse"
	socketPathEnv            = "MPVSHADOW_SOCKET"
	defaultConfigPathPattern = "~/.config/mpvshadow/config.toml"
	projectConfigName        = "mpvshadow.toml"
)

// Mic backends understood by the device enumerator.
const (
	MicBackendUdev  = "udev"
	MicBackendPulse = "pulse"
	MicBackendNone  = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ClipsDir:  defaultClipsDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Player: Player{
			SocketPath:       defaultSocketPath,
			ConnectBackoffMs: defaultConnectBackoffMs,
			TriggerKeyword:   defaultTriggerKeyword,
			OSDDurationMs:    defaultOSDDurationMs,
		},
		Clip: Clip{
			FFmpegBinary: defaultFFmpegBinary,
			PadSeconds:   defaultPadSeconds,
			Keep:         defaultKeep,
			SampleRate:   defaultClipSampleRate,
		},
		Mic: Mic{
			Backend:     defaultMicBackend,
			InputFormat: defaultMicInputFormat,
			Keep:        defaultKeep,
			ReadyWaitMs: defaultReadyWaitMs,
			ReadyPollMs: defaultReadyPollMs,
		},
		Analysis: Analysis{
			ProbeTimeoutMs: defaultProbeTimeoutMs,
			ProbeFrames:    defaultProbeFrames,
		},
		Pitch: Pitch{
			Enabled:          true,
			SampleRate:       defaultPitchSampleRate,
			FrameMs:          defaultPitchFrameMs,
			HopMs:            defaultPitchHopMs,
			FminHz:           defaultPitchFminHz,
			FmaxHz:           defaultPitchFmaxHz,
			VoicingThreshold: defaultVoicingThreshold,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
