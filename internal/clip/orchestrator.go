package clip

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"mpvshadow/internal/config"
	"mpvshadow/internal/devices"
	"mpvshadow/internal/fileutil"
	"mpvshadow/internal/logging"
	"mpvshadow/internal/mailbox"
	"mpvshadow/internal/pcmprobe"
	"mpvshadow/internal/pitch"
	"mpvshadow/internal/retention"
	"mpvshadow/internal/services"
	"mpvshadow/internal/shadow"
	"mpvshadow/internal/takes"
	"mpvshadow/internal/wav"
)

// referenceWait bounds how long the pitch comparison waits for the unique
// reference clip encode to exit.
const referenceWait = 10 * time.Second

// Recorder stores cycle history.
type Recorder interface {
	Upsert(ctx context.Context, take takes.Take) error
}

// Options wires an Orchestrator.
type Options struct {
	Config    *config.Config
	Runner    Runner
	Selection *devices.Selection
	Snapshots *mailbox.Mailbox[Snapshot]
	History   Recorder
	Logger    *slog.Logger
}

// Orchestrator spawns and supervises the processes of each cut.
type Orchestrator struct {
	cfg       *config.Config
	runner    Runner
	selection *devices.Selection
	snapshots *mailbox.Mailbox[Snapshot]
	history   Recorder
	logger    *slog.Logger
	pitchCfg  pitch.Config

	wg sync.WaitGroup
}

// New builds an Orchestrator. A nil Runner uses real processes.
func New(opts Options) *Orchestrator {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	selection := opts.Selection
	if selection == nil {
		selection = devices.NewSelection(opts.Config.Mic.Device)
	}
	snapshots := opts.Snapshots
	if snapshots == nil {
		snapshots = mailbox.New[Snapshot]()
	}
	return &Orchestrator{
		cfg:       opts.Config,
		runner:    runner,
		selection: selection,
		snapshots: snapshots,
		history:   opts.History,
		logger:    logging.NewComponentLogger(opts.Logger, "clip"),
		pitchCfg:  pitch.FromSettings(opts.Config.Pitch),
	}
}

// Snapshots returns the mailbox results are published to.
func (o *Orchestrator) Snapshots() *mailbox.Mailbox[Snapshot] { return o.snapshots }

// Wait blocks until every background task started by Cut has finished.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// cycle accumulates one Snapshot across concurrent sub-tasks.
type cycle struct {
	mu   sync.Mutex
	snap Snapshot
}

// Cut starts the clip encodes, probe, and mic take for req and returns once
// they are spawned and the mic file is ready or its wait has elapsed. The
// probe is started before the mic readiness wait.
func (o *Orchestrator) Cut(ctx context.Context, req shadow.CutRequest) {
	if !req.Window.Valid() {
		return
	}
	// Background work outlives the connection that triggered it.
	ctx = services.WithCycleID(context.WithoutCancel(ctx), req.CycleID)
	logger := logging.WithContext(ctx, o.logger)

	arts := NewArtifacts(o.cfg.Paths.ClipsDir, req.MediaPath, req.Window)
	now := time.Now()
	c := &cycle{snap: Snapshot{
		CycleID:        req.CycleID,
		Text:           req.Line.Text,
		MediaPath:      req.MediaPath,
		Window:         req.Window,
		Duration:       req.Duration,
		TrackIndex:     req.TrackIndex,
		HasTrack:       req.HasTrack,
		ClipPath:       arts.ClipPath,
		LatestClipPath: arts.LatestClipPath,
		StartedAt:      now,
		UpdatedAt:      now,
	}}
	o.record(ctx, logger, c.snap)

	source := SourceArgs(req.Window, req.MediaPath, req.TrackIndex, req.HasTrack)
	ffmpeg := o.cfg.Clip.FFmpegBinary
	rate := o.cfg.Clip.SampleRate

	reference := o.spawnDetached(logger, "clip", ffmpeg, ClipArgs(source, rate, arts.ClipPath))
	o.spawnDetached(logger, "latest clip", ffmpeg, ClipArgs(source, rate, arts.LatestClipPath))

	o.goTask(func() {
		retention.Prune(retention.Set{
			Dir:     o.cfg.Paths.ClipsDir,
			Keep:    o.cfg.Clip.Keep,
			Exclude: []string{arts.ClipPath, arts.LatestClipPath},
			Match:   IsClip,
		}, logger)
	})

	o.goTask(func() { o.probe(ctx, logger, c, source) })

	if device, ok := o.selection.Resolve(); ok {
		o.recordMic(ctx, logger, c, arts, device, req.Window.Length(), reference)
	} else {
		logger.Info("no capture device available; skipping mic take",
			logging.String(logging.FieldEventType, "mic_skipped"),
		)
	}
}

func (o *Orchestrator) goTask(fn func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fn()
	}()
}

// spawnDetached starts an encode that is never killed. The returned channel
// closes when the process exits or fails to start.
func (o *Orchestrator) spawnDetached(logger *slog.Logger, label, binary string, args []string) <-chan error {
	done := make(chan error, 1)
	out := args[len(args)-1]
	proc, err := o.runner.Start(binary, args, false)
	if err != nil {
		err = services.Wrap(services.ErrProcessSpawn, "clip", label, "", err)
		logging.WarnWithContext(logger, "encode spawn failed", "clip_spawn_failed",
			logging.String("artifact", label),
			logging.String(logging.FieldPath, out),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check clip.ffmpeg_binary and PATH"),
			logging.String(logging.FieldImpact, label+" not written"),
		)
		done <- err
		close(done)
		return done
	}

	o.goTask(func() {
		defer close(done)
		if err := proc.Wait(); err != nil {
			err = services.Wrap(services.ErrProcessExit, "clip", label, "", err)
			logging.WarnWithContext(logger, "encode exited with error", "clip_encode_failed",
				logging.String("artifact", label),
				logging.String(logging.FieldPath, out),
				logging.Error(err),
				logging.String(logging.FieldImpact, label+" missing or incomplete"),
			)
			done <- err
			return
		}
		logger.Debug("encode finished",
			logging.String("artifact", label),
			logging.String(logging.FieldPath, out),
			logging.String(logging.FieldEventType, "clip_encoded"),
		)
	})
	return done
}

func (o *Orchestrator) recordMic(ctx context.Context, logger *slog.Logger, c *cycle, arts Artifacts, device devices.Device, length float64, reference <-chan error) {
	if err := os.Remove(arts.LatestMicPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("stale mic take not removed", logging.Error(err))
	}

	args := MicArgs(o.cfg.Mic.InputFormat, device.ID, length, o.cfg.Clip.SampleRate, arts.LatestMicPath)
	proc, err := o.runner.Start(o.cfg.Clip.FFmpegBinary, args, false)
	if err != nil {
		logging.WarnWithContext(logger, "mic recorder spawn failed", "mic_spawn_failed",
			logging.String("device", device.ID),
			logging.Error(services.Wrap(services.ErrProcessSpawn, "clip", "mic", "", err)),
			logging.String(logging.FieldErrorHint, "check mic.input_format and the selected device"),
			logging.String(logging.FieldImpact, "no mic take for this cycle"),
		)
		return
	}
	logger.Info("recording mic take",
		logging.String("device", device.ID),
		logging.Float64("seconds", length),
		logging.String(logging.FieldEventType, "mic_started"),
	)

	o.goTask(func() { o.finishMic(ctx, logger, c, arts, device, proc, reference) })

	wait, poll := o.cfg.MicReadyWait()
	if !fileutil.AwaitSize(ctx, arts.LatestMicPath, wavHeaderLen, wait, poll) {
		logger.Debug("mic file not ready within wait",
			logging.Duration("wait", wait),
			logging.String(logging.FieldPath, arts.LatestMicPath),
		)
	}
}

func (o *Orchestrator) finishMic(ctx context.Context, logger *slog.Logger, c *cycle, arts Artifacts, device devices.Device, proc Process, reference <-chan error) {
	if err := proc.Wait(); err != nil {
		logging.WarnWithContext(logger, "mic recorder exited with error", "mic_record_failed",
			logging.String("device", device.ID),
			logging.Error(services.Wrap(services.ErrProcessExit, "clip", "mic", "", err)),
			logging.String(logging.FieldImpact, "no mic take for this cycle"),
		)
		return
	}

	micPath := arts.MicPath
	if err := fileutil.CopyFile(arts.LatestMicPath, arts.MicPath); err != nil {
		micPath = ""
		logging.WarnWithContext(logger, "mic take copy failed", "mic_copy_failed",
			logging.String(logging.FieldPath, arts.MicPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "take only available as latest_mic.wav"),
		)
	}
	retention.Prune(retention.Set{
		Dir:     o.cfg.Paths.ClipsDir,
		Keep:    o.cfg.Mic.Keep,
		Exclude: []string{arts.MicPath, arts.LatestMicPath},
		Match:   IsMic,
	}, logger)

	var comparison *pitch.Comparison
	if o.cfg.Pitch.Enabled && micPath != "" {
		comparison = o.compare(ctx, logger, arts.ClipPath, micPath, reference)
	}

	snap := o.update(c, func(s *Snapshot) {
		s.MicPath = micPath
		s.LatestMicPath = arts.LatestMicPath
		s.MicDevice = device.ID
		if comparison != nil {
			s.Pitch = comparison
		}
	})
	logger.Info("mic take ready",
		logging.String(logging.FieldPath, arts.LatestMicPath),
		logging.Bool("pitch", comparison != nil),
		logging.String(logging.FieldEventType, "mic_ready"),
	)
	o.record(ctx, logger, snap)
}

func (o *Orchestrator) compare(ctx context.Context, logger *slog.Logger, refPath, takePath string, reference <-chan error) *pitch.Comparison {
	timer := time.NewTimer(referenceWait)
	defer timer.Stop()
	select {
	case err := <-reference:
		if err != nil {
			return nil
		}
	case <-timer.C:
		logger.Debug("reference clip still encoding; pitch comparison skipped")
		return nil
	case <-ctx.Done():
		return nil
	}

	refAudio, err := wav.ReadFile(refPath, int(o.pitchCfg.SampleRate))
	if err != nil {
		logger.Debug("reference decode failed; pitch comparison skipped", logging.Error(err))
		return nil
	}
	takeAudio, err := wav.ReadFile(takePath, int(o.pitchCfg.SampleRate))
	if err != nil {
		logger.Debug("take decode failed; pitch comparison skipped", logging.Error(err))
		return nil
	}

	cfg := o.pitchCfg
	refCfg, takeCfg := cfg, cfg
	refCfg.SampleRate = float64(refAudio.SampleRate)
	takeCfg.SampleRate = float64(takeAudio.SampleRate)
	cmp := pitch.Compare(pitch.Estimate(refAudio.Samples, refCfg), pitch.Estimate(takeAudio.Samples, takeCfg))
	return &cmp
}

func (o *Orchestrator) probe(ctx context.Context, logger *slog.Logger, c *cycle, source []string) {
	opts := pcmprobe.Options{
		Frames:   o.cfg.Analysis.ProbeFrames,
		Channels: pcmprobe.DefaultChannels,
		Timeout:  o.cfg.ProbeTimeout(),
	}

	start := time.Now()
	proc, err := o.runner.Start(o.cfg.Clip.FFmpegBinary, ProbeArgs(source, o.cfg.Clip.SampleRate), true)
	if err != nil {
		logging.WarnWithContext(logger, "probe spawn failed", "probe_spawn_failed",
			logging.Error(services.Wrap(services.ErrProcessSpawn, "clip", "probe", "", err)),
			logging.String(logging.FieldImpact, "latency/RMS/peak omitted"),
		)
		return
	}

	result, err := pcmprobe.Probe(ctx, proc.Stdout(), start, opts)
	if err == nil || !errors.Is(err, pcmprobe.ErrStreamEnded) {
		// Only the leading edge is needed; stop the producer either way.
		_ = proc.Kill()
	}
	_ = proc.Wait()

	if err != nil {
		logging.WarnWithContext(logger, "pcm probe failed", "probe_failed",
			logging.Error(err),
			logging.Duration("timeout", opts.Timeout),
			logging.String(logging.FieldImpact, "latency/RMS/peak omitted"),
		)
		return
	}

	snap := o.update(c, func(s *Snapshot) { s.Probe = &result })
	logger.Info("pcm probe complete",
		logging.Duration("latency", result.Latency),
		logging.Float64("rms", result.RMS),
		logging.Float64("peak", result.Peak),
		logging.String(logging.FieldEventType, "probe_complete"),
	)
	o.record(ctx, logger, snap)
}

// update applies fn to the cycle and publishes the merged snapshot while
// holding the cycle lock, so a later publish always carries every field.
func (o *Orchestrator) update(c *cycle, fn func(*Snapshot)) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.snap)
	c.snap.UpdatedAt = time.Now()
	o.snapshots.Publish(c.snap)
	return c.snap
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, snap Snapshot) {
	if o.history == nil {
		return
	}
	if err := o.history.Upsert(ctx, snap.Take()); err != nil {
		logging.WarnWithContext(logger, "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "take missing from history"),
		)
	}
}
