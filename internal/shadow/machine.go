// Package shadow tracks the current subtitle line and drives the player
// through one cut: pause, seek to the padded start, replay the line, and pause
// again when playback reaches its end.
package shadow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mpvshadow/internal/config"
	"mpvshadow/internal/logging"
	"mpvshadow/internal/mpvipc"
	"mpvshadow/internal/services"
	"mpvshadow/internal/textutil"
)

// Observation slots registered with the player.
const (
	SlotSubText int64 = 1
	SlotTimePos int64 = 2
)

// NoSubtitleMessage is shown when a trigger arrives without a usable line.
const NoSubtitleMessage = "no active subtitle"

// State is the machine's position in a cut cycle.
type State int

const (
	// Idle means no subtitle has been observed yet.
	Idle State = iota
	// Armed means a subtitle is known and no cut is in flight.
	Armed
	// Watching means a cut is replaying and time-pos is observed.
	Watching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Watching:
		return "watching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Player is the part of the control client the machine drives.
type Player interface {
	GetFloat(ctx context.Context, name string) (float64, error)
	GetString(ctx context.Context, name string) (string, error)
	GetTrackList(ctx context.Context) ([]mpvipc.Track, error)
	SetProperty(ctx context.Context, name string, value any) error
	ObserveProperty(ctx context.Context, id int64, name string) error
	UnobserveProperty(ctx context.Context, id int64) error
	RequestEvent(ctx context.Context, name string, enabled bool) error
	ShowText(ctx context.Context, text string, d time.Duration) error
}

// CutRequest is handed to the orchestrator for every valid trigger.
type CutRequest struct {
	CycleID    string
	Line       SubtitleLine
	Window     Window
	Duration   float64
	MediaPath  string
	TrackIndex int
	HasTrack   bool
}

// Cutter starts the clip, mic, and analysis work for a window. It must not
// block on the spawned processes.
type Cutter interface {
	Cut(ctx context.Context, req CutRequest)
}

// Options configures a Machine.
type Options struct {
	TriggerKeyword string
	Pad            float64
	OSDDuration    time.Duration
	Logger         *slog.Logger
}

// OptionsFromConfig reads the player and clip sections.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		TriggerKeyword: cfg.Player.TriggerKeyword,
		Pad:            cfg.Clip.PadSeconds,
		OSDDuration:    cfg.OSDDuration(),
		Logger:         logger,
	}
}

// Machine is owned by the single goroutine that consumes player events.
type Machine struct {
	player Player
	cutter Cutter
	opts   Options
	logger *slog.Logger

	state     State
	line      SubtitleLine
	hasLine   bool
	threshold float64
	observed  bool
}

// NewMachine builds an Idle machine.
func NewMachine(player Player, cutter Cutter, opts Options) *Machine {
	if opts.TriggerKeyword == "" {
		opts.TriggerKeyword = "cut_current_sub"
	}
	return &Machine{
		player: player,
		cutter: cutter,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "shadow"),
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Line returns the last subtitle line with end>start.
func (m *Machine) Line() (SubtitleLine, bool) { return m.line, m.hasLine }

// Threshold returns the armed pause position while Watching.
func (m *Machine) Threshold() float64 { return m.threshold }

// Run subscribes to trigger messages and subtitle changes, then handles events
// until the stream closes. It returns the connection error that ended it.
func (m *Machine) Run(ctx context.Context, events <-chan mpvipc.Event, connErr func() error) error {
	if err := m.player.RequestEvent(ctx, mpvipc.EventClientMessage, true); err != nil && !services.Degradable(err) {
		return err
	}
	if err := m.player.ObserveProperty(ctx, SlotSubText, mpvipc.PropSubText); err != nil {
		return err
	}
	m.logger.Info("watching subtitles",
		logging.String("trigger", m.opts.TriggerKeyword),
		logging.String(logging.FieldEventType, "shadow_ready"),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if connErr != nil {
					if err := connErr(); err != nil {
						return err
					}
				}
				return services.ErrConnectionLost
			}
			if err := m.Handle(ctx, ev); err != nil && !services.Degradable(err) {
				return err
			}
		}
	}
}

// Handle applies one player event.
func (m *Machine) Handle(ctx context.Context, ev mpvipc.Event) error {
	switch {
	case ev.IsTrigger(m.opts.TriggerKeyword):
		return m.trigger(ctx)
	case ev.Kind != mpvipc.EventPropertyChange:
		return nil
	case ev.ID == SlotSubText:
		return m.subtitleChanged(ctx, ev)
	case ev.ID == SlotTimePos:
		return m.positionChanged(ctx, ev)
	}
	return nil
}

func (m *Machine) subtitleChanged(ctx context.Context, ev mpvipc.Event) error {
	if m.state == Idle {
		m.state = Armed
	}
	text, _ := ev.Text()
	text = textutil.NormalizeSubtitle(text)
	if text == "" {
		return nil
	}

	start, err := m.player.GetFloat(ctx, mpvipc.PropSubStart)
	if err != nil {
		return m.softFail("sub-start unavailable", err)
	}
	end, err := m.player.GetFloat(ctx, mpvipc.PropSubEnd)
	if err != nil {
		return m.softFail("sub-end unavailable", err)
	}
	if end <= start {
		return nil
	}
	m.line = SubtitleLine{Text: text, Start: start, End: end}
	m.hasLine = true
	m.logger.Debug("subtitle line updated",
		logging.String("text", text),
		logging.Float64("start", start),
		logging.Float64("end", end),
	)
	return nil
}

func (m *Machine) trigger(ctx context.Context) error {
	if !m.hasLine {
		m.logger.Debug("trigger ignored; no subtitle line yet")
		return nil
	}

	duration, err := m.player.GetFloat(ctx, mpvipc.PropDuration)
	if err != nil {
		if !services.Degradable(err) {
			return err
		}
		duration = 0
	}
	window := CutWindow(m.line, duration, m.opts.Pad)
	if !window.Valid() {
		m.logger.Info("trigger ignored; empty cut window",
			logging.String("window", window.String()),
			logging.String(logging.FieldEventType, "cut_window_invalid"),
		)
		return m.osd(ctx, NoSubtitleMessage)
	}

	mediaPath, err := m.player.GetString(ctx, mpvipc.PropPath)
	if err != nil {
		if !services.Degradable(err) {
			return err
		}
		logging.WarnWithContext(m.logger, "media path unavailable; cut skipped", "media_path_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no clip for this trigger"),
		)
		return m.osd(ctx, NoSubtitleMessage)
	}

	req := CutRequest{
		CycleID:   uuid.NewString(),
		Line:      m.line,
		Window:    window,
		Duration:  duration,
		MediaPath: mediaPath,
	}
	if tracks, err := m.player.GetTrackList(ctx); err == nil {
		req.TrackIndex, req.HasTrack = mpvipc.SelectedAudioIndex(tracks)
	} else if !services.Degradable(err) {
		return err
	}

	ctx = services.WithMediaPath(services.WithCycleID(ctx, req.CycleID), mediaPath)
	logger := logging.WithContext(ctx, m.logger)

	if err := m.player.SetProperty(ctx, mpvipc.PropPause, true); err != nil {
		return m.softFail("pause failed", err)
	}
	if err := m.player.SetProperty(ctx, mpvipc.PropTimePos, window.Start); err != nil {
		return m.softFail("seek failed", err)
	}
	m.threshold = window.End - stopLead
	if !m.observed {
		if err := m.player.ObserveProperty(ctx, SlotTimePos, mpvipc.PropTimePos); err != nil {
			return m.softFail("observe time-pos failed", err)
		}
		m.observed = true
	}
	if err := m.player.SetProperty(ctx, mpvipc.PropPause, false); err != nil {
		return m.softFail("resume failed", err)
	}

	logger.Info("cut started",
		logging.String("text", req.Line.Text),
		logging.String("window", window.String()),
		logging.Bool("has_track", req.HasTrack),
		logging.Int("track", req.TrackIndex),
		logging.String(logging.FieldEventType, "cut_started"),
	)
	if m.cutter != nil {
		m.cutter.Cut(ctx, req)
	}
	m.state = Watching

	return m.osd(ctx, Confirmation(req))
}

// Confirmation is the on-screen summary of a started cut.
func Confirmation(req CutRequest) string {
	if req.HasTrack {
		return fmt.Sprintf("cut %.3f-%.3f (ff=%d)", req.Window.Start, req.Window.End, req.TrackIndex)
	}
	return fmt.Sprintf("cut %.3f-%.3f", req.Window.Start, req.Window.End)
}

func (m *Machine) positionChanged(ctx context.Context, ev mpvipc.Event) error {
	if m.state != Watching {
		return nil
	}
	pos, ok := ev.Float()
	if !ok || pos < m.threshold {
		return nil
	}

	m.state = Armed
	m.threshold = 0
	if err := m.player.SetProperty(ctx, mpvipc.PropPause, true); err != nil {
		return m.softFail("pause at line end failed", err)
	}
	if m.observed {
		m.observed = false
		if err := m.player.UnobserveProperty(ctx, SlotTimePos); err != nil {
			return m.softFail("unobserve time-pos failed", err)
		}
	}
	m.logger.Debug("line replay finished", logging.Float64("position", pos))
	return nil
}

func (m *Machine) osd(ctx context.Context, text string) error {
	if err := m.player.ShowText(ctx, text, m.opts.OSDDuration); err != nil {
		return m.softFail("show-text failed", err)
	}
	return nil
}

// softFail logs degradable player errors and passes fatal ones through.
func (m *Machine) softFail(msg string, err error) error {
	if !services.Degradable(err) || errors.Is(err, context.Canceled) {
		return err
	}
	m.logger.Debug(msg, logging.Error(err))
	return nil
}
