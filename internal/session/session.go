package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"

	"mpvshadow/internal/clip"
	"mpvshadow/internal/config"
	"mpvshadow/internal/devices"
	"mpvshadow/internal/logging"
	"mpvshadow/internal/mailbox"
	"mpvshadow/internal/mpvipc"
	"mpvshadow/internal/preflight"
	"mpvshadow/internal/services"
	"mpvshadow/internal/shadow"
	"mpvshadow/internal/takes"
	"mpvshadow/internal/ui"
)

// LockFileName is created inside the clips directory while a session runs.
const LockFileName = ".mpvshadow.lock"

// ErrAlreadyRunning reports that another session holds the clips directory.
var ErrAlreadyRunning = errors.New("another mpvshadow session is already using the clips directory")

// Options configures a Session.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Headless logs snapshots instead of running the terminal UI.
	Headless bool

	// Runner, Enumerator and Dialer override the real process runner,
	// device backend and socket dial, mainly for tests.
	Runner     clip.Runner
	Enumerator devices.Enumerator
	Dialer     func(ctx context.Context, path string) (net.Conn, error)
}

// Session owns everything one shadowing run needs: the instance lock, take
// history, device discovery, the player connection loop and the UI.
type Session struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	headless bool
	dialer   func(ctx context.Context, path string) (net.Conn, error)

	lockPath string
	lock     *flock.Flock
	history  *takes.Store

	enum      devices.Enumerator
	selection *devices.Selection
	devices   *mailbox.Mailbox[[]devices.Device]
	status    *mailbox.Mailbox[ui.Status]
	orch      *clip.Orchestrator
}

// New validates the environment and acquires the single-instance lock.
func New(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "new", "configuration required", nil)
	}
	logger := logging.NewComponentLogger(opts.Logger, "session")

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "prepare directories", "", err)
	}

	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		if result.Name == "History database" {
			logging.WarnWithContext(logger, "history database unavailable; takes will not be recorded", "history_unavailable",
				logging.String("detail", result.Detail),
				logging.String(logging.FieldImpact, "history command shows no new takes"),
			)
			continue
		}
		if strings.HasPrefix(result.Name, "Player") {
			logger.Warn("player socket check failed", logging.String("detail", result.Detail))
			continue
		}
		return nil, services.Wrap(services.ErrConfiguration, "session", "preflight", result.Name, errors.New(result.Detail))
	}

	s := &Session{
		cfg:       cfg,
		base:      opts.Logger,
		logger:    logger,
		headless:  opts.Headless,
		dialer:    opts.Dialer,
		lockPath:  filepath.Join(cfg.Paths.ClipsDir, LockFileName),
		selection: devices.NewSelection(cfg.Mic.Device),
		devices:   mailbox.New[[]devices.Device](),
		status:    mailbox.New[ui.Status](),
		enum:      opts.Enumerator,
	}
	s.lock = flock.New(s.lockPath)
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	if s.enum == nil {
		s.enum = devices.NewEnumerator(cfg)
	}

	var recorder clip.Recorder
	if cfg.History.Enabled {
		store, err := takes.Open(cfg.Paths.HistoryDB)
		if err != nil {
			logging.WarnWithContext(logger, "open take history failed", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.history_db or set history.enabled = false"),
			)
		} else {
			s.history = store
			recorder = store
		}
	}

	s.orch = clip.New(clip.Options{
		Config:    cfg,
		Runner:    opts.Runner,
		Selection: s.selection,
		History:   recorder,
		Logger:    opts.Logger,
	})
	return s, nil
}

// Snapshots returns the mailbox cut results are published to.
func (s *Session) Snapshots() *mailbox.Mailbox[clip.Snapshot] { return s.orch.Snapshots() }

// Devices returns the mailbox enumerated capture devices are published to.
func (s *Session) Devices() *mailbox.Mailbox[[]devices.Device] { return s.devices }

// Status returns the mailbox player connection changes are published to.
func (s *Session) Status() *mailbox.Mailbox[ui.Status] { return s.status }

// Selection returns the capture device selection handle.
func (s *Session) Selection() *devices.Selection { return s.selection }

// LockPath returns the single-instance lock file.
func (s *Session) LockPath() string { return s.lockPath }

// Run starts device discovery and the player loop, then blocks in the UI (or
// the headless snapshot logger) until ctx ends or the user quits. Background
// encodes are awaited before Run returns.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info("session started",
		logging.String("clips_dir", s.cfg.Paths.ClipsDir),
		logging.String("socket", s.cfg.Player.SocketPath),
		logging.Bool("headless", s.headless),
		logging.String(logging.FieldEventType, "session_started"),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.discover(ctx)
	}()

	var monitor *devices.Monitor
	if s.cfg.Mic.Backend == config.MicBackendUdev {
		monitor = devices.NewMonitor(s.base, s.discover)
		monitor.Start(ctx)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.playerLoop(ctx)
	}()

	var err error
	if s.headless {
		err = s.logSnapshots(ctx)
	} else {
		err = s.runUI(ctx)
	}

	cancel()
	if monitor != nil {
		monitor.Stop()
	}
	wg.Wait()
	s.orch.Wait()

	s.logger.Info("session stopped", logging.String(logging.FieldEventType, "session_stopped"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the lock and the take history.
func (s *Session) Close() error {
	var errs []error
	if s.history != nil {
		errs = append(errs, s.history.Close())
		s.history = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release session lock", logging.Error(err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) discover(ctx context.Context) {
	devices.Discover(ctx, s.enum, s.selection, s.devices, s.base)
}

// playerLoop connects to the player, runs a fresh machine per connection and
// reconnects after the connection is lost.
func (s *Session) playerLoop(ctx context.Context) {
	socket := s.cfg.Player.SocketPath
	for ctx.Err() == nil {
		s.status.Publish(ui.Status{Socket: socket})

		client, err := mpvipc.Dial(ctx, socket, mpvipc.Options{
			Backoff: s.cfg.ConnectBackoff(),
			Logger:  s.base,
			Dialer:  s.dialer,
		})
		if err != nil {
			return
		}

		connected := ui.Status{Connected: true, Socket: socket}
		if path, err := client.GetString(ctx, mpvipc.PropPath); err == nil {
			connected.MediaPath = path
		}
		s.status.Publish(connected)

		machine := shadow.NewMachine(client, s.orch, shadow.OptionsFromConfig(s.cfg, s.base))
		err = machine.Run(ctx, client.Events(), client.Err)
		_ = client.Close()

		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, services.ErrConnectionLost) {
			s.logger.Info("player disconnected; reconnecting",
				logging.String("socket", socket),
				logging.String(logging.FieldEventType, "player_disconnected"),
			)
		} else {
			logging.ErrorWithContext(s.logger, "player session ended", "player_session_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "reconnecting to the player"),
			)
		}
	}
}

func (s *Session) runUI(ctx context.Context) error {
	model := ui.NewModel(ui.Sources{
		Snapshots: s.orch.Snapshots(),
		Devices:   s.devices,
		Status:    s.status,
		Selection: s.selection,
		Context:   ctx,
		Trigger:   s.cfg.Player.TriggerKeyword,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

// logSnapshots is the headless presentation: every published snapshot is
// written to the log until ctx ends.
func (s *Session) logSnapshots(ctx context.Context) error {
	box := s.orch.Snapshots()
	for {
		snap, err := box.Wait(ctx)
		if err != nil {
			return err
		}
		attrs := []logging.Attr{
			logging.String(logging.FieldCycleID, snap.CycleID),
			logging.String("text", snap.Text),
			logging.String("window", snap.Window.String()),
			logging.String("clip", snap.ClipPath),
			logging.String(logging.FieldEventType, "snapshot"),
		}
		if snap.HasMic() {
			attrs = append(attrs, logging.String("mic", snap.MicPath), logging.String("device", snap.MicDevice))
		}
		if snap.Probe != nil {
			attrs = append(attrs,
				logging.Duration("first_bytes", snap.Probe.Latency),
				logging.Float64("rms", snap.Probe.RMS),
				logging.Float64("peak", snap.Probe.Peak),
			)
		}
		if snap.Pitch != nil && snap.Pitch.HasOffset {
			attrs = append(attrs, logging.Float64("pitch_offset_cents", snap.Pitch.OffsetCents))
		}
		s.logger.Info("cut updated", logging.Args(attrs...)...)
	}
}
