package devices

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"mpvshadow/internal/logging"
)

// Monitor listens for udev netlink events on the sound subsystem and calls
// onChange when a card is plugged or unplugged.
type Monitor struct {
	logger   *slog.Logger
	onChange func(ctx context.Context)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a hot-plug monitor.
func NewMonitor(logger *slog.Logger, onChange func(ctx context.Context)) *Monitor {
	return &Monitor{
		logger:   logging.NewComponentLogger(logger, "device-monitor"),
		onChange: onChange,
	}
}

// Start connects to the kernel uevent socket. Failure is logged and not fatal:
// the startup enumeration remains in effect.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "netlink connect failed; device hot-plug disabled", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the process may open netlink sockets"),
			logging.String(logging.FieldImpact, "newly plugged microphones appear only after restart"),
		)
		return
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.loop(ctx, conn, quit)

	m.logger.Info("device hot-plug monitor started",
		logging.String(logging.FieldEventType, "device_monitor_started"),
	)
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.quit)
	m.quit = nil
	_ = m.conn.Close()
	m.conn = nil
	m.running = false
}

func (m *Monitor) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, soundMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.logger.Debug("sound device changed",
				logging.String("action", string(uevent.Action)),
				logging.String("kobj", uevent.KObj),
			)
			if m.onChange != nil {
				m.onChange(ctx)
			}
		case err := <-errs:
			logging.WarnWithContext(m.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device list may be stale"),
			)
		}
	}
}

// soundMatcher matches card-level add/remove events.
func soundMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
			"DEVNAME":   capturePCM.String(),
		},
	})
	return rules
}
