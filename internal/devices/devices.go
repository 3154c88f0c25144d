// Package devices enumerates microphone capture devices and tracks the user's
// selection.
//
// Backends return opaque ids that are handed verbatim to the recorder: ALSA
// "hw:<card>,<device>" ids from the udev crawler, or PulseAudio source names
// from pactl. The Selection handle is shared between the presentation layer,
// which writes it, and the clip orchestrator, which resolves it per cycle.
package devices

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"mpvshadow/internal/config"
	"mpvshadow/internal/logging"
	"mpvshadow/internal/mailbox"
)

// Device is one capture source.
type Device struct {
	ID   string
	Name string
}

// Label renders the device for lists.
func (d Device) Label() string {
	if d.Name == "" || d.Name == d.ID {
		return d.ID
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.ID)
}

// Enumerator lists capture devices.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]Device, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(ctx context.Context) ([]Device, error)

// Enumerate calls f.
func (f EnumeratorFunc) Enumerate(ctx context.Context) ([]Device, error) { return f(ctx) }

// None is the backend used when mic capture is disabled.
var None = EnumeratorFunc(func(context.Context) ([]Device, error) { return nil, nil })

// NewEnumerator picks the backend named by mic.backend.
func NewEnumerator(cfg *config.Config) Enumerator {
	switch cfg.Mic.Backend {
	case config.MicBackendUdev:
		return &UdevEnumerator{}
	case config.MicBackendPulse:
		return &PulseEnumerator{}
	default:
		return None
	}
}

// Selection is the shared handle for the chosen capture device. The empty id
// is the default sentinel: use the first enumerated device.
type Selection struct {
	mu       sync.RWMutex
	selected string
	known    []Device
}

// NewSelection seeds the handle with a preferred id (may be empty).
func NewSelection(preferred string) *Selection {
	return &Selection{selected: preferred}
}

// Select records the user's choice; "" restores the default.
func (s *Selection) Select(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// Selected returns the chosen id, or "" for default.
func (s *Selection) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetKnown replaces the enumerated device list.
func (s *Selection) SetKnown(list []Device) {
	s.mu.Lock()
	s.known = slices.Clone(list)
	s.mu.Unlock()
}

// Known returns the most recent enumeration.
func (s *Selection) Known() []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.known)
}

// Resolve returns the device for the next recording: the selected id, else
// the first enumerated device, else false.
func (s *Selection) Resolve() (Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected != "" {
		for _, d := range s.known {
			if d.ID == s.selected {
				return d, true
			}
		}
		return Device{ID: s.selected, Name: s.selected}, true
	}
	if len(s.known) > 0 {
		return s.known[0], true
	}
	return Device{}, false
}

// Discover enumerates once, records the list on sel, and publishes it to box.
// Failures publish an empty list so the presentation layer stops waiting.
func Discover(ctx context.Context, enum Enumerator, sel *Selection, box *mailbox.Mailbox[[]Device], logger *slog.Logger) []Device {
	logger = logging.NewComponentLogger(logger, "devices")
	list, err := enum.Enumerate(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "capture device enumeration failed", "device_enumeration_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check mic.backend and that pactl or /sys/class/sound is available"),
			logging.String(logging.FieldImpact, "mic takes skipped unless mic.device is set"),
		)
		list = nil
	}
	if sel != nil {
		sel.SetKnown(list)
	}
	if box != nil {
		box.Publish(list)
	}
	logger.Info("capture devices enumerated",
		logging.Int("count", len(list)),
		logging.String(logging.FieldEventType, "devices_enumerated"),
	)
	return list
}
