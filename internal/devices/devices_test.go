package devices

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mpvshadow/internal/config"
	"mpvshadow/internal/logging"
	"mpvshadow/internal/mailbox"
)

func TestSelectionResolveOrder(t *testing.T) {
	sel := NewSelection("")
	if _, ok := sel.Resolve(); ok {
		t.Fatal("expected no device without selection or enumeration")
	}

	sel.SetKnown([]Device{{ID: "hw:1,0", Name: "USB"}, {ID: "hw:0,0", Name: "PCH"}})
	if d, ok := sel.Resolve(); !ok || d.ID != "hw:1,0" {
		t.Fatalf("expected first enumerated device, got %+v ok=%v", d, ok)
	}

	sel.Select("hw:0,0")
	if d, _ := sel.Resolve(); d.ID != "hw:0,0" || d.Name != "PCH" {
		t.Fatalf("expected selected known device, got %+v", d)
	}

	sel.Select("default")
	if d, _ := sel.Resolve(); d.ID != "default" {
		t.Fatalf("expected unknown selection passed verbatim, got %+v", d)
	}

	sel.Select("")
	if d, _ := sel.Resolve(); d.ID != "hw:1,0" {
		t.Fatalf("expected default sentinel to fall back, got %+v", d)
	}
}

func TestParsePactlSourcesSkipsMonitors(t *testing.T) {
	out := "0\talsa_output.pci.analog-stereo.monitor\tmodule-alsa-card.c\ts16le 2ch 48000Hz\tSUSPENDED\n" +
		"1\talsa_input.usb-Blue_Yeti.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 48000Hz\tRUNNING\n" +
		"garbage\n"
	got := parsePactlSources(out)
	want := []Device{{
		ID:   "alsa_input.usb-Blue_Yeti.analog-stereo",
		Name: "alsa_input.usb-Blue_Yeti.analog-stereo [s16le 2ch 48000Hz]",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected devices %+v", got)
	}
}

func TestPulseEnumeratorUsesPactl(t *testing.T) {
	var gotArgs []string
	enum := &PulseEnumerator{Output: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("3\tmic\tmodule\tspec\tIDLE\n"), nil
	}}
	list, err := enum.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate returned error: %v", err)
	}
	if !reflect.DeepEqual(gotArgs, []string{"pactl", "list", "short", "sources"}) {
		t.Fatalf("unexpected invocation %v", gotArgs)
	}
	if len(list) != 1 || list[0].ID != "mic" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestUdevFromEnvReadsCardName(t *testing.T) {
	root := t.TempDir()
	cardDir := filepath.Join(root, "class", "sound", "card1")
	if err := os.MkdirAll(cardDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cardDir, "id"), []byte("Yeti\n"), 0o644); err != nil {
		t.Fatalf("write id: %v", err)
	}
	u := &UdevEnumerator{SysRoot: root}

	d, ok := u.fromEnv(map[string]string{"DEVNAME": "snd/pcmC1D0c"})
	if !ok || d.ID != "hw:1,0" || d.Name != "Yeti" {
		t.Fatalf("unexpected device %+v ok=%v", d, ok)
	}
	d, ok = u.fromEnv(map[string]string{"DEVNAME": "snd/pcmC2D3c"})
	if !ok || d.ID != "hw:2,3" || d.Name != "hw:2,3" {
		t.Fatalf("expected id as name without card file, got %+v", d)
	}
	if _, ok := u.fromEnv(map[string]string{"DEVNAME": "snd/pcmC0D0p"}); ok {
		t.Fatal("playback PCM must not be listed")
	}
}

func TestDiscoverPublishesAndRecords(t *testing.T) {
	box := mailbox.New[[]Device]()
	sel := NewSelection("")
	enum := EnumeratorFunc(func(context.Context) ([]Device, error) {
		return []Device{{ID: "hw:0,0"}}, nil
	})

	Discover(context.Background(), enum, sel, box, logging.NewNop())
	list, ok := box.Take()
	if !ok || len(list) != 1 {
		t.Fatalf("expected published list, got %+v ok=%v", list, ok)
	}
	if d, ok := sel.Resolve(); !ok || d.ID != "hw:0,0" {
		t.Fatalf("expected selection to know the device, got %+v", d)
	}

	failing := EnumeratorFunc(func(context.Context) ([]Device, error) { return nil, errors.New("boom") })
	Discover(context.Background(), failing, sel, box, logging.NewNop())
	if list, ok := box.Take(); !ok || len(list) != 0 {
		t.Fatalf("expected empty list after failure, got %+v ok=%v", list, ok)
	}
}

func TestNewEnumeratorBackends(t *testing.T) {
	cfg := config.Default()
	if _, ok := NewEnumerator(&cfg).(*UdevEnumerator); !ok {
		t.Fatal("expected udev enumerator by default")
	}
	cfg.Mic.Backend = config.MicBackendPulse
	if _, ok := NewEnumerator(&cfg).(*PulseEnumerator); !ok {
		t.Fatal("expected pulse enumerator")
	}
	cfg.Mic.Backend = config.MicBackendNone
	list, err := NewEnumerator(&cfg).Enumerate(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty none backend, got %v %v", list, err)
	}
}

func TestDeviceLabel(t *testing.T) {
	if got := (Device{ID: "hw:0,0", Name: "PCH"}).Label(); got != "PCH (hw:0,0)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (Device{ID: "mic", Name: "mic"}).Label(); got != "mic" {
		t.Fatalf("unexpected label %q", got)
	}
}
