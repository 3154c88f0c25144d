package services_test

import (
	"errors"
	"strings"
	"testing"

	"mpvshadow/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("broken pipe")
	err := services.Wrap(services.ErrProcessSpawn, "clip", "encode", "spawn ffmpeg", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProcessSpawn) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"clip", "encode", "spawn ffmpeg", "broken pipe"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrTimeout, "pcmprobe", "", "no bytes within 200ms", nil)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if got := err.Error(); got != "timeout: pcmprobe: no bytes within 200ms" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestDegradable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"timeout", services.Wrap(services.ErrTimeout, "pcmprobe", "read", "", nil), true},
		{"exit", services.Wrap(services.ErrProcessExit, "clip", "mic", "", errors.New("exit 1")), true},
		{"connection", services.Wrap(services.ErrConnectionLost, "mpvipc", "read", "", nil), false},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "", nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Degradable(tc.err); got != tc.want {
				t.Fatalf("Degradable() = %v, want %v", got, tc.want)
			}
		})
	}
}
