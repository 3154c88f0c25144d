package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mpvshadow/internal/devices"
	"mpvshadow/internal/takes"
	"mpvshadow/internal/testsupport"
)

func TestPitchAndCompareCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ref := filepath.Join(env.baseDir, "ref.wav")
	take := filepath.Join(env.baseDir, "take.wav")
	testsupport.WriteWAV(t, ref, 24000, 1, testsupport.SinePCM(24000, 200, 1))
	testsupport.WriteWAV(t, take, 24000, 1, testsupport.SinePCM(24000, 220, 1))

	out, _, err := runCLI(t, []string{"pitch", ref}, env.configPath)
	if err != nil {
		t.Fatalf("pitch: %v", err)
	}
	requireContains(t, out, "Median f0:")
	if strings.Contains(out, "no voiced frames") {
		t.Fatalf("expected a voiced median for a sine:\n%s", out)
	}
	requireContains(t, out, "24000 Hz, 1 ch, 16-bit")

	out, _, err = runCLI(t, []string{"compare", ref, take}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Offset")
	requireContains(t, out, "+1")
	requireContains(t, out, "cents over")

	if _, _, err := runCLI(t, []string{"pitch", filepath.Join(env.baseDir, "missing.wav")}, env.configPath); err == nil {
		t.Fatal("expected decode error for a missing file")
	}
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No takes recorded yet")

	store, err := takes.Open(env.cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	latency := 42.0
	offset := -30.0
	now := time.Now()
	for i, text := range []string{"first line", "second line"} {
		if err := store.Upsert(context.Background(), takes.Take{
			CycleID:     text,
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
			UpdatedAt:   now.Add(time.Duration(i) * time.Second),
			MediaPath:   "/media/show.mkv",
			Text:        text,
			WindowStart: 9.9,
			WindowEnd:   12.1,
			ClipPath:    "/clips/show_9900_12100.wav",
			LatencyMs:   &latency,
			OffsetCents: &offset,
		}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	_ = store.Close()

	out, _, err = runCLI(t, []string{"history", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "second line")
	requireContains(t, out, "42ms")
	requireContains(t, out, "-30¢")
	if strings.Contains(out, "first line") {
		t.Fatalf("expected limit to drop the older take:\n%s", out)
	}
}

func TestDevicesCommandBackendNone(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithMicDevice("hw:1,0"))

	out, _, err := runCLI(t, []string{"devices"}, env.configPath)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	requireContains(t, out, "Device enumeration disabled")
	requireContains(t, out, "hw:1,0")
}

func TestDevicesTableMarksActive(t *testing.T) {
	list := []devices.Device{{ID: "hw:0,0", Name: "PCH"}, {ID: "hw:1,0", Name: "USB"}}

	out := devicesTable(list, "hw:1,0")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "hw:1,0") && !strings.Contains(line, "*") {
			t.Fatalf("expected selected device to be marked: %q", line)
		}
		if strings.Contains(line, "hw:0,0") && strings.Contains(line, "*") {
			t.Fatalf("unexpected mark on unselected device: %q", line)
		}
	}
}

func TestDoctorPassesWithStubbedFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries("ffmpeg"))

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "[OK] Ready (command: ffmpeg)")
	requireContains(t, out, "Player socket")
}

func TestDoctorReportsMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", env.baseDir)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor to fail without ffmpeg:\n%s", out)
	}
	requireContains(t, out, "Missing dependencies")
}
