package pcmprobe_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"mpvshadow/internal/pcmprobe"
	"mpvshadow/internal/services"
)

func floats(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func TestAnalyzeCombinedChannels(t *testing.T) {
	rms, peak := pcmprobe.Analyze(floats(0.5, -0.5, 1, 0, 0.25))
	want := math.Sqrt((0.25 + 0.25 + 1 + 0 + 0.0625) / 5)
	if math.Abs(rms-want) > 1e-9 {
		t.Fatalf("rms: got %v want %v", rms, want)
	}
	if peak != 1 {
		t.Fatalf("peak: got %v want 1", peak)
	}
	rms, peak = pcmprobe.Analyze([]byte{1, 2, 3})
	if rms != 0 || peak != 0 {
		t.Fatalf("expected zeros for partial sample, got %v %v", rms, peak)
	}
}

func TestProbeMeasuresFirstRead(t *testing.T) {
	pr, pw := io.Pipe()
	start := time.Now()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = pw.Write(floats(-0.75, 0.5, 0.25, 0.25))
	}()

	res, err := pcmprobe.Probe(context.Background(), pr, start, pcmprobe.Options{Frames: 4096, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if res.Bytes != 16 {
		t.Fatalf("expected 16 bytes read, got %d", res.Bytes)
	}
	if res.Latency < 20*time.Millisecond {
		t.Fatalf("latency %v shorter than producer delay", res.Latency)
	}
	if res.Peak != 0.75 {
		t.Fatalf("unexpected peak %v", res.Peak)
	}
	_ = pw.Close()
}

func TestProbeReadsAtMostOneBuffer(t *testing.T) {
	data := bytes.Repeat(floats(0.1), 64)
	res, err := pcmprobe.Probe(context.Background(), bytes.NewReader(data), time.Now(), pcmprobe.Options{Frames: 8, Channels: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if res.Bytes != 8*2*4 {
		t.Fatalf("expected one bounded read of 64 bytes, got %d", res.Bytes)
	}
}

func TestProbeTimesOut(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	_, err := pcmprobe.Probe(context.Background(), pr, time.Now(), pcmprobe.Options{Frames: 16, Timeout: 30 * time.Millisecond})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestProbeEmptyStreamIsAnalysisError(t *testing.T) {
	_, err := pcmprobe.Probe(context.Background(), bytes.NewReader(nil), time.Now(), pcmprobe.Options{Frames: 16, Timeout: time.Second})
	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
	if !errors.Is(err, pcmprobe.ErrStreamEnded) {
		t.Fatalf("expected ErrStreamEnded, got %v", err)
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatal("empty stream must not be reported as timeout")
	}
}
