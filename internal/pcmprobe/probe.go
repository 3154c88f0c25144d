// Package pcmprobe takes a one-shot leading-edge measurement of a raw sample
// stream: how long until the first bytes arrive, and how loud they are.
//
// The stream is interleaved little-endian 32-bit float, stereo. RMS and peak
// are computed over the combined channel samples without separating channels.
package pcmprobe

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"mpvshadow/internal/services"
)

const (
	bytesPerSample = 4
	// DefaultChannels matches the stereo probe encode.
	DefaultChannels = 2
)

// Options bound a probe.
type Options struct {
	Frames   int
	Channels int
	Timeout  time.Duration
}

// Result is the measurement of the bytes actually read.
type Result struct {
	Latency time.Duration
	RMS     float64
	Peak    float64
	Bytes   int
}

// ErrStreamEnded marks a producer that closed its output before writing a sample.
var ErrStreamEnded = errors.New("stream ended before first sample")

type readOutcome struct {
	n   int
	at  time.Time
	err error
}

// Probe performs one bounded read from r on a background goroutine and
// measures the elapsed time from start to its completion. It returns an
// ErrTimeout-marked error if no bytes arrive within opts.Timeout, and an
// ErrAnalysis-marked error if the stream ends without data. The caller owns
// the producer and must stop it on timeout so the read goroutine can exit.
func Probe(ctx context.Context, r io.Reader, start time.Time, opts Options) (Result, error) {
	channels := opts.Channels
	if channels <= 0 {
		channels = DefaultChannels
	}
	frames := max(opts.Frames, 1)
	buf := make([]byte, frames*channels*bytesPerSample)

	done := make(chan readOutcome, 1)
	go func() {
		n, err := r.Read(buf)
		done <- readOutcome{n: n, at: time.Now(), err: err}
	}()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, services.Wrap(services.ErrTimeout, "pcmprobe", "read", "cancelled", ctx.Err())
	case <-timer.C:
		return Result{}, services.Wrap(services.ErrTimeout, "pcmprobe", "",
			fmt.Sprintf("no bytes within %dms", opts.Timeout.Milliseconds()), nil)
	case out := <-done:
		if out.n == 0 {
			if out.err == nil || out.err == io.EOF {
				return Result{}, services.Wrap(services.ErrAnalysis, "pcmprobe", "read", "", ErrStreamEnded)
			}
			return Result{}, services.Wrap(services.ErrAnalysis, "pcmprobe", "read", "", out.err)
		}
		rms, peak := Analyze(buf[:out.n])
		return Result{Latency: out.at.Sub(start), RMS: rms, Peak: peak, Bytes: out.n}, nil
	}
}

// Analyze computes RMS and peak over the complete float samples in buf.
// A trailing partial sample is ignored.
func Analyze(buf []byte) (rms, peak float64) {
	count := len(buf) / bytesPerSample
	if count == 0 {
		return 0, 0
	}
	var sumSquares float64
	for i := range count {
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*bytesPerSample:])))
		sumSquares += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return math.Sqrt(sumSquares / float64(count)), peak
}
