// Package pitch estimates fundamental-frequency contours of short clips with the
// McLeod pitch method (NSDF peak picking with parabolic refinement) and compares
// a recorded take against its reference.
package pitch

import (
	"math"
	"slices"

	"mpvshadow/internal/config"
)

const refineEpsilon = 1e-12

// Config parameterizes Estimate.
type Config struct {
	SampleRate float64
	FrameSize  int
	HopSize    int
	FminHz     float64
	FmaxHz     float64
	// Threshold is the minimum NSDF peak value for a frame to count as voiced.
	Threshold float64
}

// DefaultConfig returns 24 kHz, 40 ms frames, 10 ms hop, 70-350 Hz, threshold 0.40.
func DefaultConfig() Config {
	return FromSettings(config.Default().Pitch)
}

// FromSettings converts the [pitch] configuration section into estimator parameters.
func FromSettings(p config.Pitch) Config {
	return Config{
		SampleRate: float64(p.SampleRate),
		FrameSize:  max(p.SampleRate*p.FrameMs/1000, 1),
		HopSize:    max(p.SampleRate*p.HopMs/1000, 1),
		FminHz:     p.FminHz,
		FmaxHz:     p.FmaxHz,
		Threshold:  p.VoicingThreshold,
	}
}

// Result is the per-frame contour and its summary statistics.
type Result struct {
	F0Hz        []float64
	Voiced      []bool
	MedianHz    float64
	HasMedian   bool
	VoicedRatio float64
}

// Frames returns the number of analyzed frames.
func (r Result) Frames() int { return len(r.F0Hz) }

// Estimate computes the f0 contour of mono samples. Empty input or a frame
// shorter than three samples yields an empty Result.
func Estimate(samples []float32, cfg Config) Result {
	if len(samples) == 0 || cfg.FrameSize < 3 {
		return Result{}
	}

	sr := math.Max(cfg.SampleRate, 1)
	tauMin := max(int(math.Floor(sr/math.Max(cfg.FmaxHz, 1))), 2)
	tauMax := max(int(math.Ceil(sr/math.Max(cfg.FminHz, 1))), tauMin+1)
	threshold := float32(min(max(cfg.Threshold, 0), 1))
	hop := max(cfg.HopSize, 1)
	frameSize := cfg.FrameSize

	nsdf := make([]float32, tauMax+2)
	var res Result
	for start := 0; start+frameSize <= len(samples); start += hop {
		frame := samples[start : start+frameSize]
		fillNSDF(nsdf, frame, tauMin, tauMax)

		bestTau, bestVal := 0, float32(-1)
		for tau := tauMin + 1; tau < tauMax; tau++ {
			prev, cur, next := nsdf[tau-1], nsdf[tau], nsdf[tau+1]
			if cur > prev && cur >= next && cur > bestVal {
				bestTau, bestVal = tau, cur
			}
		}

		f0, voiced := 0.0, false
		if bestTau > 0 && bestVal >= threshold {
			tau := refine(nsdf, bestTau)
			tau = math.Min(math.Max(tau, float64(tauMin)), float64(tauMax))
			freq := sr / math.Max(tau, 1)
			if !math.IsInf(freq, 0) && !math.IsNaN(freq) && freq > 0 {
				f0, voiced = freq, true
			}
		}
		res.F0Hz = append(res.F0Hz, f0)
		res.Voiced = append(res.Voiced, voiced)
	}

	res.MedianHz, res.HasMedian = voicedMedian(res.F0Hz)
	if n := len(res.Voiced); n > 0 {
		count := 0
		for _, v := range res.Voiced {
			if v {
				count++
			}
		}
		res.VoicedRatio = float64(count) / float64(n)
	}
	return res
}

// fillNSDF writes the normalized square difference for every lag in
// [tauMin, tauMax] over the valid overlap of frame with itself.
func fillNSDF(nsdf []float32, frame []float32, tauMin, tauMax int) {
	for tau := tauMin; tau <= tauMax; tau++ {
		limit := len(frame) - tau
		if limit < 2 {
			nsdf[tau] = 0
			continue
		}
		var num, den float64
		for j := range limit {
			a := float64(frame[j])
			b := float64(frame[j+tau])
			num += a * b
			den += a*a + b*b
		}
		if den > 0 {
			nsdf[tau] = float32(2 * num / den)
		} else {
			nsdf[tau] = 0
		}
	}
}

// refine applies parabolic interpolation around the peak at tau.
func refine(nsdf []float32, tau int) float64 {
	l := float64(nsdf[tau-1])
	c := float64(nsdf[tau])
	r := float64(nsdf[tau+1])
	denom := l - 2*c + r
	if math.Abs(denom) <= refineEpsilon {
		return float64(tau)
	}
	return float64(tau) + 0.5*(l-r)/denom
}

func voicedMedian(series []float64) (float64, bool) {
	voiced := make([]float64, 0, len(series))
	for _, f := range series {
		if f > 0 {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return 0, false
	}
	slices.Sort(voiced)
	mid := len(voiced) / 2
	if len(voiced)%2 == 1 {
		return voiced[mid], true
	}
	return 0.5 * (voiced[mid-1] + voiced[mid]), true
}
