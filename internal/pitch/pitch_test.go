package pitch

import (
	"math"
	"testing"
)

func sine(rate, freq, secs float64) []float32 {
	n := int(rate * secs)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

func TestDefaultConfigMatchesSettings(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SampleRate != 24000 || cfg.FrameSize != 960 || cfg.HopSize != 240 {
		t.Fatalf("unexpected default framing: %+v", cfg)
	}
	if cfg.FminHz != 70 || cfg.FmaxHz != 350 || cfg.Threshold != 0.40 {
		t.Fatalf("unexpected default bounds: %+v", cfg)
	}
}

func TestEstimateSine200Hz(t *testing.T) {
	res := Estimate(sine(24000, 200, 0.5), DefaultConfig())
	if res.VoicedRatio <= 0.7 {
		t.Fatalf("voiced ratio too low: %v", res.VoicedRatio)
	}
	if !res.HasMedian {
		t.Fatal("expected a median")
	}
	if math.Abs(res.MedianHz-200) >= 3 {
		t.Fatalf("median %v not within 3 Hz of 200", res.MedianHz)
	}
	if want := (12000-960)/240 + 1; res.Frames() != want {
		t.Fatalf("expected %d frames, got %d", want, res.Frames())
	}
}

func TestEstimateSilenceIsUnvoiced(t *testing.T) {
	res := Estimate(make([]float32, 12000), DefaultConfig())
	if res.HasMedian {
		t.Fatalf("expected no median, got %v", res.MedianHz)
	}
	if res.VoicedRatio >= 0.05 {
		t.Fatalf("voiced ratio too high: %v", res.VoicedRatio)
	}
	for i, f := range res.F0Hz {
		if f != 0 || res.Voiced[i] {
			t.Fatalf("frame %d: expected unvoiced, got f0=%v", i, f)
		}
	}
}

func TestEstimateDegenerateInputs(t *testing.T) {
	if res := Estimate(nil, DefaultConfig()); res.Frames() != 0 || res.HasMedian {
		t.Fatalf("expected empty result for empty input, got %+v", res)
	}
	cfg := DefaultConfig()
	cfg.FrameSize = 2
	if res := Estimate(sine(24000, 200, 0.1), cfg); res.Frames() != 0 {
		t.Fatalf("expected empty result for tiny frame, got %d frames", res.Frames())
	}
	if res := Estimate(make([]float32, 100), DefaultConfig()); res.Frames() != 0 || res.VoicedRatio != 0 {
		t.Fatalf("expected no frames when input is shorter than one frame, got %+v", res)
	}
}

func TestVoicedMedianEvenCountAverages(t *testing.T) {
	got, ok := voicedMedian([]float64{0, 100, 0, 300, 200, 400})
	if !ok || got != 250 {
		t.Fatalf("expected 250, got %v ok=%v", got, ok)
	}
	got, ok = voicedMedian([]float64{0, 120, 0, 180, 150})
	if !ok || got != 150 {
		t.Fatalf("expected 150, got %v ok=%v", got, ok)
	}
	if _, ok := voicedMedian([]float64{0, 0}); ok {
		t.Fatal("expected no median without voiced frames")
	}
}

func TestRefineSkipsFlatParabola(t *testing.T) {
	nsdf := []float32{0.5, 0.5, 0.5}
	if got := refine(nsdf, 1); got != 1 {
		t.Fatalf("expected unrefined lag, got %v", got)
	}
	nsdf = []float32{0.2, 1, 0.6}
	if got := refine(nsdf, 1); got <= 1 || got >= 1.5 {
		t.Fatalf("expected refinement toward the larger neighbour, got %v", got)
	}
}

func TestCompareOctaveOffset(t *testing.T) {
	ref := Estimate(sine(24000, 110, 0.5), DefaultConfig())
	take := Estimate(sine(24000, 220, 0.5), DefaultConfig())

	cmp := Compare(ref, take)
	if !cmp.HasOffset {
		t.Fatal("expected offset for two voiced takes")
	}
	if math.Abs(cmp.OffsetCents-1200) > 40 {
		t.Fatalf("expected about +1200 cents, got %v", cmp.OffsetCents)
	}
	if cmp.SharedFrames == 0 || math.Abs(cmp.ContourCents-1200) > 60 {
		t.Fatalf("unexpected contour distance %v over %d frames", cmp.ContourCents, cmp.SharedFrames)
	}
}

func TestCompareSilentTakeHasNoOffset(t *testing.T) {
	cmp := Compare(Estimate(sine(24000, 200, 0.3), DefaultConfig()), Estimate(make([]float32, 7200), DefaultConfig()))
	if cmp.HasOffset || cmp.SharedFrames != 0 {
		t.Fatalf("expected no offset, got %+v", cmp)
	}
	if cmp.Reference.VoicedRatio == 0 || cmp.Take.VoicedRatio != 0 {
		t.Fatalf("unexpected summaries: %+v", cmp)
	}
}
