package pitch

import "math"

// Summary condenses one contour for display and storage.
type Summary struct {
	MedianHz    float64
	HasMedian   bool
	VoicedRatio float64
	Frames      int
}

// Summarize extracts the display fields of r.
func Summarize(r Result) Summary {
	return Summary{MedianHz: r.MedianHz, HasMedian: r.HasMedian, VoicedRatio: r.VoicedRatio, Frames: r.Frames()}
}

// Comparison relates a recorded take to its reference clip.
type Comparison struct {
	Reference Summary
	Take      Summary
	// OffsetCents is the take median relative to the reference median.
	OffsetCents float64
	HasOffset   bool
	// ContourCents is the mean absolute per-frame distance over frames voiced in both.
	ContourCents float64
	SharedFrames int
}

// Compare aligns the two contours frame by frame from their starts.
func Compare(reference, take Result) Comparison {
	cmp := Comparison{Reference: Summarize(reference), Take: Summarize(take)}
	if reference.HasMedian && take.HasMedian {
		cmp.OffsetCents = cents(take.MedianHz, reference.MedianHz)
		cmp.HasOffset = true
	}

	n := min(len(reference.F0Hz), len(take.F0Hz))
	var total float64
	for i := range n {
		if !reference.Voiced[i] || !take.Voiced[i] {
			continue
		}
		total += math.Abs(cents(take.F0Hz[i], reference.F0Hz[i]))
		cmp.SharedFrames++
	}
	if cmp.SharedFrames > 0 {
		cmp.ContourCents = total / float64(cmp.SharedFrames)
	}
	return cmp
}

func cents(f, ref float64) float64 {
	return 1200 * math.Log2(f/ref)
}
