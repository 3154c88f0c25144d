package shadow

import (
	"fmt"
	"math"
)

// DefaultPad widens each side of a subtitle line when cutting.
const DefaultPad = 0.10

// stopLead pauses slightly before the padded end so the next line does not start.
const stopLead = 0.02

// SubtitleLine is the most recent subtitle with a usable time range, in seconds.
type SubtitleLine struct {
	Text  string
	Start float64
	End   float64
}

// Window is the padded, clamped cut range in seconds.
type Window struct {
	Start float64
	End   float64
}

// CutWindow pads line by pad on both sides and clamps to [0, duration].
// A non-positive duration leaves the end unclamped.
func CutWindow(line SubtitleLine, duration, pad float64) Window {
	w := Window{
		Start: math.Max(0, line.Start-pad),
		End:   line.End + pad,
	}
	if duration > 0 && w.End > duration {
		w.End = duration
	}
	return w
}

// Valid reports whether the window has positive length.
func (w Window) Valid() bool { return w.Start < w.End }

// Length returns the window duration in seconds.
func (w Window) Length() float64 { return w.End - w.Start }

// Millis returns the rounded millisecond bounds used in clip filenames.
func (w Window) Millis() (start, end int64) {
	return int64(math.Round(w.Start * 1000)), int64(math.Round(w.End * 1000))
}

func (w Window) String() string {
	return fmt.Sprintf("%.2f-%.2fs", w.Start, w.End)
}
