package clip

import (
	"time"

	"mpvshadow/internal/pcmprobe"
	"mpvshadow/internal/pitch"
	"mpvshadow/internal/shadow"
	"mpvshadow/internal/takes"
)

// Snapshot is the aggregated result of one cycle. Later snapshots of the same
// cycle only add fields to earlier ones.
type Snapshot struct {
	CycleID    string
	Text       string
	MediaPath  string
	Window     shadow.Window
	Duration   float64
	TrackIndex int
	HasTrack   bool

	ClipPath       string
	LatestClipPath string
	MicPath        string
	LatestMicPath  string
	MicDevice      string

	Probe *pcmprobe.Result
	Pitch *pitch.Comparison

	StartedAt time.Time
	UpdatedAt time.Time
}

// HasMic reports whether the mic take completed.
func (s Snapshot) HasMic() bool { return s.LatestMicPath != "" }

// Take converts the snapshot into a history row.
func (s Snapshot) Take() takes.Take {
	take := takes.Take{
		CycleID:     s.CycleID,
		CreatedAt:   s.StartedAt,
		MediaPath:   s.MediaPath,
		Text:        s.Text,
		WindowStart: s.Window.Start,
		WindowEnd:   s.Window.End,
		ClipPath:    s.ClipPath,
		MicPath:     s.MicPath,
	}
	if s.Duration > 0 {
		d := s.Duration
		take.Duration = &d
	}
	if s.HasTrack {
		idx := s.TrackIndex
		take.TrackIndex = &idx
	}
	if s.Probe != nil {
		latency := float64(s.Probe.Latency.Microseconds()) / 1000
		rms, peak := s.Probe.RMS, s.Probe.Peak
		take.LatencyMs, take.RMS, take.Peak = &latency, &rms, &peak
	}
	if s.Pitch != nil {
		if s.Pitch.Reference.HasMedian {
			v := s.Pitch.Reference.MedianHz
			take.RefMedianHz = &v
		}
		if s.Pitch.Take.HasMedian {
			v := s.Pitch.Take.MedianHz
			take.TakeMedianHz = &v
		}
		if s.Pitch.HasOffset {
			v := s.Pitch.OffsetCents
			take.OffsetCents = &v
		}
		if s.Pitch.SharedFrames > 0 {
			v := s.Pitch.ContourCents
			take.ContourCents = &v
		}
	}
	return take
}
