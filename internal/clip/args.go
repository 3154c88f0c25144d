package clip

import (
	"fmt"
	"strconv"

	"mpvshadow/internal/shadow"
)

func seconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// SourceArgs is the input half shared by every extraction of one window:
// quiet output, the time range, the media file, and the selected audio stream.
func SourceArgs(w shadow.Window, mediaPath string, trackIndex int, hasTrack bool) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-ss", seconds(w.Start),
		"-to", seconds(w.End),
		"-i", mediaPath,
	}
	if hasTrack {
		args = append(args, "-map", "0:"+strconv.Itoa(trackIndex))
	}
	return args
}

// ClipArgs writes 16-bit PCM stereo WAV to out.
func ClipArgs(source []string, sampleRate int, out string) []string {
	args := append([]string(nil), source...)
	return append(args,
		"-vn", "-sn",
		"-c:a", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "2",
		"-y", out,
	)
}

// ProbeArgs streams raw interleaved float32 stereo to standard output.
func ProbeArgs(source []string, sampleRate int) []string {
	args := append([]string(nil), source...)
	return append(args,
		"-vn", "-sn",
		"-f", "f32le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "2",
		"pipe:1",
	)
}

// MicArgs records length seconds of mono 16-bit PCM from device into out.
func MicArgs(inputFormat, device string, length float64, sampleRate int, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", inputFormat,
		"-i", device,
		"-t", seconds(length),
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		"-y", out,
	}
}
