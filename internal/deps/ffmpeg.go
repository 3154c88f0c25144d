package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// commandOutput runs a binary and returns its stdout. Tests replace it.
var commandOutput = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

// CheckFFmpegInput reports whether ffmpeg can capture with the given input
// format (e.g. "alsa" or "pulse") by scanning its demuxer list.
func CheckFFmpegInput(ctx context.Context, binary, inputFormat string) Status {
	result := Status{
		Name:        "FFmpeg " + inputFormat + " input",
		Command:     binary,
		Description: "Microphone capture demuxer",
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := commandOutput(ctx, binary, "-hide_banner", "-demuxers")
	if err != nil {
		result.Detail = fmt.Sprintf("list demuxers: %v", err)
		return result
	}
	if !hasDemuxer(out, inputFormat) {
		result.Detail = fmt.Sprintf("ffmpeg built without %q demuxer", inputFormat)
		return result
	}
	result.Available = true
	return result
}

// hasDemuxer scans "ffmpeg -demuxers" output. Rows look like " D  alsa  ALSA audio input".
func hasDemuxer(out []byte, name string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.Contains(fields[0], "D") {
			continue
		}
		for _, candidate := range strings.Split(fields[1], ",") {
			if candidate == name {
				return true
			}
		}
	}
	return false
}
