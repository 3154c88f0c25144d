package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"mpvshadow/internal/config"
)

// Requirement defines an external binary mpvshadow shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries a session needs for cfg. pactl is only
// required when the pulse backend enumerates devices.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Clip.FFmpegBinary,
			Description: "Extracts reference clips and records the microphone",
		},
		{
			Name:        "mpv",
			Command:     "mpv",
			Description: "Player controlled over the IPC socket",
			Optional:    true,
		},
	}
	reqs = append(reqs, Requirement{
		Name:        "pactl",
		Command:     "pactl",
		Description: "Lists PulseAudio/PipeWire capture sources",
		Optional:    cfg.Mic.Backend != config.MicBackendPulse,
	})
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns the required (non-optional) statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
