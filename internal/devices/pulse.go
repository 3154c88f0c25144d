package devices

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PulseEnumerator lists PulseAudio/PipeWire sources through pactl.
type PulseEnumerator struct {
	Binary string
	// Output overrides command execution, mainly for tests.
	Output func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Enumerate runs `pactl list short sources` and skips monitor sources.
func (p *PulseEnumerator) Enumerate(ctx context.Context) ([]Device, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pactl"
	}
	run := p.Output
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		}
	}
	out, err := run(ctx, binary, "list", "short", "sources")
	if err != nil {
		return nil, fmt.Errorf("pactl list sources: %w", err)
	}
	return parsePactlSources(string(out)), nil
}

// parsePactlSources reads tab-separated `index name driver spec state` rows.
func parsePactlSources(output string) []Device {
	var list []Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if name == "" || strings.HasSuffix(name, ".monitor") {
			continue
		}
		label := name
		if len(fields) >= 4 {
			label = fmt.Sprintf("%s [%s]", name, strings.TrimSpace(fields[3]))
		}
		list = append(list, Device{ID: name, Name: label})
	}
	return list
}
