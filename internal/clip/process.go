package clip

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// stderrLimit bounds the ffmpeg diagnostics kept for exit logging.
const stderrLimit = 2048

// Process is a started external command.
type Process interface {
	// Stdout is the piped standard output, or nil when not requested.
	Stdout() io.Reader
	// Wait reaps the process and reports a non-zero exit with its stderr tail.
	Wait() error
	Kill() error
}

// Runner starts external commands. Processes are not bound to a context so
// detached encodes outlive the trigger that spawned them.
type Runner interface {
	Start(binary string, args []string, pipeStdout bool) (Process, error)
}

// ExecRunner starts real operating-system processes.
type ExecRunner struct{}

// Start launches binary with args.
func (ExecRunner) Start(binary string, args []string, pipeStdout bool) (Process, error) {
	cmd := exec.Command(binary, args...) //nolint:gosec
	proc := &execProcess{cmd: cmd}
	cmd.Stderr = &proc.stderr
	if pipeStdout {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		proc.stdout = stdout
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return proc, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr tailBuffer
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		if tail := strings.TrimSpace(p.stderr.String()); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// tailBuffer keeps the last stderrLimit bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(p)
	if n >= stderrLimit {
		b.buf.Reset()
		b.buf.Write(p[n-stderrLimit:])
		return n, nil
	}
	if over := b.buf.Len() + n - stderrLimit; over > 0 {
		b.buf.Next(over)
	}
	b.buf.Write(p)
	return n, nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
