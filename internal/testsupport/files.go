package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mpvshadow/internal/wav"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFileAt writes a small file and stamps its modification time.
func WriteFileAt(t testing.TB, path string, mtime time.Time) {
	t.Helper()

	WriteFile(t, path, 64)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// WriteWAV writes interleaved 16-bit PCM samples as a WAV file.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, pcm []int16) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := wav.Encode(f, sampleRate, channels, pcm); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// SinePCM synthesizes a mono 16-bit tone at half scale.
func SinePCM(sampleRate int, freq, seconds float64) []int16 {
	n := int(float64(sampleRate) * seconds)
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}
