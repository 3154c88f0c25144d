package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "latest_mic.wav")
	dst := filepath.Join(dir, "clip_1000_2000_mic.wav")

	content := []byte("RIFF take")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("stale contents that are longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestCopyFileMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileMode(src, dst, 0o600); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o", info.Mode().Perm())
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.wav")); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist, stat err=%v", err)
	}
}

func TestAwaitSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest_mic.wav")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(path, make([]byte, 100), 0o644)
	}()

	if !AwaitSize(context.Background(), path, 44, time.Second, 5*time.Millisecond) {
		t.Fatal("expected file to become ready")
	}
}

func TestAwaitSizeHeaderOnlyTimesOut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest_mic.wav")
	if err := os.WriteFile(path, make([]byte, 44), 0o644); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if AwaitSize(context.Background(), path, 44, 60*time.Millisecond, 10*time.Millisecond) {
		t.Fatal("header-only file should not count as ready")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
}
