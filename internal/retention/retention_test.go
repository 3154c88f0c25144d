package retention_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mpvshadow/internal/logging"
	"mpvshadow/internal/retention"
	"mpvshadow/internal/testsupport"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	var paths []string
	for i := range 8 {
		p := filepath.Join(dir, "clip_"+string(rune('a'+i))+".wav")
		testsupport.WriteFileAt(t, p, base.Add(time.Duration(i)*time.Minute))
		paths = append(paths, p)
	}

	res := retention.Prune(retention.Set{Dir: dir, Keep: 5}, logging.NewNop())
	if len(res.Removed) != 3 || len(res.Kept) != 5 {
		t.Fatalf("expected 3 removed and 5 kept, got %d/%d", len(res.Removed), len(res.Kept))
	}
	for i, p := range paths {
		if want := i >= 3; exists(p) != want {
			t.Fatalf("%s: exists=%v want %v", p, exists(p), want)
		}
	}
}

func TestPruneNeverCountsExcludedOrLatest(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-24 * time.Hour)
	latest := filepath.Join(dir, "latest.wav")
	latestMic := filepath.Join(dir, "latest_mic.wav")
	fresh := filepath.Join(dir, "movie_1000_2000.wav")
	testsupport.WriteFileAt(t, latest, old)
	testsupport.WriteFileAt(t, latestMic, old)
	testsupport.WriteFileAt(t, fresh, old.Add(-time.Hour))

	var others []string
	for i := range 3 {
		p := filepath.Join(dir, "movie_"+string(rune('a'+i))+".wav")
		testsupport.WriteFileAt(t, p, time.Now().Add(time.Duration(-i)*time.Minute))
		others = append(others, p)
	}

	res := retention.Prune(retention.Set{Dir: dir, Keep: 2, Exclude: []string{fresh}}, nil)
	if len(res.Removed) != 1 || res.Removed[0] != others[2] {
		t.Fatalf("expected only the oldest eligible clip removed, got %v", res.Removed)
	}
	for _, p := range []string{latest, latestMic, fresh, others[0], others[1]} {
		if !exists(p) {
			t.Fatalf("expected %s to remain", p)
		}
	}
}

func TestPruneMatchSeparatesMicTakes(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	for i := range 4 {
		testsupport.WriteFileAt(t, filepath.Join(dir, "m_"+string(rune('a'+i))+"_mic.wav"), now.Add(time.Duration(-i)*time.Second))
		testsupport.WriteFileAt(t, filepath.Join(dir, "m_"+string(rune('a'+i))+".wav"), now.Add(time.Duration(-i)*time.Second))
	}

	isMic := func(name string) bool { return strings.HasSuffix(name, "_mic.wav") }
	res := retention.Prune(retention.Set{Dir: dir, Keep: 1, Match: isMic}, nil)
	if len(res.Removed) != 3 {
		t.Fatalf("expected 3 mic takes removed, got %v", res.Removed)
	}
	for _, p := range res.Removed {
		if !isMic(filepath.Base(p)) {
			t.Fatalf("removed non-mic file %s", p)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 5 {
		t.Fatalf("expected 4 clips plus 1 mic take, got %d entries", len(entries))
	}
}

func TestPruneMissingDirectoryIsQuiet(t *testing.T) {
	res := retention.Prune(retention.Set{Dir: filepath.Join(t.TempDir(), "absent"), Keep: 5}, nil)
	if len(res.Errors) != 0 || len(res.Removed) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
