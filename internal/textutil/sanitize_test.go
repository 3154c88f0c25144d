package textutil

import "testing"

func TestClipBase(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/media/anime/Episode 01.mkv", "Episode 01"},
		{"/media/show: part 1?.mp4", "show- part 1"},
		{"", DefaultClipBase},
		{"/", DefaultClipBase},
		{"https://example.com/watch", "watch"},
		{"/media/.hidden", ".hidden"},
	}
	for _, tt := range tests {
		if got := ClipBase(tt.path); got != tt.want {
			t.Errorf("ClipBase(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeSubtitleComposesAndCollapses(t *testing.T) {
	decomposed := "cafe\u0301\n  au   lait"
	if got := NormalizeSubtitle(decomposed); got != "caf\u00e9 au lait" {
		t.Fatalf("unexpected normalization %q", got)
	}
	if got := NormalizeSubtitle(" \n "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestTruncateCountsWideRunes(t *testing.T) {
	if got := DisplayWidth("日本語abc"); got != 9 {
		t.Fatalf("expected width 9, got %d", got)
	}
	if got := Truncate("日本語のテキスト", 7); got != "日本語…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "a", "b") != "a" || Ternary(false, 1, 2) != 2 {
		t.Fatal("unexpected ternary result")
	}
}
