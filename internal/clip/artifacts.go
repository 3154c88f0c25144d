package clip

import (
	"fmt"
	"path/filepath"
	"strings"

	"mpvshadow/internal/retention"
	"mpvshadow/internal/shadow"
	"mpvshadow/internal/textutil"
)

const (
	wavExt       = ".wav"
	micSuffix    = "_mic" + wavExt
	latestClip   = retention.LatestPrefix + wavExt
	latestMic    = retention.LatestPrefix + micSuffix
	wavHeaderLen = 44
)

// Artifacts are the file paths one cycle produces.
type Artifacts struct {
	ClipPath       string
	LatestClipPath string
	MicPath        string
	LatestMicPath  string
}

// NewArtifacts names the outputs for window w of mediaPath inside dir.
func NewArtifacts(dir, mediaPath string, w shadow.Window) Artifacts {
	startMs, endMs := w.Millis()
	stem := fmt.Sprintf("%s_%d_%d", textutil.ClipBase(mediaPath), startMs, endMs)
	return Artifacts{
		ClipPath:       filepath.Join(dir, stem+wavExt),
		LatestClipPath: filepath.Join(dir, latestClip),
		MicPath:        filepath.Join(dir, stem+micSuffix),
		LatestMicPath:  filepath.Join(dir, latestMic),
	}
}

// IsClip matches reference clip names.
func IsClip(name string) bool {
	return strings.HasSuffix(name, wavExt) && !IsMic(name)
}

// IsMic matches recorded take names.
func IsMic(name string) bool {
	return strings.HasSuffix(name, micSuffix)
}
