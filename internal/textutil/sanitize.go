package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultClipBase names clips when the media path has no usable stem.
const DefaultClipBase = "clip"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is NFC-normalized and trimmed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// ClipBase derives the clip filename stem from a media path or URL.
func ClipBase(mediaPath string) string {
	base := filepath.Base(strings.TrimSpace(mediaPath))
	if base == "." || base == string(filepath.Separator) {
		return DefaultClipBase
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = SanitizeFileName(base)
	if base == "" {
		return DefaultClipBase
	}
	return base
}

// NormalizeSubtitle composes text to NFC and collapses runs of whitespace,
// including the line breaks of multi-line subtitles, into single spaces.
func NormalizeSubtitle(text string) string {
	return strings.Join(strings.FieldsFunc(norm.NFC.String(text), unicode.IsSpace), " ")
}

// DisplayWidth returns the number of terminal cells s occupies.
func DisplayWidth(s string) int {
	total := 0
	for _, r := range s {
		total += runeWidth(r)
	}
	return total
}

// Truncate shortens s to at most maxCells terminal cells, marking the cut with an ellipsis.
func Truncate(s string, maxCells int) string {
	if maxCells <= 0 {
		return ""
	}
	if DisplayWidth(s) <= maxCells {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > maxCells-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteRune('…')
	return b.String()
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		if unicode.Is(unicode.Mn, r) {
			return 0
		}
		return 1
	}
}
