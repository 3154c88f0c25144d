// Package retention keeps only the newest N artifacts in a clips directory.
package retention

import (
	"cmp"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mpvshadow/internal/logging"
)

// LatestPrefix marks continuously overwritten artifacts that are never pruned.
const LatestPrefix = "latest"

// Set describes one pruning pass.
type Set struct {
	Dir  string
	Keep int
	// Exclude lists paths that are neither counted nor removed.
	Exclude []string
	// Match limits which file names are eligible. Nil means every file.
	Match func(name string) bool
}

// Result contains the outcome of a pruning pass.
type Result struct {
	Kept    []string
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

type candidate struct {
	path    string
	modTime time.Time
}

// IsLatest reports whether name is a protected "latest" artifact.
func IsLatest(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), LatestPrefix)
}

// Prune removes eligible files beyond the Keep newest by modification time.
// Excluded and latest-named files are never counted or removed.
func Prune(set Set, logger *slog.Logger) Result {
	result := Result{}

	dir := strings.TrimSpace(set.Dir)
	if dir == "" || set.Keep < 0 {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	excluded := make(map[string]struct{}, len(set.Exclude))
	for _, path := range set.Exclude {
		excluded[filepath.Clean(path)] = struct{}{}
	}

	var candidates []candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if IsLatest(name) {
			continue
		}
		if set.Match != nil && !set.Match(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if _, skip := excluded[filepath.Clean(path)]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		candidates = append(candidates, candidate{path: path, modTime: info.ModTime()})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return cmp.Compare(b.path, a.path)
	})

	for i, c := range candidates {
		if i < set.Keep {
			result.Kept = append(result.Kept, c.path)
			continue
		}
		if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: c.path, Error: err})
			logging.WarnWithContext(logger, "retention remove failed; file remains", "retention_remove_failed",
				logging.String(logging.FieldPath, c.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check clips_dir permissions"),
				logging.String(logging.FieldImpact, "old clip not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, c.path)
		if logger != nil {
			logger.Debug("pruned old artifact",
				logging.String(logging.FieldPath, c.path),
				logging.String(logging.FieldEventType, "retention_pruned"),
			)
		}
	}
	return result
}
