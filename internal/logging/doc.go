// Package logging assembles structured slog loggers and formatting helpers used
// across mpvshadow.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so cycle code can tag log lines with the cycle
// id and media path automatically. While the terminal UI is running the session
// logger writes only to the session log file; headless runs mirror to stdout.
//
// Prefer these constructors over hand-rolled slog setup so every component emits
// the same shape of data.
package logging
