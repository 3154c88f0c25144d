// Package services defines shared utilities consumed by the player loop, the
// clip orchestrator, and the analysis helpers.
//
// Key responsibilities:
//   - Context helpers that stamp cycle identifiers and media paths for logging.
//   - Structured error markers plus the Wrap helper so every failure can be
//     classified (connection lost, spawn/exit failure, timeout, decode) with
//     errors.Is.
//
// Clip, mic, and analysis failures are independent within one cycle; use
// Degradable to decide whether an error ends a task or only drops a field.
package services
