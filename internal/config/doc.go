// Package config loads, normalizes, and validates mpvshadow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MPVSHADOW_SOCKET. The Config type centralizes every knob the player loop,
// the clip orchestrator, and the CLI need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
