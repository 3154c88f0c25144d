// Package session wires one shadowing run together.
//
// A Session takes a lock on the clips directory so two runs never race on the
// "latest" artifacts, opens the take history, enumerates capture devices in the
// background, and keeps a player connection alive: each connection gets its
// own control channel client and trigger state machine, and a lost connection
// is followed by a reconnect. Results are presented by the terminal UI or, in
// headless mode, written to the log.
package session
