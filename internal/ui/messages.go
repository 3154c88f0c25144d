package ui

import (
	"mpvshadow/internal/clip"
	"mpvshadow/internal/devices"
)

// SnapshotMsg carries the freshest cycle snapshot.
type SnapshotMsg struct {
	Snapshot clip.Snapshot
}

// DevicesMsg carries a newly enumerated capture device list.
type DevicesMsg struct {
	Devices []devices.Device
}

// StatusMsg reports the player connection state.
type StatusMsg struct {
	Status Status
}

// Status is the session's view of the player connection.
type Status struct {
	Connected bool
	Socket    string
	MediaPath string
	Detail    string
}
