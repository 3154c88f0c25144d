package mpvipc

import (
	"encoding/json"
	"fmt"
)

// Event names used by the shadowing loop.
const (
	EventPropertyChange = "property-change"
	EventClientMessage  = "client-message"
)

// Property names read or observed from the player.
const (
	PropSubText   = "sub-text"
	PropSubStart  = "sub-start"
	PropSubEnd    = "sub-end"
	PropDuration  = "duration"
	PropPath      = "path"
	PropTrackList = "track-list"
	PropTimePos   = "time-pos"
	PropPause     = "pause"
)

const replySuccess = "success"

// request is one outbound line.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
}

// inbound covers both reply and event shapes.
type inbound struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Args      []string        `json:"args"`
}

// Event is an asynchronous notification from the player.
type Event struct {
	Kind string
	// ID is the observation slot for property-change events.
	ID   int64
	Name string
	Data json.RawMessage
	Args []string
}

// IsTrigger reports whether e is a client-message whose first argument is keyword.
func (e Event) IsTrigger(keyword string) bool {
	return e.Kind == EventClientMessage && len(e.Args) > 0 && e.Args[0] == keyword
}

// Float decodes numeric event data. Missing or null data reports false.
func (e Event) Float() (float64, bool) {
	return decodeFloat(e.Data)
}

// Text decodes string event data. Missing or null data reports false.
func (e Event) Text() (string, bool) {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return "", false
	}
	return s, true
}

// String names the event for logs.
func (e Event) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Name)
	}
	return e.Kind
}

// Track is one entry of the track-list property.
type Track struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Selected bool   `json:"selected"`
	FFIndex  *int   `json:"ff-index"`
	Title    string `json:"title"`
	Lang     string `json:"lang"`
}

// SelectedAudioIndex returns the demuxer stream index of the selected audio track.
func SelectedAudioIndex(tracks []Track) (int, bool) {
	for _, t := range tracks {
		if t.Type == "audio" && t.Selected && t.FFIndex != nil {
			return *t.FFIndex, true
		}
	}
	return 0, false
}

func decodeFloat(data json.RawMessage) (float64, bool) {
	if len(data) == 0 || string(data) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, false
	}
	return f, true
}
