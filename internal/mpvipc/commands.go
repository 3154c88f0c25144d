package mpvipc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mpvshadow/internal/services"
)

// GetProperty returns the raw JSON value of a property.
func (c *Client) GetProperty(ctx context.Context, name string) (json.RawMessage, error) {
	return c.Request(ctx, "get_property", name)
}

// GetFloat reads a numeric property.
func (c *Client) GetFloat(ctx context.Context, name string) (float64, error) {
	data, err := c.GetProperty(ctx, name)
	if err != nil {
		return 0, err
	}
	f, ok := decodeFloat(data)
	if !ok {
		return 0, services.Wrap(services.ErrProtocol, "mpvipc", "get_property", fmt.Sprintf("%s is not a number", name), nil)
	}
	return f, nil
}

// GetString reads a string property.
func (c *Client) GetString(ctx context.Context, name string) (string, error) {
	data, err := c.GetProperty(ctx, name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", services.Wrap(services.ErrProtocol, "mpvipc", "get_property", fmt.Sprintf("%s is not a string", name), err)
	}
	return s, nil
}

// GetTrackList reads and decodes the track-list property.
func (c *Client) GetTrackList(ctx context.Context) ([]Track, error) {
	data, err := c.GetProperty(ctx, PropTrackList)
	if err != nil {
		return nil, err
	}
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, services.Wrap(services.ErrProtocol, "mpvipc", "get_property", "track-list", err)
	}
	return tracks, nil
}

// SetProperty assigns a property and waits for the acknowledgement.
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Request(ctx, "set_property", name, value)
	return err
}

// ObserveProperty registers a property-change subscription on slot id.
func (c *Client) ObserveProperty(ctx context.Context, id int64, name string) error {
	_, err := c.Request(ctx, "observe_property", id, name)
	return err
}

// UnobserveProperty removes the subscription on slot id.
func (c *Client) UnobserveProperty(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, "unobserve_property", id)
	return err
}

// RequestEvent enables or disables delivery of a named event.
func (c *Client) RequestEvent(ctx context.Context, name string, enabled bool) error {
	_, err := c.Request(ctx, "request_event", name, enabled)
	return err
}

// ShowText displays an on-screen message for d.
func (c *Client) ShowText(ctx context.Context, text string, d time.Duration) error {
	_, err := c.Request(ctx, "show-text", text, d.Milliseconds())
	return err
}
