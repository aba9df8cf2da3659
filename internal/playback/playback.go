// Package playback defines the remote playback-control boundary and its
// Spotify Web API implementation.
package playback

import (
	"context"
	"errors"
	"fmt"
)

// MinVolume and MaxVolume bound every volume the controller is asked to set.
const (
	MinVolume = 0
	MaxVolume = 100
)

// ErrNoActivePlayback is returned when a command needs the current playback
// session but the account has none.
var ErrNoActivePlayback = errors.New("no active playback session")

// ErrVolumeUnavailable is returned when the active device does not report
// a volume to step from.
var ErrVolumeUnavailable = errors.New("active device does not report a volume")

// State is a snapshot of the remote playback session.
type State struct {
	IsPlaying     bool   `json:"is_playing"`
	DeviceID      string `json:"device_id"`
	DeviceName    string `json:"device_name"`
	VolumePercent int    `json:"volume_percent"`
	TrackName     string `json:"track_name,omitempty"`

	// SupportsVolume is false when the device reports no volume, in which
	// case VolumePercent is meaningless.
	SupportsVolume bool `json:"supports_volume"`
}

// Controller is a remote playback session.
//
// State returns nil, nil when the account has no active session.
type Controller interface {
	State(ctx context.Context) (*State, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
}

// APIError is a non-2xx response from the playback service.
type APIError struct {
	Status  int
	Message string
	Reason  string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("playback api: %d %s (%s)", e.Status, e.Message, e.Reason)
	}
	return fmt.Sprintf("playback api: %d %s", e.Status, e.Message)
}

// ClampVolume limits percent to [MinVolume, MaxVolume].
func ClampVolume(percent int) int {
	return max(MinVolume, min(MaxVolume, percent))
}
