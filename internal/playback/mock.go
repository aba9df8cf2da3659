package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockController is an in-memory Controller for tests. It tracks play state
// and volume the way a real device would and records every call.
type MockController struct {
	mu       sync.Mutex
	state    *State
	calls    []string
	err      error
	stateErr error
	delay    time.Duration
}

// NewMockController returns a controller with an active, paused session at
// the given volume.
func NewMockController(volume int) *MockController {
	return &MockController{
		state: &State{DeviceID: "mock-device", DeviceName: "Mock", VolumePercent: volume, SupportsVolume: true},
	}
}

// SetVolumeUnsupported makes the active device report no volume.
func (m *MockController) SetVolumeUnsupported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.SupportsVolume = false
		m.state.VolumePercent = 0
	}
}

// SetInactive removes the active session so State returns nil.
func (m *MockController) SetInactive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
}

// SetPlaying sets the play state of the active session.
func (m *MockController) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.IsPlaying = playing
	}
}

// SetError makes every command fail with err.
func (m *MockController) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetStateError makes State fail with err.
func (m *MockController) SetStateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateErr = err
}

// SetDelay makes every call block for d or until its context ends.
func (m *MockController) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns the recorded calls, e.g. "state", "play", "volume 60 mock-device".
func (m *MockController) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Volume returns the current mock volume, or -1 with no session.
func (m *MockController) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return -1
	}
	return m.state.VolumePercent
}

// Playing reports the mock play state.
func (m *MockController) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != nil && m.state.IsPlaying
}

func (m *MockController) begin(ctx context.Context, call string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *MockController) State(ctx context.Context) (*State, error) {
	if err := m.begin(ctx, "state"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stateErr != nil {
		return nil, m.stateErr
	}
	if m.state == nil {
		return nil, nil
	}
	st := *m.state
	return &st, nil
}

func (m *MockController) command(ctx context.Context, call string, apply func(*State)) error {
	if err := m.begin(ctx, call); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.state == nil {
		return &APIError{Status: 404, Message: "No active device found", Reason: "NO_ACTIVE_DEVICE"}
	}
	apply(m.state)
	return nil
}

func (m *MockController) Play(ctx context.Context) error {
	return m.command(ctx, "play", func(s *State) { s.IsPlaying = true })
}

func (m *MockController) Pause(ctx context.Context) error {
	return m.command(ctx, "pause", func(s *State) { s.IsPlaying = false })
}

func (m *MockController) Next(ctx context.Context) error {
	return m.command(ctx, "next", func(*State) {})
}

func (m *MockController) Previous(ctx context.Context) error {
	return m.command(ctx, "previous", func(*State) {})
}

func (m *MockController) SetVolume(ctx context.Context, percent int, deviceID string) error {
	return m.command(ctx, fmt.Sprintf("volume %d %s", percent, deviceID), func(s *State) {
		s.VolumePercent = percent
	})
}
