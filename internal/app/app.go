// Package app wires capture, detection, classification and dispatch into
// the single-threaded frame loop.
package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/harness"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/store"
)

// Event types published to Config.Events.
const (
	EventFrame    = "frame"
	EventDispatch = "dispatch"
	EventTrial    = "trial"
	EventState    = "state"
)

// Event is a notification about the running session.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// Publisher receives events. Publish must not block the frame loop.
type Publisher interface {
	Publish(Event)
}

// Publishers fans each event out to every non-nil publisher in order.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(e Event) {
	for _, p := range ps {
		if p != nil {
			p.Publish(e)
		}
	}
}

// Config holds the collaborators of an App. Camera, Detector and
// Controller are required.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Controller playback.Controller

	// Display defaults to a headless display.
	Display display.Display
	// Store, when set, records dispatches and accuracy trials.
	Store *store.Store
	// Events, when set, receives live events.
	Events Publisher
	// Output receives accuracy lines. Defaults to os.Stdout.
	Output io.Writer

	Cooldown   time.Duration
	APITimeout time.Duration
	Clock      func() time.Time
}

// DispatchInfo summarizes a dispatched command for status consumers.
type DispatchInfo struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Command   string    `json:"command"`
	Volume    int       `json:"volume"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	At        time.Time `json:"at"`
}

// TrialInfo summarizes an accuracy trial.
type TrialInfo struct {
	Expected string  `json:"expected"`
	Detected string  `json:"detected"`
	Correct  bool    `json:"correct"`
	Total    int     `json:"total"`
	Hits     int     `json:"hits"`
	Accuracy float64 `json:"accuracy"`
}

// Status is a point-in-time copy of the loop state.
type Status struct {
	SessionID     string        `json:"session_id"`
	Running       bool          `json:"running"`
	Enabled       bool          `json:"enabled"`
	HandVisible   bool          `json:"hand_visible"`
	Label         string        `json:"label"`
	Stable        string        `json:"stable"`
	Window        []string      `json:"window"`
	DispatchState string        `json:"dispatch_state"`
	Frames        int64         `json:"frames"`
	Dispatches    int           `json:"dispatches"`
	Failures      int           `json:"failures"`
	Trials        int           `json:"trials"`
	Correct       int           `json:"correct"`
	Accuracy      float64       `json:"accuracy"`
	LastDispatch  *DispatchInfo `json:"last_dispatch,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// App runs the gesture control loop.
type App struct {
	config  Config
	session *Session
	clock   func() time.Time
	logger  *slog.Logger

	// detectFailures counts consecutive Detect errors. Owned by Run.
	detectFailures int

	mu      sync.RWMutex
	enabled bool
	status  Status
}

// New creates an App. Detection starts enabled.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if config.Controller == nil {
		return nil, errors.New("app: playback controller is required")
	}
	if config.Display == nil {
		config.Display = display.NewHeadless()
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	d := dispatch.New(config.Controller, dispatch.Config{
		Cooldown: config.Cooldown,
		Timeout:  config.APITimeout,
		Clock:    config.Clock,
	})
	session := NewSession(d)

	a := &App{
		config:  config,
		session: session,
		clock:   config.Clock,
		logger:  slog.Default().With("component", "app"),
		enabled: true,
	}
	a.status = Status{
		SessionID:     session.ID(),
		Enabled:       true,
		Stable:        harness.DisplayName("", false),
		DispatchState: dispatch.StateIdle.String(),
	}
	return a, nil
}

// SetEnabled enables or disables gesture detection. While disabled frames
// are still read and shown but not classified.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.status.Enabled = enabled
	a.mu.Unlock()

	if changed {
		a.logger.Info("gesture detection toggled", "enabled", enabled)
		a.publish(EventState, map[string]bool{"enabled": enabled})
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Snapshot returns a copy of the current status.
func (a *App) Snapshot() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.status
	s.Window = append([]string(nil), a.status.Window...)
	if a.status.LastDispatch != nil {
		d := *a.status.LastDispatch
		s.LastDispatch = &d
	}
	return s
}

// SessionID identifies the current run.
func (a *App) SessionID() string {
	return a.session.ID()
}

// Counters returns the accuracy counters. Safe to call after Run returns.
func (a *App) Counters() harness.Counters {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return harness.Counters{Total: a.status.Trials, Correct: a.status.Correct}
}

func (a *App) publish(typ string, data any) {
	if a.config.Events == nil {
		return
	}
	a.config.Events.Publish(Event{Type: typ, Time: a.clock(), Data: data})
}

func dispatchInfo(r *dispatch.Result) *DispatchInfo {
	info := &DispatchInfo{
		ID:        r.ID,
		Label:     string(r.Label),
		Command:   string(r.Command),
		Volume:    r.Volume,
		Success:   r.OK(),
		LatencyMs: r.Elapsed.Milliseconds(),
		At:        r.At,
	}
	if r.Err != nil {
		info.Error = r.Err.Error()
	}
	return info
}

func trialInfo(t harness.Trial) TrialInfo {
	return TrialInfo{
		Expected: string(t.Expected),
		Detected: t.DetectedName(),
		Correct:  t.Correct,
		Total:    t.Counters.Total,
		Hits:     t.Counters.Correct,
		Accuracy: t.Counters.Accuracy(),
	}
}

func labelStrings(ls []gesture.Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}
