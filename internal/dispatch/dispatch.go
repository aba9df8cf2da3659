// Package dispatch turns stable gesture labels into playback commands,
// rate-limited by a cooldown.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/playback"
)

// Defaults for Config.
const (
	DefaultCooldown = 2 * time.Second
	DefaultTimeout  = 3 * time.Second

	// VolumeStep is the volume change per up/down gesture, in percent.
	VolumeStep = 10
)

// Command is a playback action.
type Command string

const (
	TogglePlayPause Command = "toggle_play_pause"
	NextTrack       Command = "next_track"
	PreviousTrack   Command = "previous_track"
	VolumeUp        Command = "volume_up"
	VolumeDown      Command = "volume_down"
)

var commands = map[gesture.Label]Command{
	gesture.Palm:  TogglePlayPause,
	gesture.Right: NextTrack,
	gesture.Left:  PreviousTrack,
	gesture.Up:    VolumeUp,
	gesture.Down:  VolumeDown,
}

// CommandFor returns the command bound to a gesture label.
func CommandFor(l gesture.Label) (Command, bool) {
	c, ok := commands[l]
	return c, ok
}

// State is the dispatcher's position in its two-state machine.
type State int

const (
	// StateIdle accepts the next actionable label.
	StateIdle State = iota
	// StateCooldown ignores labels until the cooldown has elapsed.
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCooldown:
		return "cooldown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result describes one dispatched command. Err is nil on success; a failed
// command still counts as dispatched.
type Result struct {
	ID      string
	Label   gesture.Label
	Command Command
	Volume  int // target volume for volume commands, -1 otherwise
	Err     error
	At      time.Time
	Elapsed time.Duration
}

// OK reports whether the command succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Config holds dispatcher settings. Zero values select the defaults.
type Config struct {
	Cooldown time.Duration
	Timeout  time.Duration
	Clock    func() time.Time
}

// Dispatcher maps stable labels to playback commands. It is driven from the
// single frame loop and is not safe for concurrent use.
type Dispatcher struct {
	controller playback.Controller
	cooldown   time.Duration
	timeout    time.Duration
	clock      func() time.Time
	lastAction time.Time
	fired      bool
	logger     *slog.Logger
}

// New creates a Dispatcher in StateIdle.
func New(controller playback.Controller, cfg Config) *Dispatcher {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Dispatcher{
		controller: controller,
		cooldown:   cfg.Cooldown,
		timeout:    cfg.Timeout,
		clock:      cfg.Clock,
		logger:     slog.Default().With("component", "dispatch"),
	}
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return d.stateAt(d.clock())
}

func (d *Dispatcher) stateAt(now time.Time) State {
	if d.fired && now.Sub(d.lastAction) < d.cooldown {
		return StateCooldown
	}
	return StateIdle
}

// LastAction returns when the cooldown of the most recent dispatch started.
func (d *Dispatcher) LastAction() (time.Time, bool) {
	return d.lastAction, d.fired
}

// Cooldown returns the configured cooldown.
func (d *Dispatcher) Cooldown() time.Duration {
	return d.cooldown
}

// Handle considers a stable label. ok is false when the label is undefined
// (empty history). It returns nil unless a command was dispatched; in that
// case the caller must clear its gesture history.
//
// Controller failures are logged and carried in the Result. They never
// cancel the cooldown.
func (d *Dispatcher) Handle(ctx context.Context, label gesture.Label, ok bool) *Result {
	if !ok {
		return nil
	}
	cmd, bound := CommandFor(label)
	if !bound {
		return nil
	}

	now := d.clock()
	if d.stateAt(now) == StateCooldown {
		return nil
	}

	res := &Result{
		ID:      uuid.NewString(),
		Label:   label,
		Command: cmd,
		Volume:  -1,
		At:      now,
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	res.Volume, res.Err = d.execute(callCtx, cmd)
	if res.Err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.Err = fmt.Errorf("%s timed out after %s: %w", cmd, d.timeout, res.Err)
	}
	cancel()

	// Cooldown starts when the call completes.
	d.lastAction = d.clock()
	d.fired = true
	res.Elapsed = d.lastAction.Sub(now)

	if res.Err != nil {
		d.logger.Warn("playback command failed",
			"gesture", label, "command", cmd, "elapsed", res.Elapsed, "error", res.Err)
	} else {
		d.logger.Info("playback command sent",
			"gesture", label, "command", cmd, "volume", res.Volume, "elapsed", res.Elapsed)
	}

	return res
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command) (int, error) {
	switch cmd {
	case TogglePlayPause:
		st, err := d.controller.State(ctx)
		if err != nil {
			return -1, fmt.Errorf("query playback state: %w", err)
		}
		if st != nil && st.IsPlaying {
			return -1, d.controller.Pause(ctx)
		}
		return -1, d.controller.Play(ctx)

	case NextTrack:
		return -1, d.controller.Next(ctx)

	case PreviousTrack:
		return -1, d.controller.Previous(ctx)

	case VolumeUp, VolumeDown:
		st, err := d.controller.State(ctx)
		if err != nil {
			return -1, fmt.Errorf("query playback state: %w", err)
		}
		if st == nil {
			return -1, playback.ErrNoActivePlayback
		}
		if !st.SupportsVolume {
			return -1, playback.ErrVolumeUnavailable
		}
		delta := VolumeStep
		if cmd == VolumeDown {
			delta = -VolumeStep
		}
		target := playback.ClampVolume(st.VolumePercent + delta)
		return target, d.controller.SetVolume(ctx, target, st.DeviceID)
	}

	return -1, fmt.Errorf("unknown command %q", cmd)
}
