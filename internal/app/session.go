package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/harness"
)

// Frame is the outcome of observing one camera frame.
type Frame struct {
	Hand    *detector.HandLandmarks
	Label   gesture.Label // per-frame label, NoHand when no hand was seen
	Stable  gesture.Label
	Defined bool // false while the history window is empty
}

// Session holds all state that outlives a single frame: the history
// window, the dispatcher and the accuracy counters. It belongs to the
// frame loop and is not safe for concurrent use.
type Session struct {
	id         string
	smoother   *gesture.Smoother
	dispatcher *dispatch.Dispatcher
	counters   harness.Counters
	stable     gesture.Label
	defined    bool
}

// NewSession starts a session with an empty history window.
func NewSession(d *dispatch.Dispatcher) *Session {
	return &Session{
		id:         uuid.NewString(),
		smoother:   gesture.NewSmoother(),
		dispatcher: d,
	}
}

// ID identifies the session in stored trials.
func (s *Session) ID() string {
	return s.id
}

// Observe classifies a frame's hand (nil when none was detected), pushes
// the label into the history window and updates the stable label.
func (s *Session) Observe(hand *detector.HandLandmarks) Frame {
	label := gesture.ClassifyHand(hand)
	s.stable, s.defined = s.smoother.Push(label)
	return Frame{
		Hand:    hand,
		Label:   label,
		Stable:  s.stable,
		Defined: s.defined,
	}
}

// Stable returns the current stable label.
func (s *Session) Stable() (gesture.Label, bool) {
	return s.stable, s.defined
}

// Window returns the history window, oldest first.
func (s *Session) Window() []gesture.Label {
	return s.smoother.Labels()
}

// Dispatch hands the stable label to the dispatcher. When a command is
// sent the history window and the stable label are cleared, whether or
// not the command succeeded.
func (s *Session) Dispatch(ctx context.Context) *dispatch.Result {
	res := s.dispatcher.Handle(ctx, s.stable, s.defined)
	if res != nil {
		s.Clear()
	}
	return res
}

// DispatchState returns the dispatcher state.
func (s *Session) DispatchState() dispatch.State {
	return s.dispatcher.State()
}

// Evaluate scores the current stable label against what the tester says
// they are showing.
func (s *Session) Evaluate(expected gesture.Label) harness.Trial {
	return s.counters.Record(expected, s.stable, s.defined)
}

// Counters returns the accuracy counters.
func (s *Session) Counters() harness.Counters {
	return s.counters
}

// Clear empties the history window and forgets the stable label.
func (s *Session) Clear() {
	s.smoother.Reset()
	s.stable, s.defined = "", false
}
