// Package harness measures recognition accuracy against a tester's
// declared gesture.
package harness

import (
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// QuitKey ends the session.
const QuitKey = 'q'

// KeyMap binds keys to the gesture the tester is performing.
var KeyMap = map[int]gesture.Label{
	'1': gesture.Palm,
	'2': gesture.Right,
	'3': gesture.Left,
	'4': gesture.Up,
	'5': gesture.Down,
	'0': gesture.None,
}

// Usage is printed when a session starts.
const Usage = "Press 1=palm, 2=right, 3=left, 4=up, 5=down, 0=none, q=quit"

// Lookup returns the expected label bound to key.
func Lookup(key int) (gesture.Label, bool) {
	l, ok := KeyMap[key]
	return l, ok
}

// DisplayName renders a stable label for people. Undefined and no-hand
// labels read as "None", distinct from the "none" gesture.
func DisplayName(l gesture.Label, ok bool) string {
	if !ok || l == gesture.NoHand || l == "" {
		return "None"
	}
	return string(l)
}

// Counters tracks trials. Both fields only grow.
type Counters struct {
	Total   int
	Correct int
}

// Accuracy returns the percentage of correct trials, or 0 with none.
func (c Counters) Accuracy() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Total) * 100
}

// Summary formats the end-of-session line.
func (c Counters) Summary() string {
	return fmt.Sprintf("Final Accuracy: %d/%d (%.2f%%)", c.Correct, c.Total, c.Accuracy())
}

// Trial is a single evaluation and the running counters after it.
type Trial struct {
	Expected gesture.Label
	Detected gesture.Label
	Defined  bool
	Correct  bool
	Counters Counters
}

// DetectedName returns the detected label as shown to the tester.
func (t Trial) DetectedName() string {
	return DisplayName(t.Detected, t.Defined)
}

func (t Trial) String() string {
	return fmt.Sprintf("Expected: %s, Detected: %s, Accuracy: %d/%d (%.1f%%)",
		t.Expected, t.DetectedName(), t.Counters.Correct, t.Counters.Total, t.Counters.Accuracy())
}

// Record scores one trial. detected counts as correct only when it is
// defined and equal to expected.
func (c *Counters) Record(expected, detected gesture.Label, ok bool) Trial {
	correct := ok && detected == expected
	c.Total++
	if correct {
		c.Correct++
	}
	return Trial{
		Expected: expected,
		Detected: detected,
		Defined:  ok,
		Correct:  correct,
		Counters: *c,
	}
}
