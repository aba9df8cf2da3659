// Package gesture turns hand landmarks into discrete gesture labels and
// smooths them over time.
package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Label identifies a recognized gesture.
type Label string

const (
	Palm  Label = "palm"
	Right Label = "right"
	Left  Label = "left"
	Up    Label = "up"
	Down  Label = "down"
	None  Label = "none"

	// NoHand marks a frame in which the detector saw no hand. It is never
	// produced by Classify and is distinct from None.
	NoHand Label = "no_hand"
)

// Labels lists the classifier outputs in a fixed order.
var Labels = []Label{Palm, Right, Left, Up, Down, None}

const (
	// ThumbThreshold is the horizontal tip-to-MCP distance above which the
	// thumb counts as extended.
	ThumbThreshold = 0.05

	// DeadZone is the thumb-to-wrist displacement a directional gesture
	// must exceed on its dominant axis.
	DeadZone = 0.2
)

// Actionable reports whether the label maps to a playback command.
func (l Label) Actionable() bool {
	switch l {
	case Palm, Right, Left, Up, Down:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (l Label) String() string {
	return string(l)
}

// FingerState holds one extended flag per finger, ordered thumb, index,
// middle, ring, pinky.
type FingerState [5]bool

// Finger positions within a FingerState.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// Any reports whether at least one finger is extended.
func (f FingerState) Any() bool {
	for _, up := range f {
		if up {
			return true
		}
	}
	return false
}

// All reports whether every finger is extended.
func (f FingerState) All() bool {
	for _, up := range f {
		if !up {
			return false
		}
	}
	return true
}

// Count returns the number of extended fingers.
func (f FingerState) Count() int {
	n := 0
	for _, up := range f {
		if up {
			n++
		}
	}
	return n
}

// fingerJoints pairs each non-thumb fingertip with its PIP joint.
var fingerJoints = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Fingers extracts the finger-state vector from a landmark set.
//
// The thumb bends across the palm, so it is judged on horizontal
// displacement between tip and MCP. The other fingers are extended when the
// tip is strictly above (smaller y than) the PIP joint.
func Fingers(h *detector.HandLandmarks) FingerState {
	var fs FingerState
	if h == nil {
		return fs
	}
	p := &h.Points

	fs[Thumb] = math.Abs(p[detector.ThumbTip].X-p[detector.ThumbMCP].X) > ThumbThreshold
	for i, j := range fingerJoints {
		fs[Index+i] = p[j[0]].Y < p[j[1]].Y
	}
	return fs
}

// Classify maps a finger-state vector and its landmarks to a gesture label.
// The first matching rule wins:
//
//  1. no finger extended: None
//  2. all five extended: Palm
//  3. thumb tip displacement from the wrist, on whichever axis dominates,
//     beyond DeadZone: Right/Left horizontally, Up/Down vertically
//  4. anything else: None
func Classify(fs FingerState, h *detector.HandLandmarks) Label {
	if !fs.Any() {
		return None
	}
	if fs.All() {
		return Palm
	}
	if h == nil {
		return None
	}

	wrist := h.Points[detector.Wrist]
	tip := h.Points[detector.ThumbTip]
	dx := tip.X - wrist.X
	dy := tip.Y - wrist.Y

	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > DeadZone:
			return Right
		case dx < -DeadZone:
			return Left
		}
	} else {
		switch {
		case dy < -DeadZone:
			return Up
		case dy > DeadZone:
			return Down
		}
	}

	return None
}

// ClassifyHand classifies a single frame. A nil hand yields NoHand.
func ClassifyHand(h *detector.HandLandmarks) Label {
	if h == nil {
		return NoHand
	}
	return Classify(Fingers(h), h)
}
