package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a scripted sequence of per-frame results; once the script is
// exhausted the last entry repeats.
type MockDetector struct {
	frames [][]HandLandmarks
	index  int
	err    error
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands makes every subsequent Detect call return hands.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.frames = [][]HandLandmarks{hands}
	m.index = 0
}

// SetSequence scripts one result per frame. A nil entry means no hand.
func (m *MockDetector) SetSequence(frames ...[]HandLandmarks) {
	m.frames = frames
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the next scripted result or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}
	i := m.index
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	} else {
		m.index++
	}
	return m.frames[i], nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	return m.closed
}

// curledHand returns a right hand with the four fingers folded into the palm
// and the thumb tucked against the index knuckle.
func curledHand() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.72, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.70, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.69, Z: 0.0}

	// Fingertips sit below their PIP joints.
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}

// withThumb returns a curled hand whose thumb runs from mcp to tip.
func withThumb(wrist, mcp, tip Point3D) HandLandmarks {
	landmarks := curledHand()
	landmarks.Points[Wrist] = wrist
	landmarks.Points[ThumbMCP] = mcp
	landmarks.Points[ThumbIP] = Point3D{X: (mcp.X + tip.X) / 2, Y: (mcp.Y + tip.Y) / 2}
	landmarks.Points[ThumbTip] = tip
	return landmarks
}

// FistLandmarks returns a closed fist: no finger is extended.
func FistLandmarks() HandLandmarks {
	return curledHand()
}

// ThumbRightLandmarks returns a fist with only the thumb pointing right,
// 0.3 right of and 0.05 below the wrist.
func ThumbRightLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.6, Y: 0.78},
		Point3D{X: 0.8, Y: 0.85},
	)
}

// ThumbLeftLandmarks returns a fist with only the thumb pointing left.
func ThumbLeftLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.4, Y: 0.78},
		Point3D{X: 0.2, Y: 0.85},
	)
}

// ThumbUpLandmarks returns a fist with the thumb raised well above the wrist.
// The tip leans outward so the horizontal thumb test still fires.
func ThumbUpLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.55, Y: 0.7},
		Point3D{X: 0.62, Y: 0.45},
	)
}

// ThumbDownLandmarks returns a fist with the thumb pointing below the wrist.
func ThumbDownLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.5, Y: 0.6},
		Point3D{X: 0.55, Y: 0.7},
		Point3D{X: 0.62, Y: 0.9},
	)
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}
