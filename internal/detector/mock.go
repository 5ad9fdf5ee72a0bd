package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger layout for SyntheticHand, right hand palm facing the camera.
var fingerBaseX = [4]float64{0.56, 0.50, 0.44, 0.38} // index, middle, ring, pinky

var fingerJoints = [4][4]int{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	{RingMCP, RingPIP, RingDIP, RingTip},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// SyntheticHand builds a right hand in normalized image space with each
// digit either straight or curled toward the palm. Straight digits have a
// tip-to-joint distance near the joint-to-wrist distance; curled digits
// fold the tip back to a third of it or less.
func SyntheticHand(thumb, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76, Z: 0.0}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.72, Z: 0.0}
	h.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.68, Z: 0.0}
	if thumb {
		h.Points[ThumbTip] = Point3D{X: 0.78, Y: 0.56, Z: 0.0}
	} else {
		h.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.70, Z: -0.02}
	}

	for f, extended := range [4]bool{index, middle, ring, pinky} {
		x := fingerBaseX[f]
		j := fingerJoints[f]
		h.Points[j[0]] = Point3D{X: x, Y: 0.68, Z: 0.0}
		h.Points[j[1]] = Point3D{X: x, Y: 0.56, Z: 0.0}
		if extended {
			h.Points[j[2]] = Point3D{X: x, Y: 0.44, Z: 0.0}
			h.Points[j[3]] = Point3D{X: x, Y: 0.34, Z: 0.0}
		} else {
			h.Points[j[2]] = Point3D{X: x, Y: 0.60, Z: -0.04}
			h.Points[j[3]] = Point3D{X: x, Y: 0.64, Z: -0.02}
		}
	}

	return h
}

// FistLandmarks returns a hand with every digit curled.
func FistLandmarks() HandLandmarks {
	return SyntheticHand(false, false, false, false, false)
}

// PointLandmarks returns a hand with only the index finger extended.
func PointLandmarks() HandLandmarks {
	return SyntheticHand(false, true, false, false, false)
}

// OpenPalmLandmarks returns a hand with all five digits extended.
func OpenPalmLandmarks() HandLandmarks {
	return SyntheticHand(true, true, true, true, true)
}

// ThumbsUpLandmarks returns a hand with thumb and index extended and the
// other three fingers curled.
func ThumbsUpLandmarks() HandLandmarks {
	return SyntheticHand(true, true, false, false, false)
}

// PartialLandmarks returns a hand with index and middle extended (a "V"),
// which matches none of the named gestures.
func PartialLandmarks() HandLandmarks {
	return SyntheticHand(false, true, true, false, false)
}

// WithIndexTip returns a copy of h with the index fingertip moved to p.
func WithIndexTip(h HandLandmarks, p Point3D) HandLandmarks {
	h.Points[IndexTip] = p
	return h
}

// Translate returns a copy of h with every landmark shifted by d.
// Distances between landmarks, and so the classified gesture, are unchanged.
func Translate(h HandLandmarks, d Point3D) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += d.X
		h.Points[i].Y += d.Y
		h.Points[i].Z += d.Z
	}
	return h
}

// PointingAt returns a point gesture whose index fingertip sits exactly at p.
func PointingAt(p Point3D) HandLandmarks {
	h := PointLandmarks()
	tip := h.Points[IndexTip]
	h = Translate(h, Point3D{X: p.X - tip.X, Y: p.Y - tip.Y, Z: p.Z - tip.Z})
	h.Points[IndexTip] = p
	return h
}
