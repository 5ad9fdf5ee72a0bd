// Package detector provides hand landmark types and the detectors that produce them.
package detector

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedFrame is returned when a landmark list does not hold exactly NumLandmarks points.
var ErrMalformedFrame = errors.New("malformed landmark frame")

// MalformedFrameError reports the number of points a rejected frame carried.
type MalformedFrameError struct {
	Got int
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("%v: got %d points, want %d", ErrMalformedFrame, e.Got, NumLandmarks)
}

// Unwrap lets errors.Is match ErrMalformedFrame.
func (e *MalformedFrameError) Unwrap() error {
	return ErrMalformedFrame
}

// Point3D represents a landmark position. X and Y are normalized to the
// frame size, Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector converts the point into an r3 vector.
func (p Point3D) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// HandLandmarks represents the 21 hand landmarks of a single detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance3 returns the Euclidean distance between two landmark points.
func Distance3(a, b Point3D) float64 {
	return a.Vector().Distance(b.Vector())
}

// Distance returns the distance between the landmarks at indices i and j.
func (h *HandLandmarks) Distance(i, j int) float64 {
	return Distance3(h.Points[i], h.Points[j])
}

// ParseFrame builds a HandLandmarks from a decoded point list.
// The list must contain exactly NumLandmarks points.
func ParseFrame(points []Point3D) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, &MalformedFrameError{Got: len(points)}
	}
	copy(h.Points[:], points)
	return h, nil
}
