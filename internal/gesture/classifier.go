// Package gesture classifies single hand frames into gestures and debounces
// the actions those gestures trigger.
package gesture

import (
	"fmt"

	"github.com/ayusman/handvox/internal/detector"
)

// Gesture is the label produced for one landmark frame.
type Gesture string

const (
	Fist     Gesture = "fist"
	Point    Gesture = "point"
	Open     Gesture = "open"
	ThumbsUp Gesture = "thumbs_up"
	Partial  Gesture = "partial"
)

// All lists every gesture in classification order.
var All = []Gesture{Fist, Point, Open, ThumbsUp, Partial}

// Valid reports whether g is one of the five known gestures.
func (g Gesture) Valid() bool {
	switch g {
	case Fist, Point, Open, ThumbsUp, Partial:
		return true
	}
	return false
}

// ParseGesture converts a label back into a Gesture.
func ParseGesture(s string) (Gesture, error) {
	g := Gesture(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown gesture %q", s)
	}
	return g, nil
}

// Thresholds holds the extension ratios a digit must exceed to count as straight.
type Thresholds struct {
	Thumb  float64 // tip-to-IP over IP-to-wrist
	Finger float64 // tip-to-PIP over PIP-to-wrist, for the four fingers
}

// DefaultThresholds returns the stock ratios: 0.7 for the thumb, 0.5 for the rest.
func DefaultThresholds() Thresholds {
	return Thresholds{Thumb: 0.7, Finger: 0.5}
}

// Digits records which digits are extended in a frame.
type Digits struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// Count returns the number of extended digits.
func (d Digits) Count() int {
	n := 0
	for _, e := range [5]bool{d.Thumb, d.Index, d.Middle, d.Ring, d.Pinky} {
		if e {
			n++
		}
	}
	return n
}

// extended compares the tip-to-joint distance against ratio times the
// joint-to-wrist distance.
func extended(h *detector.HandLandmarks, tip, joint int, ratio float64) bool {
	return h.Distance(tip, joint) > ratio*h.Distance(joint, detector.Wrist)
}

// Extension computes the extended flag of each digit.
func Extension(h detector.HandLandmarks, t Thresholds) Digits {
	return Digits{
		Thumb:  extended(&h, detector.ThumbTip, detector.ThumbIP, t.Thumb),
		Index:  extended(&h, detector.IndexTip, detector.IndexPIP, t.Finger),
		Middle: extended(&h, detector.MiddleTip, detector.MiddlePIP, t.Finger),
		Ring:   extended(&h, detector.RingTip, detector.RingPIP, t.Finger),
		Pinky:  extended(&h, detector.PinkyTip, detector.PinkyPIP, t.Finger),
	}
}

// Classify labels a single frame. The first matching rule wins:
//
//	no digit extended                    -> fist
//	only the index extended              -> point
//	four or more extended                -> open
//	thumb and index, other three curled  -> thumbs_up
//	anything else                        -> partial
//
// There is no smoothing across frames; jitter is left to the Gate.
func Classify(h detector.HandLandmarks, t Thresholds) Gesture {
	d := Extension(h, t)
	n := d.Count()

	switch {
	case n == 0:
		return Fist
	case n == 1 && d.Index:
		return Point
	case n >= 4:
		return Open
	case d.Thumb && d.Index && !d.Middle && !d.Ring && !d.Pinky:
		return ThumbsUp
	default:
		return Partial
	}
}
