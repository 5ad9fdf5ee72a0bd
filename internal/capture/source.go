package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handvox/internal/detector"
)

// ErrNoFrame is returned by HandSource.ReadFrame before the first poll.
var ErrNoFrame = errors.New("no frame captured yet")

// Reading is one landmark frame together with the size of the video frame
// it was detected in.
type Reading struct {
	Hand   detector.HandLandmarks
	Width  int
	Height int
}

// HandSource turns camera frames into landmark readings.
// Only the first detected hand is reported.
type HandSource struct {
	camera   Camera
	detector detector.Detector

	mu   sync.Mutex
	last *gocv.Mat // copy of the most recent frame, for previews
}

// NewHandSource pairs a camera with a detector.
func NewHandSource(camera Camera, d detector.Detector) *HandSource {
	return &HandSource{camera: camera, detector: d}
}

// Open opens the camera.
func (s *HandSource) Open() error {
	return s.camera.Open()
}

// Close closes the camera and the detector.
func (s *HandSource) Close() error {
	s.mu.Lock()
	if s.last != nil {
		s.last.Close()
		s.last = nil
	}
	s.mu.Unlock()

	return errors.Join(s.camera.Close(), s.detector.Close())
}

// Camera returns the underlying camera.
func (s *HandSource) Camera() Camera {
	return s.camera
}

// Poll reads one frame and runs detection on it. It reports false when no
// hand is visible; that is the normal not-ready outcome, not an error.
func (s *HandSource) Poll() (Reading, bool, error) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return Reading{}, false, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	s.keep(frame)

	hands, err := s.detector.Detect(frame)
	if err != nil {
		return Reading{}, false, fmt.Errorf("detect hands: %w", err)
	}
	if len(hands) == 0 {
		return Reading{}, false, nil
	}

	return Reading{
		Hand:   hands[0],
		Width:  frame.Cols(),
		Height: frame.Rows(),
	}, true, nil
}

// ReadFrame returns a copy of the frame seen by the latest Poll, so a
// preview can share the camera with the frame loop. The caller closes it.
func (s *HandSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil, ErrNoFrame
	}
	frame := s.last.Clone()
	return &frame, nil
}

func (s *HandSource) keep(frame *gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		m := gocv.NewMat()
		s.last = &m
	}
	frame.CopyTo(s.last)
}

// ReplaySource hands out a fixed sequence of readings, one per Poll.
// A nil entry in the sequence stands for a frame with no hand.
type ReplaySource struct {
	mu       sync.Mutex
	readings []*Reading
	index    int
	loop     bool
}

// NewReplaySource creates a source that replays readings in order.
func NewReplaySource(readings []*Reading, loop bool) *ReplaySource {
	return &ReplaySource{readings: readings, loop: loop}
}

// Poll returns the next reading. Once a non-looping sequence is exhausted
// every Poll reports not-ready.
func (s *ReplaySource) Poll() (Reading, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.readings) {
		if !s.loop || len(s.readings) == 0 {
			return Reading{}, false, nil
		}
		s.index = 0
	}

	r := s.readings[s.index]
	s.index++
	if r == nil {
		return Reading{}, false, nil
	}
	return *r, true, nil
}

// Push appends readings to the end of the sequence.
func (s *ReplaySource) Push(readings ...*Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, readings...)
}

// Remaining returns how many readings have not been handed out yet.
func (s *ReplaySource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings) - s.index
}
