package voxel

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/handvox/internal/detector"
)

var (
	// ErrOutOfGrid is returned when a fingertip projects outside the grid.
	ErrOutOfGrid = errors.New("coordinate outside grid")
	// ErrInvalidFrameSize is returned for a non-positive frame width or height.
	ErrInvalidFrameSize = errors.New("invalid frame size")
)

// MappingError carries the unclamped projection of a rejected fingertip.
type MappingError struct {
	Raw      Coord
	GridSize int
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%v: %s not in [0, %d)", ErrOutOfGrid, e.Raw, e.GridSize)
}

// Unwrap lets errors.Is match ErrOutOfGrid.
func (e *MappingError) Unwrap() error {
	return ErrOutOfGrid
}

// Bounds selects how the mapper treats projections outside the grid.
type Bounds string

const (
	// BoundsReject returns a *MappingError.
	BoundsReject Bounds = "reject"
	// BoundsClamp pulls each component into [0, gridSize).
	BoundsClamp Bounds = "clamp"
)

// ParseBounds converts a config value into Bounds. Empty means reject.
func ParseBounds(s string) (Bounds, error) {
	switch Bounds(s) {
	case "", BoundsReject:
		return BoundsReject, nil
	case BoundsClamp:
		return BoundsClamp, nil
	}
	return "", fmt.Errorf("unknown out-of-grid mode %q", s)
}

// Mapper projects the index fingertip into grid coordinates.
type Mapper struct {
	GridSize int
	Bounds   Bounds
}

// NewMapper creates a mapper for a cubic grid of the given size.
func NewMapper(gridSize int, bounds Bounds) Mapper {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if bounds == "" {
		bounds = BoundsReject
	}
	return Mapper{GridSize: gridSize, Bounds: bounds}
}

// Map converts the index fingertip of hand into a grid coordinate.
//
// X and Y are already normalized to the frame, so scaling to pixels and
// back cancels out; the frame size is only checked for sanity. Z is
// assumed to lie roughly in [-1, 1] and is shifted onto [0, gridSize).
func (m Mapper) Map(hand detector.HandLandmarks, frameWidth, frameHeight int) (Coord, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Coord{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, frameWidth, frameHeight)
	}

	tip := hand.Points[detector.IndexTip]
	g := float64(m.GridSize)

	c := Coord{
		X: int(math.Floor(tip.X * g)),
		Y: int(math.Floor(tip.Y * g)),
		Z: int(math.Floor((tip.Z + 1) * g / 2)),
	}

	if c.InGrid(m.GridSize) {
		return c, nil
	}
	if m.Bounds == BoundsClamp {
		return Coord{
			X: clampInt(c.X, 0, m.GridSize-1),
			Y: clampInt(c.Y, 0, m.GridSize-1),
			Z: clampInt(c.Z, 0, m.GridSize-1),
		}, nil
	}
	return Coord{}, &MappingError{Raw: c, GridSize: m.GridSize}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
