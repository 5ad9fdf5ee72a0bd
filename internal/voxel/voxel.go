// Package voxel holds the sparse voxel scene mutated by gestures and the
// mapping from landmark space into grid coordinates.
package voxel

import (
	"fmt"
	"math/rand/v2"
)

// DefaultGridSize is the edge length of the cubic grid.
const DefaultGridSize = 40

// Coord is an integer grid position. Valid coordinates lie in [0, gridSize).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// InGrid reports whether every component lies in [0, size).
func (c Coord) InGrid(size int) bool {
	return c.X >= 0 && c.X < size &&
		c.Y >= 0 && c.Y < size &&
		c.Z >= 0 && c.Z < size
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Color is a display color in HSL. H is in degrees, S and L in percent.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String renders the color as a CSS hsl() value.
func (c Color) String() string {
	return fmt.Sprintf("hsl(%g, %g%%, %g%%)", c.H, c.S, c.L)
}

// Fixed saturation and lightness for generated colors.
const (
	DefaultSaturation = 70
	DefaultLightness  = 50
)

// HueColor derives the color of a voxel placed at column x: the hue sweeps
// the color wheel once across the grid.
func HueColor(x, gridSize int) Color {
	return Color{
		H: float64(x) / float64(gridSize) * 360,
		S: DefaultSaturation,
		L: DefaultLightness,
	}
}

// RandomColor returns a color with a uniformly random hue.
func RandomColor(r *rand.Rand) Color {
	return Color{
		H: r.Float64() * 360,
		S: DefaultSaturation,
		L: DefaultLightness,
	}
}

// RandomCoord returns a uniformly random coordinate inside the grid.
func RandomCoord(r *rand.Rand, gridSize int) Coord {
	return Coord{
		X: r.IntN(gridSize),
		Y: r.IntN(gridSize),
		Z: r.IntN(gridSize),
	}
}

// Cell is one colored voxel.
type Cell struct {
	Coord Coord `json:"coord"`
	Color Color `json:"color"`
}

// Policy decides what happens when a cell is added at an occupied coordinate.
type Policy string

const (
	// PolicyAppend keeps every added cell, so a coordinate may repeat.
	PolicyAppend Policy = "append"
	// PolicyOverwrite replaces the color of the existing cell in place.
	PolicyOverwrite Policy = "overwrite"
)

// ParsePolicy converts a config value into a Policy. Empty means append.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAppend:
		return PolicyAppend, nil
	case PolicyOverwrite:
		return PolicyOverwrite, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}
