package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/detector"
)

// script is a recorded gesture session: one hand pose per step, with the
// status line and voxel count expected after it.
type script struct {
	Name     string `yaml:"name"`
	GridSize int    `yaml:"grid_size"`
	Steps    []step `yaml:"steps"`
}

type step struct {
	AtMS   int       `yaml:"at_ms"`
	Pose   string    `yaml:"pose"` // a gesture name, or "none" for no hand
	Tip    []float64 `yaml:"tip"`  // index fingertip for point, x y z
	Status string    `yaml:"status"`
	Voxels int       `yaml:"voxels"`
}

const (
	frameWidth  = 640
	frameHeight = 480
)

func loadScript(t *testing.T, path string) script {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("parse script %s: %v", path, err)
	}
	if len(s.Steps) == 0 {
		t.Fatalf("script %s has no steps", path)
	}
	return s
}

func scriptPaths(t *testing.T) []string {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("glob scripts: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no scripts in testdata")
	}
	return paths
}

// reading builds the landmark frame for a step, or nil for "none".
func (s step) reading() (*capture.Reading, error) {
	var hand detector.HandLandmarks
	switch s.Pose {
	case "none":
		return nil, nil
	case "fist":
		hand = detector.FistLandmarks()
	case "open":
		hand = detector.OpenPalmLandmarks()
	case "thumbs_up":
		hand = detector.ThumbsUpLandmarks()
	case "partial":
		hand = detector.PartialLandmarks()
	case "point":
		if len(s.Tip) == 0 {
			hand = detector.PointLandmarks()
			break
		}
		if len(s.Tip) != 3 {
			return nil, fmt.Errorf("tip needs 3 values, got %d", len(s.Tip))
		}
		hand = detector.PointingAt(detector.Point3D{X: s.Tip[0], Y: s.Tip[1], Z: s.Tip[2]})
	default:
		return nil, fmt.Errorf("unknown pose %q", s.Pose)
	}
	return &capture.Reading{Hand: hand, Width: frameWidth, Height: frameHeight}, nil
}

func (s step) at(t0 time.Time) time.Time {
	return t0.Add(time.Duration(s.AtMS) * time.Millisecond)
}
