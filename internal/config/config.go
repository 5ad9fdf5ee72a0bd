// Package config loads the handvox YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handvox/internal/gesture"
	"github.com/ayusman/handvox/internal/voxel"
)

// Config represents the complete handvox configuration
type Config struct {
	Voxels   VoxelsConfig   `yaml:"voxels"`
	Gestures GesturesConfig `yaml:"gestures"`
	Capture  CaptureConfig  `yaml:"capture"`
	Detector DetectorConfig `yaml:"detector"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Tray     bool           `yaml:"tray"`
}

// VoxelsConfig contains grid and store settings
type VoxelsConfig struct {
	GridSize        int    `yaml:"grid_size"`
	DuplicatePolicy string `yaml:"duplicate_policy"` // append, overwrite
	OutOfGrid       string `yaml:"out_of_grid"`      // reject, clamp
}

// GesturesConfig contains classifier thresholds and debounce intervals
type GesturesConfig struct {
	GestureIntervalMS int     `yaml:"gesture_interval_ms"`
	VoxelIntervalMS   int     `yaml:"voxel_interval_ms"`
	ThumbRatio        float64 `yaml:"thumb_ratio"`
	FingerRatio       float64 `yaml:"finger_ratio"`
	BurstSize         int     `yaml:"burst_size"` // voxels added by thumbs_up
}

// CaptureConfig contains camera settings
type CaptureConfig struct {
	CameraID int `yaml:"camera_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
	TickHz   int `yaml:"tick_hz"` // landmark polling rate
}

// DetectorConfig contains hand landmarker settings
type DetectorConfig struct {
	Script        string  `yaml:"script"` // empty searches the default locations
	IdleTimeoutS  int     `yaml:"idle_timeout_s"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StorageConfig contains journal settings
type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // empty means ~/.handvox
	Journal bool   `yaml:"journal"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Voxels: VoxelsConfig{
			GridSize:        voxel.DefaultGridSize,
			DuplicatePolicy: string(voxel.PolicyAppend),
			OutOfGrid:       string(voxel.BoundsReject),
		},
		Gestures: GesturesConfig{
			GestureIntervalMS: 1000,
			VoxelIntervalMS:   500,
			ThumbRatio:        0.7,
			FingerRatio:       0.5,
			BurstSize:         10,
		},
		Capture: CaptureConfig{
			Width:  1280,
			Height: 720,
			FPS:    30,
			TickHz: 60,
		},
		Detector: DetectorConfig{
			IdleTimeoutS:  30,
			MinConfidence: 0.5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Journal: true,
		},
	}
}

// Load reads a YAML configuration file over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Voxels.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("voxels.grid_size must be positive, got %d", cfg.Voxels.GridSize))
	}
	if _, err := voxel.ParsePolicy(cfg.Voxels.DuplicatePolicy); err != nil {
		errs = append(errs, fmt.Errorf("voxels.duplicate_policy: %w", err))
	}
	if _, err := voxel.ParseBounds(cfg.Voxels.OutOfGrid); err != nil {
		errs = append(errs, fmt.Errorf("voxels.out_of_grid: %w", err))
	}

	g := cfg.Gestures
	if g.GestureIntervalMS < 0 || g.VoxelIntervalMS < 0 {
		errs = append(errs, errors.New("gestures intervals must not be negative"))
	}
	if g.ThumbRatio <= 0 || g.FingerRatio <= 0 {
		errs = append(errs, errors.New("gestures ratios must be positive"))
	}
	if g.BurstSize <= 0 {
		errs = append(errs, fmt.Errorf("gestures.burst_size must be positive, got %d", g.BurstSize))
	}

	if cfg.Capture.TickHz <= 0 {
		errs = append(errs, fmt.Errorf("capture.tick_hz must be positive, got %d", cfg.Capture.TickHz))
	}
	if cfg.Capture.Width < 0 || cfg.Capture.Height < 0 || cfg.Capture.FPS < 0 {
		errs = append(errs, errors.New("capture width, height and fps must not be negative"))
	}

	if c := cfg.Detector.MinConfidence; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("detector.min_confidence must be within [0, 1], got %g", c))
	}
	if cfg.Detector.IdleTimeoutS < 0 {
		errs = append(errs, errors.New("detector.idle_timeout_s must not be negative"))
	}

	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	return errors.Join(errs...)
}

// GateConfig returns the debounce intervals.
func (c *Config) GateConfig() gesture.GateConfig {
	return gesture.GateConfig{
		GestureInterval: time.Duration(c.Gestures.GestureIntervalMS) * time.Millisecond,
		VoxelInterval:   time.Duration(c.Gestures.VoxelIntervalMS) * time.Millisecond,
	}
}

// Thresholds returns the classifier thresholds.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{Thumb: c.Gestures.ThumbRatio, Finger: c.Gestures.FingerRatio}
}

// Policy returns the parsed duplicate policy. Call after Validate.
func (c *Config) Policy() voxel.Policy {
	p, _ := voxel.ParsePolicy(c.Voxels.DuplicatePolicy)
	return p
}

// Bounds returns the parsed out-of-grid handling. Call after Validate.
func (c *Config) Bounds() voxel.Bounds {
	b, _ := voxel.ParseBounds(c.Voxels.OutOfGrid)
	return b
}

// TickInterval returns the landmark polling period.
func (c *Config) TickInterval() time.Duration {
	if c.Capture.TickHz <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Capture.TickHz)
}

// DataDir returns the journal directory, defaulting to ~/.handvox.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".handvox"), nil
}
