// Package app ties the landmark source, gesture classification, the action
// gate and the voxel store together into the handvox frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/gesture"
	"github.com/ayusman/handvox/internal/store"
	"github.com/ayusman/handvox/internal/voxel"
)

// Loop defaults.
const (
	// DefaultTickInterval polls the source at 60 Hz.
	DefaultTickInterval = time.Second / 60
	// DefaultBurstSize is the number of voxels a thumbs_up scatters.
	DefaultBurstSize = 10
	// InitialStatus is shown until the first action runs.
	InitialStatus = "Show your hand"
)

// ErrNoSource is returned by New when Config.Source is nil.
var ErrNoSource = errors.New("app: landmark source is required")

// Source produces landmark readings. Poll reports false when no hand is
// available this tick.
type Source interface {
	Poll() (capture.Reading, bool, error)
}

// Config holds configuration options for the application.
// Zero values select the defaults.
type Config struct {
	Source       Source
	Store        *store.Store // optional action journal
	GridSize     int
	Policy       voxel.Policy
	Bounds       voxel.Bounds
	Thresholds   gesture.Thresholds
	Gate         gesture.GateConfig
	BurstSize    int
	TickInterval time.Duration
	Rand         *rand.Rand
	Logger       *slog.Logger
}

// Update is what the loop publishes to renderers after a frame changed
// something. Voxels is shared between subscribers and must not be modified.
type Update struct {
	Gesture   gesture.Gesture `json:"gesture"`
	Action    gesture.Action  `json:"action"`
	Status    string          `json:"status"`
	GridSize  int             `json:"grid_size"`
	Voxels    []voxel.Cell    `json:"voxels"`
	Version   uint64          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
}

// App is the single writer of the voxel store.
type App struct {
	config     Config
	logger     *slog.Logger
	source     Source
	thresholds gesture.Thresholds
	gate       *gesture.Gate
	voxels     *voxel.Store
	mapper     voxel.Mapper
	rand       *rand.Rand
	session    *store.Session

	// frameMu serializes Process so one frame's mutation completes before
	// the next frame is looked at.
	frameMu sync.Mutex

	mu      sync.RWMutex
	enabled bool
	state   Update
	cancel  context.CancelFunc
	done    chan struct{}

	bus *updateBus
}

// New creates an App. When a journal store is configured a new session is
// recorded in it.
func New(config Config) (*App, error) {
	if config.Source == nil {
		return nil, ErrNoSource
	}
	if config.GridSize <= 0 {
		config.GridSize = voxel.DefaultGridSize
	}
	if config.Thresholds == (gesture.Thresholds{}) {
		config.Thresholds = gesture.DefaultThresholds()
	}
	if config.Gate == (gesture.GateConfig{}) {
		config.Gate = gesture.DefaultGateConfig()
	}
	if config.BurstSize <= 0 {
		config.BurstSize = DefaultBurstSize
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	a := &App{
		config:     config,
		logger:     config.Logger.With("component", "app"),
		source:     config.Source,
		thresholds: config.Thresholds,
		gate:       gesture.NewGate(config.Gate),
		voxels:     voxel.NewStore(config.Policy),
		mapper:     voxel.NewMapper(config.GridSize, config.Bounds),
		rand:       config.Rand,
		enabled:    true,
		state: Update{
			Action:   gesture.ActionNone,
			Status:   InitialStatus,
			GridSize: config.GridSize,
			Voxels:   []voxel.Cell{},
		},
	}
	a.bus = newUpdateBus(a.state)

	if config.Store != nil {
		sess := &store.Session{GridSize: config.GridSize}
		if err := config.Store.Sessions().Create(sess); err != nil {
			return nil, fmt.Errorf("create journal session: %w", err)
		}
		a.session = sess
		a.logger.Info("journal session started", "session", sess.ID)
	}

	return a, nil
}

// SetEnabled enables or disables gesture detection. A disabled app skips
// polling entirely; the scene stays as it is.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// State returns the most recent update.
func (a *App) State() Update {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Snapshot returns a copy of the voxel scene.
func (a *App) Snapshot() voxel.Snapshot {
	return a.voxels.Snapshot()
}

// GridSize returns the edge length of the voxel grid.
func (a *App) GridSize() int {
	return a.config.GridSize
}

// GateState returns the debounce timestamps.
func (a *App) GateState() gesture.GateState {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.gate.State()
}

// Session returns the journal session, or nil when no journal is configured.
func (a *App) Session() *store.Session {
	return a.session
}

// Journal returns the journal store, or nil.
func (a *App) Journal() *store.Store {
	return a.config.Store
}

// Subscribe registers a renderer under id. The returned channel holds at
// most one pending update; a slow reader only ever misses stale ones. The
// current state is delivered immediately.
func (a *App) Subscribe(id string) (<-chan Update, error) {
	ch, err := a.bus.subscribe(id)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Unsubscribe removes the renderer and closes its channel.
func (a *App) Unsubscribe(id string) error {
	return a.bus.unsubscribe(id)
}

// Stats returns delivery counters for the subscribers.
func (a *App) Stats() BusStats {
	return a.bus.stats()
}

// Close stops the loop and closes every subscriber channel.
func (a *App) Close() {
	a.Stop()
	a.bus.close()
}
