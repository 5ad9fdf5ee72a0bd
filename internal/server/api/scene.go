package api

import (
	"net/http"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/voxel"
)

// Scene is the read side of the frame loop.
type Scene interface {
	State() app.Update
	Snapshot() voxel.Snapshot
	GridSize() int
	IsEnabled() bool
	Stats() app.BusStats
}

// SceneHandler serves the current label, status and voxels. It never
// changes the scene; only gestures do.
type SceneHandler struct {
	scene Scene
}

// NewSceneHandler creates a new SceneHandler.
func NewSceneHandler(s Scene) *SceneHandler {
	return &SceneHandler{scene: s}
}

type stateResponse struct {
	Gesture    string       `json:"gesture"`
	Action     string       `json:"action"`
	Status     string       `json:"status"`
	Enabled    bool         `json:"enabled"`
	GridSize   int          `json:"grid_size"`
	VoxelCount int          `json:"voxel_count"`
	Version    uint64       `json:"version"`
	Timestamp  int64        `json:"timestamp"`
	Updates    app.BusStats `json:"updates"`
}

// State handles GET /api/state.
func (h *SceneHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg := NewSceneMessage(h.scene.State())
	writeJSON(w, http.StatusOK, stateResponse{
		Gesture:    msg.Gesture,
		Action:     msg.Action,
		Status:     msg.Status,
		Enabled:    h.scene.IsEnabled(),
		GridSize:   msg.GridSize,
		VoxelCount: len(msg.Voxels),
		Version:    msg.Version,
		Timestamp:  msg.Timestamp,
		Updates:    h.scene.Stats(),
	})
}

type voxelsResponse struct {
	GridSize int         `json:"grid_size"`
	Version  uint64      `json:"version"`
	Voxels   []VoxelView `json:"voxels"`
}

// Voxels handles GET /api/voxels.
func (h *SceneHandler) Voxels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.scene.Snapshot()
	writeJSON(w, http.StatusOK, voxelsResponse{
		GridSize: h.scene.GridSize(),
		Version:  snap.Version,
		Voxels:   VoxelViews(snap.Cells),
	})
}
