// Package api provides the HTTP API handlers for handvox.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/voxel"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// queryLimit reads ?limit=N. Missing or invalid values give 0, which the
// store treats as its default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// VoxelView is the wire form of one voxel.
type VoxelView struct {
	X     int    `json:"x" msgpack:"x"`
	Y     int    `json:"y" msgpack:"y"`
	Z     int    `json:"z" msgpack:"z"`
	Hue   int    `json:"hue" msgpack:"hue"`
	Color string `json:"color" msgpack:"color"`
}

// SceneMessage is pushed to renderers over the websocket and returned by
// GET /api/voxels.
type SceneMessage struct {
	Gesture   string      `json:"gesture" msgpack:"gesture"`
	Action    string      `json:"action" msgpack:"action"`
	Status    string      `json:"status" msgpack:"status"`
	GridSize  int         `json:"grid_size" msgpack:"grid_size"`
	Version   uint64      `json:"version" msgpack:"version"`
	Voxels    []VoxelView `json:"voxels" msgpack:"voxels"`
	Timestamp int64       `json:"timestamp" msgpack:"timestamp"` // unix milliseconds, 0 before the first frame
}

// NewSceneMessage converts an app update into its wire form.
func NewSceneMessage(u app.Update) SceneMessage {
	msg := SceneMessage{
		Gesture:  string(u.Gesture),
		Action:   string(u.Action),
		Status:   u.Status,
		GridSize: u.GridSize,
		Version:  u.Version,
		Voxels:   VoxelViews(u.Voxels),
	}
	if !u.Timestamp.IsZero() {
		msg.Timestamp = u.Timestamp.UnixMilli()
	}
	return msg
}

// VoxelViews flattens cells for the wire.
func VoxelViews(cells []voxel.Cell) []VoxelView {
	views := make([]VoxelView, len(cells))
	for i, c := range cells {
		views[i] = VoxelView{
			X:     c.Coord.X,
			Y:     c.Coord.Y,
			Z:     c.Coord.Z,
			Hue:   int(c.Color.H),
			Color: c.Color.String(),
		}
	}
	return views
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05Z07:00")
}
