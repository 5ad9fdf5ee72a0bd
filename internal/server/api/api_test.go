package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/gesture"
	"github.com/ayusman/handvox/internal/store"
	"github.com/ayusman/handvox/internal/voxel"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNewSceneMessage(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_123)
	u := app.Update{
		Gesture:  gesture.Point,
		Action:   gesture.ActionAddVoxel,
		Status:   "Added voxel at (10, 0, 39)",
		GridSize: 40,
		Voxels: []voxel.Cell{
			{Coord: voxel.Coord{X: 10, Y: 0, Z: 39}, Color: voxel.HueColor(10, 40)},
		},
		Version:   7,
		Timestamp: ts,
	}

	msg := NewSceneMessage(u)

	if msg.Gesture != "point" || msg.Action != "add_voxel" || msg.Version != 7 {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp != 1_700_000_000_123 {
		t.Errorf("Timestamp = %d", msg.Timestamp)
	}
	want := VoxelView{X: 10, Y: 0, Z: 39, Hue: 90, Color: "hsl(90, 70%, 50%)"}
	if len(msg.Voxels) != 1 || msg.Voxels[0] != want {
		t.Errorf("Voxels = %+v, want [%+v]", msg.Voxels, want)
	}

	if NewSceneMessage(app.Update{}).Timestamp != 0 {
		t.Error("zero time should encode as 0")
	}
}

func TestVoxelViews_EmptyIsNotNull(t *testing.T) {
	data, err := json.Marshal(voxelsResponse{Voxels: VoxelViews(nil)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"grid_size":0,"version":0,"voxels":[]}` {
		t.Errorf("json = %s", data)
	}
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"?limit=5", 5},
		{"?limit=-1", 0},
		{"?limit=abc", 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/actions"+tt.query, nil)
		if got := queryLimit(req); got != tt.want {
			t.Errorf("queryLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSessionHandler_List_Empty(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Sessions == nil || len(response.Sessions) != 0 {
		t.Errorf("Sessions = %v, want empty list", response.Sessions)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	sess := &store.Session{ID: "sess-1", GridSize: 40, StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	handler := NewSessionHandler(s)

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var response sessionResponse
		json.NewDecoder(rec.Body).Decode(&response)
		if response.ID != "sess-1" || response.GridSize != 40 || response.StartedAt != "2025-03-01T12:00:00Z" {
			t.Errorf("response = %+v", response)
		}
	})

	t.Run("trailing slash", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestSessionHandler_Actions(t *testing.T) {
	s := newTestStore(t)
	sess := &store.Session{ID: "sess-1", GridSize: 40}
	s.Sessions().Create(sess)
	s.Actions().Append(&store.ActionEntry{SessionID: "sess-1", Gesture: "thumbs_up", Action: "burst", Status: "Burst: added 10 voxels", VoxelCount: 10})

	handler := NewSessionHandler(s)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/actions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listActionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.SessionID != "sess-1" || len(response.Actions) != 1 {
		t.Fatalf("response = %+v", response)
	}
	if a := response.Actions[0]; a.Gesture != "thumbs_up" || a.VoxelCount != 10 {
		t.Errorf("action = %+v", a)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
