package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/detector"
	"github.com/ayusman/handvox/internal/server"
	"github.com/ayusman/handvox/internal/server/api"
	"github.com/ayusman/handvox/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestE2E_Scripts(t *testing.T) {
	for _, path := range scriptPaths(t) {
		sc := loadScript(t, path)

		t.Run(sc.Name, func(t *testing.T) {
			readings := make([]*capture.Reading, len(sc.Steps))
			for i, st := range sc.Steps {
				r, err := st.reading()
				if err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				readings[i] = r
			}

			a, err := app.New(app.Config{
				Source:   capture.NewReplaySource(readings, false),
				GridSize: sc.GridSize,
				Rand:     rand.New(rand.NewPCG(1, 2)),
				Logger:   quietLogger(),
			})
			if err != nil {
				t.Fatalf("app.New() error = %v", err)
			}
			defer a.Close()

			t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
			for i, st := range sc.Steps {
				_, ok := a.Tick(st.at(t0))
				if ok != (st.Pose != "none") {
					t.Fatalf("step %d (%s at %dms): Tick ok = %v", i, st.Pose, st.AtMS, ok)
				}

				state := a.State()
				if state.Status != st.Status {
					t.Errorf("step %d (%s at %dms): status = %q, want %q", i, st.Pose, st.AtMS, state.Status, st.Status)
				}
				if n := len(a.Snapshot().Cells); n != st.Voxels {
					t.Errorf("step %d (%s at %dms): voxels = %d, want %d", i, st.Pose, st.AtMS, n, st.Voxels)
				}
				if st.Pose != "none" && string(state.Gesture) != st.Pose {
					t.Errorf("step %d: gesture = %q, want %q", i, state.Gesture, st.Pose)
				}
			}
		})
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "handvox.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	source := capture.NewReplaySource(nil, false)
	a, err := app.New(app.Config{
		Source:       source,
		Store:        s,
		TickInterval: 5 * time.Millisecond,
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	srv := server.New(server.Config{App: a, Store: s, Logger: quietLogger()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	// The first message is the state at connect time.
	if msg := readScene(t, conn); msg.Status != app.InitialStatus {
		t.Fatalf("initial status = %q, want %q", msg.Status, app.InitialStatus)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Run("PointAddsVoxel", func(t *testing.T) {
		source.Push(&capture.Reading{
			Hand:   detector.PointingAt(detector.Point3D{X: 0.5, Y: 0.5, Z: 0}),
			Width:  frameWidth,
			Height: frameHeight,
		})

		msg := waitScene(t, conn, func(m api.SceneMessage) bool { return len(m.Voxels) == 1 })
		if msg.Status != "Added voxel at (20, 20, 20)" {
			t.Errorf("status = %q", msg.Status)
		}
		if v := msg.Voxels[0]; v.X != 20 || v.Y != 20 || v.Z != 20 {
			t.Errorf("voxel = %+v", v)
		}
	})

	t.Run("FistClears", func(t *testing.T) {
		source.Push(&capture.Reading{Hand: detector.FistLandmarks(), Width: frameWidth, Height: frameHeight})

		msg := waitScene(t, conn, func(m api.SceneMessage) bool { return m.Gesture == "fist" })
		if msg.Status != "Cleared 1 voxels" || len(msg.Voxels) != 0 {
			t.Errorf("message = %+v", msg)
		}
	})

	t.Run("StateEndpoint", func(t *testing.T) {
		var state struct {
			Gesture    string `json:"gesture"`
			Status     string `json:"status"`
			VoxelCount int    `json:"voxel_count"`
		}
		getJSON(t, ts.URL+"/api/state", &state)

		if state.Gesture != "fist" || state.Status != "Cleared 1 voxels" || state.VoxelCount != 0 {
			t.Errorf("state = %+v", state)
		}
	})

	t.Run("Journal", func(t *testing.T) {
		var actions struct {
			Actions []struct {
				Gesture string `json:"gesture"`
				Action  string `json:"action"`
			} `json:"actions"`
		}
		getJSON(t, fmt.Sprintf("%s/api/sessions/%s/actions", ts.URL, a.Session().ID), &actions)

		if len(actions.Actions) != 2 {
			t.Fatalf("actions = %+v, want 2", actions.Actions)
		}
		if actions.Actions[0].Action != "add_voxel" || actions.Actions[1].Action != "clear" {
			t.Errorf("actions = %+v", actions.Actions)
		}
	})

	t.Run("DisabledIgnoresHands", func(t *testing.T) {
		a.SetEnabled(false)
		// Let a tick that started before the switch finish.
		time.Sleep(20 * time.Millisecond)
		source.Push(&capture.Reading{Hand: detector.ThumbsUpLandmarks(), Width: frameWidth, Height: frameHeight})

		time.Sleep(50 * time.Millisecond)

		if source.Remaining() != 1 {
			t.Errorf("Remaining() = %d, want 1 while disabled", source.Remaining())
		}
		if n := len(a.Snapshot().Cells); n != 0 {
			t.Errorf("voxels = %d, want 0", n)
		}

		var health map[string]interface{}
		getJSON(t, ts.URL+"/api/health", &health)
		if health["detecting"] != false {
			t.Errorf("detecting = %v, want false", health["detecting"])
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
	})
}

func readScene(t *testing.T, conn *websocket.Conn) api.SceneMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg api.SceneMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	return msg
}

func waitScene(t *testing.T, conn *websocket.Conn, match func(api.SceneMessage) bool) api.SceneMessage {
	t.Helper()

	for i := 0; i < 20; i++ {
		if msg := readScene(t, conn); match(msg) {
			return msg
		}
	}
	t.Fatal("no matching update")
	return api.SceneMessage{}
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
