package tray

import (
	"testing"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/gesture"
)

func TestNew(t *testing.T) {
	tr := New()

	if !tr.IsEnabled() {
		t.Error("new tray should start enabled")
	}
	if tr.Status() != app.InitialStatus {
		t.Errorf("Status() = %q, want %q", tr.Status(), app.InitialStatus)
	}
	if tr.LastGesture() != "" {
		t.Errorf("LastGesture() = %q, want empty", tr.LastGesture())
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) {
		got = append(got, enabled)
	})

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after two toggles")
	}
}

func TestTray_Viewer(t *testing.T) {
	tr := New()

	// No callback set is fine.
	tr.handleViewer()

	called := false
	tr.OnOpenViewer(func() { called = true })
	tr.handleViewer()

	if !called {
		t.Error("viewer callback was not called")
	}
}

func TestTray_Follow(t *testing.T) {
	tr := New()

	updates := make(chan app.Update, 2)
	updates <- app.Update{Gesture: gesture.Point, Status: "Added voxel at (1, 2, 3)"}
	updates <- app.Update{Gesture: gesture.Fist, Status: "Cleared 1 voxels"}
	close(updates)

	tr.Follow(updates)

	if tr.LastGesture() != "fist" {
		t.Errorf("LastGesture() = %q, want %q", tr.LastGesture(), "fist")
	}
	if tr.Status() != "Cleared 1 voxels" {
		t.Errorf("Status() = %q, want %q", tr.Status(), "Cleared 1 voxels")
	}
}

func TestTitles(t *testing.T) {
	if got := gestureTitle(""); got != "Gesture: none" {
		t.Errorf("gestureTitle(\"\") = %q", got)
	}
	if got := gestureTitle("open"); got != "Gesture: open" {
		t.Errorf("gestureTitle(\"open\") = %q", got)
	}
	if toggleTitle(true) == toggleTitle(false) {
		t.Error("toggle titles should differ")
	}
}
