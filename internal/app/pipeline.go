package app

import (
	"context"
	"time"

	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/gesture"
	"github.com/ayusman/handvox/internal/store"
)

// Tick polls the source once and processes the reading if there is one.
// It reports false when the app is disabled, no hand was available, or the
// source failed.
func (a *App) Tick(now time.Time) (Update, bool) {
	if !a.IsEnabled() {
		return Update{}, false
	}

	r, ok, err := a.source.Poll()
	if err != nil {
		a.logger.Warn("poll landmark source", "error", err)
		return Update{}, false
	}
	if !ok {
		return Update{}, false
	}

	return a.Process(r, now), true
}

// Process runs one reading through classification, the gate and, when
// admitted, the voxel store. The returned update is published to
// subscribers whenever the label, the status or the scene changed.
func (a *App) Process(r capture.Reading, now time.Time) Update {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	g := gesture.Classify(r.Hand, a.thresholds)
	next, d := a.gate.Decide(g, now)

	prev := a.State()
	status := prev.Status
	action := gesture.ActionNone

	switch {
	case d.Admitted():
		s, ok := a.apply(d.Action, r)
		if s != "" {
			status = s
		}
		if ok {
			a.gate.Commit(next)
			action = d.Action
			a.logger.Debug("action applied", "gesture", g, "action", action, "status", status)
			a.journal(g, action, status)
		}
	case d.Reason != gesture.ReasonNoAction:
		a.logger.Debug("gesture dropped", "gesture", g, "reason", d.Reason)
	}

	version := a.voxels.Version()
	u := prev
	u.Gesture = g
	u.Action = action
	u.Status = status
	u.Timestamp = now
	if version != prev.Version {
		snap := a.voxels.Snapshot()
		u.Voxels = snap.Cells
		u.Version = snap.Version
	}

	changed := g != prev.Gesture || status != prev.Status || u.Version != prev.Version
	if !changed {
		return u
	}

	a.mu.Lock()
	a.state = u
	a.mu.Unlock()

	a.bus.publish(u)
	return u
}

// journal appends the applied action to the session log. Failures are
// logged; the scene has already changed.
func (a *App) journal(g gesture.Gesture, action gesture.Action, status string) {
	if a.config.Store == nil || a.session == nil {
		return
	}

	entry := &store.ActionEntry{
		SessionID:  a.session.ID,
		Gesture:    string(g),
		Action:     string(action),
		Status:     status,
		VoxelCount: a.voxels.Len(),
	}
	if err := a.config.Store.Actions().Append(entry); err != nil {
		a.logger.Warn("journal action", "gesture", g, "error", err)
	}
}

// Start runs the frame loop in the background until Stop is called.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		a.Run(ctx)
	}()

	a.logger.Info("frame loop started", "tick", a.config.TickInterval)
	return nil
}

// Stop halts the frame loop and waits for the current frame to finish.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	a.logger.Info("frame loop stopped")
}

// Run ticks at the configured interval until ctx is cancelled. Cancellation
// is only observed between ticks, so a frame is always processed whole.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			a.Tick(now)
		}
	}
}
