package gesture

import "time"

// Action is the store operation a gesture maps to.
type Action string

const (
	ActionNone     Action = "none"
	ActionAddVoxel Action = "add_voxel"
	ActionClear    Action = "clear"
	ActionRecolor  Action = "recolor"
	ActionBurst    Action = "burst"
)

// ActionFor returns the store operation bound to g.
func ActionFor(g Gesture) Action {
	switch g {
	case Point:
		return ActionAddVoxel
	case Fist:
		return ActionClear
	case Open:
		return ActionRecolor
	case ThumbsUp:
		return ActionBurst
	}
	return ActionNone
}

// GateConfig holds the minimum intervals enforced between actions.
type GateConfig struct {
	// GestureInterval applies to fist, open and thumbs_up, and to switching
	// between different gestures.
	GestureInterval time.Duration
	// VoxelInterval applies between two voxel inserts from point.
	VoxelInterval time.Duration
}

// DefaultGateConfig returns 1000ms between gesture actions and 500ms between voxel inserts.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		GestureInterval: 1000 * time.Millisecond,
		VoxelInterval:   500 * time.Millisecond,
	}
}

// GateState is everything the gate remembers between frames.
// Zero times mean no action has happened yet.
type GateState struct {
	LastGesture       Gesture
	LastGestureAction time.Time
	LastVoxelAction   time.Time
}

// Reason explains a gate decision.
type Reason string

const (
	ReasonAdmitted   Reason = "admitted"
	ReasonNoAction   Reason = "no_action"   // partial never acts
	ReasonFlap       Reason = "flap"        // different gesture inside the gesture window
	ReasonCooldown   Reason = "cooldown"    // same gesture inside the gesture window
	ReasonVoxelDelay Reason = "voxel_delay" // point inside the voxel window
)

// Decision is the outcome of one Admit call.
type Decision struct {
	Gesture Gesture
	Action  Action // ActionNone unless admitted
	Reason  Reason
}

// Admitted reports whether the decision calls for a store operation.
func (d Decision) Admitted() bool {
	return d.Reason == ReasonAdmitted
}

// Admit evaluates g at time now against state and returns the state to
// commit if the resulting action succeeds. state itself is never modified;
// a rejected frame returns it unchanged.
func Admit(state GateState, cfg GateConfig, g Gesture, now time.Time) (GateState, Decision) {
	d := Decision{Gesture: g, Action: ActionNone}

	if g == Partial || !g.Valid() {
		d.Reason = ReasonNoAction
		return state, d
	}

	sinceGesture := now.Sub(state.LastGestureAction)
	if !state.LastGestureAction.IsZero() && sinceGesture < cfg.GestureInterval && g != state.LastGesture {
		d.Reason = ReasonFlap
		return state, d
	}

	if g == Point {
		if !state.LastVoxelAction.IsZero() && now.Sub(state.LastVoxelAction) < cfg.VoxelInterval {
			d.Reason = ReasonVoxelDelay
			return state, d
		}
		next := state
		next.LastVoxelAction = now
		d.Action = ActionAddVoxel
		d.Reason = ReasonAdmitted
		return next, d
	}

	if !state.LastGestureAction.IsZero() && sinceGesture < cfg.GestureInterval {
		d.Reason = ReasonCooldown
		return state, d
	}

	next := state
	next.LastGesture = g
	next.LastGestureAction = now
	d.Action = ActionFor(g)
	d.Reason = ReasonAdmitted
	return next, d
}

// Gate holds a GateState for callers that do not thread it themselves.
// It is not safe for concurrent use; it belongs to the frame loop.
type Gate struct {
	cfg   GateConfig
	state GateState
}

// NewGate creates a gate with an empty state.
func NewGate(cfg GateConfig) *Gate {
	return &Gate{cfg: cfg}
}

// Decide evaluates g without changing the gate. Pass the returned state to
// Commit once the action has been carried out.
func (g *Gate) Decide(gesture Gesture, now time.Time) (GateState, Decision) {
	return Admit(g.state, g.cfg, gesture, now)
}

// Commit replaces the gate state.
func (g *Gate) Commit(state GateState) {
	g.state = state
}

// Admit decides and commits in one step, reporting whether an action is due.
func (g *Gate) Admit(gesture Gesture, now time.Time) bool {
	next, d := g.Decide(gesture, now)
	if d.Admitted() {
		g.Commit(next)
	}
	return d.Admitted()
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	return g.state
}

// Config returns the gate intervals.
func (g *Gate) Config() GateConfig {
	return g.cfg
}
