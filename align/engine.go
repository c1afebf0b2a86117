package align

import (
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the alignment parameters
type Config struct {
	Mode          Mode           `yaml:"mode"`
	AnchorJoint   skeleton.Joint `yaml:"anchor_joint"`
	MovementScale float64        `yaml:"movement_scale"`
	XSign         float64        `yaml:"x_sign"`
}

// DefaultConfig returns a locked alignment on the right ankle, matching the
// first release of the overlay
func DefaultConfig() Config {
	return Config{
		Mode:          Locked,
		AnchorJoint:   skeleton.RightAnkle,
		MovementScale: DefaultMovementScale,
		XSign:         XOffsetSign,
	}
}

// Engine selects between the alignment policies and holds the alignment
// state for the active exercise.  Engine is not safe for concurrent use.
type Engine struct {
	mode     Mode
	view     skeleton.Size
	follower *Follower
	locker   *Locker
}

// NewEngine returns an Engine configured by cfg
func NewEngine(cfg Config) *Engine {
	f := NewFollower(cfg.AnchorJoint)
	if cfg.XSign != 0 {
		f.XSign = cfg.XSign
	}

	l := NewLocker(cfg.AnchorJoint)
	if cfg.MovementScale > 0 {
		l.MovementScale = cfg.MovementScale
	}

	return &Engine{
		mode:     cfg.Mode,
		follower: f,
		locker:   l,
	}
}

func (e *Engine) active() Aligner {
	if e.mode == Following {
		return e.follower
	}
	return e.locker
}

// Mode returns the active policy
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode switches policy.  The new policy starts from the current center so
// the overlay does not jump, a Locker recaptures its offset on the next
// usable frame.
func (e *Engine) SetMode(m Mode) {
	if m == e.mode {
		return
	}

	center := e.Center()
	e.mode = m

	switch m {
	case Following:
		e.follower.center = center
	case Locked:
		e.locker.initialOffset = nil
		e.locker.translation = r2.Vec{}
		e.locker.base = center
	}
}

// Anchor returns the anchor joint
func (e *Engine) Anchor() skeleton.Joint {
	return e.follower.Anchor
}

// SetAnchor changes the anchor joint and clears any captured offset
func (e *Engine) SetAnchor(j skeleton.Joint) {
	e.follower.Anchor = j
	e.locker.Anchor = j
	e.locker.ResetInitialPoseOffset()
}

// Reset clears all alignment state and centers the overlay in view.  Called
// when the active exercise or the view size changes.
func (e *Engine) Reset(view skeleton.Size) {
	e.view = view
	e.follower.Reset(view)
	e.locker.Reset(view)
}

// View returns the view size alignment is computed for
func (e *Engine) View() skeleton.Size {
	return e.view
}

// Update runs the active policy for a frame
func (e *Engine) Update(live, ref skeleton.Skeleton) (r2.Vec, bool) {
	return e.active().Update(live, ref, e.view)
}

// ResetInitialPoseOffset forces the Locker to recapture its offset
func (e *Engine) ResetInitialPoseOffset() {
	e.locker.ResetInitialPoseOffset()
}

// RelativeOffset returns the Locker relative offset for live and ref
func (e *Engine) RelativeOffset(live, ref skeleton.Skeleton) (r2.Vec, bool) {
	return e.locker.RelativeOffset(live, ref)
}

// Center returns the current overlay center
func (e *Engine) Center() r2.Vec {
	return e.active().Center()
}

// State returns a snapshot of the alignment state
func (e *Engine) State() State {
	st := State{
		AnchorJoint: e.Anchor(),
		Mode:        e.mode,
		Center:      e.Center(),
	}

	if off, ok := e.locker.InitialOffset(); ok && e.mode == Locked {
		st.CapturedOffset = &off
	}

	return st
}
