package align

import (
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Locker implements lock-to-initial-offset alignment.  The first usable frame
// after a reset captures the live/reference anchor offset, later frames move
// the overlay by the change in that offset.
type Locker struct {
	// Anchor is the joint compared between live and reference skeletons
	Anchor skeleton.Joint
	// MovementScale scales the translation relative to the view size
	MovementScale float64

	initialOffset *r2.Vec
	base          r2.Vec
	translation   r2.Vec
}

// NewLocker returns a Locker using the anchor joint and the default movement
// scale
func NewLocker(anchor skeleton.Joint) *Locker {
	return &Locker{
		Anchor:        anchor,
		MovementScale: DefaultMovementScale,
	}
}

// currentOffset returns live - ref for the anchor in normalized space
func (l *Locker) currentOffset(live, ref skeleton.Skeleton) (r2.Vec, bool) {
	lp, ok := live.Point(l.Anchor)
	if !ok {
		return r2.Vec{}, false
	}

	rp, ok := ref.Point(l.Anchor)
	if !ok {
		return r2.Vec{}, false
	}

	return r2.Sub(lp.Location, rp.Location), true
}

// RelativeOffset returns the change of the live/reference anchor offset since
// it was captured.  ok is false if no offset has been captured or a joint is
// unusable.
func (l *Locker) RelativeOffset(live, ref skeleton.Skeleton) (r2.Vec, bool) {
	if l.initialOffset == nil {
		return r2.Vec{}, false
	}

	cur, ok := l.currentOffset(live, ref)
	if !ok {
		return r2.Vec{}, false
	}

	return r2.Sub(cur, *l.initialOffset), true
}

// Update captures the initial offset on the first usable frame, then computes
// the overlay translation.  Normalized y grows upward while screen y grows
// downward so the y component is inverted.
func (l *Locker) Update(live, ref skeleton.Skeleton, view skeleton.Size) (r2.Vec, bool) {

	if l.initialOffset == nil {
		cur, ok := l.currentOffset(live, ref)
		if !ok {
			return l.Center(), false
		}

		l.initialOffset = &cur
		l.translation = r2.Vec{}
		return l.Center(), true
	}

	rel, ok := l.RelativeOffset(live, ref)
	if !ok {
		return l.Center(), false
	}

	l.translation = r2.Vec{
		X: rel.X * view.Width * l.MovementScale,
		Y: -rel.Y * view.Height * l.MovementScale,
	}

	return l.Center(), true
}

// Translation returns the current translation applied to the base position
func (l *Locker) Translation() r2.Vec {
	return l.translation
}

// InitialOffset returns the captured offset, if any
func (l *Locker) InitialOffset() (r2.Vec, bool) {
	if l.initialOffset == nil {
		return r2.Vec{}, false
	}
	return *l.initialOffset, true
}

// ResetInitialPoseOffset clears the captured offset so the next usable frame
// captures a new one.  The current translation is kept until then.
func (l *Locker) ResetInitialPoseOffset() {
	l.initialOffset = nil
}

// Reset clears the captured offset and translation and uses the view center
// as the base position
func (l *Locker) Reset(view skeleton.Size) {
	l.initialOffset = nil
	l.translation = r2.Vec{}
	l.base = view.Center()
}

// Center returns the base position moved by the current translation
func (l *Locker) Center() r2.Vec {
	return r2.Add(l.base, l.translation)
}
