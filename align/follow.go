package align

import (
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Follower implements anchor following, the overlay center is recomputed
// every frame from the live anchor joint
type Follower struct {
	// Anchor is the joint the overlay tracks
	Anchor skeleton.Joint
	// XSign is the sign applied to the reference x offset, see XOffsetSign
	XSign float64

	center r2.Vec
}

// NewFollower returns a Follower tracking the anchor joint
func NewFollower(anchor skeleton.Joint) *Follower {
	return &Follower{
		Anchor: anchor,
		XSign:  XOffsetSign,
	}
}

// ReferenceOffset returns the offset of the reference anchor joint from the
// center of its own normalized image
func ReferenceOffset(ref skeleton.Skeleton, j skeleton.Joint) (r2.Vec, bool) {
	p, ok := ref.Point(j)
	if !ok {
		return r2.Vec{}, false
	}
	return r2.Sub(p.Location, r2.Vec{X: 0.5, Y: 0.5}), true
}

// Update places the overlay so the reference anchor sits on the live anchor.
// If either anchor is unusable the previous center is returned.
func (f *Follower) Update(live, ref skeleton.Skeleton, view skeleton.Size) (r2.Vec, bool) {

	livePx, ok := live.PixelPoint(f.Anchor, view)
	if !ok {
		return f.center, false
	}

	refOffset, ok := ReferenceOffset(ref, f.Anchor)
	if !ok {
		return f.center, false
	}

	f.center = r2.Vec{
		X: livePx.X + f.XSign*refOffset.X*view.Width,
		Y: livePx.Y + refOffset.Y*view.Height,
	}

	return f.center, true
}

// Reset centers the overlay in the view
func (f *Follower) Reset(view skeleton.Size) {
	f.center = view.Center()
}

// Center returns the last computed center
func (f *Follower) Center() r2.Vec {
	return f.center
}
