// Package score rates how closely a live skeleton matches the reference
// skeleton, joint by joint, and maps the rating onto overlay colors.
//
// All functions are pure, every frame is scored from scratch.
package score

import (
	"math"

	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// MaxDistance is the normalized distance at which a joint is a complete
// mismatch
const MaxDistance = 0.5

// Distance returns the normalized distance between the live and reference
// joint, corrected for how far the overlay center has been moved away from
// the screen center.  ok is false if either joint is unusable.
func Distance(j skeleton.Joint, live, ref skeleton.Skeleton, center r2.Vec,
	screen skeleton.Size) (float64, bool) {

	lp, ok := live.Point(j)
	if !ok {
		return 0, false
	}

	rp, ok := ref.Point(j)
	if !ok {
		return 0, false
	}

	s := screen.Center()

	dx := lp.Location.X - rp.Location.X + (s.X-center.X)/screen.Width
	dy := lp.Location.Y - rp.Location.Y - (s.Y-center.Y)/screen.Height

	return math.Hypot(dx, dy), true
}

// MatchPercentage returns the joint match in the range [0,1], 1 being a
// perfect match.  An unusable live or reference joint scores 0.
func MatchPercentage(j skeleton.Joint, live, ref skeleton.Skeleton, center r2.Vec,
	screen skeleton.Size) float64 {

	d, ok := Distance(j, live, ref, center, screen)
	if !ok {
		return 0
	}

	return clamp01(1 - d/MaxDistance)
}

// JointColor returns the overlay color for joint j
func JointColor(j skeleton.Joint, live, ref skeleton.Skeleton, center r2.Vec,
	screen skeleton.Size) Color {
	return ColorForMatch(MatchPercentage(j, live, ref, center, screen))
}

// LimbGradient returns the colors at each end of the limb a-b.  Each endpoint
// is scored independently so a limb whose joints disagree is drawn as a
// gradient.
func LimbGradient(a, b skeleton.Joint, live, ref skeleton.Skeleton, center r2.Vec,
	screen skeleton.Size) (Color, Color) {
	return JointColor(a, live, ref, center, screen),
		JointColor(b, live, ref, center, screen)
}
