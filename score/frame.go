package score

import (
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// JointScore is the match result for one joint
type JointScore struct {
	Joint      skeleton.Joint `json:"joint"`
	Percentage float64        `json:"percentage"`
	Color      Color          `json:"color"`
	// Usable is false when the live or reference joint was missing or below
	// the confidence threshold
	Usable bool `json:"usable"`
}

// LimbScore holds the endpoint colors of a limb
type LimbScore struct {
	Limb   skeleton.Limb `json:"limb"`
	ColorA Color         `json:"colorA"`
	ColorB Color         `json:"colorB"`
}

// Frame holds the scores of every joint and limb for one frame
type Frame struct {
	Joints [skeleton.JointCount]JointScore `json:"joints"`
	Limbs  [skeleton.LimbCount]LimbScore   `json:"limbs"`
	// Overall is the mean match of the usable joints, 0 if none are usable
	Overall float64 `json:"overall"`
}

// Score rates all 15 joints and 14 limbs
func Score(live, ref skeleton.Skeleton, center r2.Vec, screen skeleton.Size) Frame {
	var f Frame

	sum := 0.0
	usable := 0

	for _, j := range skeleton.Joints() {
		d, ok := Distance(j, live, ref, center, screen)

		p := 0.0
		if ok {
			p = clamp01(1 - d/MaxDistance)
			sum += p
			usable++
		}

		f.Joints[j] = JointScore{
			Joint:      j,
			Percentage: p,
			Color:      ColorForMatch(p),
			Usable:     ok,
		}
	}

	for i, l := range skeleton.Limbs {
		f.Limbs[i] = LimbScore{
			Limb:   l,
			ColorA: f.Joints[l.A].Color,
			ColorB: f.Joints[l.B].Color,
		}
	}

	if usable > 0 {
		f.Overall = sum / float64(usable)
	}

	return f
}

// Joint returns the score for joint j
func (f Frame) Joint(j skeleton.Joint) JointScore {
	if !j.Valid() {
		return JointScore{Joint: j, Color: Red}
	}
	return f.Joints[j]
}

// Gradient returns the endpoint colors for the limb a-b, in the order
// requested.  Joints that are not connected are colored individually.
func (f Frame) Gradient(a, b skeleton.Joint) (Color, Color) {
	return f.Joint(a).Color, f.Joint(b).Color
}
