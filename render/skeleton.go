// Package render draws live and reference skeletons, match colors and the
// overall score onto gocv images.
package render

import (
	"image/color"

	"github.com/formfitness/go-formfit/score"
	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// ColorFunc returns the match color of a joint
type ColorFunc func(j skeleton.Joint) score.Color

// Skeleton draws the limbs and joint indicators of sk.  Joints below the
// confidence threshold and limbs touching them are skipped.  When colors is
// set limbs are drawn as gradients between their endpoint match colors.
func Skeleton(img *gocv.Mat, sk skeleton.Skeleton, p Placement, style Style, colors ColorFunc) {

	// draw skeleton lines
	for _, l := range skeleton.Limbs {
		a, ok := sk.Point(l.A)
		if !ok {
			continue
		}

		b, ok := sk.Point(l.B)
		if !ok {
			continue
		}

		pa, pb := p.Point(a.Location), p.Point(b.Location)

		if colors == nil {
			gocv.Line(img, pt(pa), pt(pb), style.LineColor, style.LineThickness)
			continue
		}

		GradientLine(img, pa, pb, colors(l.A), colors(l.B), style.LineThickness, style.GradientSegments)
	}

	// draw circles at head, hand and feet joints
	for _, j := range skeleton.Joints() {
		js := style.Joint(j)
		if js.Radius <= 0 {
			continue
		}

		jp, ok := sk.Point(j)
		if !ok {
			continue
		}

		c := js.Color
		if colors != nil && style.RateIndicators {
			c = colors(j).RGBA()
		}

		gocv.Circle(img, pt(p.Point(jp.Location)), p.radius(js.Radius), c, -1)
	}
}

// segment is one piece of a gradient line
type segment struct {
	from, to r2.Vec
	color    color.RGBA
}

// gradientSegments splits a-b into n pieces, each colored by interpolating
// ca to cb at its midpoint
func gradientSegments(a, b r2.Vec, ca, cb score.Color, n int) []segment {

	if n < 1 {
		n = 1
	}

	segs := make([]segment, n)
	d := r2.Sub(b, a)

	for i := 0; i < n; i++ {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)

		c := ca
		if n > 1 {
			c = ca.Lerp(cb, (t0+t1)/2)
		}

		segs[i] = segment{
			from:  r2.Add(a, r2.Scale(t0, d)),
			to:    r2.Add(a, r2.Scale(t1, d)),
			color: c.RGBA(),
		}
	}

	return segs
}

// GradientLine draws a line from a to b fading from color ca to cb
func GradientLine(img *gocv.Mat, a, b r2.Vec, ca, cb score.Color, thickness, segments int) {
	for _, s := range gradientSegments(a, b, ca, cb, segments) {
		gocv.Line(img, pt(s.from), pt(s.to), s.color, thickness)
	}
}
