package render

import (
	"image"
	"math"

	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Placement maps normalized joint locations onto image pixels
type Placement struct {
	// Size is the view the skeleton is drawn in
	Size skeleton.Size
	// Overlay places the skeleton's image center at Center, scaled and
	// optionally mirrored, instead of filling the view
	Overlay bool
	Center  r2.Vec
	Scale   float64
	Mirror  bool
}

// ViewPlacement draws a skeleton over the full view
func ViewPlacement(size skeleton.Size) Placement {
	return Placement{Size: size, Scale: 1}
}

// OverlayPlacement draws a reference skeleton as an overlay centered at
// center
func OverlayPlacement(size skeleton.Size, center r2.Vec, scale float64, mirror bool) Placement {
	if scale <= 0 {
		scale = 1
	}
	return Placement{
		Size:    size,
		Overlay: true,
		Center:  center,
		Scale:   scale,
		Mirror:  mirror,
	}
}

// Point returns the pixel position of a normalized location
func (p Placement) Point(loc r2.Vec) r2.Vec {

	if !p.Overlay {
		return skeleton.ToPixel(loc, p.Size)
	}

	sx := 1.0
	if p.Mirror {
		sx = -1
	}

	return r2.Vec{
		X: p.Center.X + sx*(loc.X-0.5)*p.Size.Width*p.Scale,
		Y: p.Center.Y - (loc.Y-0.5)*p.Size.Height*p.Scale,
	}
}

// radius scales an indicator radius with the placement
func (p Placement) radius(r int) int {
	if !p.Overlay {
		return r
	}
	return max(1, int(math.Round(float64(r)*p.Scale)))
}

// pt rounds a pixel position to an image.Point
func pt(v r2.Vec) image.Point {
	return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y)))
}
