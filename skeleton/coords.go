package skeleton

import "gonum.org/v1/gonum/spatial/r2"

// Size is a view or image size in pixels/points
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Center returns the center point of the size in screen coordinates
func (s Size) Center() r2.Vec {
	return r2.Vec{X: s.Width / 2, Y: s.Height / 2}
}

// Empty returns true if either dimension is not positive
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// ToPixel maps a normalized detector location (origin bottom-left) into
// view coordinates (origin top-left).  Alignment, scoring and rendering must
// all use this mapping.
func ToPixel(loc r2.Vec, size Size) r2.Vec {
	return r2.Vec{
		X: loc.X * size.Width,
		Y: (1 - loc.Y) * size.Height,
	}
}

// ToNormalized is the inverse of ToPixel
func ToNormalized(px r2.Vec, size Size) r2.Vec {
	return r2.Vec{
		X: px.X / size.Width,
		Y: 1 - px.Y/size.Height,
	}
}

// PixelPoint returns the view coordinates of joint j, gated on confidence
func (s Skeleton) PixelPoint(j Joint, size Size) (r2.Vec, bool) {
	p, ok := s.Point(j)
	if !ok {
		return r2.Vec{}, false
	}
	return ToPixel(p.Location, size), true
}
