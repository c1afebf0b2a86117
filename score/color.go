package score

import (
	"image/color"
	"math"
)

// Color is an RGB color with components in the range [0,1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var (
	// Red is the color of a complete mismatch
	Red = Color{R: 1}
	// Yellow is the color of a 50% match
	Yellow = Color{R: 1, G: 1}
	// Green is the color of a perfect match
	Green = Color{G: 1}
)

// ColorForMatch maps a match percentage onto a red -> yellow -> green ramp.
// Up to 0.5 green rises from 0 to 1 with red held at 1, above 0.5 red falls
// from 1 to 0 with green held at 1.  Blue is always 0.
func ColorForMatch(percentage float64) Color {
	p := clamp01(percentage)

	if p <= 0.5 {
		return Color{R: 1.0, G: 2 * p}
	}

	return Color{R: 2.0 - 2*p, G: 1.0}
}

// RGBA converts the color to an 8 bit opaque color.RGBA
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: 255,
	}
}

// Lerp returns the color t of the way from c to o
func (c Color) Lerp(o Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
