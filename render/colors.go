package render

import (
	"image/color"

	"github.com/formfitness/go-formfit/skeleton"
)

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}

	// joint indicator colors, bright cyan for the head shading towards blue
	// for the feet
	HeadColor = color.RGBA{R: 3, G: 240, B: 252, A: 255}
	HandColor = color.RGBA{R: 3, G: 180, B: 252, A: 255}
	FeetColor = color.RGBA{R: 3, G: 140, B: 252, A: 255}
)

// JointStyle is the indicator drawn on joints of one class.  A zero Radius
// draws no indicator.
type JointStyle struct {
	Radius int
	Color  color.RGBA
}

// Style defines how a skeleton is drawn
type Style struct {
	// LineColor is used for limbs when no match colors are given
	LineColor     color.RGBA
	LineThickness int
	// Joints holds the indicator style of each joint class
	Joints [4]JointStyle
	// GradientSegments is the number of pieces a limb is split into when its
	// ends are drawn in different colors
	GradientSegments int
	// RateIndicators colors joint indicators by match instead of by class
	RateIndicators bool
}

// Joint returns the indicator style for j
func (s Style) Joint(j skeleton.Joint) JointStyle {
	return s.Joints[skeleton.ClassOf(j)]
}

// indicators are the head, hand and feet markers shared by every preset
func indicators() [4]JointStyle {
	var js [4]JointStyle
	js[skeleton.Head] = JointStyle{Radius: 40, Color: HeadColor}
	js[skeleton.Hands] = JointStyle{Radius: 20, Color: HandColor}
	js[skeleton.Feet] = JointStyle{Radius: 20, Color: FeetColor}
	return js
}

// LiveStyle draws the live subject with thin green limbs
func LiveStyle() Style {
	return Style{
		LineColor:        Green,
		LineThickness:    3,
		Joints:           indicators(),
		GradientSegments: 1,
	}
}

// ReferenceStyle draws the reference overlay with thick blue limbs
func ReferenceStyle() Style {
	return Style{
		LineColor:        Blue,
		LineThickness:    10,
		Joints:           indicators(),
		GradientSegments: 1,
	}
}

// RatedStyle draws the live subject with limbs and indicators colored by
// how well each joint matches the reference
func RatedStyle(segments int) Style {
	if segments < 1 {
		segments = 1
	}

	return Style{
		LineColor:        Green,
		LineThickness:    6,
		Joints:           indicators(),
		GradientSegments: segments,
		RateIndicators:   true,
	}
}
