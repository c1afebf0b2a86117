package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the label across the top of the image
	Alignment Alignment
	// Background is the color of the box behind the text
	Background color.RGBA
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:       gocv.FontHersheySimplex,
		Scale:      1.0,
		Color:      White,
		Thickness:  2,
		LineType:   gocv.LineAA,
		LeftPad:    8,
		RightPad:   8,
		TopPad:     8,
		BottomPad:  10,
		Alignment:  Left,
		Background: Black,
	}
}
