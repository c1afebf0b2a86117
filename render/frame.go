package render

import (
	"fmt"
	"image"

	formfit "github.com/formfitness/go-formfit"
	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
)

// FrameStyle holds the styles used to draw a processed frame
type FrameStyle struct {
	Live      Style
	Rated     Style
	Reference Style
	Font      Font
	// ShowOverall draws the overall match label on rated frames
	ShowOverall bool
}

// DefaultFrameStyle returns the standard frame styles with rated limbs split
// into the given number of gradient segments
func DefaultFrameStyle(segments int) FrameStyle {
	return FrameStyle{
		Live:        LiveStyle(),
		Rated:       RatedStyle(segments),
		Reference:   ReferenceStyle(),
		Font:        DefaultFont(),
		ShowOverall: true,
	}
}

// Frame draws the reference overlay at the alignment center and the live
// skeleton over img.  A frame without a view size is drawn at the image
// size.
func Frame(img *gocv.Mat, f *formfit.Frame, fs FrameStyle) {

	if f == nil {
		return
	}

	view := f.View
	if view.Empty() {
		view = skeleton.Size{Width: float64(img.Cols()), Height: float64(img.Rows())}
	}

	if f.HasReference {
		Skeleton(img, f.Reference,
			OverlayPlacement(view, f.Center, f.Overlay.Scale, f.Overlay.Mirror), fs.Reference, nil)
	}

	if !f.Rated {
		Skeleton(img, f.Live, ViewPlacement(view), fs.Live, nil)
		return
	}

	Skeleton(img, f.Live, ViewPlacement(view), fs.Rated, f.JointColor)

	if fs.ShowOverall {
		ScoreLabel(img, f.Score.Overall, fs.Font)
	}
}

// ScoreLabel draws the overall match percentage across the top of img
func ScoreLabel(img *gocv.Mat, overall float64, font Font) {

	text := fmt.Sprintf("match %.0f%%", overall*100)
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	rect := labelRect(img.Cols(), textSize, font)

	// draw box text gets written on
	gocv.Rectangle(img, rect, font.Background, -1)

	// Draw the label over box
	gocv.PutTextWithParams(img, text,
		image.Pt(rect.Min.X+font.LeftPad, rect.Max.Y-font.BottomPad),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}

// labelRect positions the label box at the top of an image of the given
// width
func labelRect(width int, textSize image.Point, font Font) image.Rectangle {

	w := textSize.X + font.LeftPad + font.RightPad
	h := textSize.Y + font.TopPad + font.BottomPad

	var left int

	switch font.Alignment {
	case Center:
		left = (width - w) / 2

	case Right:
		left = width - w

	case Left:
		fallthrough
	default:
		left = 0
	}

	return image.Rect(left, 0, left+w, h)
}
