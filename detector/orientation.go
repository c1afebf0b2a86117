package detector

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Orientation describes how image contents must be turned to be upright
type Orientation int

const (
	// Up is an upright image
	Up Orientation = iota
	// Right is an image that needs turning 90 degrees clockwise
	Right
	// Down is an upside down image
	Down
	// Left is an image that needs turning 90 degrees counter clockwise
	Left
)

var orientationNames = [...]string{"up", "right", "down", "left"}

func (o Orientation) String() string {
	if o < Up || o > Left {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// ParseOrientation returns the Orientation with the given name
func ParseOrientation(s string) (Orientation, error) {
	for i, n := range orientationNames {
		if strings.EqualFold(s, n) {
			return Orientation(i), nil
		}
	}
	return Up, fmt.Errorf("unknown orientation %q", s)
}

// Upright writes the upright version of src into dst and reports whether a
// rotation was needed.  When it returns false dst is untouched and src should
// be used as is.
func (o Orientation) Upright(src gocv.Mat, dst *gocv.Mat) bool {

	switch o {
	case Right:
		gocv.Rotate(src, dst, gocv.Rotate90Clockwise)
	case Down:
		gocv.Rotate(src, dst, gocv.Rotate180Clockwise)
	case Left:
		gocv.Rotate(src, dst, gocv.Rotate90CounterClockwise)
	default:
		return false
	}

	return true
}

// DeviceOrientation is the physical orientation of the capturing device
type DeviceOrientation int

const (
	DeviceUnknown DeviceOrientation = iota
	DevicePortrait
	DevicePortraitUpsideDown
	DeviceLandscapeLeft
	DeviceLandscapeRight
	DeviceFaceUp
	DeviceFaceDown
)

// Supported reports whether the live view can run in this orientation.  The
// UI shows a rotate prompt for every other orientation.
func (d DeviceOrientation) Supported() bool {
	switch d {
	case DevicePortrait, DeviceLandscapeLeft, DeviceLandscapeRight:
		return true
	}
	return false
}

// VideoRotationAngle returns the preview rotation in degrees for the device
// orientation
func VideoRotationAngle(d DeviceOrientation) float64 {
	switch d {
	case DevicePortrait:
		return 90
	case DeviceLandscapeLeft:
		return 180
	default:
		return 0
	}
}

// OrientationForAngle maps a preview rotation angle to the Orientation a
// captured frame needs to become upright
func OrientationForAngle(degrees float64) Orientation {
	switch int(degrees) % 360 {
	case 90, -270:
		return Right
	case 180, -180:
		return Down
	case 270, -90:
		return Left
	default:
		return Up
	}
}
