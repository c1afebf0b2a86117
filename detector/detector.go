// Package detector finds a single person's pose skeleton in an image.
//
// A Detector takes a BGR gocv.Mat and the orientation of its contents and
// returns a skeleton.Skeleton normalized to the upright image with the origin
// at the bottom-left.  The ONNX implementation runs a YOLOv8 pose model
// through OpenCV's DNN module, a Pool shares several detectors between
// goroutines.
package detector

import (
	"errors"

	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
)

var (
	// ErrNoPose is returned when the image contains no person
	ErrNoPose = errors.New("no pose detected")
	// ErrEmptyImage is returned when the image has no pixels
	ErrEmptyImage = errors.New("empty image")
	// ErrClosed is returned when using a detector after Close
	ErrClosed = errors.New("detector closed")
)

// Detector finds the pose of the most prominent person in an image
type Detector interface {
	// Detect returns the skeleton found in img.  The Mat is not modified
	// and remains owned by the caller.
	Detect(img gocv.Mat, o Orientation) (skeleton.Skeleton, error)
	// Close releases the detector's resources
	Close() error
}

// Func adapts a function to the Detector interface
type Func func(img gocv.Mat, o Orientation) (skeleton.Skeleton, error)

// Detect calls f
func (f Func) Detect(img gocv.Mat, o Orientation) (skeleton.Skeleton, error) {
	return f(img, o)
}

// Close does nothing
func (f Func) Close() error {
	return nil
}
