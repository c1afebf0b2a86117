package postprocess

import (
	"errors"
	"fmt"

	"github.com/formfitness/go-formfit/postprocess/result"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrOutputShape is returned when the model output does not have the layout
// of a YOLOv8 pose model
var ErrOutputShape = errors.New("unexpected pose model output shape")

// YOLOv8Pose defines the struct for YOLOv8 pose model post processing of an
// ONNX output tensor shaped [1, 5+KeyPointsNumber*3, anchors]
type YOLOv8Pose struct {
	// Params are the Model configuration parameters
	Params YOLOv8PoseParams
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// YOLOv8PoseParams defines the struct containing the YOLOv8 parameters to use
// for post processing operations
type YOLOv8PoseParams struct {
	// BoxThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing
	BoxThreshold float64 `yaml:"box_threshold"`
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float64 `yaml:"nms_threshold"`
	// MaxObjectNumber is the maximum number of people detected that can be
	// returned
	MaxObjectNumber int `yaml:"max_objects"`
	// KeyPointsNumber is the number of COCO keypoints representing different
	// parts of the body the pose model is trained on
	KeyPointsNumber int `yaml:"keypoints"`
}

// YOLOv8PoseCOCOParams returns an instance of YOLOv8PoseParams configured with
// default values for a Model trained on the COCO dataset featuring:
// - Box Threshold: 0.5
// - NMS Threshold: 0.4
// - Maximum Object Number: 64
// - KeyPoints Number: 17
func YOLOv8PoseCOCOParams() YOLOv8PoseParams {
	return YOLOv8PoseParams{
		BoxThreshold:    0.5,
		NMSThreshold:    0.4,
		MaxObjectNumber: 64,
		KeyPointsNumber: COCOKeyPoints,
	}
}

// NewYOLOv8Pose returns an instance of the YOLOv8Pose post processor
func NewYOLOv8Pose(p YOLOv8PoseParams) *YOLOv8Pose {
	return &YOLOv8Pose{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// Box is a bounding box in pixel coordinates
type Box struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Area returns the area of the box
func (b Box) Area() float64 {
	return (b.Right - b.Left) * (b.Bottom - b.Top)
}

// PoseResult is a single detected person
type PoseResult struct {
	ID        int64
	Box       Box
	Score     float64
	KeyPoints [COCOKeyPoints]KeyPoint
}

// Restorer maps a point in model input space back to the source image
type Restorer interface {
	Restore(x, y float64) r2.Vec
}

// Decode takes the flattened model output with the given number of channels
// per anchor and returns the people found, highest score first.  Coordinates
// are in model input space.
func (y *YOLOv8Pose) Decode(data []float32, channels, anchors int) ([]PoseResult, error) {

	want := 5 + y.Params.KeyPointsNumber*3

	if y.Params.KeyPointsNumber != COCOKeyPoints || channels != want {
		return nil, fmt.Errorf("%w: %d channels, want %d", ErrOutputShape, channels, want)
	}

	if anchors <= 0 || len(data) < channels*anchors {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrOutputShape, len(data), channels, anchors)
	}

	// tensor is channel major, value c of anchor a is at c*anchors+a
	at := func(c, a int) float64 {
		return float64(data[c*anchors+a])
	}

	var (
		boxes   []Box
		scores  []float64
		anchorI []int
	)

	for a := 0; a < anchors; a++ {
		score := at(4, a)

		if score < y.Params.BoxThreshold {
			continue
		}

		cx, cy, w, h := at(0, a), at(1, a), at(2, a), at(3, a)

		boxes = append(boxes, Box{
			Left:   cx - w/2,
			Top:    cy - h/2,
			Right:  cx + w/2,
			Bottom: cy + h/2,
		})
		scores = append(scores, score)
		anchorI = append(anchorI, a)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	order := sortIndicesByScore(scores)
	nms(boxes, order, y.Params.NMSThreshold)

	out := make([]PoseResult, 0, len(order))

	for _, n := range order {
		if n == -1 {
			continue
		}

		if y.Params.MaxObjectNumber > 0 && len(out) >= y.Params.MaxObjectNumber {
			break
		}

		res := PoseResult{
			ID:    y.idGen.GetNext(),
			Box:   boxes[n],
			Score: scores[n],
		}

		for k := 0; k < COCOKeyPoints; k++ {
			base := 5 + k*3
			res.KeyPoints[k] = KeyPoint{
				X:     at(base, anchorI[n]),
				Y:     at(base+1, anchorI[n]),
				Score: at(base+2, anchorI[n]),
			}
		}

		out = append(out, res)
	}

	return out, nil
}

// Restore maps the box and keypoints of every result from model input space
// back to source image pixels
func Restore(results []PoseResult, r Restorer) {

	for i := range results {
		tl := r.Restore(results[i].Box.Left, results[i].Box.Top)
		br := r.Restore(results[i].Box.Right, results[i].Box.Bottom)
		results[i].Box = Box{Left: tl.X, Top: tl.Y, Right: br.X, Bottom: br.Y}

		for k := range results[i].KeyPoints {
			kp := &results[i].KeyPoints[k]
			p := r.Restore(kp.X, kp.Y)
			kp.X, kp.Y = p.X, p.Y
		}
	}
}

// Best returns the most confident person, results are expected in the order
// Decode returns them
func Best(results []PoseResult) (PoseResult, bool) {

	if len(results) == 0 {
		return PoseResult{}, false
	}

	best := results[0]

	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}

	return best, true
}
