package postprocess

import (
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

/* COCO skeleton keypoints
0: Nose
1: Left Eye
2: Right Eye
3: Left Ear
4: Right Ear
5: Left Shoulder
6: Right Shoulder
7: Left Elbow
8: Right Elbow
9: Left Wrist
10: Right Wrist
11: Left Hip
12: Right Hip
13: Left Knee
14: Right Knee
15: Left Ankle
16: Right Ankle
*/

// COCOKeyPoints is the number of keypoints a COCO trained pose model returns
const COCOKeyPoints = 17

const (
	cocoLeftShoulder  = 5
	cocoRightShoulder = 6
	cocoLeftHip       = 11
	cocoRightHip      = 12
)

// cocoJoints maps the COCO keypoints that exist in the 15 joint skeleton.
// Neck and Root have no COCO keypoint and are derived from shoulder and hip
// midpoints.
var cocoJoints = map[int]skeleton.Joint{
	0:  skeleton.Nose,
	5:  skeleton.LeftShoulder,
	6:  skeleton.RightShoulder,
	7:  skeleton.LeftElbow,
	8:  skeleton.RightElbow,
	9:  skeleton.LeftWrist,
	10: skeleton.RightWrist,
	11: skeleton.LeftHip,
	12: skeleton.RightHip,
	13: skeleton.LeftKnee,
	14: skeleton.RightKnee,
	15: skeleton.LeftAnkle,
	16: skeleton.RightAnkle,
}

// KeyPoint is a single pose keypoint in pixel coordinates, origin top-left
type KeyPoint struct {
	X     float64
	Y     float64
	Score float64
}

// midpoint returns the keypoint halfway between a and b, scored by the less
// confident of the two
func midpoint(a, b KeyPoint) KeyPoint {
	return KeyPoint{
		X:     (a.X + b.X) / 2,
		Y:     (a.Y + b.Y) / 2,
		Score: min(a.Score, b.Score),
	}
}

// ToSkeleton converts COCO keypoints in source image pixels into a Skeleton
// normalized to width and height with the origin at the bottom-left
func ToSkeleton(kps [COCOKeyPoints]KeyPoint, width, height float64) skeleton.Skeleton {

	if width <= 0 || height <= 0 {
		return skeleton.New(nil)
	}

	normalize := func(kp KeyPoint) skeleton.JointPoint {
		return skeleton.JointPoint{
			Location: r2.Vec{
				X: clamp(kp.X/width, 0, 1),
				Y: clamp(1-kp.Y/height, 0, 1),
			},
			Confidence: clamp(kp.Score, 0, 1),
		}
	}

	points := make(map[skeleton.Joint]skeleton.JointPoint, skeleton.JointCount)

	for idx, j := range cocoJoints {
		points[j] = normalize(kps[idx])
	}

	points[skeleton.Neck] = normalize(midpoint(kps[cocoLeftShoulder], kps[cocoRightShoulder]))
	points[skeleton.Root] = normalize(midpoint(kps[cocoLeftHip], kps[cocoRightHip]))

	return skeleton.New(points)
}
