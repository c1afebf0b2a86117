/*
Package skeleton defines the 15 joint body model shared by alignment, scoring
and rendering.

Joint locations are normalized to the image width/height with the origin at
the bottom-left, as produced by the pose detector.  A point with confidence
at or below ConfidenceThreshold is treated as absent by every consumer, which
Skeleton.Point enforces.
*/
package skeleton

import (
	"encoding/json"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConfidenceThreshold is the detector confidence a joint must exceed to be
// usable
const ConfidenceThreshold = 0.1

// JointPoint is a single detected joint location
type JointPoint struct {
	// Location is the normalized (x,y) position, origin bottom-left
	Location r2.Vec `json:"location"`
	// Confidence is the detector certainty in the range [0,1]
	Confidence float64 `json:"confidence"`
}

// Usable returns true if the point confidence is above ConfidenceThreshold
func (p JointPoint) Usable() bool {
	return p.Confidence > ConfidenceThreshold
}

// Skeleton is the set of joints detected for one frame or image.  A Skeleton
// is a value and cannot be modified once created.
type Skeleton struct {
	points  [JointCount]JointPoint
	present [JointCount]bool
}

// New returns a Skeleton holding the given joints.  Invalid joints are
// ignored.
func New(points map[Joint]JointPoint) Skeleton {
	var s Skeleton
	for j, p := range points {
		if !j.Valid() {
			continue
		}
		s.points[j] = p
		s.present[j] = true
	}
	return s
}

// Point returns the joint location if the detector returned it with a
// confidence above ConfidenceThreshold
func (s Skeleton) Point(j Joint) (JointPoint, bool) {
	p, ok := s.Raw(j)
	if !ok || !p.Usable() {
		return JointPoint{}, false
	}
	return p, true
}

// Raw returns the joint exactly as the detector produced it, without
// confidence gating
func (s Skeleton) Raw(j Joint) (JointPoint, bool) {
	if !j.Valid() || !s.present[j] {
		return JointPoint{}, false
	}
	return s.points[j], true
}

// Len returns the number of joints returned by the detector
func (s Skeleton) Len() int {
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Empty returns true if the skeleton has no joints at all
func (s Skeleton) Empty() bool {
	return s.Len() == 0
}

// Usable returns the number of joints that pass confidence gating
func (s Skeleton) Usable() int {
	n := 0
	for j := range s.points {
		if _, ok := s.Point(Joint(j)); ok {
			n++
		}
	}
	return n
}

// Map returns a copy of the raw joints keyed by Joint
func (s Skeleton) Map() map[Joint]JointPoint {
	m := make(map[Joint]JointPoint, s.Len())
	for j := range s.points {
		if s.present[j] {
			m[Joint(j)] = s.points[j]
		}
	}
	return m
}

// MarshalJSON encodes the raw joints as an object keyed by joint name
func (s Skeleton) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON decodes an object keyed by joint name
func (s *Skeleton) UnmarshalJSON(b []byte) error {
	var m map[Joint]JointPoint
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = New(m)
	return nil
}
