package skeleton

// Limb is a drawn segment connecting two joints
type Limb struct {
	A, B Joint
}

// LimbCount is the number of limbs in a skeleton
const LimbCount = 14

// Limbs defines the fixed limb connectivity used by drawing, validity checks
// and scoring.  Order is significant for rendering.
var Limbs = [LimbCount]Limb{
	{Nose, Neck},
	{Neck, LeftShoulder},
	{Neck, RightShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{Neck, Root},
	{Root, LeftHip},
	{Root, RightHip},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
}

// Touches returns true if the limb has j as one of its endpoints
func (l Limb) Touches(j Joint) bool {
	return l.A == j || l.B == j
}

// VisibleLimbs returns the limbs of s whose endpoints both pass confidence
// gating
func VisibleLimbs(s Skeleton) []Limb {
	visible := make([]Limb, 0, len(Limbs))
	for _, l := range Limbs {
		if _, ok := s.Point(l.A); !ok {
			continue
		}
		if _, ok := s.Point(l.B); !ok {
			continue
		}
		visible = append(visible, l)
	}
	return visible
}

// Valid returns true if at least one limb of s can be drawn
func Valid(s Skeleton) bool {
	return len(VisibleLimbs(s)) > 0
}
