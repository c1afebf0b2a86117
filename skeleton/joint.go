package skeleton

import "fmt"

// Joint identifies a skeletal landmark returned by the pose detector
type Joint int

const (
	Nose Joint = iota
	Neck
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	Root
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// JointCount is the number of joints in a skeleton
const JointCount = 15

var jointNames = [JointCount]string{
	"nose", "neck", "leftShoulder", "rightShoulder", "leftElbow",
	"rightElbow", "leftWrist", "rightWrist", "root", "leftHip",
	"rightHip", "leftKnee", "rightKnee", "leftAnkle", "rightAnkle",
}

// String returns the joint name, eg: "rightWrist"
func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("Joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j is one of the 15 defined joints
func (j Joint) Valid() bool {
	return j >= Nose && j <= RightAnkle
}

// ParseJoint returns the Joint for the given name
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// Joints returns all joints in their defined order
func Joints() []Joint {
	js := make([]Joint, JointCount)
	for i := range js {
		js[i] = Joint(i)
	}
	return js
}

// MarshalText implements encoding.TextMarshaler so joints can be used as
// JSON map keys
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (j *Joint) UnmarshalText(b []byte) error {
	v, err := ParseJoint(string(b))
	if err != nil {
		return err
	}
	*j = v
	return nil
}

// JointClass groups joints that share an indicator style when drawn
type JointClass int

const (
	Body JointClass = iota
	Head
	Hands
	Feet
)

// ClassOf returns the class a joint is styled with
func ClassOf(j Joint) JointClass {
	switch j {
	case Nose:
		return Head
	case LeftWrist, RightWrist:
		return Hands
	case LeftAnkle, RightAnkle:
		return Feet
	}
	return Body
}
