// Package align computes where the reference pose overlay should be placed so
// that it tracks a body part of the live subject.
//
// Two policies are provided.  A Follower recomputes the overlay center every
// frame so the reference anchor joint sits on the live anchor joint.  A Locker
// captures the offset between live and reference anchor on the first valid
// frame and afterwards translates the overlay by how far the live subject has
// moved relative to that capture.
//
// Both policies fail closed: when a required joint is missing or below the
// confidence threshold the previous center is kept.
package align

import (
	"fmt"

	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Mode selects the alignment policy
type Mode int

const (
	// Locked captures the initial live/reference offset and moves the
	// overlay relative to it
	Locked Mode = iota
	// Following places the reference anchor joint on the live anchor joint
	// every frame
	Following
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Locked:
		return "locked"
	case Following:
		return "following"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode for the given name
func ParseMode(s string) (Mode, error) {
	switch s {
	case "locked", "lock":
		return Locked, nil
	case "following", "follow":
		return Following, nil
	}
	return 0, fmt.Errorf("unknown alignment mode %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// XOffsetSign is the sign applied to the reference joint's horizontal offset
// from its image center when following.  With -1 the overlay's anchor joint
// lands exactly on the live subject's anchor joint for an unmirrored overlay
// drawn at view size.
//
// TODO: confirm the sign with product once mirrored overlays are tested on
// device, earlier builds used +1.
const XOffsetSign = -1.0

// DefaultMovementScale is the factor applied to Locker translations
const DefaultMovementScale = 0.5

// Aligner is an alignment policy
type Aligner interface {
	// Update computes the overlay center for a frame.  updated is false when
	// the frame could not be used and the previous center was kept.
	Update(live, ref skeleton.Skeleton, view skeleton.Size) (center r2.Vec, updated bool)
	// Reset forgets any captured state and centers the overlay in view
	Reset(view skeleton.Size)
	// Center returns the last computed overlay center
	Center() r2.Vec
}

// State is a snapshot of the alignment engine
type State struct {
	AnchorJoint    skeleton.Joint `json:"anchorJoint"`
	Mode           Mode           `json:"mode"`
	CapturedOffset *r2.Vec        `json:"capturedOffset,omitempty"`
	Center         r2.Vec         `json:"center"`
}
