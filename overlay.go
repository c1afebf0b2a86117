package formfit

import (
	"math"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// OverlayState is the user controlled presentation of the reference overlay.
// It does not affect alignment or scoring.
type OverlayState struct {
	Scale  float64 `json:"scale"`
	Mirror bool    `json:"mirror"`
	// Pinned freezes the overlay against drag and pinch gestures
	Pinned bool `json:"pinned"`
	// Drag is the manual offset applied while the overlay is not pinned and
	// not following the live subject
	Drag r2.Vec `json:"drag"`
}

// DefaultOverlay is an unscaled, unmirrored and unpinned overlay
func DefaultOverlay() OverlayState {
	return OverlayState{Scale: 1}
}

// FitScale returns the largest scale at which an image of size img fits in
// view without overflowing either axis
func FitScale(view, img skeleton.Size) float64 {
	if view.Empty() || img.Empty() {
		return 1
	}
	return math.Min(view.Width/img.Width, view.Height/img.Height)
}

// SetScale sets the overlay scale, ignored while pinned or for a non
// positive scale
func (s *Session) SetScale(scale float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlay.Pinned || scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return false
	}

	s.overlay.Scale = scale
	return true
}

// Drag moves the overlay by offset pixels.  It is ignored while pinned or
// following, where the alignment engine owns the position.
func (s *Session) Drag(offset r2.Vec) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlay.Pinned || s.engine.Mode() == align.Following {
		return false
	}

	s.overlay.Drag = offset
	return true
}

// ToggleMirror flips the overlay horizontally and returns the new state
func (s *Session) ToggleMirror() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay.Mirror = !s.overlay.Mirror
	return s.overlay.Mirror
}

// SetPinned pins or unpins the overlay.  Unpinning leaves following mode
// since manual placement and following cannot run together.
func (s *Session) SetPinned(pinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay.Pinned = pinned

	if !pinned && s.engine.Mode() == align.Following {
		s.engine.SetMode(align.Locked)
		s.logger.Debug("overlay unpinned, following disabled")
	}
}

// ResetOverlay restores the default scale and clears the drag offset
func (s *Session) ResetOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay.Scale = 1
	s.overlay.Drag = r2.Vec{}
}

// Overlay returns the current overlay presentation
func (s *Session) Overlay() OverlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}
