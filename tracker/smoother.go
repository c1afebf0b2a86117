// Package tracker follows live joints from frame to frame and smooths their
// detected locations with a Kalman filter per joint.
package tracker

import (
	"fmt"

	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config controls live joint smoothing
type Config struct {
	Enabled bool `yaml:"enabled"`
	// PositionWeight is the expected detection noise in normalized units
	PositionWeight float64 `yaml:"position_weight"`
	// VelocityWeight is the expected change of joint velocity per frame
	VelocityWeight float64 `yaml:"velocity_weight"`
}

// DefaultConfig returns smoothing disabled with weights suited to a subject
// filling most of the view
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		PositionWeight: 0.02,
		VelocityWeight: 0.005,
	}
}

// Validate checks the weights of an enabled config
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.PositionWeight <= 0 || c.VelocityWeight <= 0 {
		return fmt.Errorf("smoothing weights must be positive, got %g and %g",
			c.PositionWeight, c.VelocityWeight)
	}
	return nil
}

// Smoother holds a track per joint.  A joint that is missing or below the
// confidence threshold is passed through unchanged and its track dropped,
// so gating is unaffected by smoothing.  Not safe for concurrent use.
type Smoother struct {
	kf     *KalmanFilter
	tracks [skeleton.JointCount]*Track
}

// NewSmoother returns a smoother with no tracks
func NewSmoother(cfg Config) *Smoother {
	return &Smoother{
		kf: NewKalmanFilter(cfg.PositionWeight, cfg.VelocityWeight),
	}
}

// Smooth returns sk with the location of every usable joint replaced by
// its filtered location.  Confidences are not changed.
func (s *Smoother) Smooth(sk skeleton.Skeleton) skeleton.Skeleton {

	points := sk.Map()

	for _, j := range skeleton.Joints() {
		p, ok := sk.Point(j)

		if !ok {
			s.tracks[j] = nil
			continue
		}

		t := s.tracks[j]

		if t == nil {
			s.tracks[j] = s.kf.Initiate(p.Location)
			continue
		}

		s.kf.Predict(t)

		if err := s.kf.Update(t, p.Location); err != nil {
			// restart the track from this detection
			s.tracks[j] = s.kf.Initiate(p.Location)
			continue
		}

		p.Location = clampUnit(t.Position())
		points[j] = p
	}

	return skeleton.New(points)
}

// Tracking returns the number of joints with a live track
func (s *Smoother) Tracking() int {
	n := 0
	for _, t := range s.tracks {
		if t != nil {
			n++
		}
	}
	return n
}

// Reset drops every track
func (s *Smoother) Reset() {
	s.tracks = [skeleton.JointCount]*Track{}
}

func clampUnit(v r2.Vec) r2.Vec {
	return r2.Vec{X: min(max(v.X, 0), 1), Y: min(max(v.Y, 0), 1)}
}
