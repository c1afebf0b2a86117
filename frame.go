package formfit

import (
	"time"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/score"
	"github.com/formfitness/go-formfit/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is the result of processing one captured frame.  A published Frame
// is never modified.
type Frame struct {
	// Seq increases by one for every published frame of a session
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"time"`
	Exercise string    `json:"exercise"`
	// View is the size of the view the overlay is drawn in
	View skeleton.Size     `json:"view"`
	Live skeleton.Skeleton `json:"live"`
	// HasReference is false until the exercise's reference pose has loaded,
	// the overlay is not drawn until then
	HasReference  bool              `json:"hasReference"`
	Reference     skeleton.Skeleton `json:"reference"`
	ReferenceSize skeleton.Size     `json:"referenceSize"`
	// Aligned is true when alignment updated the center on this frame
	Aligned bool `json:"aligned"`
	// Rated is true when Score holds the match of this frame
	Rated     bool        `json:"rated"`
	Alignment align.State `json:"alignment"`
	// Center is where the overlay is drawn, the alignment center plus any
	// manual drag offset
	Center  r2.Vec       `json:"center"`
	Overlay OverlayState `json:"overlay"`
	Score   score.Frame  `json:"score"`
}

// JointColor returns the match color of joint j, red when it is not scored
func (f *Frame) JointColor(j skeleton.Joint) score.Color {
	if f == nil || !f.Rated {
		return score.Red
	}
	return f.Score.Joint(j).Color
}

// LimbGradient returns the endpoint colors of the limb a-b
func (f *Frame) LimbGradient(a, b skeleton.Joint) (score.Color, score.Color) {
	if f == nil || !f.Rated {
		return score.Red, score.Red
	}
	return f.Score.Gradient(a, b)
}

// Publisher receives every published frame.  Publish is called on the
// processing goroutine and must not block.
type Publisher interface {
	Publish(f *Frame)
}

// PublisherFunc adapts a function to the Publisher interface
type PublisherFunc func(f *Frame)

// Publish calls p(f)
func (p PublisherFunc) Publish(f *Frame) {
	p(f)
}
