package formfit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/config"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/reference"
	"github.com/formfitness/go-formfit/score"
	"github.com/formfitness/go-formfit/skeleton"
	"github.com/formfitness/go-formfit/tracker"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// References loads the reference pose of an exercise
type References interface {
	Load(ctx context.Context, name string) (*reference.ReferencePose, error)
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithPublisher adds a publisher of processed frames
func WithPublisher(p Publisher) Option {
	return func(s *Session) {
		s.publishers = append(s.publishers, p)
	}
}

// WithViewSize sets the initial view size
func WithViewSize(view skeleton.Size) Option {
	return func(s *Session) {
		s.view = view
	}
}

// Session runs the per frame pipeline for one live view: detect the live
// pose, align the reference overlay and score the match.  Frames are
// expected one at a time from a capture loop, the query and control methods
// may be called from any goroutine.
type Session struct {
	refs       References
	detector   detector.Detector
	logger     *slog.Logger
	scoring    config.ScoringConfig
	fitToView  bool
	publishers []Publisher

	mu       sync.Mutex
	engine   *align.Engine
	smoother *tracker.Smoother
	view     skeleton.Size
	exercise string
	ref      *reference.ReferencePose
	overlay  OverlayState
	seq      uint64

	latest atomic.Pointer[Frame]
}

// NewSession returns a session with no exercise selected
func NewSession(cfg config.Config, refs References, det detector.Detector, opts ...Option) *Session {
	s := &Session{
		refs:      refs,
		detector:  det,
		scoring:   cfg.Scoring,
		fitToView: cfg.Overlay.FitToView,
		engine:    align.NewEngine(cfg.Alignment),
		overlay: OverlayState{
			Scale:  cfg.Overlay.Scale,
			Mirror: cfg.Overlay.Mirror,
		},
	}

	if s.overlay.Scale <= 0 {
		s.overlay.Scale = 1
	}

	if cfg.Smoothing.Enabled {
		s.smoother = tracker.NewSmoother(cfg.Smoothing)
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = log.Or(s.logger).With("component", "session")
	s.engine.Reset(s.view)

	return s
}

// AddPublisher adds a publisher of processed frames
func (s *Session) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// SelectExercise switches to the exercise using reference image name and
// resets alignment.  When the reference pose cannot be loaded the error is
// returned and no overlay is produced until a later selection succeeds.
func (s *Session) SelectExercise(ctx context.Context, name string) error {

	pose, err := s.refs.Load(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.exercise = name
	s.ref = pose
	s.engine.Reset(s.view)
	s.overlay.Drag = r2.Vec{}

	if err != nil {
		s.ref = nil
		s.logger.Error("reference pose unavailable", "exercise", name, "error", err)
		return fmt.Errorf("select exercise %s: %w", name, err)
	}

	if s.fitToView {
		s.overlay.Scale = FitScale(s.view, pose.Size)
	}

	s.logger.Info("exercise selected", "exercise", name, "mode", s.engine.Mode(),
		"anchor", s.engine.Anchor())

	return nil
}

// Exercise returns the selected exercise and its reference pose, nil until
// one has loaded
func (s *Session) Exercise() (string, *reference.ReferencePose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise, s.ref
}

// SetViewSize sets the size of the view the overlay is drawn in.  A change
// of size resets alignment.
func (s *Session) SetViewSize(view skeleton.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setViewSize(view)
}

func (s *Session) setViewSize(view skeleton.Size) {

	if view == s.view {
		return
	}

	s.view = view
	s.engine.Reset(view)

	if s.smoother != nil {
		s.smoother.Reset()
	}

	if s.fitToView && s.ref != nil {
		s.overlay.Scale = FitScale(view, s.ref.Size)
	}

	s.logger.Debug("view size changed", "width", view.Width, "height", view.Height)
}

// ViewSize returns the view size
func (s *Session) ViewSize() skeleton.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetAlignmentMode switches the alignment policy
func (s *Session) SetAlignmentMode(m align.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SetMode(m)

	if m == align.Following {
		s.overlay.Drag = r2.Vec{}
	}
}

// AlignmentMode returns the active alignment policy
func (s *Session) AlignmentMode() align.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Mode()
}

// SetAnchorJoint changes the joint the overlay is aligned on
func (s *Session) SetAnchorJoint(j skeleton.Joint) error {

	if !j.Valid() {
		return fmt.Errorf("invalid anchor joint %v", j)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SetAnchor(j)
	return nil
}

// ResetInitialPoseOffset makes the locked policy recapture its offset on the
// next usable frame
func (s *Session) ResetInitialPoseOffset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ResetInitialPoseOffset()
}

// ProcessFrame detects the live pose in img and processes it.  When
// detection fails the frame is skipped, the error is returned and the
// previously published frame stays current.
func (s *Session) ProcessFrame(ctx context.Context, img gocv.Mat, o detector.Orientation) (*Frame, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// without a view size the overlay is drawn over the upright frame
	if s.ViewSize().Empty() {
		w, h := img.Cols(), img.Rows()
		if o == detector.Right || o == detector.Left {
			w, h = h, w
		}
		s.SetViewSize(skeleton.Size{Width: float64(w), Height: float64(h)})
	}

	live, err := s.detector.Detect(img, o)

	if err != nil {
		s.logger.Debug("frame skipped", "error", err)
		return nil, err
	}

	return s.ProcessSkeleton(live), nil
}

// ProcessSkeleton aligns and scores a detected live skeleton and publishes
// the result
func (s *Session) ProcessSkeleton(live skeleton.Skeleton) *Frame {

	s.mu.Lock()

	if s.smoother != nil {
		live = s.smoother.Smooth(live)
	}

	s.seq++

	f := &Frame{
		Seq:      s.seq,
		Time:     time.Now(),
		Exercise: s.exercise,
		View:     s.view,
		Live:     live,
		Overlay:  s.overlay,
	}

	if s.ref != nil {
		center, ok := s.engine.Update(live, s.ref.Skeleton)

		f.HasReference = true
		f.Reference = s.ref.Skeleton
		f.ReferenceSize = s.ref.Size
		f.Aligned = ok

		if s.scoring.Enabled && !s.view.Empty() {
			f.Score = score.Score(live, s.ref.Skeleton, center, s.view)
			f.Rated = true
		}
	}

	f.Alignment = s.engine.State()
	f.Center = s.overlayCenter()

	s.latest.Store(f)
	pubs := s.publishers

	s.mu.Unlock()

	for _, p := range pubs {
		p.Publish(f)
	}

	return f
}

// overlayCenter returns the alignment center plus the drag offset when the
// overlay is placed manually
func (s *Session) overlayCenter() r2.Vec {
	c := s.engine.Center()

	if s.engine.Mode() != align.Following {
		c = r2.Add(c, s.overlay.Drag)
	}

	return c
}

// Latest returns the most recently published frame, nil before the first
func (s *Session) Latest() *Frame {
	return s.latest.Load()
}

// CurrentAlignment returns the overlay center in view pixels
func (s *Session) CurrentAlignment() r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayCenter()
}

// AlignmentState returns a snapshot of the alignment engine
func (s *Session) AlignmentState() align.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// CurrentScale returns the overlay scale
func (s *Session) CurrentScale() float64 {
	return s.Overlay().Scale
}

// CurrentMirror returns whether the overlay is mirrored
func (s *Session) CurrentMirror() bool {
	return s.Overlay().Mirror
}

// JointMatchColor returns the match color of joint j in the latest frame
func (s *Session) JointMatchColor(j skeleton.Joint) score.Color {
	return s.Latest().JointColor(j)
}

// LimbGradient returns the endpoint colors of limb a-b in the latest frame
func (s *Session) LimbGradient(a, b skeleton.Joint) (score.Color, score.Color) {
	return s.Latest().LimbGradient(a, b)
}
