// Package reference loads and caches the pose of each exercise's reference
// image.
//
// A Repository is built once by the application and shared.  Entries are
// added the first time an exercise is needed and are never changed or
// evicted, so a *ReferencePose handed out may be read from any goroutine.
package reference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/preprocess"
	"github.com/formfitness/go-formfit/skeleton"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrImageNotFound is returned when no usable image exists for a name
	ErrImageNotFound = errors.New("reference image not found")
	// ErrNoPoseDetected is returned when the reference image holds no pose
	ErrNoPoseDetected = errors.New("no pose detected in reference image")
)

// ReferencePose is the target pose of an exercise
type ReferencePose struct {
	Name     string
	Image    image.Image
	Size     skeleton.Size
	Skeleton skeleton.Skeleton
	LoadedAt time.Time
}

// Repository caches reference poses by exercise name
type Repository struct {
	provider ImageProvider
	detector detector.Detector
	logger   *slog.Logger

	mu    sync.RWMutex
	poses map[string]*ReferencePose
	group singleflight.Group
}

// NewRepository returns an empty repository loading images from provider and
// detecting poses with det
func NewRepository(provider ImageProvider, det detector.Detector, logger *slog.Logger) *Repository {
	return &Repository{
		provider: provider,
		detector: det,
		logger:   log.Or(logger).With("component", "reference"),
		poses:    make(map[string]*ReferencePose),
	}
}

// Get returns the cached pose for name
func (r *Repository) Get(name string) (*ReferencePose, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.poses[name]
	return p, ok
}

// Load returns the pose for name, detecting it on first use.  Concurrent
// loads of one name share a single detection.  Failures are not cached.
func (r *Repository) Load(ctx context.Context, name string) (*ReferencePose, error) {

	if p, ok := r.Get(name); ok {
		return p, nil
	}

	ch := r.group.DoChan(name, func() (any, error) {
		return r.load(name)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ReferencePose), nil
	}
}

// load runs detection for name and caches the result
func (r *Repository) load(name string) (*ReferencePose, error) {

	// another caller may have finished between Get and DoChan
	if p, ok := r.Get(name); ok {
		return p, nil
	}

	start := time.Now()

	img, err := r.provider.LoadImage(name)

	if err != nil {
		r.logger.Warn("reference image unavailable", "exercise", name, "error", err)

		if errors.Is(err, ErrImageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, name, err)
	}

	buf, err := preprocess.NewPixelBuffer(img)

	if err != nil {
		r.logger.Warn("reference image conversion failed", "exercise", name, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, name, err)
	}

	mat, err := buf.ToMat()

	if err != nil {
		r.logger.Warn("reference image conversion failed", "exercise", name, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, name, err)
	}
	defer mat.Close()

	sk, err := r.detector.Detect(mat, detector.Up)

	if err == nil && sk.Empty() {
		err = detector.ErrNoPose
	}

	if err != nil {
		r.logger.Warn("no pose in reference image", "exercise", name, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrNoPoseDetected, name, err)
	}

	pose := &ReferencePose{
		Name:     name,
		Image:    img,
		Size:     skeleton.Size{Width: float64(buf.Width), Height: float64(buf.Height)},
		Skeleton: sk,
		LoadedAt: time.Now(),
	}

	r.mu.Lock()
	r.poses[name] = pose
	r.mu.Unlock()

	r.logger.Info("reference pose loaded", "exercise", name,
		"joints", sk.Usable(), "took", time.Since(start))

	return pose, nil
}

// Preload loads every name, at most limit at a time, and returns the joined
// errors of the names that failed
func (r *Repository) Preload(ctx context.Context, limit int, names ...string) error {

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, name := range names {
		g.Go(func() error {
			if _, err := r.Load(ctx, name); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}

// Names returns the names of the cached poses in sorted order
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.poses))
	for n := range r.poses {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}
