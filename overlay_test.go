package formfit

import (
	"context"
	"testing"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/config"
	"github.com/formfitness/go-formfit/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestFitScale(t *testing.T) {
	tests := []struct {
		view, img skeleton.Size
		want      float64
	}{
		{skeleton.Size{Width: 1000, Height: 2000}, skeleton.Size{Width: 500, Height: 500}, 2},
		{skeleton.Size{Width: 1920, Height: 1080}, skeleton.Size{Width: 960, Height: 1080}, 1},
		{skeleton.Size{Width: 300, Height: 300}, skeleton.Size{Width: 600, Height: 1200}, 0.25},
		{skeleton.Size{}, skeleton.Size{Width: 10, Height: 10}, 1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FitScale(tc.view, tc.img), "%v in %v", tc.img, tc.view)
	}
}

func TestOverlayDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Overlay.Mirror = true
	cfg.Overlay.Scale = 1.5

	s := newTestSession(t, cfg, nil)
	assert.Equal(t, 1.5, s.CurrentScale())
	assert.True(t, s.CurrentMirror())

	assert.False(t, s.ToggleMirror())
	assert.False(t, s.CurrentMirror())
	assert.Equal(t, OverlayState{Scale: 1}, DefaultOverlay())
}

func TestOverlayDrag(t *testing.T) {
	s := newTestSession(t, config.Default(), nil)
	require.NoError(t, s.SelectExercise(context.Background(), "warrior-1"))

	assert.True(t, s.Drag(r2.Vec{X: 30, Y: -20}))
	assert.Equal(t, r2.Vec{X: 530, Y: 980}, s.CurrentAlignment())

	f := s.ProcessSkeleton(refSkeleton)
	assert.Equal(t, r2.Vec{X: 530, Y: 980}, f.Center)
	assert.Equal(t, view.Center(), f.Alignment.Center)
	// scoring uses the alignment center only
	assert.Equal(t, 1.0, f.Score.Overall)

	s.SetPinned(true)
	assert.False(t, s.Drag(r2.Vec{X: 1}))
	assert.False(t, s.SetScale(3))
	assert.Equal(t, r2.Vec{X: 30, Y: -20}, s.Overlay().Drag)

	s.SetPinned(false)
	assert.True(t, s.SetScale(3))
	assert.False(t, s.SetScale(0))
	assert.Equal(t, 3.0, s.CurrentScale())

	s.ResetOverlay()
	assert.Equal(t, 1.0, s.CurrentScale())
	assert.Equal(t, view.Center(), s.CurrentAlignment())
}

func TestOverlayFollowingIgnoresDrag(t *testing.T) {
	s := newTestSession(t, config.FollowConfig(), nil)

	assert.False(t, s.Drag(r2.Vec{X: 30}))

	s.SetAlignmentMode(align.Locked)
	assert.True(t, s.Drag(r2.Vec{X: 30}))

	// following clears the manual offset
	s.SetAlignmentMode(align.Following)
	assert.Equal(t, r2.Vec{}, s.Overlay().Drag)

	// unpinning leaves following
	s.SetPinned(true)
	assert.Equal(t, align.Following, s.AlignmentMode())
	s.SetPinned(false)
	assert.Equal(t, align.Locked, s.AlignmentMode())
}

func TestOverlayFitToView(t *testing.T) {
	cfg := config.Default()
	cfg.Overlay.FitToView = true

	s := newTestSession(t, cfg, nil)
	require.NoError(t, s.SelectExercise(context.Background(), "warrior-1"))

	// 500x500 reference in a 1000x2000 view
	assert.Equal(t, 2.0, s.CurrentScale())

	s.SetViewSize(skeleton.Size{Width: 250, Height: 1000})
	assert.Equal(t, 0.5, s.CurrentScale())
}
