package reference

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	return img
}

var wristPose = skeleton.New(map[skeleton.Joint]skeleton.JointPoint{
	skeleton.RightWrist: {Location: r2.Vec{X: 0.7, Y: 0.6}, Confidence: 0.9},
})

// countingDetector returns pose for every call after release is closed
type countingDetector struct {
	pose    skeleton.Skeleton
	err     error
	calls   atomic.Int32
	release chan struct{}
	size    image.Point
}

func (d *countingDetector) Detect(img gocv.Mat, o detector.Orientation) (skeleton.Skeleton, error) {
	d.calls.Add(1)
	d.size = image.Pt(img.Cols(), img.Rows())

	if d.release != nil {
		<-d.release
	}

	return d.pose, d.err
}

func (d *countingDetector) Close() error { return nil }

func TestLoadCaches(t *testing.T) {
	det := &countingDetector{pose: wristPose}
	repo := NewRepository(NewMapProvider(map[string]image.Image{
		"squats": testImage(30, 40),
	}), det, log.Nop())

	_, ok := repo.Get("squats")
	assert.False(t, ok)

	p, err := repo.Load(context.Background(), "squats")
	require.NoError(t, err)
	assert.Equal(t, "squats", p.Name)
	assert.Equal(t, skeleton.Size{Width: 30, Height: 40}, p.Size)
	assert.Equal(t, image.Pt(30, 40), det.size)
	assert.Equal(t, wristPose, p.Skeleton)

	again, err := repo.Load(context.Background(), "squats")
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, int32(1), det.calls.Load())

	got, ok := repo.Get("squats")
	assert.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, []string{"squats"}, repo.Names())
}

func TestLoadImageNotFound(t *testing.T) {
	det := &countingDetector{pose: wristPose}
	repo := NewRepository(NewMapProvider(nil), det, log.Nop())

	_, err := repo.Load(context.Background(), "plank3")
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Equal(t, int32(0), det.calls.Load())
}

func TestLoadNoPoseIsNotCached(t *testing.T) {
	det := &countingDetector{err: detector.ErrNoPose}
	provider := NewMapProvider(map[string]image.Image{"pushups": testImage(8, 8)})
	repo := NewRepository(provider, det, log.Nop())

	_, err := repo.Load(context.Background(), "pushups")
	assert.ErrorIs(t, err, ErrNoPoseDetected)
	assert.ErrorIs(t, err, detector.ErrNoPose)

	_, ok := repo.Get("pushups")
	assert.False(t, ok)

	// a later retry re-attempts detection
	det.err = nil
	det.pose = wristPose

	p, err := repo.Load(context.Background(), "pushups")
	require.NoError(t, err)
	assert.Equal(t, wristPose, p.Skeleton)
	assert.Equal(t, int32(2), det.calls.Load())
}

func TestLoadEmptySkeleton(t *testing.T) {
	det := &countingDetector{}
	repo := NewRepository(NewMapProvider(map[string]image.Image{"x": testImage(4, 4)}), det, log.Nop())

	_, err := repo.Load(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoPoseDetected)
}

func TestLoadEmptyImage(t *testing.T) {
	det := &countingDetector{pose: wristPose}
	repo := NewRepository(NewMapProvider(map[string]image.Image{
		"blank": image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}), det, log.Nop())

	_, err := repo.Load(context.Background(), "blank")
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Equal(t, int32(0), det.calls.Load())
}

func TestConcurrentLoadDetectsOnce(t *testing.T) {
	det := &countingDetector{pose: wristPose, release: make(chan struct{})}
	repo := NewRepository(NewMapProvider(map[string]image.Image{"plank3": testImage(10, 10)}), det, log.Nop())

	var wg sync.WaitGroup
	results := make([]*ReferencePose, 8)

	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := repo.Load(context.Background(), "plank3")
			assert.NoError(t, err)
			results[i] = p
		}()
	}

	// let the goroutines pile up on the in-flight detection
	time.Sleep(20 * time.Millisecond)
	close(det.release)
	wg.Wait()

	assert.Equal(t, int32(1), det.calls.Load())
	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestLoadContextCancelled(t *testing.T) {
	det := &countingDetector{pose: wristPose, release: make(chan struct{})}
	defer close(det.release)

	repo := NewRepository(NewMapProvider(map[string]image.Image{"squats": testImage(4, 4)}), det, log.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.Load(ctx, "squats")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPreload(t *testing.T) {
	det := &countingDetector{pose: wristPose}
	repo := NewRepository(NewMapProvider(map[string]image.Image{
		"squats":  testImage(4, 4),
		"pushups": testImage(4, 4),
	}), det, log.Nop())

	err := repo.Preload(context.Background(), 2, "squats", "pushups", "missing")

	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Equal(t, []string{"pushups", "squats"}, repo.Names())
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, imaging.Save(testImage(12, 6), filepath.Join(dir, "squats.png")))
	require.NoError(t, imaging.Save(testImage(5, 7), filepath.Join(dir, "plank3.jpg")))

	f, err := os.Create(filepath.Join(dir, "warrior-1.webp"))
	require.NoError(t, err)
	require.NoError(t, webp.Encode(f, testImage(9, 3), &webp.Options{Lossless: true}))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	p := NewDirProvider(dir)

	for name, size := range map[string]image.Point{
		"squats":    image.Pt(12, 6),
		"plank3":    image.Pt(5, 7),
		"warrior-1": image.Pt(9, 3),
	} {
		img, err := p.LoadImage(name)
		require.NoError(t, err, name)
		assert.Equal(t, size, img.Bounds().Size(), name)
	}

	names, err := p.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"plank3", "squats", "warrior-1"}, names)

	for _, bad := range []string{"missing", "", "../squats", ".hidden"} {
		_, err := p.LoadImage(bad)
		assert.True(t, errors.Is(err, ErrImageNotFound), "name %q: %v", bad, err)
	}
}

func TestDirProviderCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "squats.png"), []byte("not a png"), 0o644))

	_, err := NewDirProvider(dir).LoadImage("squats")
	assert.ErrorIs(t, err, ErrImageNotFound)
}
