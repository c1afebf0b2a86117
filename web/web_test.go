package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	formfit "github.com/formfitness/go-formfit"
	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/catalog"
	"github.com/formfitness/go-formfit/config"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/reference"
	"github.com/formfitness/go-formfit/skeleton"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

func jp(x, y, conf float64) skeleton.JointPoint {
	return skeleton.JointPoint{Location: r2.Vec{X: x, Y: y}, Confidence: conf}
}

var refSkeleton = skeleton.New(map[skeleton.Joint]skeleton.JointPoint{
	skeleton.RightWrist: jp(0.7, 0.6, 0.9),
	skeleton.RightElbow: jp(0.65, 0.65, 0.9),
	skeleton.Root:       jp(0.5, 0.5, 0.9),
})

// fakeRefs serves reference poses from a map, names mapped to nil have no
// pose
type fakeRefs map[string]*reference.ReferencePose

func (f fakeRefs) Load(_ context.Context, name string) (*reference.ReferencePose, error) {
	p, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reference.ErrImageNotFound, name)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", reference.ErrNoPoseDetected, name)
	}
	return p, nil
}

func newTestServer(t *testing.T) (*Server, *formfit.Session, *catalog.Catalog) {
	t.Helper()

	refs := fakeRefs{
		"warrior-1": {Name: "warrior-1", Size: skeleton.Size{Width: 500, Height: 500}, Skeleton: refSkeleton},
		"plank3":    nil,
	}

	det := detector.Func(func(gocv.Mat, detector.Orientation) (skeleton.Skeleton, error) {
		return refSkeleton, nil
	})

	session := formfit.NewSession(config.Default(), refs, det,
		formfit.WithLogger(log.Nop()),
		formfit.WithViewSize(skeleton.Size{Width: 1000, Height: 2000}))

	cat, err := catalog.New(catalog.Default())
	require.NoError(t, err)

	s := NewServer(":0", session, cat, log.Nop())
	session.AddPublisher(s)

	return s, session, cat
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, data
}

func TestFrame(t *testing.T) {
	s, session, _ := newTestServer(t)

	resp, _ := do(t, s, http.MethodGet, "/api/frame", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	session.ProcessSkeleton(refSkeleton)

	resp, data := do(t, s, http.MethodGet, "/api/frame", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var f formfit.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, uint64(1), f.Seq)
	assert.False(t, f.HasReference)
}

func TestListExercises(t *testing.T) {
	s, _, cat := newTestServer(t)

	resp, data := do(t, s, http.MethodGet, "/api/exercises", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var all []catalog.Exercise
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, len(cat.All()))

	_, data = do(t, s, http.MethodGet, "/api/exercises?q=WARRIOR", "")

	var found []catalog.Exercise
	require.NoError(t, json.Unmarshal(data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "warrior-1", found[0].ImageName)

	resp, data = do(t, s, http.MethodPost, "/api/exercises/"+found[0].ID.String()+"/favorite", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var toggled catalog.Exercise
	require.NoError(t, json.Unmarshal(data, &toggled))
	assert.True(t, toggled.Favorite)

	_, data = do(t, s, http.MethodGet, "/api/exercises?favorites=true", "")

	var favs []catalog.Exercise
	require.NoError(t, json.Unmarshal(data, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, found[0].ID, favs[0].ID)

	resp, _ = do(t, s, http.MethodPost, "/api/exercises/not-a-uuid/favorite", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSelectExercise(t *testing.T) {
	s, session, _ := newTestServer(t)

	resp, _ := do(t, s, http.MethodPost, "/api/exercises/warrior-1/select", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	name, pose := session.Exercise()
	assert.Equal(t, "warrior-1", name)
	require.NotNil(t, pose)

	f := session.ProcessSkeleton(refSkeleton)
	assert.True(t, f.HasReference)
	assert.True(t, f.Rated)

	// unknown to the catalog
	resp, _ = do(t, s, http.MethodPost, "/api/exercises/lunges/select", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// in the catalog but no image
	resp, _ = do(t, s, http.MethodPost, "/api/exercises/squats/select", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// image without a pose
	resp, _ = do(t, s, http.MethodPost, "/api/exercises/plank3/select", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	_, pose = session.Exercise()
	assert.Nil(t, pose)
}

func TestAlignment(t *testing.T) {
	s, session, _ := newTestServer(t)

	resp, data := do(t, s, http.MethodPost, "/api/alignment", `{"mode":"following","anchor":"root"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	var st align.State
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, align.Following, st.Mode)
	assert.Equal(t, skeleton.Root, st.AnchorJoint)
	assert.Equal(t, align.Following, session.AlignmentMode())

	resp, _ = do(t, s, http.MethodPost, "/api/alignment", `{"mode":"sideways"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/alignment", `{"anchor":"tail"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// a rejected request changes nothing
	assert.Equal(t, align.Following, session.AlignmentMode())

	resp, _ = do(t, s, http.MethodPost, "/api/alignment/reset", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/alignment", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOverlay(t *testing.T) {
	s, session, _ := newTestServer(t)

	resp, data := do(t, s, http.MethodPost, "/api/overlay", `{"scale":0.5,"mirror":true,"drag":{"X":10,"Y":-5}}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	o := session.Overlay()
	assert.Equal(t, 0.5, o.Scale)
	assert.True(t, o.Mirror)
	assert.Equal(t, r2.Vec{X: 10, Y: -5}, o.Drag)

	// mirror is idempotent
	do(t, s, http.MethodPost, "/api/overlay", `{"mirror":true}`)
	assert.True(t, session.CurrentMirror())

	resp, _ = do(t, s, http.MethodPost, "/api/overlay", `{"pinned":true,"scale":2}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0.5, session.CurrentScale())

	resp, _ = do(t, s, http.MethodPost, "/api/overlay", `{"pinned":false}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/overlay/reset", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, session.CurrentScale())
	assert.Equal(t, r2.Vec{}, session.Overlay().Drag)
}

func TestJointColor(t *testing.T) {
	s, session, _ := newTestServer(t)

	require.NoError(t, session.SelectExercise(context.Background(), "warrior-1"))
	session.ProcessSkeleton(refSkeleton)

	resp, data := do(t, s, http.MethodGet, "/api/joints/rightWrist/color", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Joint skeleton.Joint `json:"joint"`
		Color struct {
			R, G, B float64
		} `json:"color"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, skeleton.RightWrist, body.Joint)
	assert.Equal(t, session.JointMatchColor(skeleton.RightWrist).G, body.Color.G)

	resp, _ = do(t, s, http.MethodGet, "/api/joints/tail/color", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/limbs/rightElbow/rightWrist/gradient", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/limbs/rightElbow/wing/gradient", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFramesRequiresUpgrade(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp, _ := do(t, s, http.MethodGet, "/ws/frames", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
