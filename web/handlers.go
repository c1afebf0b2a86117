package web

import (
	"encoding/json"
	"errors"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/catalog"
	"github.com/formfitness/go-formfit/reference"
	"github.com/formfitness/go-formfit/skeleton"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// errorJSON writes an error response
func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// handleFrame returns the latest processed frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	f := s.session.Latest()
	if f == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(f)
}

// handleListExercises returns the catalog, filtered by the q and favorites
// query parameters
func (s *Server) handleListExercises(c *fiber.Ctx) error {

	if c.QueryBool("favorites") {
		return c.JSON(s.catalog.Favorites())
	}

	if q := c.Query("q"); q != "" {
		return c.JSON(s.catalog.Search(q))
	}

	return c.JSON(s.catalog.All())
}

// handleSelectExercise switches the session to the exercise with the given
// reference image
func (s *Server) handleSelectExercise(c *fiber.Ctx) error {

	ex, err := s.catalog.ByImage(c.Params("image"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err)
	}

	if err := s.session.SelectExercise(c.UserContext(), ex.ImageName); err != nil {
		switch {
		case errors.Is(err, reference.ErrImageNotFound):
			return errorJSON(c, fiber.StatusNotFound, err)
		case errors.Is(err, reference.ErrNoPoseDetected):
			return errorJSON(c, fiber.StatusUnprocessableEntity, err)
		default:
			return errorJSON(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(fiber.Map{
		"exercise":  ex,
		"alignment": s.session.AlignmentState(),
		"overlay":   s.session.Overlay(),
	})
}

// handleToggleFavorite flips the favorite flag of an exercise
func (s *Server) handleToggleFavorite(c *fiber.Ctx) error {

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	ex, err := s.catalog.ToggleFavorite(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err)
		}
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(ex)
}

// handleAlignment returns the alignment engine state
func (s *Server) handleAlignment(c *fiber.Ctx) error {
	return c.JSON(s.session.AlignmentState())
}

// AlignmentRequest changes the alignment mode and anchor joint, empty
// fields are left unchanged
type AlignmentRequest struct {
	Mode   string `json:"mode"`
	Anchor string `json:"anchor"`
}

// handleSetAlignment applies an AlignmentRequest
func (s *Server) handleSetAlignment(c *fiber.Ctx) error {

	var req AlignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	// validate both before changing anything
	var (
		mode   align.Mode
		anchor skeleton.Joint
		err    error
	)

	if req.Mode != "" {
		if mode, err = align.ParseMode(req.Mode); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}

	if req.Anchor != "" {
		if anchor, err = skeleton.ParseJoint(req.Anchor); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		if err := s.session.SetAnchorJoint(anchor); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}

	if req.Mode != "" {
		s.session.SetAlignmentMode(mode)
	}

	return c.JSON(s.session.AlignmentState())
}

// handleResetAlignment recaptures the initial pose offset
func (s *Server) handleResetAlignment(c *fiber.Ctx) error {
	s.session.ResetInitialPoseOffset()
	return c.JSON(s.session.AlignmentState())
}

// handleOverlay returns the overlay presentation
func (s *Server) handleOverlay(c *fiber.Ctx) error {
	return c.JSON(s.session.Overlay())
}

// OverlayRequest changes the overlay presentation, nil fields are left
// unchanged
type OverlayRequest struct {
	Scale  *float64 `json:"scale"`
	Mirror *bool    `json:"mirror"`
	Pinned *bool    `json:"pinned"`
	Drag   *r2.Vec  `json:"drag"`
}

// handleSetOverlay applies an OverlayRequest.  Pinning is applied first so
// a request that unpins can also move the overlay.
func (s *Server) handleSetOverlay(c *fiber.Ctx) error {

	var req OverlayRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	if req.Pinned != nil {
		s.session.SetPinned(*req.Pinned)
	}

	if req.Mirror != nil && *req.Mirror != s.session.CurrentMirror() {
		s.session.ToggleMirror()
	}

	if req.Scale != nil && !s.session.SetScale(*req.Scale) {
		return errorJSON(c, fiber.StatusConflict, errors.New("overlay scale not changed"))
	}

	if req.Drag != nil && !s.session.Drag(*req.Drag) {
		return errorJSON(c, fiber.StatusConflict, errors.New("overlay cannot be dragged"))
	}

	return c.JSON(s.session.Overlay())
}

// handleResetOverlay restores the default overlay scale and position
func (s *Server) handleResetOverlay(c *fiber.Ctx) error {
	s.session.ResetOverlay()
	return c.JSON(s.session.Overlay())
}

// handleJointColor returns the match color of a joint in the latest frame
func (s *Server) handleJointColor(c *fiber.Ctx) error {

	j, err := skeleton.ParseJoint(c.Params("joint"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(fiber.Map{
		"joint": j,
		"color": s.session.JointMatchColor(j),
	})
}

// handleLimbGradient returns the endpoint colors of the limb a-b
func (s *Server) handleLimbGradient(c *fiber.Ctx) error {

	a, err := skeleton.ParseJoint(c.Params("a"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	b, err := skeleton.ParseJoint(c.Params("b"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	ca, cb := s.session.LimbGradient(a, b)

	return c.JSON(fiber.Map{
		"a":      a,
		"b":      b,
		"colorA": ca,
		"colorB": cb,
	})
}

// handleFramesWS streams processed frames, starting with the latest
func (s *Server) handleFramesWS(conn *websocket.Conn) {

	var initial []Message

	if f := s.session.Latest(); f != nil {
		if data, err := json.Marshal(f); err == nil {
			initial = append(initial, NewJSONMessage(data))
		}
	}

	client, err := NewClient(s.frames, conn, initial...)
	if err != nil {
		s.logger.Debug("websocket rejected", "error", err)
		conn.Close()
		return
	}

	client.Run()
}
