// Package web serves the latest processed frame, exercise selection and
// alignment controls over HTTP, and streams frames to websocket clients.
package web

import (
	"context"
	"log/slog"

	formfit "github.com/formfitness/go-formfit"
	"github.com/formfitness/go-formfit/catalog"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

// Server is the HTTP API and frame stream of a Session.  It implements
// formfit.Publisher so it can be added to the session directly.
type Server struct {
	app     *fiber.App
	addr    string
	session *formfit.Session
	catalog *catalog.Catalog
	frames  *Hub
	logger  *slog.Logger
}

// NewServer creates the server for session, listening on addr once started
func NewServer(addr string, session *formfit.Session, cat *catalog.Catalog, logger *slog.Logger) *Server {

	logger = log.Or(logger).With("component", "web")

	s := &Server{
		addr:    addr,
		session: session,
		catalog: cat,
		frames:  NewHub("frames", logger),
		logger:  logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "formfit",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/frame", s.handleFrame)
	api.Get("/exercises", s.handleListExercises)
	api.Post("/exercises/:image/select", s.handleSelectExercise)
	api.Post("/exercises/:id/favorite", s.handleToggleFavorite)
	api.Get("/alignment", s.handleAlignment)
	api.Post("/alignment", s.handleSetAlignment)
	api.Post("/alignment/reset", s.handleResetAlignment)
	api.Get("/overlay", s.handleOverlay)
	api.Post("/overlay", s.handleSetOverlay)
	api.Post("/overlay/reset", s.handleResetOverlay)
	api.Get("/joints/:joint/color", s.handleJointColor)
	api.Get("/limbs/:a/:b/gradient", s.handleLimbGradient)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// Publish broadcasts a processed frame to the websocket clients
func (s *Server) Publish(f *formfit.Frame) {
	if err := s.frames.BroadcastJSON(f); err != nil {
		s.logger.Warn("encode frame", "seq", f.Seq, "error", err)
	}
}

// Start runs the frame hub and serves until ctx is done or listening fails
func (s *Server) Start(ctx context.Context) error {

	go s.frames.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("shutdown", "error", err)
		}
	}()

	s.logger.Info("web server listening", "addr", s.addr)

	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Clients returns the number of connected websocket clients
func (s *Server) Clients() int {
	return s.frames.ClientCount()
}
