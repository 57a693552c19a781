// Package api serves the training controller over HTTP and streams the
// training events to websocket clients.
package api

import "encoding/json"
import "fmt"

import "github.com/gofiber/contrib/websocket"
import "github.com/gofiber/fiber/v2"
import "github.com/gofiber/fiber/v2/log"
import "github.com/gofiber/fiber/v2/middleware/cors"
import "github.com/gofiber/fiber/v2/middleware/logger"
import "github.com/pkg/errors"

import "github.com/neurlang/deepview/events"
import "github.com/neurlang/deepview/grid"
import "github.com/neurlang/deepview/trainer"
import "github.com/neurlang/deepview/weights"

// SubscriptionBuffer is the number of events queued per websocket client
// before further events are dropped for it.
const SubscriptionBuffer = 256

type server struct {
	ctrl   *trainer.Controller
	events *events.Broadcaster
}

type message struct {
	Message string `json:"message"`
	Session string `json:"session,omitempty"`
}

type gridsRequest struct {
	Weights weights.Snapshot `json:"weights"`
}

type gridsResponse struct {
	InitialGrids []grid.Grid    `json:"initial_grids"`
	LayerGrids   grid.Hierarchy `json:"layer_grids"`
}

// New returns the application serving ctrl, streaming the events published on b.
func New(ctrl *trainer.Controller, b *events.Broadcaster) *fiber.App {
	var s = &server{ctrl: ctrl, events: b}

	app := fiber.New(fiber.Config{
		AppName:               "deepview",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(logger.New())
	app.Use(cors.New())

	app.Post("/train", s.train)
	app.Post("/stop", s.stop)
	app.Post("/pause", s.pause)
	app.Post("/resume", s.resume)
	app.Get("/get_weights", s.weights)
	app.Get("/get_grids", s.lastGrids)
	app.Post("/calculate_grids", s.grids)
	app.Get("/status", s.status)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.stream))
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var code = fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code == fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(message{Message: err.Error()})
}

func (s *server) train(c *fiber.Ctx) error {
	var cfg trainer.Config
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &cfg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid training configuration: "+err.Error())
		}
	}
	id, err := s.ctrl.Start(cfg)
	switch {
	case errors.Is(err, trainer.ErrAlreadyRunning):
		return fiber.NewError(fiber.StatusBadRequest, "Training is already running.")
	case errors.Is(err, trainer.ErrInvalidConfig):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	cfg = cfg.WithDefaults()
	return c.JSON(message{
		Message: fmt.Sprintf("Training started with configuration: layers=%v epochs=%d", cfg.Layers, cfg.Epochs),
		Session: id,
	})
}

func (s *server) stop(c *fiber.Ctx) error {
	s.ctrl.Stop()
	return c.JSON(message{Message: "Stop signal received."})
}

func (s *server) pause(c *fiber.Ctx) error {
	s.ctrl.Pause()
	return c.JSON(message{Message: "Pause signal received. Waiting for epoch to finish..."})
}

func (s *server) resume(c *fiber.Ctx) error {
	s.ctrl.Resume()
	return c.JSON(message{Message: "Resume signal received."})
}

func (s *server) weights(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Weights())
}

// lastGrids returns the projection of the last snapshot, for clients that
// connected after it was broadcast.
func (s *server) lastGrids(c *fiber.Ctx) error {
	h := s.ctrl.Grids()
	var resp = gridsResponse{InitialGrids: h.Initial(), LayerGrids: h}
	if resp.InitialGrids == nil {
		resp.InitialGrids, resp.LayerGrids = []grid.Grid{}, grid.Hierarchy{}
	}
	return c.JSON(resp)
}

func (s *server) grids(c *fiber.Ctx) error {
	var req gridsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid weights: "+err.Error())
	}
	h, err := grid.Project(req.Weights)
	if errors.Is(err, grid.ErrDimensionMismatch) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return err
	}
	return c.JSON(gridsResponse{InitialGrids: h.Initial(), LayerGrids: h})
}

func (s *server) status(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Session())
}

// stream writes every event published while the client is connected as a
// JSON text frame.
func (s *server) stream(conn *websocket.Conn) {
	sub := s.events.Subscribe(SubscriptionBuffer)
	defer s.events.Unsubscribe(sub)
	log.Debugw("websocket client connected", "remote", conn.RemoteAddr())

	var gone = make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				log.Debugw("websocket write failed", "remote", conn.RemoteAddr(), "error", err)
				return
			}
		case <-gone:
			log.Debugw("websocket client disconnected", "remote", conn.RemoteAddr())
			return
		}
	}
}
