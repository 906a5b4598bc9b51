// Package httpapi exposes the boundary operations over HTTP: a thin
// development harness a host runtime does not need, used for exercising
// webdex without embedding it as a library (§0).
package httpapi

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"webdex/internal/boundary"
	"webdex/internal/config"
)

// Server wraps a fiber.App wired to one boundary.Engine.
type Server struct {
	app    *fiber.App
	config *config.Config
}

// NewServer builds a Server exposing engine's operations under /v1.
func NewServer(cfg *config.Config, engine *boundary.Engine, logger *slog.Logger) *Server {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		logger.Info("request",
			"request_id", reqID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	registerRoutes(v1, engine)

	return &Server{app: app, config: cfg}
}

// Listen starts the HTTP server on the configured host/port.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

func registerRoutes(group fiber.Router, engine *boundary.Engine) {
	h := &handlers{engine: engine}

	group.Post("/extract", h.extract)
	group.Post("/crawl", h.crawl)
	group.Post("/sitemap", h.sitemap)
	group.Post("/robots", h.robots)
	group.Post("/path", h.path)
	group.Post("/jsonld", h.jsonld)
	group.Post("/microdata", h.microdata)
	group.Post("/opengraph", h.opengraph)
	group.Post("/js", h.js)
	group.Post("/css", h.css)
	group.Post("/links", h.links)
	group.Post("/images", h.images)
}
