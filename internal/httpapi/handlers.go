package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"webdex/internal/boundary"
	"webdex/internal/crawl"
	"webdex/internal/model"
)

type handlers struct {
	engine *boundary.Engine
}

// errorResponse is the stable {"error": "..."} envelope used for
// request-shape failures caught before reaching the boundary (§4.8's
// error-code convention, kept minimal since this harness has no
// tenant/auth concepts to report beyond bad input).
type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

func (h *handlers) extract(c *fiber.Ctx) error {
	var req boundary.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(h.engine.Extract(c.Context(), req))
}

func (h *handlers) crawl(c *fiber.Ctx) error {
	var req model.CrawlRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if len(req.URLs) == 0 {
		return badRequest(c, "missing required field 'urls'")
	}
	return c.JSON(h.engine.Crawl(c.Context(), req))
}

func (h *handlers) sitemap(c *fiber.Ctx) error {
	var req boundary.SitemapRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.URL == "" {
		return badRequest(c, "missing required field 'url'")
	}
	return c.JSON(h.engine.Sitemap(c.Context(), req))
}

func (h *handlers) robots(c *fiber.Ctx) error {
	var req boundary.RobotsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.URL == "" {
		return badRequest(c, "missing required field 'url'")
	}
	return c.JSON(h.engine.Robots(c.Context(), req))
}

func (h *handlers) path(c *fiber.Ctx) error {
	var req boundary.UnifiedPathRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(fiber.Map{"value": h.engine.Path(c.Context(), req)})
}

// htmlOnlyRequest is the shared input shape of the standalone
// convenience operations that only need a document (§6).
type htmlOnlyRequest struct {
	HTML string `json:"html"`
}

func (h *handlers) jsonld(c *fiber.Ctx) error {
	var req htmlOnlyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(h.engine.JSONLD(c.Context(), req.HTML))
}

func (h *handlers) microdata(c *fiber.Ctx) error {
	var req htmlOnlyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(h.engine.Microdata(c.Context(), req.HTML))
}

func (h *handlers) opengraph(c *fiber.Ctx) error {
	var req htmlOnlyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(h.engine.OpenGraph(c.Context(), req.HTML))
}

func (h *handlers) js(c *fiber.Ctx) error {
	var req htmlOnlyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(h.engine.JS(c.Context(), req.HTML))
}

// cssRequest additionally carries the selector the css convenience
// operation needs (§6).
type cssRequest struct {
	HTML     string `json:"html"`
	Selector string `json:"selector"`
}

func (h *handlers) css(c *fiber.Ctx) error {
	var req cssRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Selector == "" {
		return badRequest(c, "missing required field 'selector'")
	}
	return c.JSON(h.engine.CSS(c.Context(), req.HTML, req.Selector))
}

// htmlWithBaseRequest is the shared input shape for the link/image
// discovery convenience operations (§4 supplemented features).
type htmlWithBaseRequest struct {
	HTML    string `json:"html"`
	BaseURL string `json:"base_url"`
}

func (h *handlers) links(c *fiber.Ctx) error {
	var req htmlWithBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(fiber.Map{"links": crawl.Links(req.HTML, req.BaseURL)})
}

func (h *handlers) images(c *fiber.Ctx) error {
	var req htmlWithBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	return c.JSON(fiber.Map{"images": crawl.Images(req.HTML, req.BaseURL)})
}
