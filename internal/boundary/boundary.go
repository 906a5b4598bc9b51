// Package boundary implements the stable JSON request/response
// envelopes for every webdex operation (§4.8, §6), recovering panics
// so that no failure crosses the boundary as an unhandled fault.
package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"webdex/internal/crawl"
	"webdex/internal/domindex"
	"webdex/internal/model"
	"webdex/internal/pathlang"
	"webdex/internal/robots"
	"webdex/internal/specengine"
)

// Engine owns the long-lived state behind the boundary operations: the
// crawl orchestrator and its robots cache.
type Engine struct {
	Crawler *crawl.Orchestrator
	Robots  *robots.Cache
	Logger  *slog.Logger
}

// NewEngine builds an Engine with default in-memory-cached
// dependencies.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Crawler: crawl.NewOrchestrator(nil),
		Robots:  robots.NewCache(robots.NewMemoryStore(), model.RobotsCacheTTL, nil),
		Logger:  logger,
	}
}

// ExtractRequest is the input envelope for the Extract operation.
type ExtractRequest struct {
	HTML  string              `json:"html"`
	Specs []model.ExtractSpec `json:"specs"`
}

// Extract runs a batch of extraction specs against one HTML document.
func (e *Engine) Extract(ctx context.Context, req ExtractRequest) (result model.ExtractResult) {
	defer e.recoverInto(ctx, "extract", func(msg string) { result = model.ExtractResult{Error: msg} })

	doc, err := domindex.Parse(req.HTML)
	if err != nil {
		return model.ExtractResult{Error: fmt.Sprintf("parse html: %v", err)}
	}

	return specengine.Execute(doc, req.Specs)
}

// JSONLD returns the raw JSON-LD index for one HTML document.
func (e *Engine) JSONLD(ctx context.Context, htmlSrc string) (result model.JSONLDIndex) {
	defer e.recoverConvenience(ctx, "jsonld")
	doc, err := domindex.Parse(htmlSrc)
	if err != nil {
		return nil
	}
	return doc.Index.JSONLD
}

func (e *Engine) Microdata(ctx context.Context, htmlSrc string) (result model.MicrodataIndex) {
	defer e.recoverConvenience(ctx, "microdata")
	doc, err := domindex.Parse(htmlSrc)
	if err != nil {
		return nil
	}
	return doc.Index.Microdata
}

func (e *Engine) OpenGraph(ctx context.Context, htmlSrc string) (result model.OGIndex) {
	defer e.recoverConvenience(ctx, "opengraph")
	doc, err := domindex.Parse(htmlSrc)
	if err != nil {
		return model.OGIndex{}
	}
	return doc.Index.OG
}

func (e *Engine) JS(ctx context.Context, htmlSrc string) (result model.JSIndex) {
	defer e.recoverConvenience(ctx, "js")
	doc, err := domindex.Parse(htmlSrc)
	if err != nil {
		return nil
	}
	return doc.Index.JS
}

// CSS returns trimmed text for every match of selector (§6 "CSS
// returns a list of trimmed text per match").
func (e *Engine) CSS(ctx context.Context, htmlSrc, selector string) (result []string) {
	defer e.recoverConvenience(ctx, "css")
	doc, err := domindex.Parse(htmlSrc)
	if err != nil {
		return nil
	}
	values, _ := domindex.SelectAndAccess(doc.DOM, selector, "text")
	return values
}

// UnifiedPathRequest is the input envelope for the Path operation.
type UnifiedPathRequest struct {
	HTML string `json:"html"`
	Path string `json:"path"`
}

// Path evaluates a single unified path against one HTML document
// (§4.3, §6).
func (e *Engine) Path(ctx context.Context, req UnifiedPathRequest) (result any) {
	defer e.recoverConvenience(ctx, "path")
	doc, err := domindex.Parse(req.HTML)
	if err != nil {
		return nil
	}
	return pathlang.Resolve(doc, pathlang.ParseUnifiedPath(req.Path))
}

// CrawlResponse is the output envelope for the Crawl operation.
type CrawlResponse struct {
	Results []model.CrawlResult `json:"results"`
}

// Crawl runs a batch crawl request (§6 Batch crawl).
func (e *Engine) Crawl(ctx context.Context, req model.CrawlRequest) (resp CrawlResponse) {
	defer e.recoverInto(ctx, "crawl", func(msg string) {
		resp = CrawlResponse{Results: []model.CrawlResult{{Error: msg}}}
	})
	return CrawlResponse{Results: e.Crawler.Run(ctx, req)}
}

// SitemapRequest is the input envelope for the Sitemap operation
// (spec.md:206 names url/recursive/max_depth/user_agent/timeout_ms as
// this operation's input shape; discover_from_robots is carried on
// CrawlRequest instead, per SPEC_FULL.md §4). MaxDepth and Recursive
// are pointers so an explicit max_depth=0 or recursive=false is
// distinguishable from the field being omitted; only omission falls
// back to the named defaults (max_depth=5, recursive=true).
type SitemapRequest struct {
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
	TimeoutMs int    `json:"timeout_ms"`
	MaxDepth  *int   `json:"max_depth,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
}

// Sitemap fetches and recursively expands a sitemap tree (§4.7).
func (e *Engine) Sitemap(ctx context.Context, req SitemapRequest) (result model.SitemapResult) {
	defer e.recoverInto(ctx, "sitemap", func(msg string) { result = model.SitemapResult{Errors: []string{msg}} })

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	timeoutMs := req.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = model.DefaultTimeoutMs
	}
	maxDepth := model.DefaultMaxDepth
	if req.MaxDepth != nil {
		maxDepth = *req.MaxDepth
	}
	recursive := true
	if req.Recursive != nil {
		recursive = *req.Recursive
	}

	return e.Crawler.FetchSitemap(ctx, req.URL, userAgent, time.Duration(timeoutMs)*time.Millisecond, maxDepth, recursive)
}

// RobotsRequest is the input envelope for the Robots operation.
type RobotsRequest struct {
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Robots answers an allow-check against a URL's host (§4.6, §6).
func (e *Engine) Robots(ctx context.Context, req RobotsRequest) (result model.RobotsAnswer) {
	defer e.recoverInto(ctx, "robots", func(msg string) { result = model.RobotsAnswer{Allowed: true} })

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	timeoutMs := req.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = model.DefaultTimeoutMs
	}

	answer, err := e.Robots.Answer(ctx, req.URL, userAgent, time.Duration(timeoutMs)*time.Millisecond)
	if err != nil {
		e.Logger.Warn("robots answer failed", "url", req.URL, "error", err)
		return model.RobotsAnswer{Allowed: true}
	}
	return answer
}

// recoverInto recovers a panic from any boundary operation, logs it
// with a correlation ID, and hands the diagnostic message to set so
// the caller can build an appropriately-shaped error envelope. A
// panicking extraction therefore returns empty results with a
// diagnostic message, never an unhandled fault (§4.8).
func (e *Engine) recoverInto(ctx context.Context, op string, set func(msg string)) {
	if r := recover(); r != nil {
		msg := e.logPanic(ctx, op, r)
		set(msg)
	}
}

// recoverConvenience recovers a panic from a standalone convenience
// operation. The caller's named return value is already left at its
// zero value by the aborted return statement, so there is nothing
// further to reset here beyond logging.
func (e *Engine) recoverConvenience(ctx context.Context, op string) {
	if r := recover(); r != nil {
		e.logPanic(ctx, op, r)
	}
}

func (e *Engine) logPanic(ctx context.Context, op string, r any) string {
	id := uuid.NewString()
	e.Logger.ErrorContext(ctx, "boundary operation panicked", "operation", op, "correlation_id", id, "panic", r)
	return fmt.Sprintf("internal error in %s (correlation_id=%s)", op, id)
}

// MarshalError wraps err, if non-nil, into a stable {"error": "..."}
// JSON envelope; otherwise marshals v directly.
func MarshalError(v any, err error) ([]byte, error) {
	if err != nil {
		return json.Marshal(map[string]string{"error": err.Error()})
	}
	return json.Marshal(v)
}
