// Package crawl implements the bounded-concurrency batch crawl
// orchestrator: per-host minimum-delay pacing, per-fetch extraction,
// and depth-bounded sitemap recursion (§4.7).
package crawl

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"webdex/internal/domindex"
	"webdex/internal/model"
	"webdex/internal/robots"
	"webdex/internal/sitemap"
	"webdex/internal/specengine"
)

// Orchestrator runs batch crawl requests with a shared HTTP client and
// per-host pacing state.
type Orchestrator struct {
	client *http.Client
	robots *robots.Cache

	mu        sync.Mutex
	lastFetch map[string]time.Time
}

// NewOrchestrator builds an Orchestrator. client is shared across
// requests; pass nil to use http.DefaultClient's transport with
// per-request timeouts applied via context.
func NewOrchestrator(client *http.Client) *Orchestrator {
	if client == nil {
		client = &http.Client{}
	}
	return &Orchestrator{
		client:    client,
		robots:    robots.NewCache(robots.NewMemoryStore(), model.RobotsCacheTTL, client),
		lastFetch: make(map[string]time.Time),
	}
}

func (o *Orchestrator) robotsCache() *robots.Cache {
	return o.robots
}

// NewOrchestratorWithRobots builds an Orchestrator backed by a
// caller-supplied robots cache, e.g. one using the Redis Store
// backend (§2.3 RobotsCache.Backend).
func NewOrchestratorWithRobots(client *http.Client, robotsCache *robots.Cache) *Orchestrator {
	o := NewOrchestrator(client)
	o.robots = robotsCache
	return o
}

// Run executes req and returns one CrawlResult per URL. Fetches finish
// in any order, but each result is stored at its URL's position, so the
// returned slice follows the order of the (possibly discovered) URL list.
func (o *Orchestrator) Run(ctx context.Context, req model.CrawlRequest) []model.CrawlResult {
	urls := req.URLs
	userAgent := orDefault(req.UserAgent, model.DefaultUserAgent)
	timeout := time.Duration(orDefaultInt(req.TimeoutMs, model.DefaultTimeoutMs)) * time.Millisecond
	concurrency := clamp(orDefaultInt(req.Concurrency, model.DefaultConcurrency), 1, 32)
	delay := time.Duration(req.DelayMs) * time.Millisecond

	if req.DiscoverFromRobots && len(urls) > 0 {
		recursive := true
		if req.Recursive != nil {
			recursive = *req.Recursive
		}
		urls = o.discoverFromRobots(ctx, urls[0], userAgent, timeout, recursive)
	}

	results := make([]model.CrawlResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			// A panic here runs on this goroutine, out of reach of the
			// boundary's recover, so it is turned into a per-URL error.
			defer func() {
				if r := recover(); r != nil {
					results[i] = model.CrawlResult{URL: u, Error: "internal error while processing URL"}
				}
			}()
			results[i] = o.fetchOne(gctx, u, userAgent, timeout, delay, req)
			return nil
		})
	}
	_ = g.Wait() // fetchOne never returns an error; every failure is recorded per-result (§4.7)

	return results
}

func (o *Orchestrator) fetchOne(ctx context.Context, rawURL, userAgent string, timeout, delay time.Duration, req model.CrawlRequest) model.CrawlResult {
	o.waitForHostSlot(rawURL, delay)

	start := time.Now()
	status, contentType, body, err := o.fetch(ctx, rawURL, userAgent, timeout)
	elapsed := time.Since(start).Milliseconds()

	result := model.CrawlResult{URL: rawURL, Status: status, ContentType: contentType, ResponseTimeMs: elapsed}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Body = body

	if req.IncludeMarkdown {
		result.Markdown = renderMarkdown(rawURL, body)
	}

	if len(req.Extraction) > 0 {
		if doc, parseErr := domindex.Parse(body); parseErr == nil {
			extracted := specengine.Execute(doc, req.Extraction)
			result.Values = extracted.Values
			result.ExpandedValues = extracted.ExpandedValues
		}
	}

	return result
}

// waitForHostSlot enforces the per-host minimum inter-request gap
// (§4.7 Per-host pacing). Hosts never dispatched before have no wait.
func (o *Orchestrator) waitForHostSlot(rawURL string, delay time.Duration) {
	if delay <= 0 {
		return
	}

	host := hostOf(rawURL)

	o.mu.Lock()
	last, seen := o.lastFetch[host]
	var wait time.Duration
	if seen {
		wait = delay - time.Since(last)
	}
	if wait < 0 {
		wait = 0
	}
	o.lastFetch[host] = time.Now().Add(wait)
	o.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}

// fetch issues one GET with timeout, returning a transport status of
// 0 on failure per §4.7.
func (o *Orchestrator) fetch(ctx context.Context, rawURL, userAgent string, timeout time.Duration) (status int, contentType, body string, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", "", err
	}
	if userAgent != "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, resp.Header.Get("Content-Type"), "", err
	}

	return resp.StatusCode, resp.Header.Get("Content-Type"), string(bodyBytes), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sitemapRecurse is separated for reuse by both Run's discovery path
// and the standalone sitemap fetch boundary operation. When recursive
// is false, a sitemap index's child <sitemap> entries are returned as
// residual Sitemaps immediately, independent of depth remaining —
// matching rust_parser/src/sitemap.rs's recursive flag, which is
// orthogonal to maxDepth, not a synonym for "maxDepth=0".
func (o *Orchestrator) sitemapRecurse(ctx context.Context, rawURL, userAgent string, timeout time.Duration, maxDepth, depth int, recursive bool) model.SitemapResult {
	if depth > maxDepth {
		return model.SitemapResult{Sitemaps: []model.SitemapEntry{{Loc: rawURL}}}
	}

	_, _, body, err := o.fetch(ctx, rawURL, userAgent, timeout)
	if err != nil {
		return model.SitemapResult{Errors: []string{err.Error()}}
	}

	parsed := sitemap.Parse(strings.NewReader(body))
	result := model.SitemapResult{URLs: parsed.URLs, Errors: parsed.Errors}

	if !recursive {
		result.Sitemaps = append(result.Sitemaps, parsed.Sitemaps...)
		return result
	}

	for _, child := range parsed.Sitemaps {
		childResult := o.sitemapRecurse(ctx, child.Loc, userAgent, timeout, maxDepth, depth+1, recursive)
		result.URLs = append(result.URLs, childResult.URLs...)
		result.Sitemaps = append(result.Sitemaps, childResult.Sitemaps...)
		result.Errors = append(result.Errors, childResult.Errors...)
	}

	return result
}

// FetchSitemap fetches and expands a sitemap tree rooted at rawURL,
// bounded by maxDepth and gated by recursive (spec.md:206). Callers
// supply both explicitly; a caller-facing default of maxDepth=5,
// recursive=true lives at the request boundary (internal/boundary),
// not here, so an explicit maxDepth=0 reaches sitemapRecurse unmolested.
func (o *Orchestrator) FetchSitemap(ctx context.Context, rawURL, userAgent string, timeout time.Duration, maxDepth int, recursive bool) model.SitemapResult {
	return o.sitemapRecurse(ctx, rawURL, userAgent, timeout, maxDepth, 0, recursive)
}
