// Package robots implements a time-bounded robots.txt cache: fetch,
// parse, and answer allow/crawl-delay/sitemap questions per host
// (§4.6).
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	robotstxt "github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"

	"webdex/internal/model"
)

// Cache answers robots.txt allow-checks, fetching and caching the raw
// text per host for TTL, with concurrent fetches for the same host
// collapsed by singleflight.
type Cache struct {
	store  Store
	ttl    time.Duration
	client *http.Client
	group  singleflight.Group
}

// NewCache builds a Cache over store with the given freshness window.
// client is used for robots.txt fetches; a per-call timeout is still
// applied via context.
func NewCache(store Store, ttl time.Duration, client *http.Client) *Cache {
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{store: store, ttl: ttl, client: client}
}

// Answer resolves whether userAgent may fetch rawURL, per §4.6. The
// returned CrawlDelay is reported only: internal/crawl never reads it,
// and its pacing uses the request's delay_ms alone.
func (c *Cache) Answer(ctx context.Context, rawURL, userAgent string, timeout time.Duration) (model.RobotsAnswer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.RobotsAnswer{}, fmt.Errorf("robots: parse url: %w", err)
	}
	host := strings.ToLower(u.Hostname())

	entry, fresh := c.freshEntry(ctx, host)
	if !fresh {
		entry = c.fetchAndStore(ctx, host, u.Scheme, userAgent, timeout)
	}

	return evaluate(entry, requestPath(u), userAgent), nil
}

func (c *Cache) freshEntry(ctx context.Context, host string) (CachedEntry, bool) {
	entry, ok := c.store.Get(ctx, host)
	if !ok {
		return CachedEntry{}, false
	}
	return entry, time.Since(entry.FetchedAt) < c.ttl
}

// fetchAndStore fetches robots.txt for host, parses crawl-delay and
// sitemap directives out of it, and stores the result. Concurrent
// calls for the same host are collapsed into one fetch.
func (c *Cache) fetchAndStore(ctx context.Context, host, scheme, userAgent string, timeout time.Duration) CachedEntry {
	v, _, _ := c.group.Do(host, func() (any, error) {
		rawText := c.fetch(ctx, host, scheme, userAgent, timeout)

		entry := CachedEntry{
			RawText:   rawText,
			FetchedAt: time.Now(),
		}
		if data, err := robotstxt.FromStatusAndBytes(http.StatusOK, []byte(rawText)); err == nil {
			group := data.FindGroup(userAgent)
			if group.CrawlDelay > 0 {
				delay := group.CrawlDelay.Seconds()
				entry.CrawlDelay = &delay
			}
			entry.Sitemaps = data.Sitemaps
		}

		c.store.Set(ctx, host, entry)
		return entry, nil
	})

	return v.(CachedEntry)
}

// fetch retrieves {scheme}://{host}/robots.txt. Any non-2xx status or
// transport error yields an empty string — allow all, no delay, no
// sitemaps (§4.6 step 2).
func (c *Cache) fetch(ctx context.Context, host, scheme, userAgent string, timeout time.Duration) string {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return ""
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(body)
}

// evaluate re-parses an entry's raw text against path/userAgent
// without refetching — used both for fresh cache hits and right after
// a fetch.
func evaluate(entry CachedEntry, path, userAgent string) model.RobotsAnswer {
	answer := model.RobotsAnswer{
		Allowed:    true,
		CrawlDelay: entry.CrawlDelay,
		Sitemaps:   entry.Sitemaps,
	}

	if entry.RawText == "" {
		return answer
	}

	data, err := robotstxt.FromStatusAndBytes(http.StatusOK, []byte(entry.RawText))
	if err != nil {
		return answer
	}

	group := data.FindGroup(userAgent)
	answer.Allowed = group.Test(path)
	return answer
}

func requestPath(u *url.URL) string {
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
