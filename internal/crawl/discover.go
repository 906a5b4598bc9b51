package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"webdex/internal/model"
)

// discoverFromRobots replaces the initial URL list with the URLs
// found by walking the Sitemap: entries in seedURL's robots.txt, if
// any (§4.7, discover_from_robots). Each sitemap is expanded with
// sitemapRecurse under the same recursive/max_depth semantics as the
// standalone Sitemap operation (bounded by model.DefaultMaxDepth here,
// since CrawlRequest names no separate max_depth field): recursive
// descends into nested sitemap indexes down to real <url> locs, while
// recursive=false stops at the first sitemap and surfaces its child
// <sitemap> refs directly as crawl targets.
func (o *Orchestrator) discoverFromRobots(ctx context.Context, seedURL, userAgent string, timeout time.Duration, recursive bool) []string {
	u, err := url.Parse(seedURL)
	if err != nil {
		return []string{seedURL}
	}

	answer, err := o.robotsCache().Answer(ctx, seedURL, userAgent, timeout)
	if err != nil || len(answer.Sitemaps) == 0 {
		return []string{seedURL}
	}

	var urls []string
	for _, s := range answer.Sitemaps {
		resolved, err := resolveAgainst(u, s)
		if err != nil {
			continue
		}
		expanded := o.sitemapRecurse(ctx, resolved, userAgent, timeout, model.DefaultMaxDepth, 0, recursive)
		for _, entry := range expanded.URLs {
			urls = append(urls, entry.Loc)
		}
		for _, entry := range expanded.Sitemaps {
			urls = append(urls, entry.Loc)
		}
	}
	if len(urls) == 0 {
		return []string{seedURL}
	}
	return urls
}

func resolveAgainst(base *url.URL, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(refURL).String(), nil
}

// renderMarkdown converts an HTML body to Markdown, best-effort. It
// never fails the containing fetch — a conversion error yields an
// empty string, leaving Body as the caller's fallback.
func renderMarkdown(pageURL, htmlBody string) string {
	host := hostOf(pageURL)
	converter := htmlmd.NewConverter(host, true, nil)
	markdown, err := converter.ConvertString(htmlBody)
	if err != nil {
		return ""
	}
	return markdown
}

// Links extracts every absolute http(s) link from htmlBody, resolved
// against baseURL, deduplicated in document order.
func Links(htmlBody, baseURL string) []string {
	return extractRefs(htmlBody, baseURL, "a[href]", "href")
}

// Images extracts every absolute http(s) image URL from htmlBody: the
// src of <img> elements and the first candidate of each <source
// srcset>.
func Images(htmlBody, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(baseURL)

	seen := make(map[string]struct{})
	var images []string

	add := func(ref string) {
		resolved, ok := resolveAbs(base, ref)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		images = append(images, resolved)
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("src", ""))
	})
	doc.Find("source[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset := strings.TrimSpace(s.AttrOr("srcset", ""))
		if srcset == "" {
			return
		}
		first := strings.Fields(strings.TrimSpace(strings.Split(srcset, ",")[0]))
		if len(first) == 0 {
			return
		}
		add(first[0])
	})

	return images
}

func extractRefs(htmlBody, baseURL, selector, attr string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(baseURL)

	seen := make(map[string]struct{})
	var out []string

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		ref := strings.TrimSpace(s.AttrOr(attr, ""))
		if ref == "" || strings.HasPrefix(ref, "#") {
			return
		}
		resolved, ok := resolveAbs(base, ref)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	})

	return out
}

func resolveAbs(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil && !u.IsAbs() {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}
