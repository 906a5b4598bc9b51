package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webdex/internal/model"
)

func TestRunFetchesAllURLsAndReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>hi</h1></body></html>"))
	}))
	defer server.Close()

	o := NewOrchestrator(server.Client())
	results := o.Run(context.Background(), model.CrawlRequest{
		URLs:      []string{server.URL + "/a", server.URL + "/b"},
		TimeoutMs: 2000,
	})

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Status != 200 {
			t.Fatalf("status = %d, want 200 for %s", r.Status, r.URL)
		}
		if r.Error != "" {
			t.Fatalf("unexpected error for %s: %s", r.URL, r.Error)
		}
	}
}

func TestRunRecordsTransportFailureWithoutAbortingBatch(t *testing.T) {
	o := NewOrchestrator(&http.Client{Timeout: time.Second})
	results := o.Run(context.Background(), model.CrawlRequest{
		URLs:      []string{"http://127.0.0.1:1/unreachable"},
		TimeoutMs: 200,
	})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Error == "" {
		t.Fatalf("expected a transport error to be recorded")
	}
	if results[0].Status != 0 {
		t.Fatalf("status = %d, want 0 on transport failure", results[0].Status)
	}
}

func TestRunWithInlineExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script type="application/ld+json">{"@type":"Product","name":"Widget"}</script></head></html>`))
	}))
	defer server.Close()

	o := NewOrchestrator(server.Client())
	results := o.Run(context.Background(), model.CrawlRequest{
		URLs:      []string{server.URL},
		TimeoutMs: 2000,
		Extraction: []model.ExtractSpec{
			{Source: "jsonld", Path: []string{"Product", "name"}, Alias: "name", ReturnText: true},
		},
	})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Values["name"] == nil || *results[0].Values["name"] != "Widget" {
		t.Fatalf("name = %v", results[0].Values["name"])
	}
}

func TestFetchSitemapUnionsChildURLSetsWithinMaxDepth(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex>
			<sitemap><loc>` + server.URL + `/a.xml</loc></sitemap>
			<sitemap><loc>` + server.URL + `/b.xml</loc></sitemap>
		</sitemapindex>`))
	})
	mux.HandleFunc("/a.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset><url><loc>` + server.URL + `/a1</loc></url></urlset>`))
	})
	mux.HandleFunc("/b.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<urlset><url><loc>` + server.URL + `/b1</loc></url></urlset>`))
	})

	orch := NewOrchestrator(server.Client())

	// recursive=true, max_depth=1: descends one level into both child
	// urlsets and unions their <url> entries (spec.md §8 scenario #6).
	result := orch.FetchSitemap(context.Background(), server.URL+"/index.xml", "", 2*time.Second, 1, true)
	if len(result.URLs) != 2 {
		t.Fatalf("URLs = %#v, want 2 (union of both child urlsets)", result.URLs)
	}
	if len(result.Sitemaps) != 0 {
		t.Fatalf("Sitemaps = %#v, want 0 residual entries at max_depth=1", result.Sitemaps)
	}
}

func TestFetchSitemapExplicitZeroMaxDepthLeavesChildrenAsResidualSitemaps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex>
			<sitemap><loc>https://example.com/a.xml</loc></sitemap>
			<sitemap><loc>https://example.com/b.xml</loc></sitemap>
		</sitemapindex>`))
	}))
	defer server.Close()

	orch := NewOrchestrator(server.Client())

	// An explicit max_depth=0 must NOT be silently promoted to the
	// package default (5) — the root sitemap is still fetched (depth 0
	// <= maxDepth 0), but its children are never descended into, so
	// they surface as residual Sitemaps and URLs stays empty.
	result := orch.FetchSitemap(context.Background(), server.URL, "", 2*time.Second, 0, true)
	if len(result.URLs) != 0 {
		t.Fatalf("URLs = %#v, want 0 at max_depth=0", result.URLs)
	}
	if len(result.Sitemaps) != 2 {
		t.Fatalf("Sitemaps = %#v, want 2 residual child refs at max_depth=0", result.Sitemaps)
	}
}

func TestFetchSitemapNonRecursiveStopsRegardlessOfDepth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<sitemapindex>
			<sitemap><loc>https://example.com/a.xml</loc></sitemap>
		</sitemapindex>`))
	}))
	defer server.Close()

	orch := NewOrchestrator(server.Client())

	// recursive=false stops at the root sitemap even with ample depth
	// budget (max_depth=5): the child ref surfaces as a residual
	// Sitemaps entry rather than being fetched and expanded.
	result := orch.FetchSitemap(context.Background(), server.URL, "", 2*time.Second, 5, false)
	if len(result.URLs) != 0 {
		t.Fatalf("URLs = %#v, want 0 when recursive=false", result.URLs)
	}
	if len(result.Sitemaps) != 1 || result.Sitemaps[0].Loc != "https://example.com/a.xml" {
		t.Fatalf("Sitemaps = %#v, want the one unexpanded child ref", result.Sitemaps)
	}
}

func TestLinksAndImagesResolveRelativeURLs(t *testing.T) {
	htmlBody := `<html><body>
		<a href="/about">About</a>
		<a href="https://external.example/x">External</a>
		<a href="#frag">Fragment only</a>
		<img src="/logo.png">
	</body></html>`

	links := Links(htmlBody, "https://example.com/base/")
	if len(links) != 2 {
		t.Fatalf("links = %#v, want 2", links)
	}

	images := Images(htmlBody, "https://example.com/base/")
	if len(images) != 1 || images[0] != "https://example.com/logo.png" {
		t.Fatalf("images = %#v", images)
	}
}
