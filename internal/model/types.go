// Package model holds the shared value types passed between webdex's
// components: the Document Index built by the DOM indexer, extraction
// specs consumed by the spec engine, and the result shapes returned at
// the request boundary.
package model

import "time"

// JSONLDIndex maps a normalised schema.org type name to every JSON-LD
// object of that type found in document order. Values are always
// non-empty slices of raw decoded objects (§3 Arrayification invariant).
type JSONLDIndex map[string][]map[string]any

// MicrodataIndex maps a normalised itemtype name to every flattened
// property object of that type found in document order.
type MicrodataIndex map[string][]map[string]any

// OGGroup is a flat or nested OpenGraph-style property group (og,
// article, product, twitter). Values are string, []any of strings, or a nested
// map carrying "_value" alongside sub-properties (§4.1).
type OGGroup map[string]any

// OGIndex holds the canonical grouped OpenGraph shape: one OGGroup per
// sibling namespace.
type OGIndex struct {
	OG      OGGroup `json:"og,omitempty"`
	Article OGGroup `json:"article,omitempty"`
	Product OGGroup `json:"product,omitempty"`
	Twitter OGGroup `json:"twitter,omitempty"`
}

// MetaIndex maps an allow-listed <meta name="..."> key to its content.
type MetaIndex map[string]string

// JSIndex maps a top-level JS variable/window-property name to its
// statically-reduced JSON value.
type JSIndex map[string]any

// DocumentIndex is the immutable, pre-extracted view of one HTML
// document. It is built once (internal/domindex) and never mutated
// afterward; every other component reads it as a pure function.
type DocumentIndex struct {
	JSONLD    JSONLDIndex
	Microdata MicrodataIndex
	OG        OGIndex
	Meta      MetaIndex
	JS        JSIndex
}

// ExtractSpec is one entry of an extraction batch request (§3, §6).
type ExtractSpec struct {
	Source       string        `json:"source"` // jsonld|microdata|og|meta|css|js
	Path         []string      `json:"path,omitempty"`
	Selector     string        `json:"selector,omitempty"`
	Accessor     string        `json:"accessor,omitempty"`
	ReturnText   bool          `json:"return_text,omitempty"`
	Alias        string        `json:"alias"`
	Alternatives []ExtractSpec `json:"alternatives,omitempty"`
	IsJSONCast   bool          `json:"is_json_cast,omitempty"`
	ExpandArray  bool          `json:"expand_array,omitempty"`
	ArrayField   string        `json:"array_field,omitempty"`
	JSONPath     string        `json:"json_path,omitempty"`
}

// ExtractResult is the outcome of running a batch of ExtractSpecs
// against one DocumentIndex.
type ExtractResult struct {
	Values         map[string]*string  `json:"values"`
	ExpandedValues map[string][]string `json:"expanded_values"`
	Error          string              `json:"error,omitempty"`
}

// SitemapEntry is one <url> or <sitemap> element (§3 Sitemap Result).
type SitemapEntry struct {
	Loc        string `json:"loc"`
	LastMod    string `json:"lastmod,omitempty"`
	ChangeFreq string `json:"changefreq,omitempty"`
	Priority   *float64 `json:"priority,omitempty"`
}

// SitemapResult is the output of parsing (and possibly recursing
// through) one sitemap document tree.
type SitemapResult struct {
	URLs     []SitemapEntry `json:"urls"`
	Sitemaps []SitemapEntry `json:"sitemaps"`
	Errors   []string       `json:"errors,omitempty"`
}

// RobotsAnswer is the result of a robots.txt allow-check (§4.6, §6).
type RobotsAnswer struct {
	Allowed    bool     `json:"allowed"`
	CrawlDelay *float64 `json:"crawl_delay,omitempty"`
	Sitemaps   []string `json:"sitemaps"`
}

// CrawlResult is one URL's outcome within a batch crawl (§3, §4.7).
type CrawlResult struct {
	URL              string         `json:"url"`
	Status           int            `json:"status"`
	ContentType      string         `json:"content_type,omitempty"`
	Body             string         `json:"body,omitempty"`
	Error            string         `json:"error,omitempty"`
	Values           map[string]*string  `json:"values,omitempty"`
	ExpandedValues   map[string][]string `json:"expanded_values,omitempty"`
	Markdown         string         `json:"markdown,omitempty"`
	ResponseTimeMs   int64          `json:"response_time_ms"`
}

// CrawlRequest is the batch-crawl input envelope (§6).
type CrawlRequest struct {
	URLs               []string      `json:"urls"`
	Extraction         []ExtractSpec `json:"extraction,omitempty"`
	UserAgent          string        `json:"user_agent,omitempty"`
	TimeoutMs          int           `json:"timeout_ms,omitempty"`
	Concurrency        int           `json:"concurrency,omitempty"`
	DelayMs            int           `json:"delay_ms,omitempty"`
	IncludeMarkdown    bool          `json:"include_markdown,omitempty"`
	DiscoverFromRobots bool          `json:"discover_from_robots,omitempty"`
	// Recursive gates whether discover_from_robots descends into child
	// sitemaps of a sitemap index (spec.md:206); nil means true, matching
	// the Sitemap operation's own recursive=true default.
	Recursive *bool `json:"recursive,omitempty"`
}

// Defaults named in §6 for the crawl, sitemap and robots operations,
// plus the robots cache's freshness window.
const (
	DefaultUserAgent   = "DuckDB-Crawler/1.0"
	DefaultTimeoutMs   = 30000
	DefaultConcurrency = 4
	DefaultDelayMs     = 0
	DefaultMaxDepth    = 5
	RobotsCacheTTL     = time.Hour
)
