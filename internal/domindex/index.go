// Package domindex parses an HTML document once and builds the
// immutable DocumentIndex that every extraction path (JSON-LD,
// microdata, OpenGraph/meta, JS literals, CSS) reads from afterward.
package domindex

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webdex/internal/model"
)

// Document pairs the parsed DOM tree with its pre-built index, so the
// CSS accessor sublanguage (used by the spec engine) can still reach
// into the raw tree while every other source reads the index.
type Document struct {
	DOM   *goquery.Document
	Index *model.DocumentIndex
}

// Parse builds a Document from raw HTML. It never fails on malformed
// markup — goquery/html follow the HTML5 parsing algorithm's error
// recovery rules — but returns an error if htmlSrc cannot be read at
// all.
func Parse(htmlSrc string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return nil, fmt.Errorf("domindex: parse html: %w", err)
	}

	og, meta := buildOGAndMeta(doc)

	idx := &model.DocumentIndex{
		JSONLD:    buildJSONLD(doc),
		Microdata: buildMicrodata(doc),
		OG:        og,
		Meta:      meta,
		JS:        buildJSIndex(doc),
	}

	return &Document{DOM: doc, Index: idx}, nil
}
