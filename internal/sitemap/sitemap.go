// Package sitemap streams an XML sitemap document (urlset or
// sitemapindex) into a SitemapResult, never holding the full DOM in
// memory and never failing hard on malformed input (§4.5).
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"webdex/internal/model"
)

type state int

const (
	stateRoot state = iota
	stateInURL
	stateInSitemap
)

// Parse streams xml from r and returns the accumulated entries. A
// malformed document terminates parsing and records one non-fatal
// error; entries already accumulated before the error are preserved.
func Parse(r io.Reader) model.SitemapResult {
	result := model.SitemapResult{}

	decoder := xml.NewDecoder(r)
	st := stateRoot
	currentTag := ""

	var loc, lastmod, changefreq string
	var priority *float64

	reset := func() {
		loc, lastmod, changefreq = "", "", ""
		priority = nil
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("xml parse error: %v", err))
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			currentTag = name
			switch name {
			case "url":
				st = stateInURL
				reset()
			case "sitemap":
				st = stateInSitemap
				reset()
			}

		case xml.CharData:
			if st == stateRoot {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch currentTag {
			case "loc":
				loc += text
			case "lastmod":
				lastmod += text
			case "changefreq":
				if st == stateInURL {
					changefreq += text
				}
			case "priority":
				if st == stateInURL {
					if p, err := strconv.ParseFloat(text, 64); err == nil {
						priority = &p
					}
				}
			}

		case xml.EndElement:
			name := t.Name.Local
			switch name {
			case "url":
				if st == stateInURL && loc != "" {
					result.URLs = append(result.URLs, model.SitemapEntry{
						Loc:        loc,
						LastMod:    lastmod,
						ChangeFreq: changefreq,
						Priority:   priority,
					})
				}
				st = stateRoot
			case "sitemap":
				if st == stateInSitemap && loc != "" {
					result.Sitemaps = append(result.Sitemaps, model.SitemapEntry{
						Loc:     loc,
						LastMod: lastmod,
					})
				}
				st = stateRoot
			}
			currentTag = ""
		}
	}

	return result
}
