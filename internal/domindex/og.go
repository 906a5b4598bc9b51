package domindex

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webdex/internal/model"
)

// metaAllowList is the recognised set of <meta name="..."> keys kept in
// the flat "meta" index (§3).
var metaAllowList = map[string]struct{}{
	"description": {}, "keywords": {}, "author": {}, "robots": {},
	"viewport": {}, "generator": {}, "theme-color": {}, "canonical": {},
}

// buildOGAndMeta walks every <meta> element once, populating the
// grouped OpenGraph/Twitter index and the flat allow-listed meta index.
func buildOGAndMeta(doc *goquery.Document) (model.OGIndex, model.MetaIndex) {
	idx := model.OGIndex{
		OG:      model.OGGroup{},
		Article: model.OGGroup{},
		Product: model.OGGroup{},
		Twitter: model.OGGroup{},
	}
	meta := model.MetaIndex{}

	prefixGroups := map[string]model.OGGroup{
		"og:":      idx.OG,
		"article:": idx.Article,
		"product:": idx.Product,
		"twitter:": idx.Twitter,
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, hasContent := s.Attr("content")
		if !hasContent {
			return
		}

		// property= carries og:/article:/product:; name= carries
		// twitter: (and, on some sites, the same og/article/product
		// prefixes misplaced under name=).
		if prop, ok := s.Attr("property"); ok {
			if matchAndInsert(prefixGroups, prop, content) {
				return
			}
		}

		if name, ok := s.Attr("name"); ok {
			if matchAndInsert(prefixGroups, name, content) {
				return
			}

			if _, allowed := metaAllowList[strings.ToLower(name)]; allowed {
				meta[strings.ToLower(name)] = content
			}
		}
	})

	return idx, meta
}

// matchAndInsert finds the namespace prefix a key starts with and, if
// found, inserts content under the corresponding group and returns
// true. The matched prefix itself (e.g. "og:") is stripped before
// insertion.
func matchAndInsert(groups map[string]model.OGGroup, key, content string) bool {
	for prefix, group := range groups {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			insertOGKey(group, rest, content)
			return true
		}
	}
	return false
}

func insertOGKey(group model.OGGroup, key, value string) {
	if key == "" {
		return
	}

	name, sub, nested := strings.Cut(key, ":")
	if !nested {
		insertOGSimple(group, name, value)
		return
	}
	insertOGNested(group, name, sub, value)
}

func insertOGSimple(group model.OGGroup, key, value string) {
	existing, ok := group[key]
	if !ok {
		group[key] = value
		return
	}
	switch ex := existing.(type) {
	case map[string]any:
		ex["_value"] = value
	case []any:
		group[key] = append(ex, value)
	case string:
		group[key] = []any{ex, value}
	}
}

func insertOGNested(group model.OGGroup, key, sub, value string) {
	existing, ok := group[key]
	if !ok {
		group[key] = map[string]any{sub: value}
		return
	}
	switch ex := existing.(type) {
	case map[string]any:
		ex[sub] = value
	case string:
		group[key] = map[string]any{"_value": ex, sub: value}
	case []any:
		if len(ex) == 0 {
			group[key] = map[string]any{sub: value}
			return
		}
		last := ex[len(ex)-1]
		if m, ok := last.(map[string]any); ok {
			m[sub] = value
			return
		}
		ex[len(ex)-1] = map[string]any{"_value": last, sub: value}
	}
}
