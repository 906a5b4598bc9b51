package domindex

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webdex/internal/model"
)

// buildJSONLD selects every <script type="application/ld+json"> block,
// parses it as JSON, and recursively walks the result so that every
// object carrying an @type is indexed under every normalised type name
// it carries. @graph containers are hoisted transparently (§4.1).
//
// A block that fails to parse is skipped; it never aborts indexing of
// the rest of the document (§7 JsonldParse).
func buildJSONLD(doc *goquery.Document) model.JSONLDIndex {
	idx := model.JSONLDIndex{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return
		}

		walkJSONLD(value, idx)
	})

	return idx
}

func walkJSONLD(value any, idx model.JSONLDIndex) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			walkJSONLD(item, idx)
		}
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				walkJSONLD(item, idx)
			}
			return
		}

		for _, name := range jsonLDTypeNames(v["@type"]) {
			idx[name] = append(idx[name], v)
		}
	}
}

// jsonLDTypeNames returns the normalised type name(s) carried by an
// @type value, which may be a single string or an array of strings.
func jsonLDTypeNames(typeValue any) []string {
	switch v := typeValue.(type) {
	case string:
		return []string{normaliseSchemaType(v)}
	case []any:
		names := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				names = append(names, normaliseSchemaType(s))
			}
		}
		return names
	default:
		return nil
	}
}

// normaliseSchemaType strips a leading http(s)://schema.org/ prefix,
// leaving the type name unchanged otherwise.
func normaliseSchemaType(t string) string {
	for _, prefix := range []string{"https://schema.org/", "http://schema.org/"} {
		if after, ok := strings.CutPrefix(t, prefix); ok {
			return after
		}
	}
	return t
}
