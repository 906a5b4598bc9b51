package domindex

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"webdex/internal/model"
)

// buildMicrodata selects every top-level [itemscope] element — one
// with no itemscope ancestor at all — and
// flattens its [itemprop] descendants into a property object, skipping
// descendants that belong to a nested scope (§4.1).
func buildMicrodata(doc *goquery.Document) model.MicrodataIndex {
	idx := model.MicrodataIndex{}

	doc.Find("[itemscope]").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if nearestItemscopeAncestor(node) != nil {
			return // nested; captured while extracting the enclosing scope
		}

		typeName := microdataTypeName(s)
		if typeName == "" {
			return
		}

		idx[typeName] = append(idx[typeName], extractMicrodataItem(s))
	})

	return idx
}

// microdataTypeName returns the last '/'-separated segment of itemtype.
// Multiple space-separated types use only the first.
func microdataTypeName(s *goquery.Selection) string {
	itemtype := strings.Fields(strings.TrimSpace(s.AttrOr("itemtype", "")))
	if len(itemtype) == 0 {
		return ""
	}
	t := itemtype[0]
	if i := strings.LastIndex(t, "/"); i != -1 && i < len(t)-1 {
		return t[i+1:]
	}
	return t
}

// extractMicrodataItem flattens every [itemprop] descendant of scope
// whose innermost enclosing itemscope ancestor is scope itself.
func extractMicrodataItem(scope *goquery.Selection) map[string]any {
	props := map[string]any{}
	scopeNode := scope.Get(0)

	scope.Find("[itemprop]").Each(func(_ int, p *goquery.Selection) {
		node := p.Get(0)
		if nearestItemscopeAncestor(node) != scopeNode {
			return // belongs to a more deeply nested scope
		}

		name := strings.TrimSpace(p.AttrOr("itemprop", ""))
		if name == "" {
			return
		}

		addMicrodataValue(props, name, microdataPropertyValue(p))
	})

	return props
}

// microdataPropertyValue resolves a single [itemprop] element's value
// per the tag-specific rules of §4.1.
func microdataPropertyValue(p *goquery.Selection) any {
	if hasAttr(p.Get(0), "itemscope") {
		return extractMicrodataItem(p)
	}

	switch goquery.NodeName(p) {
	case "meta":
		return p.AttrOr("content", "")
	case "link", "a", "area":
		return p.AttrOr("href", "")
	case "img", "audio", "video", "source":
		return p.AttrOr("src", "")
	case "time":
		if v, ok := p.Attr("datetime"); ok {
			return v
		}
		return strings.TrimSpace(p.Text())
	case "data", "meter":
		return p.AttrOr("value", "")
	default:
		return strings.TrimSpace(p.Text())
	}
}

// addMicrodataValue accumulates repeated itemprop values, under one
// scope, into a document-order list.
func addMicrodataValue(props map[string]any, name string, value any) {
	existing, ok := props[name]
	if !ok {
		props[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		props[name] = append(list, value)
		return
	}
	props[name] = []any{existing, value}
}

// nearestItemscopeAncestor walks strictly upward from n (excluding n
// itself) and returns the first ancestor element carrying itemscope,
// or nil if none exists.
func nearestItemscopeAncestor(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasAttr(p, "itemscope") {
			return p
		}
	}
	return nil
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
