package domindex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CSSAccessor resolves one selector match against a single named
// accessor: text, html, attr:NAME, parent.<accessor>, or
// children.N.<accessor>. It never mutates the tree it reads (§4.3
// Path non-mutation).
func CSSAccessor(sel *goquery.Selection, accessor string) (string, bool) {
	if !ValidAccessorPrefix(accessor) {
		return "", false
	}

	switch {
	case accessor == "text":
		return strings.TrimSpace(sel.Text()), true

	case accessor == "html":
		h, err := sel.Html()
		if err != nil {
			return "", false
		}
		return h, true

	case strings.HasPrefix(accessor, "attr:"):
		name := strings.TrimPrefix(accessor, "attr:")
		return sel.Attr(name)

	case accessor == "parent" || strings.HasPrefix(accessor, "parent."):
		rest := strings.TrimPrefix(strings.TrimPrefix(accessor, "parent"), ".")
		parent := sel.Parent()
		if parent.Length() == 0 {
			return "", false
		}
		if rest == "" {
			rest = "text"
		}
		return CSSAccessor(parent, rest)

	case strings.HasPrefix(accessor, "children."):
		return childAccessor(sel, strings.TrimPrefix(accessor, "children."))

	default:
		return "", false
	}
}

// childAccessor parses an "N.<accessor>" suffix and resolves it
// against the Nth child (0-indexed).
func childAccessor(sel *goquery.Selection, rest string) (string, bool) {
	idxStr, sub, ok := strings.Cut(rest, ".")
	if !ok {
		idxStr, sub = rest, "text"
	}

	n, err := strconv.Atoi(idxStr)
	if err != nil || n < 0 {
		return "", false
	}

	child := sel.Children().Eq(n)
	if child.Length() == 0 {
		return "", false
	}
	return CSSAccessor(child, sub)
}

// SelectAndAccess runs selector against doc and resolves accessor on
// every match, returning the results in document order. An accessor
// matching none of the recognised families is rejected up front, before
// doc is ever touched.
func SelectAndAccess(doc *goquery.Document, selector, accessor string) ([]string, error) {
	if !ValidAccessorPrefix(accessor) {
		return nil, ErrUnknownAccessor(accessor)
	}

	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := CSSAccessor(s, accessor); ok {
			out = append(out, v)
		}
	})
	return out, nil
}

// SelectFirstAndAccess resolves accessor against only the first match
// of selector.
func SelectFirstAndAccess(doc *goquery.Document, selector, accessor string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return CSSAccessor(sel, accessor)
}

// ValidAccessorPrefix reports whether accessor names a recognised
// accessor family, used by CSSAccessor and SelectAndAccess to fail
// fast on malformed specs before ever touching a Document.
func ValidAccessorPrefix(accessor string) bool {
	switch {
	case accessor == "text", accessor == "html":
		return true
	case strings.HasPrefix(accessor, "attr:"):
		return true
	case accessor == "parent", strings.HasPrefix(accessor, "parent."):
		return true
	case strings.HasPrefix(accessor, "children."):
		return true
	default:
		return false
	}
}

// ErrUnknownAccessor is returned when an accessor string matches none
// of the recognised families.
func ErrUnknownAccessor(accessor string) error {
	return fmt.Errorf("domindex: unknown accessor %q", accessor)
}
