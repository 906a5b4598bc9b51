package specengine

import (
	"strconv"

	"webdex/internal/domindex"
	"webdex/internal/model"
)

// resolveValue runs a spec's source dispatch (§4.4 step 1), then falls
// back through its alternatives in order (step 2) until a non-null
// result is found.
func resolveValue(doc *domindex.Document, spec model.ExtractSpec) any {
	if v := dispatch(doc, spec); v != nil {
		return v
	}
	for _, alt := range spec.Alternatives {
		if v := resolveValue(doc, alt); v != nil {
			return v
		}
	}
	return nil
}

func dispatch(doc *domindex.Document, spec model.ExtractSpec) any {
	switch spec.Source {
	case "jsonld":
		return firstItemPathWalk(typedListAny(doc.Index.JSONLD, spec.Path), spec.Path)
	case "microdata":
		return firstItemPathWalk(typedListAny(doc.Index.Microdata, spec.Path), spec.Path)
	case "og":
		return dispatchOG(doc, spec)
	case "meta":
		return dispatchMeta(doc, spec)
	case "css":
		return dispatchCSS(doc, spec)
	case "js":
		return dispatchJS(doc, spec)
	default:
		return nil
	}
}

func typedListAny[T any](idx map[string][]T, path []string) []T {
	if len(path) == 0 {
		return nil
	}
	return idx[path[0]]
}

// firstItemPathWalk takes the first item of items and walks the
// remaining path segments by map lookup.
func firstItemPathWalk(items []map[string]any, path []string) any {
	if len(items) == 0 || len(path) < 1 {
		return nil
	}

	var cur any = items[0]
	for _, seg := range path[1:] {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := m[seg]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// dispatchOG resolves an "og" source spec. path[0] looks up a flat
// key in the primary og group by default; a two-segment path whose
// first segment names a sibling group (og/article/product/twitter)
// selects that group instead (§4.1's sibling groups, reachable from
// the spec engine as well as the standalone OG convenience
// operation).
func dispatchOG(doc *domindex.Document, spec model.ExtractSpec) any {
	if len(spec.Path) == 0 {
		return nil
	}

	group := doc.Index.OG.OG
	key := spec.Path[0]

	if len(spec.Path) >= 2 {
		if g, ok := ogGroupByName(doc.Index.OG, spec.Path[0]); ok {
			group = g
			key = spec.Path[1]
		}
	}

	v, ok := group[key]
	if !ok {
		return nil
	}
	return v
}

func ogGroupByName(idx model.OGIndex, name string) (model.OGGroup, bool) {
	switch name {
	case "og":
		return idx.OG, true
	case "article":
		return idx.Article, true
	case "product":
		return idx.Product, true
	case "twitter":
		return idx.Twitter, true
	default:
		return nil, false
	}
}

func dispatchMeta(doc *domindex.Document, spec model.ExtractSpec) any {
	if len(spec.Path) == 0 {
		return nil
	}
	v, ok := doc.Index.Meta[spec.Path[0]]
	if !ok {
		return nil
	}
	return v
}

func dispatchCSS(doc *domindex.Document, spec model.ExtractSpec) any {
	sel := doc.DOM.Find(spec.Selector).First()
	if sel.Length() == 0 {
		return nil
	}

	accessor := spec.Accessor
	if accessor == "" {
		accessor = "text"
	}

	v, ok := domindex.CSSAccessor(sel, accessor)
	if !ok {
		return nil
	}
	return v
}

// dispatchJS resolves a "js" source spec: path[0] is a top-level JS
// variable; remaining segments navigate by map key, falling back to
// integer array index if the key is numeric.
func dispatchJS(doc *domindex.Document, spec model.ExtractSpec) any {
	if len(spec.Path) == 0 {
		return nil
	}

	cur, ok := doc.Index.JS[spec.Path[0]]
	if !ok {
		return nil
	}

	for _, seg := range spec.Path[1:] {
		cur = navigateJSSegment(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func navigateJSSegment(cur any, seg string) any {
	if m, ok := cur.(map[string]any); ok {
		return m[seg]
	}
	if arr, ok := cur.([]any); ok {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 && n < len(arr) {
			return arr[n]
		}
	}
	return nil
}
