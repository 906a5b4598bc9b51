package pathlang

import (
	"encoding/json"
	"strconv"
	"strings"

	"webdex/internal/domindex"
)

type modKind int

const (
	modExpand modKind = iota
	modIndex
	modField
)

type modifier struct {
	kind  modKind
	index int
	field string
}

// UnifiedPath is a parsed `selector@accessor[modifiers][.field]…`
// path (§4.3).
type UnifiedPath struct {
	Selector  string
	Accessor  string
	modifiers []modifier
}

// ParseUnifiedPath splits path on its last '@' into selector and
// accessor+modifiers, then parses the modifier suffix.
func ParseUnifiedPath(path string) UnifiedPath {
	at := strings.LastIndex(path, "@")
	if at == -1 {
		return UnifiedPath{Selector: path}
	}

	selector := path[:at]
	rest := path[at+1:]

	accessor, modStr := splitAccessor(rest)
	return UnifiedPath{
		Selector:  selector,
		Accessor:  accessor,
		modifiers: parseModifiers(modStr),
	}
}

// splitAccessor separates the leading identifier (or $name) from the
// trailing modifier suffix ("[...]"/".field"...).
func splitAccessor(rest string) (accessor, modSuffix string) {
	i := 0
	n := len(rest)
	if i < n && rest[i] == '$' {
		i++
	}
	for i < n && rest[i] != '[' && rest[i] != '.' {
		i++
	}
	return rest[:i], rest[i:]
}

func parseModifiers(s string) []modifier {
	var mods []modifier
	i := 0
	n := len(s)

	for i < n {
		switch s[i] {
		case '[':
			j := strings.IndexByte(s[i:], ']')
			if j == -1 {
				return mods
			}
			inner := s[i+1 : i+j]
			i += j + 1
			if inner == "*" {
				mods = append(mods, modifier{kind: modExpand})
				continue
			}
			if idx, err := strconv.Atoi(inner); err == nil {
				mods = append(mods, modifier{kind: modIndex, index: idx})
			}

		case '.':
			j := i + 1
			for j < n && s[j] != '.' && s[j] != '[' {
				j++
			}
			mods = append(mods, modifier{kind: modField, field: s[i+1 : j]})
			i = j

		default:
			i++
		}
	}

	return mods
}

// Resolve evaluates a parsed unified path against a Document, per
// §4.3: run the selector, extract the accessor's raw string (or, for
// a $-accessor, look the name up directly in the JS index), then
// apply any modifiers by parsing the raw value as JSON and
// navigating.
func Resolve(doc *domindex.Document, up UnifiedPath) any {
	if strings.HasPrefix(up.Accessor, "$") {
		name := strings.TrimPrefix(up.Accessor, "$")
		value, ok := doc.Index.JS[name]
		if !ok {
			return nil
		}
		return applyModifiers(value, up.modifiers)
	}

	selector := up.Selector
	if selector == "" {
		selector = "script"
	}

	raw, ok := rawAccessorValue(doc, selector, up.Accessor)
	if !ok {
		return nil
	}

	if len(up.modifiers) == 0 {
		return raw
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil
	}
	return applyModifiers(value, up.modifiers)
}

// rawAccessorValue resolves the accessor against the first match of
// selector: text/innerText, html/innerHTML, or (falling through) the
// named attribute.
func rawAccessorValue(doc *domindex.Document, selector, accessor string) (string, bool) {
	sel := doc.DOM.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	switch accessor {
	case "text", "innerText":
		return domindex.CSSAccessor(sel, "text")
	case "html", "innerHTML":
		return domindex.CSSAccessor(sel, "html")
	default:
		return sel.Attr(accessor)
	}
}

func applyModifiers(value any, mods []modifier) any {
	if len(mods) == 0 {
		return value
	}

	m := mods[0]
	switch m.kind {
	case modExpand:
		arr, ok := value.([]any)
		if !ok {
			return nil
		}
		if len(mods) == 1 {
			return arr
		}
		rest := mods[1:]
		out := make([]any, 0, len(arr))
		for _, el := range arr {
			if r := applyModifiers(el, rest); r != nil {
				out = append(out, r)
			}
		}
		return out

	case modIndex:
		arr, ok := value.([]any)
		if !ok || m.index < 0 || m.index >= len(arr) {
			return nil
		}
		return applyModifiers(arr[m.index], mods[1:])

	case modField:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[m.field]
		if !ok {
			return nil
		}
		return applyModifiers(v, mods[1:])
	}

	return value
}
