// Package specengine executes a batch of extraction specs against a
// pre-built Document Index: COALESCE alternatives, JSON casting, array
// expansion, and arrow-path navigation (§4.4).
package specengine

import (
	"encoding/json"

	"webdex/internal/domindex"
	"webdex/internal/model"
	"webdex/internal/pathlang"
)

// Execute runs every spec against doc and returns the combined result.
// A panic inside one spec's resolution (e.g. a selector library bug
// on pathological input) is recovered by the caller at the request
// boundary (C8), not here — this keeps Execute a plain function for
// direct, in-process use.
func Execute(doc *domindex.Document, specs []model.ExtractSpec) model.ExtractResult {
	result := model.ExtractResult{
		Values:         map[string]*string{},
		ExpandedValues: map[string][]string{},
	}

	for _, spec := range specs {
		value, expanded := runSpec(doc, spec)
		if expanded != nil {
			result.ExpandedValues[spec.Alias] = expanded
		}
		result.Values[spec.Alias] = value
	}

	return result
}

func runSpec(doc *domindex.Document, spec model.ExtractSpec) (*string, []string) {
	raw := resolveValue(doc, spec)

	if !spec.IsJSONCast && !spec.ExpandArray {
		return returnTextStringify(raw, spec.ReturnText), nil
	}

	s, ok := raw.(string)
	if !ok {
		return returnTextStringify(nil, spec.ReturnText), nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return returnTextStringify(nil, spec.ReturnText), nil
	}

	if spec.JSONPath != "" {
		parsed = pathlang.ArrowPath(parsed, spec.JSONPath)
	}

	if !spec.ExpandArray {
		return returnTextStringify(parsed, spec.ReturnText), nil
	}

	arr, ok := parsed.([]any)
	if !ok {
		return returnTextStringify(parsed, spec.ReturnText), nil
	}

	list := make([]string, 0, len(arr))
	for _, el := range arr {
		v := el
		if spec.ArrayField != "" {
			if m, ok := el.(map[string]any); ok {
				v = m[spec.ArrayField]
			} else {
				v = nil
			}
		}
		list = append(list, castStringify(v))
	}
	return nil, list
}
