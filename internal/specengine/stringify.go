package specengine

import "encoding/json"

// castStringify implements the rule used for each element of an
// expanded array: JSON strings unwrap to their raw text, everything
// else stringifies to its canonical JSON form. A json_path/is_json_cast
// result that is not expanded goes through returnTextStringify instead.
func castStringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// returnTextStringify implements the return_text output policy
// (§4.4): true unwraps strings and renders null as "no value"; false
// always emits canonical JSON, strings included (and therefore
// quoted).
func returnTextStringify(v any, returnText bool) *string {
	if !returnText {
		return canonicalJSON(v)
	}

	if v == nil {
		s := "no value"
		return &s
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return canonicalJSON(v)
}

func canonicalJSON(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		s := "null"
		return &s
	}
	s := string(b)
	return &s
}
