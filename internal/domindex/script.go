package domindex

import (
	"github.com/PuerkitoBio/goquery"

	"webdex/internal/jsliteral"
	"webdex/internal/model"
)

// buildJSIndex hands every eligible <script> element's source to the
// JS-literal evaluator and merges the returned bindings. Later scripts
// win over earlier ones for the same variable name, matching document
// order (§4.1).
func buildJSIndex(doc *goquery.Document) model.JSIndex {
	idx := model.JSIndex{}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if !isEligibleScript(s) {
			return
		}

		src := s.Text()
		if src == "" {
			return
		}

		for name, value := range jsliteral.Eval(src) {
			idx[name] = value
		}
	})

	return idx
}

// isEligibleScript reports whether a <script> element is a candidate
// for JS-literal evaluation: no type attribute, or an explicit
// text/javascript type (§3).
func isEligibleScript(s *goquery.Selection) bool {
	t, ok := s.Attr("type")
	if !ok {
		return true
	}
	return t == "" || t == "text/javascript"
}
