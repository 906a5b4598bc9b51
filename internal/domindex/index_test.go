package domindex

import "testing"

func TestParseBuildsJSIndexFromEligibleScripts(t *testing.T) {
	html := `<html><head>
		<script>var pageType = "product";</script>
		<script type="application/json">{"ignored": true}</script>
		<script type="text/javascript">var pageType = "listing";</script>
	</head></html>`

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Index.JS["pageType"] != "listing" {
		t.Fatalf("pageType = %v, want listing (later script wins)", doc.Index.JS["pageType"])
	}
}

func TestParseIsIdempotent(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Organization","name":"Acme"}</script>
		<meta property="og:title" content="Acme">
	</head></html>`

	first, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(first.Index.JSONLD["Organization"]) != len(second.Index.JSONLD["Organization"]) {
		t.Fatalf("JSONLD index not stable across parses")
	}
	if first.Index.OG.OG["title"] != second.Index.OG.OG["title"] {
		t.Fatalf("OG index not stable across parses")
	}
}

func TestCSSAccessorFamilies(t *testing.T) {
	html := `<html><body>
		<div class="card" data-id="42">
			<h2>Widget</h2>
			<span class="price">9.99</span>
		</div>
	</body></html>`

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if v, ok := SelectFirstAndAccess(doc.DOM, ".card", "attr:data-id"); !ok || v != "42" {
		t.Fatalf("attr:data-id = %q, %v", v, ok)
	}
	if v, ok := SelectFirstAndAccess(doc.DOM, ".card", "children.0.text"); !ok || v != "Widget" {
		t.Fatalf("children.0.text = %q, %v", v, ok)
	}
	if v, ok := SelectFirstAndAccess(doc.DOM, ".price", "parent.attr:data-id"); !ok || v != "42" {
		t.Fatalf("parent.attr:data-id = %q, %v", v, ok)
	}
}

func TestSelectAndAccessRejectsUnknownAccessorBeforeTouchingDocument(t *testing.T) {
	doc, err := Parse(`<html><body><h1>Widget</h1></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = SelectAndAccess(doc.DOM, "h1", "bogus")
	if err == nil {
		t.Fatalf("expected ErrUnknownAccessor for an unrecognised accessor")
	}
}
