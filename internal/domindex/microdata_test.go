package domindex

import "testing"

func TestParseMicrodataProductWithNestedOffer(t *testing.T) {
	html := `<html><body>
		<div itemscope itemtype="https://schema.org/Product">
			<span itemprop="name">Widget</span>
			<div itemprop="offers" itemscope itemtype="https://schema.org/Offer">
				<span itemprop="price">9.99</span>
				<meta itemprop="priceCurrency" content="USD">
			</div>
		</div>
	</body></html>`

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	products := doc.Index.Microdata["Product"]
	if len(products) != 1 {
		t.Fatalf("Product entries = %d, want 1", len(products))
	}
	if products[0]["name"] != "Widget" {
		t.Fatalf("name = %v", products[0]["name"])
	}

	offer, ok := products[0]["offers"].(map[string]any)
	if !ok {
		t.Fatalf("offers not nested: %#v", products[0]["offers"])
	}
	if offer["price"] != "9.99" || offer["priceCurrency"] != "USD" {
		t.Fatalf("offer = %#v", offer)
	}

	if _, ok := doc.Index.Microdata["Offer"]; ok {
		t.Fatalf("nested Offer scope should not also be indexed as a top-level type")
	}
}

func TestParseMicrodataRepeatedItemprop(t *testing.T) {
	html := `<html><body>
		<div itemscope itemtype="https://schema.org/Person">
			<span itemprop="name">Alice</span>
			<span itemprop="email">alice@example.com</span>
			<span itemprop="email">alice@work.example.com</span>
		</div>
	</body></html>`

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	people := doc.Index.Microdata["Person"]
	if len(people) != 1 {
		t.Fatalf("Person entries = %d, want 1", len(people))
	}

	emails, ok := people[0]["email"].([]any)
	if !ok || len(emails) != 2 {
		t.Fatalf("email = %#v, want two-element slice", people[0]["email"])
	}
}
