package recommend

import (
	"testing"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func titled(id int64, title string) catalog.Product {
	return catalog.Product{ID: catalog.ProductID(id), Title: title, Category: "c"}
}

func Test_ParseCandidates(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		expect []string
	}{
		{name: "trims fragments", text: " Backpack ,Jacket,  Ring ", expect: []string{"Backpack", "Jacket", "Ring"}},
		{name: "drops empty fragments", text: "Backpack,, ,Ring,", expect: []string{"Backpack", "Ring"}},
		{name: "empty reply", text: "", expect: []string{}},
		{name: "single fragment", text: "Monitor\n", expect: []string{"Monitor"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ParseCandidates(tc.text))
		})
	}
}

func Test_Match(t *testing.T) {
	products := []catalog.Product{
		titled(1, "Fjallraven Backpack"),
		titled(2, "Mens Casual Slim Fit T-Shirt"),
		titled(3, "Mens Cotton Jacket"),
		titled(4, "Gold Ring"),
		titled(5, "Silver Ring"),
	}

	testCases := []struct {
		name       string
		candidates []string
		lines      []cart.Line
		expectIDs  []catalog.ProductID
	}{
		{name: "keeps reply order", candidates: []string{"ring", "JACKET", "backpack"}, expectIDs: []catalog.ProductID{4, 5, 3}},
		{name: "fragment must be inside the title", candidates: []string{"Fjallraven Backpack Extra Large", "jacket"}, expectIDs: []catalog.ProductID{3}},
		{name: "no duplicates", candidates: []string{"Gold Ring", "gold", "mens"}, expectIDs: []catalog.ProductID{4, 2, 3}},
		{name: "at most three", candidates: []string{"a"}, expectIDs: []catalog.ProductID{1, 2, 3}},
		{name: "no matches", candidates: []string{"laptop", "phone"}, expectIDs: []catalog.ProductID{}},
		{name: "skips cart items", candidates: []string{"ring", "backpack"}, lines: []cart.Line{lineOf(products[3])}, expectIDs: []catalog.ProductID{5, 1}},
		{name: "only cart items", candidates: []string{"gold ring"}, lines: []cart.Line{lineOf(products[3])}, expectIDs: []catalog.ProductID{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectIDs, productIDs(Match(tc.candidates, tc.lines, products)))
		})
	}
}
