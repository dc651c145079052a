package recommend

import (
	"strings"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
)

// ParseCandidates splits an AI reply on commas, trims each fragment and drops empty ones.
func ParseCandidates(text string) []string {
	parts := strings.Split(text, ",")
	candidates := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// Match resolves candidate title fragments against the catalog. A product matches when its
// lower-cased title contains the lower-cased fragment. Matches are collected in candidate order
// (catalog order within one candidate) until MaxRecommendations distinct products are found.
// Products already in the cart are never matched.
func Match(candidates []string, lines []cart.Line, products []catalog.Product) []catalog.Product {
	titles := make([]string, len(products))
	for i, p := range products {
		titles[i] = strings.ToLower(p.Title)
	}

	matched := make([]catalog.Product, 0, MaxRecommendations)
	seen := make(map[catalog.ProductID]struct{}, MaxRecommendations+len(lines))
	for _, l := range lines {
		seen[l.ProductID] = struct{}{}
	}
	for _, c := range candidates {
		needle := strings.ToLower(c)
		for i, p := range products {
			if len(matched) == MaxRecommendations {
				return matched
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			if strings.Contains(titles[i], needle) {
				matched = append(matched, p)
				seen[p.ID] = struct{}{}
			}
		}
	}
	return matched
}
