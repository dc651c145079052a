package recommend

import (
	"cmp"
	"slices"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
)

// Fallback ranks the catalog without the AI.
//
// With an empty cart it returns the top rated products. Otherwise it prefers products from the
// cart's categories and backfills from the rest of the catalog; products already in the cart are
// never returned. Ties keep catalog order.
func Fallback(lines []cart.Line, products []catalog.Product) []catalog.Product {
	return complete(nil, lines, products)
}

// complete extends selected up to MaxRecommendations following the fallback ranking.
func complete(selected []catalog.Product, lines []cart.Line, products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, MaxRecommendations)
	chosen := make(map[catalog.ProductID]struct{}, MaxRecommendations)
	for _, p := range selected {
		out = append(out, p)
		chosen[p.ID] = struct{}{}
	}

	inCart := make(map[catalog.ProductID]struct{}, len(lines))
	for _, l := range lines {
		inCart[l.ProductID] = struct{}{}
	}

	ranked := slices.Clone(products)
	slices.SortStableFunc(ranked, func(a, b catalog.Product) int {
		return cmp.Compare(b.RatingRate(), a.RatingRate())
	})

	take := func(keep func(catalog.Product) bool) {
		for _, p := range ranked {
			if len(out) >= MaxRecommendations {
				return
			}
			if _, ok := chosen[p.ID]; ok {
				continue
			}
			if _, ok := inCart[p.ID]; ok {
				continue
			}
			if keep(p) {
				out = append(out, p)
				chosen[p.ID] = struct{}{}
			}
		}
	}

	if len(lines) > 0 {
		categories := make(map[string]struct{})
		for _, c := range cart.Categories(lines) {
			categories[c] = struct{}{}
		}
		take(func(p catalog.Product) bool {
			_, ok := categories[p.Category]
			return ok
		})
	}
	take(func(catalog.Product) bool { return true })
	return out
}
