package recommend

import (
	"fmt"
	"strings"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
)

func recommendPrompt(lines []cart.Line, products []catalog.Product) string {
	listing := make([]string, 0, len(products))
	for _, p := range products {
		listing = append(listing, fmt.Sprintf("%s (%s)", p.Title, p.Category))
	}

	var b strings.Builder
	if len(lines) == 0 {
		b.WriteString("Recommend 3 popular products for a new customer")
	} else {
		titles := make([]string, 0, len(lines))
		for _, l := range lines {
			titles = append(titles, l.Title)
		}
		fmt.Fprintf(&b, "Based on a customer who purchased these products: %s in categories: %s, recommend 3 similar or complementary products",
			strings.Join(titles, ", "), strings.Join(cart.Categories(lines), ", "))
	}
	fmt.Fprintf(&b, " from this list: %s. Return only the product titles as a comma-separated list, no explanations.",
		strings.Join(listing, ", "))
	return b.String()
}

func describePrompt(p catalog.Product) string {
	return fmt.Sprintf("Write a compelling, short marketing description (2-3 sentences) for this product: %s in the %s category. Price: $%s. Make it engaging and highlight key benefits.",
		p.Title, p.Category, p.Price.StringFixed(2))
}

func suggestPrompt(query string, products []catalog.Product) string {
	titles := make([]string, 0, len(products))
	for _, p := range products {
		titles = append(titles, p.Title)
	}
	return fmt.Sprintf("Given this search query: %q, suggest 3 relevant product search terms from this list: %s. Return only the terms as a comma-separated list.",
		query, strings.Join(titles, ", "))
}
