// Package cart holds the shopping cart state and its mutation and query operations.
package cart

import (
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one product in the cart. Product fields are captured when the product is first added
// and are not refreshed afterwards.
type Line struct {
	ProductID catalog.ProductID `json:"product_id"`
	Title     string            `json:"title"`
	Price     decimal.Decimal   `json:"price"`
	Category  string            `json:"category"`
	Image     string            `json:"image"`
	Quantity  int               `json:"quantity"`
}

func newLine(p catalog.Product) Line {
	return Line{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Category:  p.Category,
		Image:     p.Image,
		Quantity:  1,
	}
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is an immutable copy of the cart at a given version.
type Snapshot struct {
	Lines   []Line `json:"lines"`
	Version uint64 `json:"version"`
}

// Total is the sum of price times quantity over all lines; zero for an empty cart.
func (s Snapshot) Total() decimal.Decimal {
	return total(s.Lines)
}

// ItemCount is the sum of quantities over all lines.
func (s Snapshot) ItemCount() int {
	return itemCount(s.Lines)
}

// Contains reports whether a line for id exists.
func (s Snapshot) Contains(id catalog.ProductID) bool {
	return indexOf(s.Lines, id) >= 0
}

// Categories returns the distinct categories of the lines in first-seen order.
func Categories(lines []Line) []string {
	seen := make(map[string]struct{}, len(lines))
	categories := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.Category]; ok {
			continue
		}
		seen[l.Category] = struct{}{}
		categories = append(categories, l.Category)
	}
	return categories
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func itemCount(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

func indexOf(lines []Line, id catalog.ProductID) int {
	for i, l := range lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}
