// Package catalog provides read-only access to the product catalog.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductID identifies a product in the catalog.
type ProductID int64

// Rating is the average review score of a product and the number of reviews behind it.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry. Products are immutable once fetched.
type Product struct {
	ID          ProductID       `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      *Rating         `json:"rating,omitempty"`
}

// RatingRate returns the average rating, 0 for unrated products.
func (p Product) RatingRate() float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Rate
}

// Source is a read-only provider of catalog products.
type Source interface {
	// FindAll returns every product in catalog order.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID returns a single product.
	// Returns ErrProductNotFound if the catalog has no product with the given ID.
	FindByID(ctx context.Context, id ProductID) (*Product, error)
}

// Find returns the product with the given id from products.
func Find(products []Product, id ProductID) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
