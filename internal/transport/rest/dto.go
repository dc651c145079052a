package rest

import (
	"time"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/abgdnv/shopmate/internal/recommend"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	catalog.Product
	InCart bool `json:"in_cart"`
}

type LineResponse struct {
	cart.Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Lines     []LineResponse  `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Version   uint64          `json:"version"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityRequest carries the new quantity; zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type RecommendationsResponse struct {
	Items      []catalog.Product `json:"items"`
	Source     recommend.Source  `json:"source"`
	Heading    string            `json:"heading"`
	Categories []string          `json:"categories"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type DescriptionResponse struct {
	ProductID   catalog.ProductID `json:"product_id"`
	Description string            `json:"description"`
}

type SuggestionsResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

func toCartResponse(snap cart.Snapshot) CartResponse {
	lines := make([]LineResponse, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, LineResponse{Line: l, Subtotal: l.Subtotal()})
	}
	return CartResponse{
		Lines:     lines,
		ItemCount: snap.ItemCount(),
		Total:     snap.Total(),
		Version:   snap.Version,
	}
}

func toProductResponse(p catalog.Product, snap cart.Snapshot) ProductResponse {
	return ProductResponse{Product: p, InCart: snap.Contains(p.ID)}
}

func toRecommendationsResponse(e recommend.Entry) RecommendationsResponse {
	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}
	return RecommendationsResponse{
		Items:      e.Products,
		Source:     e.Source,
		Heading:    e.Heading(),
		Categories: categories,
		UpdatedAt:  e.UpdatedAt,
	}
}
