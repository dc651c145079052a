// Package errors provides the sentinel errors shared by the shop's packages.
package errors

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrAIUnavailable      = errors.New("ai provider unavailable")
	ErrEmptyCompletion    = errors.New("ai provider returned no text")
	ErrOrderNotPublished  = errors.New("order could not be published")
)
