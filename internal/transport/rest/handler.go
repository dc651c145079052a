// Package rest provides the HTTP API of the shop: catalog, cart, recommendations and checkout.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/abgdnv/shopmate/internal/recommend"
	"github.com/abgdnv/shopmate/pkg/messaging/events"
	"github.com/abgdnv/shopmate/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CartStore is the cart as seen by the HTTP layer.
type CartStore interface {
	Add(product catalog.Product)
	Remove(id catalog.ProductID)
	SetQuantity(id catalog.ProductID, quantity int)
	Clear()
	Contains(id catalog.ProductID) bool
	Snapshot() cart.Snapshot
}

// Assistant provides the AI backed product texts.
type Assistant interface {
	Describe(ctx context.Context, product catalog.Product) string
	Suggest(ctx context.Context, query string, products []catalog.Product) []string
}

// Feed holds the latest recommendations for the cart.
type Feed interface {
	Latest() (recommend.Entry, bool)
	Refresh(ctx context.Context) (recommend.Entry, error)
}

// Checkout places orders for the cart.
type Checkout interface {
	PlaceOrder(ctx context.Context) (*events.OrderPlacedEvent, error)
}

type Handler struct {
	catalog   catalog.Source
	cart      CartStore
	assistant Assistant
	feed      Feed
	checkout  Checkout
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a new instance of the shop API.
func NewHandler(source catalog.Source, store CartStore, assistant Assistant, feed Feed, checkout Checkout, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:   source,
		cart:      store,
		assistant: assistant,
		feed:      feed,
		checkout:  checkout,
		validate:  validator.New(),

		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the shop.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.FindProducts)
			r.Get("/{id}", h.FindProductByID)
			r.Get("/{id}/description", h.DescribeProduct)
		})
		r.Get("/search/suggestions", h.SearchSuggestions)
		r.Get("/recommendations", h.Recommendations)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.UpdateItem)
			r.Delete("/items/{id}", h.RemoveItem)
		})
		r.Post("/checkout", h.Checkout)
	})
	r.Get("/healthz", h.HealthCheck)
}

// FindProducts lists the catalog, optionally filtered by category and limited in size.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := web.ParseOptionalGt(r, w, h.logger, "limit", 0, 0)
	if !ok {
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	h.logger.DebugContext(r.Context(), "Received request to list products", "category", category, "limit", limit)
	products, err := h.catalog.FindAll(r.Context())
	if err != nil {
		h.respondCatalogError(w, r, err, 0)
		return
	}

	snap := h.cart.Snapshot()
	list := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		list = append(list, toProductResponse(p, snap))
		if limit > 0 && len(list) == limit {
			break
		}
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindProductByID retrieves a product by its ID.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, toProductResponse(*product, h.cart.Snapshot()))
}

// DescribeProduct returns an AI written description, or the catalog one when the AI is unavailable.
func (h *Handler) DescribeProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	description := h.assistant.Describe(r.Context(), *product)
	web.RespondJSON(w, h.logger, http.StatusOK, DescriptionResponse{ProductID: product.ID, Description: description})
}

// SearchSuggestions returns AI suggested search terms for the query.
func (h *Handler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		web.RespondError(w, h.logger, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	products, err := h.catalog.FindAll(r.Context())
	if err != nil {
		h.respondCatalogError(w, r, err, 0)
		return
	}
	suggestions := h.assistant.Suggest(r.Context(), query, products)
	web.RespondJSON(w, h.logger, http.StatusOK, SuggestionsResponse{Query: query, Suggestions: suggestions})
}

// Recommendations returns the latest recommendations for the cart, computing them when there are
// none yet or when refresh=true is requested.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	refresh, ok := web.ParseOptionalBool(r, w, h.logger, "refresh")
	if !ok {
		return
	}

	entry, found := h.feed.Latest()
	if refresh || !found {
		var err error
		entry, err = h.feed.Refresh(r.Context())
		if err != nil {
			h.respondCatalogError(w, r, err, 0)
			return
		}
	}
	h.logger.DebugContext(r.Context(), "Returning recommendations", "source", entry.Source, "count", len(entry.Products))
	web.RespondJSON(w, h.logger, http.StatusOK, toRecommendationsResponse(entry))
}

// GetCart returns the cart with its totals.
func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// AddItem adds one unit of a catalog product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}

	id := catalog.ProductID(req.ProductID)
	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, err, id)
		return
	}
	h.cart.Add(*product)
	h.logger.InfoContext(r.Context(), "Product added to cart", "product_id", id)
	web.RespondJSON(w, h.logger, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// UpdateItem sets the quantity of a cart line. A quantity of zero or less removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	rawID, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}

	id := catalog.ProductID(rawID)
	if !h.cart.Contains(id) {
		h.logger.WarnContext(r.Context(), "Product not in cart", "product_id", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d is not in the cart", id))
		return
	}
	h.cart.SetQuantity(id, *req.Quantity)
	h.logger.InfoContext(r.Context(), "Cart quantity updated", "product_id", id, "quantity", *req.Quantity)
	web.RespondJSON(w, h.logger, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// RemoveItem deletes a cart line. Removing a product that is not in the cart succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	rawID, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.cart.Remove(catalog.ProductID(rawID))
	h.logger.InfoContext(r.Context(), "Product removed from cart", "product_id", rawID)
	web.RespondJSON(w, h.logger, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	h.logger.InfoContext(r.Context(), "Cart cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Checkout places an order for the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.PlaceOrder(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, shoperrors.ErrCartEmpty):
			web.RespondError(w, h.logger, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, shoperrors.ErrOrderNotPublished):
			web.RespondError(w, h.logger, http.StatusBadGateway, "Order could not be placed, please retry")
		default:
			h.logger.ErrorContext(r.Context(), "Error placing order", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}
	web.RespondJSON(w, h.logger, http.StatusCreated, order)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) loadProduct(w http.ResponseWriter, r *http.Request) (*catalog.Product, bool) {
	rawID, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return nil, false
	}
	id := catalog.ProductID(rawID)
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, err, id)
		return nil, false
	}
	return product, true
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error, id catalog.ProductID) {
	if errors.Is(err, shoperrors.ErrProductNotFound) {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	h.logger.ErrorContext(r.Context(), "Catalog request failed", "error", err)
	web.RespondError(w, h.logger, http.StatusBadGateway, "Catalog is unavailable")
}
