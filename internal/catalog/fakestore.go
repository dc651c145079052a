package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"resty.dev/v3"
)

// ClientConfig configures the HTTP catalog client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// FakeStoreClient reads products from a Fake Store compatible REST API
// (GET /products, GET /products/{id}).
type FakeStoreClient struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewFakeStoreClient creates a catalog client for the given API.
func NewFakeStoreClient(cfg ClientConfig, logger *slog.Logger) *FakeStoreClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")

	return &FakeStoreClient{
		http:   client,
		logger: logger.With("component", "catalog_client"),
	}
}

// FindAll fetches the full catalog.
func (c *FakeStoreClient) FindAll(ctx context.Context) ([]Product, error) {
	var products []Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetForceResponseContentType("application/json").
		SetResult(&products).
		Get("/products")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch products: %v", shoperrors.ErrCatalogUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: unexpected status %d", shoperrors.ErrCatalogUnavailable, resp.StatusCode())
	}
	if products == nil {
		products = []Product{}
	}
	c.logger.DebugContext(ctx, "Fetched catalog", "count", len(products))
	return products, nil
}

// FindByID fetches one product. The Fake Store API answers unknown ids with an empty 200 body,
// which is reported as ErrProductNotFound like a 404.
func (c *FakeStoreClient) FindByID(ctx context.Context, id ProductID) (*Product, error) {
	var product Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetForceResponseContentType("application/json").
		SetResult(&product).
		Get("/products/" + strconv.FormatInt(int64(id), 10))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch product %d: %v", shoperrors.ErrCatalogUnavailable, id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("product %d: %w", id, shoperrors.ErrProductNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: unexpected status %d", shoperrors.ErrCatalogUnavailable, resp.StatusCode())
	}
	if product.ID == 0 {
		return nil, fmt.Errorf("product %d: %w", id, shoperrors.ErrProductNotFound)
	}
	return &product, nil
}

// Close releases the underlying HTTP client resources.
func (c *FakeStoreClient) Close() error {
	return c.http.Close()
}
