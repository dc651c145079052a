package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/abgdnv/shopmate/internal/recommend"
	"github.com/abgdnv/shopmate/pkg/messaging/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a mock implementation of the catalog.Source interface
type mockSource struct {
	products []catalog.Product
	error    error
}

func (m *mockSource) FindAll(_ context.Context) ([]catalog.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockSource) FindByID(_ context.Context, id catalog.ProductID) (*catalog.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if p, ok := catalog.Find(m.products, id); ok {
		return &p, nil
	}
	return nil, shoperrors.ErrProductNotFound
}

type mockAssistant struct {
	description string
	suggestions []string
}

func (m *mockAssistant) Describe(_ context.Context, p catalog.Product) string {
	if m.description == "" {
		return p.Description
	}
	return m.description
}

func (m *mockAssistant) Suggest(_ context.Context, _ string, _ []catalog.Product) []string {
	return m.suggestions
}

type mockFeed struct {
	latest    *recommend.Entry
	refreshed recommend.Entry
	error     error
	refreshes int
}

func (m *mockFeed) Latest() (recommend.Entry, bool) {
	if m.latest == nil {
		return recommend.Entry{}, false
	}
	return *m.latest, true
}

func (m *mockFeed) Refresh(_ context.Context) (recommend.Entry, error) {
	m.refreshes++
	return m.refreshed, m.error
}

type mockCheckout struct {
	order *events.OrderPlacedEvent
	error error
}

func (m *mockCheckout) PlaceOrder(_ context.Context) (*events.OrderPlacedEvent, error) {
	return m.order, m.error
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

var testProducts = []catalog.Product{
	{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "bags", Description: "Fits 15 inch laptops", Rating: &catalog.Rating{Rate: 3.9, Count: 120}},
	{ID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.30"), Category: "clothing"},
	{ID: 3, Title: "Jacket", Price: decimal.RequireFromString("55.99"), Category: "clothing"},
}

type testEnv struct {
	router   *chi.Mux
	store    *cart.Store
	source   *mockSource
	feed     *mockFeed
	checkout *mockCheckout
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    cart.NewStore(),
		source:   &mockSource{products: testProducts},
		feed:     &mockFeed{},
		checkout: &mockCheckout{},
	}
	handler := NewHandler(env.source, env.store, &mockAssistant{suggestions: []string{"jacket", "t-shirt"}}, env.feed, env.checkout,
		slog.New(slog.NewJSONHandler(io.Discard, nil)))
	env.router = chi.NewRouter()
	handler.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func Test_ShopAPI_FindProducts(t *testing.T) {
	testCases := []struct {
		name         string
		query        string
		sourceErr    error
		expectedCode int
		expectedIDs  []catalog.ProductID
	}{
		{name: "Success - all products", query: "", expectedCode: http.StatusOK, expectedIDs: []catalog.ProductID{1, 2, 3}},
		{name: "Success - by category", query: "?category=Clothing", expectedCode: http.StatusOK, expectedIDs: []catalog.ProductID{2, 3}},
		{name: "Success - limited", query: "?limit=1", expectedCode: http.StatusOK, expectedIDs: []catalog.ProductID{1}},
		{name: "Error - invalid limit", query: "?limit=0", expectedCode: http.StatusBadRequest},
		{name: "Error - catalog down", sourceErr: shoperrors.ErrCatalogUnavailable, expectedCode: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()
			env.source.error = tc.sourceErr
			env.store.Add(testProducts[1])

			// when
			rr := env.do(http.MethodGet, "/api/v1/products"+tc.query, "")

			// then
			require.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode != http.StatusOK {
				return
			}
			list := decode[[]ProductResponse](t, rr)
			ids := make([]catalog.ProductID, 0, len(list))
			for _, p := range list {
				ids = append(ids, p.ID)
				assert.Equal(t, p.ID == 2, p.InCart)
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func Test_ShopAPI_FindProductByID(t *testing.T) {
	testCases := []struct {
		name         string
		id           string
		sourceErr    error
		expectedCode int
		expectedBody string
	}{
		{name: "Success - product found", id: "1", expectedCode: http.StatusOK},
		{name: "Error - product not found", id: "42", expectedCode: http.StatusNotFound, expectedBody: "Product with ID 42 not found"},
		{name: "Error - invalid id", id: "abc", expectedCode: http.StatusBadRequest, expectedBody: "Invalid ID: abc"},
		{name: "Error - negative id", id: "-1", expectedCode: http.StatusBadRequest, expectedBody: "Invalid ID: -1"},
		{name: "Error - catalog down", id: "1", sourceErr: shoperrors.ErrCatalogUnavailable, expectedCode: http.StatusBadGateway, expectedBody: "Catalog is unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()
			env.source.error = tc.sourceErr

			// when
			rr := env.do(http.MethodGet, "/api/v1/products/"+tc.id, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, decode[ErrorResponse](t, rr).Error)
				return
			}
			p := decode[ProductResponse](t, rr)
			assert.Equal(t, "Backpack", p.Title)
			assert.True(t, p.Price.Equal(decimal.RequireFromString("109.95")))
			assert.False(t, p.InCart)
		})
	}
}

func Test_ShopAPI_DescribeProduct(t *testing.T) {
	// given
	env := newTestEnv()

	// when
	rr := env.do(http.MethodGet, "/api/v1/products/1/description", "")

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[DescriptionResponse](t, rr)
	assert.Equal(t, catalog.ProductID(1), resp.ProductID)
	assert.Equal(t, "Fits 15 inch laptops", resp.Description)
}

func Test_ShopAPI_SearchSuggestions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newTestEnv()

		rr := env.do(http.MethodGet, "/api/v1/search/suggestions?q=warm+clothes", "")

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[SuggestionsResponse](t, rr)
		assert.Equal(t, "warm clothes", resp.Query)
		assert.Equal(t, []string{"jacket", "t-shirt"}, resp.Suggestions)
	})
	t.Run("Error - blank query", func(t *testing.T) {
		env := newTestEnv()

		rr := env.do(http.MethodGet, "/api/v1/search/suggestions?q=%20%20", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Query parameter q is required", decode[ErrorResponse](t, rr).Error)
	})
}

func Test_ShopAPI_Recommendations(t *testing.T) {
	cached := recommend.Entry{
		Result:     recommend.Result{Products: testProducts[:1], Source: recommend.SourceAI},
		Categories: []string{"clothing"},
		UpdatedAt:  time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	}
	fresh := recommend.Entry{
		Result: recommend.Result{Products: testProducts[1:], Source: recommend.SourceFallback},
	}

	testCases := []struct {
		name             string
		latest           *recommend.Entry
		query            string
		refreshErr       error
		expectedCode     int
		expectedSource   recommend.Source
		expectedHeading  string
		expectedRefresh  int
		expectedItemsLen int
	}{
		{name: "Success - cached entry", latest: &cached, expectedCode: http.StatusOK, expectedSource: recommend.SourceAI, expectedHeading: "You might also like", expectedItemsLen: 1},
		{name: "Success - first request computes", latest: nil, expectedCode: http.StatusOK, expectedSource: recommend.SourceFallback, expectedHeading: "Top Picks for You", expectedRefresh: 1, expectedItemsLen: 2},
		{name: "Success - forced refresh", latest: &cached, query: "?refresh=true", expectedCode: http.StatusOK, expectedSource: recommend.SourceFallback, expectedHeading: "Top Picks for You", expectedRefresh: 1, expectedItemsLen: 2},
		{name: "Error - invalid refresh flag", latest: &cached, query: "?refresh=maybe", expectedCode: http.StatusBadRequest},
		{name: "Error - catalog down", latest: nil, refreshErr: shoperrors.ErrCatalogUnavailable, expectedCode: http.StatusBadGateway, expectedRefresh: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()
			env.feed.latest = tc.latest
			env.feed.refreshed = fresh
			env.feed.error = tc.refreshErr

			// when
			rr := env.do(http.MethodGet, "/api/v1/recommendations"+tc.query, "")

			// then
			require.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, tc.expectedRefresh, env.feed.refreshes)
			if tc.expectedCode != http.StatusOK {
				return
			}
			resp := decode[RecommendationsResponse](t, rr)
			assert.Equal(t, tc.expectedSource, resp.Source)
			assert.Equal(t, tc.expectedHeading, resp.Heading)
			assert.Len(t, resp.Items, tc.expectedItemsLen)
			assert.NotNil(t, resp.Categories)
		})
	}
}

func Test_ShopAPI_AddItem(t *testing.T) {
	testCases := []struct {
		name             string
		body             string
		expectedCode     int
		expectedError    string
		expectedField    string
		expectedQuantity int
	}{
		{name: "Success - new line", body: `{"product_id":1}`, expectedCode: http.StatusOK, expectedQuantity: 1},
		{name: "Error - unknown product", body: `{"product_id":99}`, expectedCode: http.StatusNotFound, expectedError: "Product with ID 99 not found"},
		{name: "Error - missing product id", body: `{}`, expectedCode: http.StatusBadRequest, expectedField: "ProductID"},
		{name: "Error - malformed body", body: `{"product_id":`, expectedCode: http.StatusBadRequest, expectedError: "Invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()

			// when
			rr := env.do(http.MethodPost, "/api/v1/cart/items", tc.body)

			// then
			require.Equal(t, tc.expectedCode, rr.Code)
			switch {
			case tc.expectedError != "":
				assert.Equal(t, tc.expectedError, decode[ErrorResponse](t, rr).Error)
			case tc.expectedField != "":
				assert.Contains(t, decode[ValidationErrorResponse](t, rr).ValidationErrors, tc.expectedField)
			default:
				resp := decode[CartResponse](t, rr)
				require.Len(t, resp.Lines, 1)
				assert.Equal(t, tc.expectedQuantity, resp.Lines[0].Quantity)
				assert.Equal(t, 1, env.store.ItemCount())
			}
		})
	}
}

func Test_ShopAPI_AddItem_Twice(t *testing.T) {
	// given
	env := newTestEnv()
	env.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)

	// when
	rr := env.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[CartResponse](t, rr)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.Equal(t, 2, resp.ItemCount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("44.60")))
	assert.True(t, resp.Lines[0].Subtotal.Equal(decimal.RequireFromString("44.60")))
}

func Test_ShopAPI_UpdateItem(t *testing.T) {
	testCases := []struct {
		name          string
		id            string
		body          string
		expectedCode  int
		expectedError string
		expectedCount int
	}{
		{name: "Success - set quantity", id: "1", body: `{"quantity":4}`, expectedCode: http.StatusOK, expectedCount: 5},
		{name: "Success - zero removes", id: "1", body: `{"quantity":0}`, expectedCode: http.StatusOK, expectedCount: 1},
		{name: "Success - negative removes", id: "1", body: `{"quantity":-2}`, expectedCode: http.StatusOK, expectedCount: 1},
		{name: "Error - not in cart", id: "3", body: `{"quantity":2}`, expectedCode: http.StatusNotFound, expectedError: "Product with ID 3 is not in the cart", expectedCount: 2},
		{name: "Error - missing quantity", id: "1", body: `{}`, expectedCode: http.StatusBadRequest, expectedCount: 2},
		{name: "Error - invalid id", id: "x", body: `{"quantity":2}`, expectedCode: http.StatusBadRequest, expectedError: "Invalid ID: x", expectedCount: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()
			env.store.Add(testProducts[0])
			env.store.Add(testProducts[1])

			// when
			rr := env.do(http.MethodPut, "/api/v1/cart/items/"+tc.id, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, decode[ErrorResponse](t, rr).Error)
			}
			assert.Equal(t, tc.expectedCount, env.store.ItemCount())
		})
	}
}

func Test_ShopAPI_RemoveItem(t *testing.T) {
	for _, id := range []int{1, 42} {
		t.Run(fmt.Sprintf("remove %d", id), func(t *testing.T) {
			// given
			env := newTestEnv()
			env.store.Add(testProducts[0])
			env.store.Add(testProducts[1])

			// when
			rr := env.do(http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", id), "")

			// then
			require.Equal(t, http.StatusOK, rr.Code)
			assert.False(t, env.store.Contains(catalog.ProductID(id)))
			assert.True(t, env.store.Contains(2))
		})
	}
}

func Test_ShopAPI_GetAndClearCart(t *testing.T) {
	// given
	env := newTestEnv()
	env.store.Add(testProducts[0])

	// when
	rr := env.do(http.MethodGet, "/api/v1/cart", "")

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[CartResponse](t, rr)
	assert.Equal(t, 1, resp.ItemCount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("109.95")))

	// when
	rr = env.do(http.MethodDelete, "/api/v1/cart", "")

	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, env.store.Lines())

	rr = env.do(http.MethodGet, "/api/v1/cart", "")
	resp = decode[CartResponse](t, rr)
	assert.NotNil(t, resp.Lines)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.Total.IsZero())
}

func Test_ShopAPI_Checkout(t *testing.T) {
	order := &events.OrderPlacedEvent{OrderID: uuid.New(), ItemCount: 2, Total: decimal.NewFromInt(10)}

	testCases := []struct {
		name          string
		checkout      mockCheckout
		expectedCode  int
		expectedError string
	}{
		{name: "Success - order placed", checkout: mockCheckout{order: order}, expectedCode: http.StatusCreated},
		{name: "Error - empty cart", checkout: mockCheckout{error: shoperrors.ErrCartEmpty}, expectedCode: http.StatusBadRequest, expectedError: "Cart is empty"},
		{name: "Error - publish failed", checkout: mockCheckout{error: fmt.Errorf("%w: timeout", shoperrors.ErrOrderNotPublished)}, expectedCode: http.StatusBadGateway, expectedError: "Order could not be placed, please retry"},
		{name: "Error - unexpected", checkout: mockCheckout{error: fmt.Errorf("boom")}, expectedCode: http.StatusInternalServerError, expectedError: "Failed to place order"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			env := newTestEnv()
			*env.checkout = tc.checkout

			// when
			rr := env.do(http.MethodPost, "/api/v1/checkout", "")

			// then
			require.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, decode[ErrorResponse](t, rr).Error)
				return
			}
			placed := decode[events.OrderPlacedEvent](t, rr)
			assert.Equal(t, order.OrderID, placed.OrderID)
			assert.Equal(t, 2, placed.ItemCount)
		})
	}
}

func Test_ShopAPI_HealthCheck(t *testing.T) {
	env := newTestEnv()

	rr := env.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}
