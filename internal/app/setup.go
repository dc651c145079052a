// Package app wires the shop's components together.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/abgdnv/shopmate/internal/checkout"
	"github.com/abgdnv/shopmate/internal/config"
	"github.com/abgdnv/shopmate/internal/metrics"
	"github.com/abgdnv/shopmate/internal/recommend"
	"github.com/abgdnv/shopmate/internal/transport/rest"
	"github.com/abgdnv/shopmate/pkg/messaging"
	"github.com/abgdnv/shopmate/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// Collaborators are the external systems the shop talks to. Generator may be nil, which
// disables the AI path.
type Collaborators struct {
	Catalog   catalog.Source
	Generator recommend.Generator
	Publisher messaging.Publisher
}

type Dependencies struct {
	Catalog  catalog.Source
	Cart     *cart.Store
	Engine   *recommend.Engine
	Feed     *recommend.Feed
	Checkout *checkout.Service
	Registry *prometheus.Registry
	Logger   *slog.Logger

	unsubscribe func()
}

// SetupDependencies creates the cart and the services around it. Every cart change schedules a
// background recommendation refresh bound to ctx.
func SetupDependencies(ctx context.Context, c Collaborators, cfg config.RecommendConfig, logger *slog.Logger) *Dependencies {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store := cart.NewStore()
	engine := recommend.NewEngine(c.Generator, recommend.Config{
		Timeout:           cfg.Timeout,
		SupplementPartial: cfg.SupplementPartial,
	}, m, logger)
	feed := recommend.NewFeed(engine, c.Catalog, store, m, logger)
	unsubscribe := store.Subscribe(func(cart.Snapshot) {
		feed.RefreshAsync(ctx)
	})

	return &Dependencies{
		Catalog:     c.Catalog,
		Cart:        store,
		Engine:      engine,
		Feed:        feed,
		Checkout:    checkout.NewService(store, c.Publisher, m, logger),
		Registry:    registry,
		Logger:      logger,
		unsubscribe: unsubscribe,
	}
}

// Close stops cart driven refreshes and waits for the running ones.
func (d *Dependencies) Close() {
	d.unsubscribe()
	d.Feed.Wait()
}

// SetupHttpHandler initializes the routes and middleware of the shop.
// Used by tests to get the complete HTTP surface without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "shop")
}

// wireRoutes sets up the HTTP routes of the shop.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	shopHandler := rest.NewHandler(deps.Catalog, deps.Cart, deps.Engine, deps.Feed, deps.Checkout, deps.Logger)
	shopHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server of the shop.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the gRPC server carrying the health service.
func SetupGrpcServer(reflectionEnabled bool) (*grpc.Server, *health.Server) {
	return server.NewGRPCServer(reflectionEnabled)
}
