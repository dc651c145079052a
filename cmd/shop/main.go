// Package main runs the shop service: catalog, cart, AI recommendations and checkout over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/shopmate/internal/ai"
	"github.com/abgdnv/shopmate/internal/app"
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/abgdnv/shopmate/internal/config"
	"github.com/abgdnv/shopmate/internal/recommend"
	"github.com/abgdnv/shopmate/pkg/bootstrap"
	"github.com/abgdnv/shopmate/pkg/config/configloader"
	"github.com/abgdnv/shopmate/pkg/messaging"
	natsclient "github.com/abgdnv/shopmate/pkg/nats"
	"github.com/abgdnv/shopmate/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "shop"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the optional collaborators and serves HTTP, gRPC health
// and pprof until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		logger.Error("error creating tracer provider", slog.Any("error", err))
		return err
	}

	catalogClient := catalog.NewFakeStoreClient(catalog.ClientConfig{
		BaseURL:    cfg.Catalog.BaseURL,
		Timeout:    cfg.Catalog.Timeout,
		RetryCount: cfg.Catalog.RetryCount,
	}, logger)
	defer closeQuietly(logger, "catalog client", catalogClient.Close)

	var source catalog.Source = catalogClient
	if cfg.Redis.Enabled {
		redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer closeQuietly(logger, "redis client", redisClient.Close)
		source = catalog.NewCachedSource(catalogClient, redisClient, cfg.Redis.TTL, logger)
		logger.Info("Catalog cache enabled", slog.Duration("ttl", cfg.Redis.TTL))
	}

	var generator recommend.Generator
	if cfg.AI.Enabled() {
		gemini := ai.NewGeminiClient(ai.Config{
			BaseURL:        cfg.AI.BaseURL,
			Model:          cfg.AI.Model,
			APIKey:         cfg.AI.APIKey,
			Timeout:        cfg.AI.Timeout,
			Retry:          cfg.Resilience.Retry,
			CircuitBreaker: cfg.Resilience.CircuitBreaker,
		}, logger)
		defer closeQuietly(logger, "gemini client", gemini.Close)
		generator = gemini
	} else {
		logger.Warn("AI API key is not configured, recommendations use the fallback ranking only")
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(ctx, app.Collaborators{
		Catalog:   source,
		Generator: generator,
		Publisher: publisher,
	}, cfg.Recommend, logger)
	defer deps.Close()

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer, healthServer := app.SetupGrpcServer(cfg.GrpcServer.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.GrpcServer.Enabled {
		// Start the gRPC health server
		g.Go(func() error {
			grpcAddr := ":" + cfg.GrpcServer.Port
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on gRPC port: %w", err)
			}
			logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
			return grpcServer.Serve(lis)
		})
		// gracefully shutdown gRPC server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down gRPC server...")
			healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				logger.Info("gRPC server stopped gracefully.")
				return nil
			case <-time.After(cfg.Shutdown.Timeout):
				logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
				grpcServer.Stop()
				return fmt.Errorf("grpc server graceful stop timed out")
			}
		})
	}

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	// gracefully shutdown tracer provider
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down tracer provider")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newPublisher connects to NATS JetStream when enabled; otherwise orders are only logged.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, placed orders are written to the log")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	nc, err := natsclient.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.Nats.Stream, messaging.OrdersPlacedSubject); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", nc.ConnectedUrl()))

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("failed to drain NATS connection", slog.Any("error", err))
		}
	}
	return natsclient.NewNatsPublisher(js), closeFn, nil
}

func closeQuietly(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("failed to close "+name, slog.Any("error", err))
	}
}
