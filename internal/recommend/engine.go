// Package recommend selects up to three products to suggest for the current cart, asking an AI
// provider first and falling back to a deterministic rating-based ranking.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/abgdnv/shopmate/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRecommendations is the maximum length of a recommendation result.
const MaxRecommendations = 3

// Source tells which path produced a result.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result is an ordered list of at most MaxRecommendations distinct products.
type Result struct {
	Products []catalog.Product `json:"items"`
	Source   Source            `json:"source"`
}

// Generator sends a prompt to a text generation model and returns its free-form reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config tunes the engine.
type Config struct {
	// Timeout bounds every AI call. Zero disables the engine's own deadline.
	Timeout time.Duration
	// SupplementPartial fills a partial AI result (1 or 2 matches) up to MaxRecommendations with
	// fallback products.
	SupplementPartial bool
}

// Engine produces recommendations, product descriptions and search suggestions.
type Engine struct {
	generator Generator
	cfg       Config
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewEngine creates an engine. A nil generator disables the AI path entirely.
func NewEngine(generator Generator, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		generator: generator,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With("component", "recommend"),
		tracer:    otel.Tracer("github.com/abgdnv/shopmate/internal/recommend"),
	}
}

// Recommend returns up to three products for the given cart. It never fails: any AI problem,
// including a panic while handling the reply, degrades to the fallback ranking.
func (e *Engine) Recommend(ctx context.Context, lines []cart.Line, products []catalog.Product) Result {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "recommend.Recommend", trace.WithAttributes(
		attribute.Int("cart.lines", len(lines)),
		attribute.Int("catalog.size", len(products)),
	))
	defer span.End()

	var result Result
	if len(products) == 0 {
		result = Result{Products: []catalog.Product{}, Source: SourceFallback}
	} else {
		matched, err := e.recommendAI(ctx, lines, products)
		if err != nil {
			span.RecordError(err)
			e.metrics.IncAIFailure("recommend")
			e.logger.WarnContext(ctx, "ai recommendation failed, using fallback", "error", err)
		}
		switch {
		case len(matched) == 0:
			result = Result{Products: Fallback(lines, products), Source: SourceFallback}
		case e.cfg.SupplementPartial && len(matched) < MaxRecommendations:
			result = Result{Products: complete(matched, lines, products), Source: SourceAI}
		default:
			result = Result{Products: matched, Source: SourceAI}
		}
	}

	span.SetAttributes(
		attribute.String("recommend.source", string(result.Source)),
		attribute.Int("recommend.count", len(result.Products)),
	)
	e.metrics.ObserveRecommendation(string(result.Source), time.Since(start))
	e.logger.DebugContext(ctx, "recommendations ready", "source", result.Source, "count", len(result.Products))
	return result
}

// Describe asks the AI for a short marketing description of product.
// Any failure or an empty reply yields the catalog description.
func (e *Engine) Describe(ctx context.Context, product catalog.Product) string {
	ctx, span := e.tracer.Start(ctx, "recommend.Describe", trace.WithAttributes(attribute.Int64("product.id", int64(product.ID))))
	defer span.End()

	text, err := e.generate(ctx, describePrompt(product))
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = shoperrors.ErrEmptyCompletion
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ai description unavailable")
		e.metrics.IncAIFailure("describe")
		e.logger.WarnContext(ctx, "ai description failed, using catalog description", "product_id", product.ID, "error", err)
		return product.Description
	}
	return text
}

// Suggest asks the AI for search terms related to query. Any failure yields an empty list.
func (e *Engine) Suggest(ctx context.Context, query string, products []catalog.Product) []string {
	ctx, span := e.tracer.Start(ctx, "recommend.Suggest")
	defer span.End()

	text, err := e.generate(ctx, suggestPrompt(query, products))
	if err != nil {
		span.RecordError(err)
		e.metrics.IncAIFailure("suggest")
		e.logger.WarnContext(ctx, "ai search suggestions failed", "error", err)
		return []string{}
	}
	return ParseCandidates(text)
}

func (e *Engine) recommendAI(ctx context.Context, lines []cart.Line, products []catalog.Product) (matched []catalog.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched, err = nil, fmt.Errorf("recommendation panicked: %v", r)
		}
	}()

	text, err := e.generate(ctx, recommendPrompt(lines, products))
	if err != nil {
		return nil, err
	}
	return Match(ParseCandidates(text), lines, products), nil
}

type reply struct {
	text string
	err  error
}

// generate calls the generator under the configured timeout. The call runs on its own goroutine
// so that a generator ignoring ctx still resolves once the deadline passes.
func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	if e.generator == nil {
		return "", shoperrors.ErrAIUnavailable
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()
		text, err := e.generator.Generate(ctx, prompt)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("ai call abandoned: %w", ctx.Err())
	}
}
