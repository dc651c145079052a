// Package ai talks to the Gemini generateContent API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/abgdnv/shopmate/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"resty.dev/v3"
)

const generatePath = "/v1beta/models/{model}:generateContent"

// Config configures the Gemini client.
type Config struct {
	BaseURL        string
	Model          string
	APIKey         string
	Timeout        time.Duration
	Retry          config.RetryConfig
	CircuitBreaker config.CircuitBreakerConfig
}

// GeminiClient generates text with a Gemini model. Calls go through a circuit breaker; while it is
// open they fail fast with ErrAIUnavailable.
type GeminiClient struct {
	http    *resty.Client
	model   string
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a client for the configured model.
func NewGeminiClient(cfg Config, logger *slog.Logger) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.Count).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		SetAllowNonIdempotentRetry(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)

	return &GeminiClient{
		http:    client,
		model:   cfg.Model,
		breaker: newBreaker(cfg.CircuitBreaker),
		logger:  logger.With("component", "gemini_client"),
	}
}

func newBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.ErrorRatePercent <= 0 || counts.Requests < cfg.ConsecutiveFailures {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent)
		},
		IsSuccessful: func(err error) bool {
			// an empty answer or a caller walking away says nothing about the provider's health
			return err == nil ||
				errors.Is(err, shoperrors.ErrEmptyCompletion) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// Generate sends prompt as a single user turn and returns the text of the first candidate.
// A reply without candidates/content/parts/text yields ErrEmptyCompletion.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", shoperrors.ErrAIUnavailable, err)
	}
	return text, err
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}

	var decoded generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(body).
		SetForceResponseContentType("application/json").
		SetResult(&decoded).
		Post(generatePath)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", shoperrors.ErrAIUnavailable, err)
	}
	if resp.IsError() {
		c.logger.WarnContext(ctx, "gemini returned an error", "status", resp.StatusCode())
		return "", fmt.Errorf("%w: unexpected status %d", shoperrors.ErrAIUnavailable, resp.StatusCode())
	}
	if len(decoded.Candidates) == 0 ||
		decoded.Candidates[0].Content == nil ||
		len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == "" {
		return "", shoperrors.ErrEmptyCompletion
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// Close releases the underlying HTTP client.
func (c *GeminiClient) Close() error {
	return c.http.Close()
}
