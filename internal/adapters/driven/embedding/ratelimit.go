// Package embedding provides cross-provider embedding helpers.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimitConfig holds rate limiting configuration for an embedding provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit is a conservative default that stays well below
// hosted provider quotas while keeping local inference unthrottled
// in practice.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 10.0, BurstSize: 20}

// RateLimited wraps an EmbeddingService with a token bucket limiter.
// Ingestion embeds one request per chunk, so a large document can
// otherwise burst hundreds of calls against a provider quota.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimited wraps svc with the given rate limit configuration.
// Zero-value fields fall back to DefaultRateLimit.
func NewRateLimited(svc driven.EmbeddingService, cfg RateLimitConfig) *RateLimited {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimit.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultRateLimit.BurstSize
	}

	return &RateLimited{
		inner:   svc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Embed waits for a token, then delegates to the wrapped service.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch reserves one token per text, then delegates.
// Batch providers count each input against the quota, so the whole
// batch is charged up front.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.WaitN(ctx, min(len(texts), r.limiter.Burst())); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's embedding vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without consuming a token.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
