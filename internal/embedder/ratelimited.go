package embedder

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"resume-matcher/pkg/ratelimit"
)

// RateLimitedEmbedder 对下游模型调用做限流和退避重试
type RateLimitedEmbedder struct {
	next    embedding.Embedder
	limiter *ratelimit.TokenBucket
}

// NewRateLimitedEmbedder qpm <= 0 时只重试不限流
func NewRateLimitedEmbedder(next embedding.Embedder, qpm, maxRetries int) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{
		next:    next,
		limiter: ratelimit.NewTokenBucket(qpm, qpm/2).WithRetryPolicy(500*time.Millisecond, maxRetries),
	}
}

// EmbedStrings 实现 embedding.Embedder
func (r *RateLimitedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	var vectors [][]float64
	err := r.limiter.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.next.EmbedStrings(ctx, texts, opts...)
		return embedErr
	})
	return vectors, err
}
