package middleware

import (
	"context"
	"tableside_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
)

// RateLimiter counts requests per client and bucket within a window.
type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, client, bucket string, window time.Duration) (int, error)
}

type Middleware struct {
	cfg     *structs.Config
	logger  *gecho.Logger
	limiter RateLimiter
}

// NewMiddleware builds the shared middleware. limiter may be nil, which
// turns rate limiting off.
func NewMiddleware(cfg *structs.Config, logger *gecho.Logger, limiter RateLimiter) *Middleware {
	return &Middleware{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
	}
}
