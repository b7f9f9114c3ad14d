package news

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// RateLimited spaces calls to the wrapped provider at least minInterval
// apart. Callers wait for their turn instead of failing. One RateLimited
// value is shared by every goroutine that talks to the same upstream.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limiter of one request per minInterval.
func NewRateLimited(next Provider, minInterval time.Duration) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// FetchNews waits for a slot, then calls the wrapped provider.
func (r *RateLimited) FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("news rate limit: %w", err)
	}
	return r.next.FetchNews(ctx, opts)
}
