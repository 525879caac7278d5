package fetcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter keeps one token bucket per host so that item pages from the
// same site are fetched politely while other hosts proceed.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
