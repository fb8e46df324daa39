package tlrun

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting requests to a remote provider.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	perSecond  float64
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter allows rpm requests per minute with the given burst.
// A non-positive rpm defaults to 60, a non-positive burst to 1.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		tokens:     float64(burst),
		burst:      float64(burst),
		perSecond:  float64(rpm) / 60.0,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.reserve()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	return r.reserve() == 0
}

// reserve takes a token and returns 0, or returns how long until one is due.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.perSecond
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.lastRefill = now

	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	missing := 1 - r.tokens
	wait := time.Duration(missing / r.perSecond * float64(time.Second))
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

// RateLimitedProvider waits on a RateLimiter before each provider call.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider wraps provider with a limiter of rpm requests per minute.
func NewRateLimitedProvider(provider Provider, rpm, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(rpm, burst),
	}
}

// Translate implements Provider.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}
	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
