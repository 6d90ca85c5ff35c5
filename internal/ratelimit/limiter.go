// Package ratelimit provides token-bucket limiters keyed by host or by an
// arbitrary client key.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter blocks or rejects requests for a URL according to a per-host budget.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow checks if a request for the given URL can proceed immediately
	// without blocking.
	Allow(urlStr string) bool
}

// KeyedLimiter holds one token bucket per key
type KeyedLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perKey   rate.Limit
	burst    int
}

// NewKeyedLimiter creates a limiter granting requestsPerSecond per key
func NewKeyedLimiter(requestsPerSecond float64, burst int) *KeyedLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	if burst <= 0 {
		burst = 10
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		perKey:   rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// WaitKey blocks until key has a token
func (kl *KeyedLimiter) WaitKey(ctx context.Context, key string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return kl.get(key).Wait(ctx)
}

// AllowKey takes a token for key if one is available
func (kl *KeyedLimiter) AllowKey(key string) bool {
	return kl.get(key).Allow()
}

// SetLimit overrides the budget for one key
func (kl *KeyedLimiter) SetLimit(key string, requestsPerSecond float64, burst int) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, exists := kl.limiters[key]; exists {
		limiter.SetLimit(rate.Limit(requestsPerSecond))
		limiter.SetBurst(burst)
		return
	}
	kl.limiters[key] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (kl *KeyedLimiter) get(key string) *rate.Limiter {
	kl.mu.RLock()
	limiter, exists := kl.limiters[key]
	kl.mu.RUnlock()

	if exists {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := kl.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(kl.perKey, kl.burst)
	kl.limiters[key] = limiter
	return limiter
}

// DomainLimiter applies a KeyedLimiter per URL host so product pages, their
// sibling color pages and the sizing API of one shop share a budget.
type DomainLimiter struct {
	*KeyedLimiter
}

// NewDomainLimiter creates a new rate limiter with the specified per-host rate
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	return &DomainLimiter{KeyedLimiter: NewKeyedLimiter(requestsPerSecond, burst)}
}

// Wait blocks until the request for the given URL can proceed
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	domain := extractDomain(urlStr)
	if domain == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}
	return dl.WaitKey(ctx, domain)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	domain := extractDomain(urlStr)
	if domain == "" {
		return true
	}
	return dl.AllowKey(domain)
}

// extractDomain returns the lowercased host of a URL
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
