// Package proxy rotates outbound HTTP requests over a list of proxies,
// skipping ones that failed recently.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// FailureCooldown is how long a failed proxy is skipped
const FailureCooldown = 5 * time.Minute

// ProxyPool manages a list of proxies with rotation and health checking
type ProxyPool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
	now     func() time.Time
}

// NewProxyPool creates a new ProxyPool
func NewProxyPool(proxies []string) *ProxyPool {
	return &ProxyPool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// Parse builds a pool from a comma separated proxy list. Every entry must be
// an absolute http, https or socks5 URL. An empty list yields a nil pool.
func Parse(list string) (*ProxyPool, error) {
	var proxies []string
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", raw)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
		}
		proxies = append(proxies, raw)
	}
	if len(proxies) == 0 {
		return nil, nil
	}
	return NewProxyPool(proxies), nil
}

// Len returns the number of configured proxies
func (p *ProxyPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// GetNext returns the next proxy not in its failure cooldown. When every
// proxy is cooling down the next one in rotation is returned anyway.
func (p *ProxyPool) GetNext() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[proxy]; ok {
			if p.now().Sub(failTime) < FailureCooldown {
				if p.index == start {
					return proxy
				}
				continue
			}
			delete(p.failed, proxy)
		}

		return proxy
	}
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *ProxyPool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *ProxyPool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

type ctxKey struct{}

// WithProxy binds the proxy a request should use to ctx
func WithProxy(ctx context.Context, proxy string) context.Context {
	if proxy == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, proxy)
}

// FromRequest is an http.Transport Proxy func that routes a request through
// the proxy bound by WithProxy, or directly when none is bound.
func FromRequest(req *http.Request) (*url.URL, error) {
	proxy, _ := req.Context().Value(ctxKey{}).(string)
	if proxy == "" {
		return nil, nil
	}
	return url.Parse(proxy)
}
