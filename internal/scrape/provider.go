package scrape

import (
	"context"
	"fmt"

	"github.com/law-makers/goodscrawl/internal/browser"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
)

// Provider hands out a fresh page for one scrape. The returned func gives
// the page back and must be called exactly once.
type Provider interface {
	Name() string
	Acquire(ctx context.Context) (page.Page, func(), error)
}

// BrowserProvider serves Chrome tabs from a pool
type BrowserProvider struct {
	pool *browser.BrowserPool
	opts browser.PageOptions
}

// NewBrowserProvider creates a provider over pool
func NewBrowserProvider(pool *browser.BrowserPool, opts browser.PageOptions) *BrowserProvider {
	return &BrowserProvider{pool: pool, opts: opts}
}

func (p *BrowserProvider) Name() string { return "browser" }

// Acquire waits for a tab until ctx ends
func (p *BrowserProvider) Acquire(ctx context.Context) (page.Page, func(), error) {
	tab, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire browser tab: %w", err)
	}
	pg, done := browser.NewPage(ctx, tab, p.opts)
	return pg, func() {
		done()
		p.pool.Release(tab)
	}, nil
}

// StaticProvider serves pages fetched over plain HTTP, with inline scripts
// run in the embedded runtime
type StaticProvider struct {
	fetcher *page.Fetcher
}

// NewStaticProvider creates a provider over fetcher
func NewStaticProvider(fetcher *page.Fetcher) *StaticProvider {
	return &StaticProvider{fetcher: fetcher}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Acquire(ctx context.Context) (page.Page, func(), error) {
	return p.fetcher.NewPage(ctx), func() {}, nil
}

// SiblingOpener loads sibling color pages with the static fetcher, whatever
// provider serves the product page itself. Each load takes a token from
// limiter when one is given.
func SiblingOpener(fetcher *page.Fetcher, limiter ratelimit.RateLimiter) extract.Opener {
	return extract.OpenerFunc(func(ctx context.Context, url string) (page.Page, error) {
		if limiter != nil {
			if err := limiter.Wait(ctx, url); err != nil {
				return nil, err
			}
		}
		p, err := fetcher.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
