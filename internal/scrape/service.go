// Package scrape runs one product page visit end to end: site dispatch,
// cache, rate limiting, navigation with retry, readiness and resolution.
package scrape

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/law-makers/goodscrawl/internal/cache"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/reqctx"
	"github.com/law-makers/goodscrawl/internal/retry"
	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/rs/zerolog"
)

// SiteSelector picks the strategy set serving a URL
type SiteSelector interface {
	Select(rawURL string) (*extract.StrategySet, error)
}

// Options wires a Service. Cache, Limiter, HTTPClient and Opener are optional.
type Options struct {
	Sites    SiteSelector
	Provider Provider
	Cache    cache.Cache
	Limiter  ratelimit.RateLimiter
	// HTTPClient serves the auxiliary sizing API
	HTTPClient *http.Client
	Opener     extract.Opener
	Logger     zerolog.Logger

	Timeout  time.Duration
	CacheTTL time.Duration
	Retry    retry.Config
	Resolve  extract.Options
}

// Service scrapes product pages. It is safe for concurrent use; every call
// works on its own page.
type Service struct {
	opts Options
}

// New creates a Service
func New(opts Options) *Service {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Resolve == (extract.Options{}) {
		opts.Resolve = extract.DefaultOptions()
	}
	return &Service{opts: opts}
}

// Provider returns the page provider in use
func (s *Service) Provider() Provider { return s.opts.Provider }

// Scrape returns the product record of rawURL, or one error carrying an
// extract.ErrorCode: UNSUPPORTED_SITE before any page is touched,
// NAVIGATION_FAILURE when the page cannot be loaded, TIMEOUT when the whole
// call outlives the configured timeout.
func (s *Service) Scrape(ctx context.Context, rawURL string) (*models.ProductRecord, error) {
	ctx = reqctx.WithRequestContext(ctx)
	logger := reqctx.Logger(ctx, s.opts.Logger).With().Str("url", rawURL).Logger()

	set, err := s.opts.Sites.Select(rawURL)
	if err != nil {
		logger.Debug().Err(err).Msg("No strategy set for URL")
		return nil, err
	}
	logger = logger.With().Str("site", set.Name).Logger()

	key := cache.Key(set.Name, rawURL)
	if s.opts.Cache != nil {
		if rec, ok := s.opts.Cache.Get(key); ok {
			logger.Debug().Msg("Cache hit")
			return rec, nil
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	rec, err := s.visit(ctx, set, rawURL, logger)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = extract.NewError(extract.CodeTimeout, "scrape timed out", err).
				WithDetail("url", rawURL).
				WithDetail("timeout", s.opts.Timeout.String())
		}
		logger.Warn().
			Err(err).
			Str("code", string(extract.CodeOf(err))).
			Dur("elapsed", reqctx.Elapsed(ctx)).
			Msg("Scrape failed")
		return nil, err
	}

	if s.opts.Cache != nil && s.opts.CacheTTL > 0 {
		s.opts.Cache.Set(key, rec, s.opts.CacheTTL)
	}
	logger.Info().
		Str("status", string(rec.Status)).
		Int("price", rec.Price).
		Int("sizes", len(rec.Sizes)).
		Int("colors", len(rec.Colors)).
		Dur("elapsed", reqctx.Elapsed(ctx)).
		Msg("Scrape completed")
	return rec, nil
}

func (s *Service) visit(ctx context.Context, set *extract.StrategySet, rawURL string, logger zerolog.Logger) (*models.ProductRecord, error) {
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	p, release, err := s.opts.Provider.Acquire(ctx)
	if err != nil {
		return nil, extract.NewError(extract.CodeNavigationFailure, "no page available", err).
			WithDetail("provider", s.opts.Provider.Name())
	}
	defer release()

	err = retry.WithRetry(ctx, s.opts.Retry, func() error {
		return p.Navigate(rawURL)
	})
	if err != nil {
		return nil, extract.NewError(extract.CodeNavigationFailure, "failed to load page", err).
			WithDetail("url", rawURL)
	}
	logger.Debug().Str("provider", s.opts.Provider.Name()).Str("final_url", p.CurrentURL()).Msg("Page loaded")

	c := extract.NewContext(ctx, p, set, rawURL)
	c.Log = logger
	c.HTTP = s.opts.HTTPClient
	c.Opener = s.opts.Opener
	c.Options = s.opts.Resolve

	extract.AwaitReady(c, s.opts.Resolve.ReadyAttempts, s.opts.Resolve.ReadyInterval)
	return extract.Resolve(c), nil
}
