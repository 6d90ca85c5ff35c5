// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/law-makers/goodscrawl/internal/auth"
	"github.com/law-makers/goodscrawl/internal/browser"
	"github.com/law-makers/goodscrawl/internal/cache"
	"github.com/law-makers/goodscrawl/internal/config"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/internal/proxy"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/retry"
	"github.com/law-makers/goodscrawl/internal/scrape"
	"github.com/law-makers/goodscrawl/internal/site"
	"github.com/law-makers/goodscrawl/internal/utils/headers"
	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Sites       *site.Registry
	Cache       *cache.MemoryCache
	RateLimiter *ratelimit.DomainLimiter
	Proxies     *proxy.ProxyPool
	HTTPClient  *http.Client

	poolMu      sync.Mutex
	browserPool *browser.BrowserPool
	logFile     io.Closer
	startTime   time.Time
}

// ScrapeOptions are the per-invocation inputs of a scrape service
type ScrapeOptions struct {
	Mode    models.PageMode
	Headers map[string]string
	Session *auth.SessionData
}

// New creates and initializes a new Application with all dependencies.
// No browser is started here; the pool is created on first use.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger, logFile, err := SetupLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	sites := site.Default()
	if err := site.ApplyOverrides(sites, cfg.Sites); err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("site overrides: %w", err)
	}

	proxies, err := proxyPool(cfg)
	if err != nil {
		closeQuietly(logFile)
		return nil, err
	}

	app := &Application{
		Config:      cfg,
		Logger:      logger,
		Sites:       sites,
		Cache:       cache.NewMemoryCache(cfg.CacheMaxEntries),
		RateLimiter: ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Proxies:     proxies,
		HTTPClient: &http.Client{
			Timeout: cfg.AuxTimeout,
			Transport: &http.Transport{
				Proxy:               proxy.FromRequest,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logFile:   logFile,
		startTime: time.Now(),
	}

	logger.Debug().
		Strs("sites", sites.Names()).
		Int("cache_entries", cfg.CacheMaxEntries).
		Float64("rps", cfg.RateLimitRPS).
		Int("proxies", proxies.Len()).
		Msg("Application initialized")
	return app, nil
}

// SetupLogger builds the process logger from cfg and installs it as the
// global zerolog logger. With a log file, JSON records are also written to a
// rotating file; the returned closer closes it.
func SetupLogger(cfg *config.Config, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = stderr
	if !cfg.JSONLog {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	}

	var out io.Writer = console
	var closer io.Closer
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger, closer, nil
}

func proxyPool(cfg *config.Config) (*proxy.ProxyPool, error) {
	list := cfg.Proxies
	if cfg.Proxy != "" {
		list = append([]string{cfg.Proxy}, list...)
	}
	pool, err := proxy.Parse(strings.Join(list, ","))
	if err != nil {
		return nil, fmt.Errorf("proxy configuration: %w", err)
	}
	return pool, nil
}

// Scraper builds a scrape service for one invocation. Auto mode uses Chrome
// when an executable is found and the static fetcher otherwise.
func (a *Application) Scraper(opts ScrapeOptions) (*scrape.Service, error) {
	cfg := a.Config
	var cookies []*http.Cookie
	extra := opts.Headers
	if opts.Session != nil {
		cookies = opts.Session.HTTPCookies()
		extra = headers.Merge(opts.Session.Headers, opts.Headers)
	}

	fetcher := page.NewFetcher(page.FetcherOptions{
		Timeout:   cfg.NavigateTimeout,
		UserAgent: cfg.UserAgent,
		Headers:   extra,
		Cookies:   cookies,
		Proxies:   a.Proxies,
	})

	mode := opts.Mode
	if mode == "" {
		mode = models.PageMode(cfg.Mode)
	}
	if mode == models.ModeAuto {
		mode = models.ModeStatic
		if browser.FindChrome(cfg.ChromePath) != "" {
			mode = models.ModeBrowser
		} else {
			a.Logger.Warn().Msg("Chrome not found, falling back to static pages")
		}
	}

	var provider scrape.Provider
	switch mode {
	case models.ModeStatic:
		provider = scrape.NewStaticProvider(fetcher)
	case models.ModeBrowser:
		provider = scrape.NewBrowserProvider(a.EnsureBrowserPool(), browser.PageOptions{
			Headers:         extra,
			Cookies:         cookies,
			NavigateTimeout: cfg.NavigateTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown page mode %q", mode)
	}

	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.RetryAttempts + 1

	return scrape.New(scrape.Options{
		Sites:      a.Sites,
		Provider:   provider,
		Cache:      a.Cache,
		Limiter:    a.RateLimiter,
		HTTPClient: a.HTTPClient,
		Opener:     scrape.SiblingOpener(fetcher, a.RateLimiter),
		Logger:     a.Logger,
		Timeout:    cfg.HTTPTimeout,
		CacheTTL:   cfg.CacheTTL,
		Retry:      rc,
		Resolve: extract.Options{
			ReadyAttempts: cfg.ReadyAttempts,
			ReadyInterval: cfg.ReadyInterval,
			PollAttempts:  cfg.PollAttempts,
			PollInterval:  cfg.PollInterval,
			AuxTimeout:    cfg.AuxTimeout,
			MaxSiblings:   cfg.MaxSiblings,
		},
	}), nil
}

// EnsureBrowserPool lazily creates the browser pool
func (a *Application) EnsureBrowserPool() *browser.BrowserPool {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()

	if a.browserPool == nil {
		a.browserPool = browser.NewBrowserPool(browser.PoolOptions{
			Size:       a.Config.BrowserPoolSize,
			Headless:   a.Config.BrowserHeadless,
			UserAgent:  a.Config.UserAgent,
			Proxy:      a.Config.Proxy,
			ChromePath: a.Config.ChromePath,
		})
		a.Logger.Info().Int("pool_size", a.browserPool.Size()).Msg("Browser pool initialized on demand")
	}
	return a.browserPool
}

// PoolSize is the number of pages that can be open at once, 0 when no
// browser pool has been started
func (a *Application) PoolSize() int {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()
	if a.browserPool == nil {
		return 0
	}
	return a.browserPool.Size()
}

// Stats reports cache and browser pool usage for the health endpoint
func (a *Application) Stats() map[string]interface{} {
	stats := map[string]interface{}{"cache": a.Cache.Stats()}
	a.poolMu.Lock()
	if a.browserPool != nil {
		stats["browser"] = map[string]int{
			"size":      a.browserPool.Size(),
			"available": a.browserPool.Available(),
		}
	}
	a.poolMu.Unlock()
	return stats
}

// Close gracefully shuts down the application and all its resources.
// Errors are logged and do not stop the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	a.poolMu.Lock()
	if a.browserPool != nil {
		if err := a.browserPool.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser pool")
		}
		a.browserPool = nil
	}
	a.poolMu.Unlock()

	a.Cache.Close()
	a.HTTPClient.CloseIdleConnections()

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	closeQuietly(a.logFile)
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
