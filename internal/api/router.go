// Package api serves product records over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/rs/zerolog"
)

// Scraper resolves one product URL
type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.ProductRecord, error)
}

// Options configures the router
type Options struct {
	Scraper Scraper
	// Limiter grants tokens per client IP; nil disables rate limiting
	Limiter   *ratelimit.KeyedLimiter
	Logger    zerolog.Logger
	StartTime time.Time
	Sites     []string
	// Stats, when set, is added to the health response
	Stats func() map[string]interface{}
}

// NewRouter creates the gin engine.
//
//	Global:  Recovery → RequestID → AccessLog → CORS
//	Product: RateLimit
//
// Health stays outside the rate limit so probes always work.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(opts.Logger))
	r.Use(CORS())

	v1 := r.Group("/api/v1")
	v1.GET("/health", Health(opts.StartTime, opts.Sites, opts.Stats))

	limited := r.Group("")
	if opts.Limiter != nil {
		limited.Use(RateLimit(opts.Limiter))
	}
	limited.GET("/api/v1/product", Product(opts.Scraper))
	limited.GET("/api/musinsa", LegacyMusinsa(opts.Scraper))

	return r
}
