// Package batch scrapes many product pages concurrently, one independent
// worker per page, and reports the results in input order.
package batch

import (
	"context"
	"time"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Scraper resolves one URL
type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.ProductRecord, error)
}

// Runner fans URLs out to a bounded number of workers
type Runner struct {
	scraper     Scraper
	concurrency int
}

// New creates a Runner. concurrency <= 0 is auto-tuned from system resources,
// capped by limit.
func New(scraper Scraper, concurrency, limit int) *Runner {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency(limit)
	}
	return &Runner{scraper: scraper, concurrency: concurrency}
}

// Concurrency returns the number of workers
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Run scrapes urls and streams one result per URL, in input order, as soon as
// it and every result before it are done. The channel is closed after the
// last result. A failed page never stops the others; once ctx ends the
// remaining pages report ctx.Err().
func (r *Runner) Run(ctx context.Context, urls []string) <-chan models.ScrapeResult {
	out := make(chan models.ScrapeResult, len(urls))
	slots := make([]chan models.ScrapeResult, len(urls))
	for i := range slots {
		slots[i] = make(chan models.ScrapeResult, 1)
	}

	log.Debug().Int("urls", len(urls)).Int("concurrency", r.concurrency).Msg("Batch started")

	go func() {
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, u := range urls {
			g.Go(func() error {
				slots[i] <- r.scrapeOne(ctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
	}()

	go func() {
		defer close(out)
		for _, slot := range slots {
			out <- <-slot
		}
	}()

	return out
}

// Collect runs urls and returns every result in input order
func (r *Runner) Collect(ctx context.Context, urls []string) []models.ScrapeResult {
	results := make([]models.ScrapeResult, 0, len(urls))
	for res := range r.Run(ctx, urls) {
		results = append(results, res)
	}
	return results
}

func (r *Runner) scrapeOne(ctx context.Context, index int, url string) models.ScrapeResult {
	res := models.ScrapeResult{Index: index, URL: url}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	start := time.Now()
	res.Record, res.Err = r.scraper.Scrape(ctx, url)
	res.Duration = time.Since(start)
	return res
}
