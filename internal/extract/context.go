package extract

import (
	"context"
	"net/http"
	"time"

	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/rs/zerolog"
)

// Opener loads another page, used for sibling color variants
type Opener interface {
	Open(ctx context.Context, url string) (page.Page, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, url string) (page.Page, error)

// Open calls f
func (f OpenerFunc) Open(ctx context.Context, url string) (page.Page, error) {
	return f(ctx, url)
}

// Options are the polling budgets and limits of one resolution
type Options struct {
	ReadyAttempts int
	ReadyInterval time.Duration
	PollAttempts  int
	PollInterval  time.Duration
	AuxTimeout    time.Duration
	MaxSiblings   int
}

// DefaultOptions returns the budgets used when none are configured
func DefaultOptions() Options {
	return Options{
		ReadyAttempts: 20,
		ReadyInterval: 500 * time.Millisecond,
		PollAttempts:  6,
		PollInterval:  300 * time.Millisecond,
		AuxTimeout:    3 * time.Second,
		MaxSiblings:   8,
	}
}

// Context is everything a strategy may read. Strategies return a value or an
// absence and never touch the record; only the pipeline writes to it.
type Context struct {
	Page    page.Page
	Set     *StrategySet
	URL     string
	GoodsID string
	Log     zerolog.Logger
	HTTP    *http.Client
	Opener  Opener
	Options Options

	ctx        context.Context
	structured *Structured
	title      string
	soldOut    bool
}

// NewContext builds the context for one page visit. The goods id is derived
// from url up front.
func NewContext(ctx context.Context, p page.Page, set *StrategySet, url string) *Context {
	return &Context{
		Page:    p,
		Set:     set,
		URL:     url,
		GoodsID: set.DeriveGoodsID(url),
		Log:     zerolog.Nop(),
		HTTP:    http.DefaultClient,
		Options: DefaultOptions(),
		ctx:     ctx,
	}
}

// Ctx returns the request context
func (c *Context) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Structured returns the merged structured-data pass, or nil when no
// structured source yielded a product
func (c *Context) Structured() *Structured {
	return c.structured
}

// SoldOut reports the status resolved earlier in the pipeline
func (c *Context) SoldOut() bool {
	return c.soldOut
}

// sleep waits d unless the request context ends first
func (c *Context) sleep(d time.Duration) bool {
	if d <= 0 {
		return c.Ctx().Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.Ctx().Done():
		return false
	}
}
