package scrape

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/goodscrawl/internal/cache"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/retry"
	"github.com/law-makers/goodscrawl/internal/site"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<html><head><title>Wool Coat | Shop</title>
<meta property="og:image" content="//cdn.example.com/coat.jpg"></head>
<body>
<h1 class="title">Wool Coat</h1>
<div class="price">39,000원</div>
<ul><li class="size-btn">S</li><li class="size-btn" aria-disabled="true">M</li><li class="size-btn">L</li></ul>
</body></html>`

func testShop() *extract.StrategySet {
	return &extract.StrategySet{
		Name:           "testshop",
		Hosts:          []string{"127.0.0.1"},
		ReadySelectors: []string{".title"},
		TitleSelectors: []string{".title"},
		PriceSelectors: []string{".price"},
		SizeSelectors:  []string{".size-btn"},
	}
}

type countingProvider struct {
	Provider
	acquired atomic.Int32
}

func (p *countingProvider) Acquire(ctx context.Context) (page.Page, func(), error) {
	p.acquired.Add(1)
	return p.Provider.Acquire(ctx)
}

type fixture struct {
	srv      *httptest.Server
	hits     atomic.Int32
	provider *countingProvider
	cache    *cache.MemoryCache
	logs     *bytes.Buffer
	svc      *Service
}

func newFixture(t *testing.T, handler http.HandlerFunc, mutate func(*Options)) *fixture {
	t.Helper()
	f := &fixture{logs: &bytes.Buffer{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)

	registry := site.NewRegistry()
	require.NoError(t, registry.Register(testShop()))

	fetcher := page.NewFetcher(page.FetcherOptions{UserAgent: "goodscrawl-test"})
	f.provider = &countingProvider{Provider: NewStaticProvider(fetcher)}
	f.cache = cache.NewMemoryCache(10)
	t.Cleanup(f.cache.Close)

	opts := Options{
		Sites:    registry,
		Provider: f.provider,
		Cache:    f.cache,
		Limiter:  ratelimit.NewDomainLimiter(1000, 100),
		Opener:   SiblingOpener(fetcher, nil),
		Logger:   zerolog.New(f.logs).Level(zerolog.DebugLevel),
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
		Retry: retry.Config{
			MaxAttempts:          3,
			InitialBackoff:       time.Millisecond,
			MaxBackoff:           5 * time.Millisecond,
			Multiplier:           2,
			RetryableStatusCodes: []int{http.StatusServiceUnavailable},
		},
		Resolve: extract.Options{
			ReadyAttempts: 1,
			ReadyInterval: time.Millisecond,
			PollAttempts:  1,
			PollInterval:  time.Millisecond,
			AuxTimeout:    time.Second,
			MaxSiblings:   2,
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	f.svc = New(opts)
	return f
}

func serveProduct(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(productHTML))
}

func TestScrape_StaticPage(t *testing.T) {
	f := newFixture(t, serveProduct, nil)

	rec, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/1")
	require.NoError(t, err)
	assert.Equal(t, "testshop", rec.Site)
	assert.Equal(t, "Wool Coat", rec.Title)
	assert.Equal(t, 39000, rec.Price)
	assert.Equal(t, "https://cdn.example.com/coat.jpg", rec.Image)
	require.Len(t, rec.Sizes, 3)
	assert.True(t, rec.Sizes[1].IsSoldOut)
	assert.NotNil(t, rec.Colors)

	assert.Contains(t, f.logs.String(), `"request_id"`)
	assert.Contains(t, f.logs.String(), `"family":"price"`)
}

func TestScrape_CachesByCanonicalURL(t *testing.T) {
	f := newFixture(t, serveProduct, nil)

	first, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/1?utm_source=feed")
	require.NoError(t, err)
	first.Title = "mutated"

	second, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/1")
	require.NoError(t, err)
	assert.Equal(t, "Wool Coat", second.Title)
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Equal(t, int32(1), f.provider.acquired.Load())
}

func TestScrape_UnsupportedSiteTouchesNoPage(t *testing.T) {
	f := newFixture(t, serveProduct, nil)

	rec, err := f.svc.Scrape(context.Background(), "https://shop.example.com/item/1")
	assert.Nil(t, rec)
	require.ErrorIs(t, err, extract.ErrUnsupportedSite)
	assert.Equal(t, int32(0), f.provider.acquired.Load())
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestScrape_NavigationFailure(t *testing.T) {
	t.Run("not found is not retried", func(t *testing.T) {
		f := newFixture(t, http.NotFound, nil)

		rec, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/404")
		assert.Nil(t, rec)
		require.ErrorIs(t, err, extract.ErrNavigation)
		assert.Equal(t, extract.CodeNavigationFailure, extract.CodeOf(err))
		assert.Equal(t, int32(1), f.hits.Load())
	})

	t.Run("unavailable is retried", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, nil)

		_, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/503")
		require.ErrorIs(t, err, extract.ErrNavigation)
		assert.Equal(t, int32(3), f.hits.Load())
		assert.Equal(t, 0, f.cache.Len())
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		var calls atomic.Int32
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			serveProduct(w, r)
		}, nil)

		rec, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/2")
		require.NoError(t, err)
		assert.Equal(t, 39000, rec.Price)
	})
}

func TestScrape_Timeout(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(o *Options) {
		o.Timeout = 50 * time.Millisecond
	})

	rec, err := f.svc.Scrape(context.Background(), f.srv.URL+"/goods/slow")
	assert.Nil(t, rec)
	require.ErrorIs(t, err, extract.ErrTimeout)
	assert.Equal(t, extract.CodeTimeout, extract.CodeOf(err))
}

func TestScrape_CallerCancellation(t *testing.T) {
	f := newFixture(t, serveProduct, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := f.svc.Scrape(ctx, f.srv.URL+"/goods/1")
	assert.Nil(t, rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, extract.ErrTimeout))
}

func TestSiblingOpener_Limited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(serveProduct))
	defer srv.Close()

	opener := SiblingOpener(page.NewFetcher(page.FetcherOptions{}), ratelimit.NewDomainLimiter(1000, 10))
	p, err := opener.Open(context.Background(), srv.URL+"/goods/9")
	require.NoError(t, err)
	assert.Equal(t, "Wool Coat | Shop", p.Title())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SiblingOpener(page.NewFetcher(page.FetcherOptions{}), ratelimit.NewDomainLimiter(0.001, 1)).Open(ctx, srv.URL)
	assert.Error(t, err)
}
