package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/goodscrawl/internal/proxy"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/retry"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps how much of a response is read into a StaticPage
const maxBodyBytes = 16 << 20

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Timeout       time.Duration
	UserAgent     string
	Headers       map[string]string
	Cookies       []*http.Cookie
	Limiter       ratelimit.RateLimiter
	Proxies       *proxy.ProxyPool
	ScriptTimeout time.Duration
}

// Fetcher loads pages over plain HTTP. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	opts   FetcherOptions
}

// NewFetcher creates a Fetcher. Requests go through the proxy pool when one
// is configured.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = DefaultScriptTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy.FromRequest
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout, Transport: transport},
		opts:   opts,
	}
}

// Open fetches url and returns it as a StaticPage bound to ctx
func (f *Fetcher) Open(ctx context.Context, rawURL string) (*StaticPage, error) {
	final, source, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	p := &StaticPage{ctx: ctx, fetcher: f, scriptTimeout: f.opts.ScriptTimeout}
	if err := p.load(final, source); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPage returns an empty page bound to ctx whose Navigate loads documents
// through f
func (f *Fetcher) NewPage(ctx context.Context) *StaticPage {
	p := &StaticPage{ctx: ctx, fetcher: f, scriptTimeout: f.opts.ScriptTimeout}
	_ = p.load("about:blank", "")
	return p
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, string, error) {
	start := time.Now()

	if f.opts.Limiter != nil {
		if err := f.opts.Limiter.Wait(ctx, rawURL); err != nil {
			return "", "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}
	for _, c := range cookiesFor(req.URL, f.opts.Cookies) {
		req.AddCookie(c)
	}

	var via string
	if f.opts.Proxies != nil {
		via = f.opts.Proxies.GetNext()
		req = req.WithContext(proxy.WithProxy(req.Context(), via))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if via != "" {
			f.opts.Proxies.MarkFailed(via)
		}
		return "", "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()
	if via != "" {
		f.opts.Proxies.MarkHealthy(via)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", retry.NewHTTPError(resp.StatusCode, resp.Status, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to read body: %w", err)
	}

	log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Int("bytes", len(body)).
		Msg("Fetch completed")

	return resp.Request.URL.String(), string(body), nil
}

// cookiesFor returns the session cookies whose domain matches u
func cookiesFor(u *url.URL, cookies []*http.Cookie) []*http.Cookie {
	host := u.Hostname()
	var out []*http.Cookie
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" || host == domain || strings.HasSuffix(host, "."+domain) {
			out = append(out, c)
		}
	}
	return out
}
