package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/law-makers/goodscrawl/internal/proxy"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<html><head>
<title>Wool Coat | Store</title>
<meta property="og:title" content="Wool Coat">
<meta name="description" content="warm">
<script>window.__STATE__ = {price: 129000};</script>
</head><body>
<div class="price"><span>129,000</span>원</div>
<div style="display: none"><span class="price">1,000원</span></div>
<ul class="opts">
  <li>S</li>
  <li hidden>M</li>
  <li><button>L <em>(품절)</em></button></li>
</ul>
</body></html>`

func mustPage(t *testing.T, html string) *StaticPage {
	t.Helper()
	p, err := FromHTML("https://www.musinsa.com/products/1", html)
	require.NoError(t, err)
	return p
}

func TestStaticPage_Finders(t *testing.T) {
	p := mustPage(t, productHTML)

	assert.Len(t, p.FindAll(".opts li"), 3)
	assert.Empty(t, p.FindAll(".missing"))
	assert.Empty(t, p.FindAll("[[invalid"))

	_, ok := p.FindOne("#nope")
	assert.False(t, ok)

	el, ok := p.FindOne(".opts")
	require.True(t, ok)
	assert.Len(t, el.FindAll("li"), 3)
	assert.Len(t, el.FindAll("button"), 1)
}

func TestStaticPage_TextAndVisibility(t *testing.T) {
	p := mustPage(t, productHTML)

	opts, _ := p.FindOne(".opts")
	assert.Equal(t, "S\nL (품절)", opts.Text())

	prices := p.FindAll(".price")
	require.Len(t, prices, 2)
	assert.True(t, prices[0].Visible())
	assert.Equal(t, "129,000원", prices[0].Text())
	assert.False(t, prices[1].Visible())

	el, ok := First(p, []string{"span.price", "div.price"})
	require.True(t, ok)
	assert.Equal(t, "129,000원", el.Text())
}

func TestStaticPage_Meta(t *testing.T) {
	p := mustPage(t, productHTML)
	assert.Equal(t, "Wool Coat", Meta(p, "og:title"))
	assert.Equal(t, "warm", Meta(p, "description"))
	assert.Equal(t, "", Meta(p, "og:image"))
	assert.Equal(t, "Wool Coat | Store", p.Title())
}

func TestStaticPage_Evaluate(t *testing.T) {
	p := mustPage(t, productHTML)

	var price int
	require.NoError(t, p.Evaluate("window.__STATE__.price", &price))
	assert.Equal(t, 129000, price)

	var defined bool
	require.NoError(t, p.Evaluate("typeof window.__MISSING__ !== 'undefined'", &defined))
	assert.False(t, defined)
}

func TestStaticPage_ClickAndNavigate(t *testing.T) {
	p := mustPage(t, productHTML)
	el, _ := p.FindOne("button")
	assert.ErrorIs(t, el.Click(), ErrNotInteractive)
	assert.ErrorIs(t, p.Navigate("https://example.com"), ErrNotInteractive)
}

func TestFetcher_Open(t *testing.T) {
	var gotUA, gotCookie, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
			return
		case "/old":
			http.Redirect(w, r, "/goods/1", http.StatusFound)
			return
		}
		gotUA = r.UserAgent()
		gotHeader = r.Header.Get("X-Test")
		if c, err := r.Cookie("sid"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte(productHTML))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{
		UserAgent: "goodscrawl-test",
		Headers:   map[string]string{"X-Test": "1"},
		Cookies: []*http.Cookie{
			{Name: "sid", Value: "abc", Domain: "127.0.0.1"},
			{Name: "other", Value: "x", Domain: ".example.com"},
		},
		Limiter: ratelimit.NewDomainLimiter(100, 10),
	})

	p, err := f.Open(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/goods/1", p.CurrentURL())
	assert.Equal(t, "goodscrawl-test", gotUA)
	assert.Equal(t, "1", gotHeader)
	assert.Equal(t, "abc", gotCookie)
	assert.Equal(t, "Wool Coat | Store", p.Title())

	require.NoError(t, p.Navigate(srv.URL+"/goods/2"))
	assert.Equal(t, srv.URL+"/goods/2", p.CurrentURL())

	_, err = f.Open(context.Background(), srv.URL+"/missing")
	var httpErr retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestFetcher_ProxyFailureMarked(t *testing.T) {
	pool := proxy.NewProxyPool([]string{"http://127.0.0.1:1"})
	f := NewFetcher(FetcherOptions{Proxies: pool})

	_, err := f.Open(context.Background(), "http://example.invalid/")
	require.Error(t, err)
	assert.Equal(t, "http://127.0.0.1:1", pool.GetNext(), "only proxy is returned even while cooling down")
}

func TestStaticPage_ScriptText(t *testing.T) {
	p := mustPage(t, `<html><body><script id="data" type="application/json">{"a": 1}</script></body></html>`)
	el, ok := p.FindOne("script#data")
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, el.Text())
}

func TestFetcher_NewPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productHTML))
	}))
	defer srv.Close()

	p := NewFetcher(FetcherOptions{}).NewPage(context.Background())
	assert.Equal(t, "about:blank", p.CurrentURL())
	assert.Empty(t, p.FindAll("h1"))

	require.NoError(t, p.Navigate(srv.URL+"/goods/3"))
	assert.Equal(t, "Wool Coat | Store", p.Title())
}
