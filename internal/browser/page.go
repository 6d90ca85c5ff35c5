package browser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	cdruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/internal/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// permanentNetErrors are Chrome load failures that a retry cannot fix
var permanentNetErrors = []string{
	"net::ERR_NAME_NOT_RESOLVED",
	"net::ERR_INVALID_URL",
	"net::ERR_UNKNOWN_URL_SCHEME",
	"net::ERR_BLOCKED_BY_CLIENT",
	"invalid URL",
}

// PageOptions configures a ChromePage
type PageOptions struct {
	Headers         map[string]string
	Cookies         []*http.Cookie
	NavigateTimeout time.Duration
	QueryTimeout    time.Duration
}

// ChromePage is a page.Page over one Chrome tab
type ChromePage struct {
	ctx    context.Context
	opts   PageOptions
	source string
}

var _ page.Page = (*ChromePage)(nil)

// NewPage binds tab to ctx: cancelling ctx aborts in-flight browser calls
// without closing the tab. Call the returned func when done with the page.
func NewPage(ctx context.Context, tab *Tab, opts PageOptions) (*ChromePage, func()) {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 3 * time.Second
	}
	pageCtx, cancel := context.WithCancel(tab.Ctx)
	stop := context.AfterFunc(ctx, cancel)
	return &ChromePage{ctx: pageCtx, opts: opts}, func() {
		stop()
		cancel()
	}
}

func (p *ChromePage) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads url and waits for the body. A main-document HTTP status
// outside 2xx is reported as a retry.HTTPError; failures no retry can fix
// are marked permanent.
func (p *ChromePage) Navigate(url string) error {
	p.source = ""
	setup := []chromedp.Action{network.Enable()}
	if len(p.opts.Headers) > 0 {
		headers := make(network.Headers, len(p.opts.Headers))
		for k, v := range p.opts.Headers {
			headers[k] = v
		}
		setup = append(setup, network.SetExtraHTTPHeaders(headers))
	}
	if params := cookieParams(p.opts.Cookies); len(params) > 0 {
		setup = append(setup, network.SetCookies(params))
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.opts.NavigateTimeout)
	defer cancel()
	if err := chromedp.Run(ctx, setup...); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	resp, err := chromedp.RunResponse(ctx, chromedp.Navigate(url))
	if err != nil {
		return navigationError(url, err)
	}
	if err := responseError(url, resp); err != nil {
		return err
	}
	if err := chromedp.Run(ctx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func navigationError(url string, err error) error {
	wrapped := fmt.Errorf("navigate %s: %w", url, err)
	for _, marker := range permanentNetErrors {
		if strings.Contains(err.Error(), marker) {
			return retry.Permanent(wrapped)
		}
	}
	return wrapped
}

// responseError maps the main document response onto the status errors the
// static fetcher returns. No response (about:blank, cached) is not an error.
func responseError(url string, resp *network.Response) error {
	if resp == nil {
		return nil
	}
	code := int(resp.Status)
	if code == 0 || (code >= 200 && code < 300) {
		return nil
	}
	return fmt.Errorf("navigate %s: %w", url, retry.NewHTTPError(code, resp.StatusText, url))
}

func cookieParams(cookies []*http.Cookie) []*network.CookieParam {
	var out []*network.CookieParam
	for _, c := range cookies {
		out = append(out, &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	return out
}

func (p *ChromePage) FindAll(selector string) []page.Element {
	return p.find(selector, nil)
}

func (p *ChromePage) find(selector string, parent *cdp.Node) []page.Element {
	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if parent != nil {
		opts = append(opts, chromedp.FromNode(parent))
	}
	if err := p.run(p.opts.QueryTimeout, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil
	}
	out := make([]page.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &chromeElement{page: p, node: n})
	}
	return out
}

func (p *ChromePage) FindOne(selector string) (page.Element, bool) {
	els := p.FindAll(selector)
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (p *ChromePage) Evaluate(script string, out interface{}) error {
	if out == nil {
		var discard interface{}
		out = &discard
	}
	return p.run(p.opts.QueryTimeout, chromedp.Evaluate(script, out))
}

func (p *ChromePage) CurrentURL() string {
	var loc string
	_ = p.run(p.opts.QueryTimeout, chromedp.Location(&loc))
	return loc
}

// Source returns the serialized DOM. It is cached until the next navigation
// or click.
func (p *ChromePage) Source() string {
	if p.source != "" {
		return p.source
	}
	var html string
	if err := p.run(p.opts.QueryTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err == nil {
		p.source = html
	}
	return html
}

func (p *ChromePage) Title() string {
	var title string
	_ = p.run(p.opts.QueryTimeout, chromedp.Title(&title))
	return title
}

type chromeElement struct {
	page *ChromePage
	node *cdp.Node
}

// callOn runs fn with this bound to the element and decodes its result
func (e *chromeElement) callOn(fn string, out interface{}) error {
	return e.page.run(e.page.opts.QueryTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := cdruntime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal([]byte(res.Value), out)
	}))
}

func (e *chromeElement) Text() string {
	var s string
	_ = e.callOn(`function() { return this.innerText || this.textContent || ""; }`, &s)
	return s
}

func (e *chromeElement) Attribute(name string) (string, bool) {
	var v *string
	err := e.callOn(`function() { return this.getAttribute(`+strconv.Quote(name)+`); }`, &v)
	if err != nil || v == nil {
		return e.node.Attribute(name)
	}
	return *v, true
}

func (e *chromeElement) Click() error {
	e.page.source = ""
	err := e.page.run(e.page.opts.QueryTimeout, chromedp.MouseClickNode(e.node))
	if err == nil {
		return nil
	}
	// nodes covered by overlays do not take synthetic mouse events
	return e.callOn(`function() { this.click(); }`, nil)
}

func (e *chromeElement) Visible() bool {
	var ok bool
	err := e.callOn(`function() {
		const s = window.getComputedStyle(this);
		if (s.display === "none" || s.visibility === "hidden") return false;
		const r = this.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	}`, &ok)
	return err == nil && ok
}

func (e *chromeElement) FindAll(selector string) []page.Element {
	return e.page.find(selector, e.node)
}
