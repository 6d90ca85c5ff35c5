package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/goodscrawl/internal/jsstate"
	"golang.org/x/net/html"
)

// DefaultScriptTimeout bounds each inline script run by a StaticPage
const DefaultScriptTimeout = 2 * time.Second

// StaticPage is a Page over an already-fetched HTML document. Inline scripts
// run in an embedded runtime the first time Evaluate is called.
type StaticPage struct {
	ctx     context.Context
	fetcher *Fetcher
	url     string
	source  string
	doc     *goquery.Document

	scriptTimeout time.Duration
	rt            *jsstate.Runtime
}

// FromHTML builds a StaticPage for source as if it had been loaded from url
func FromHTML(url, source string) (*StaticPage, error) {
	p := &StaticPage{ctx: context.Background(), scriptTimeout: DefaultScriptTimeout}
	if err := p.load(url, source); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *StaticPage) load(url, source string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	p.url = url
	p.source = source
	p.doc = doc
	p.rt = nil
	return nil
}

// Navigate fetches url and replaces the current document. A page built with
// FromHTML has no fetcher and cannot navigate.
func (p *StaticPage) Navigate(url string) error {
	if p.fetcher == nil {
		return fmt.Errorf("navigate %s: %w", url, ErrNotInteractive)
	}
	final, source, err := p.fetcher.get(p.ctx, url)
	if err != nil {
		return err
	}
	return p.load(final, source)
}

func (p *StaticPage) FindAll(selector string) []Element {
	return p.wrap(find(p.doc.Selection, selector))
}

func (p *StaticPage) FindOne(selector string) (Element, bool) {
	els := p.FindAll(selector)
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (p *StaticPage) Evaluate(script string, out interface{}) error {
	rt := p.runtime()
	if out == nil {
		_, err := rt.Eval(script)
		return err
	}
	return rt.EvalJSON(script, out)
}

func (p *StaticPage) runtime() *jsstate.Runtime {
	if p.rt == nil {
		p.rt = jsstate.New(p.url, p.scriptTimeout)
		p.rt.Run(jsstate.InlineScripts(p.doc))
	}
	return p.rt
}

func (p *StaticPage) CurrentURL() string { return p.url }

func (p *StaticPage) Source() string { return p.source }

func (p *StaticPage) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

func (p *StaticPage) wrap(sel *goquery.Selection) []Element {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	out := make([]Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, &staticElement{node: n, sel: sel.FilterNodes(n), page: p})
	}
	return out
}

// find matches selector below sel. Invalid selectors match nothing.
func find(sel *goquery.Selection, selector string) *goquery.Selection {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return sel.FindMatcher(m)
}

type staticElement struct {
	node *html.Node
	sel  *goquery.Selection
	page *StaticPage
}

// Text renders like innerText. Raw-text elements such as scripts return
// their body unchanged.
func (e *staticElement) Text() string {
	if skippedElements[e.node.DataAtom] {
		return e.sel.Text()
	}
	return renderText(e.node)
}

func (e *staticElement) Attribute(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *staticElement) Click() error { return ErrNotInteractive }

func (e *staticElement) Visible() bool { return visible(e.node) }

func (e *staticElement) FindAll(selector string) []Element {
	return e.page.wrap(find(e.sel, selector))
}
