package extract

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/goodscrawl/internal/page"
)

// fakeElement is a scripted element: clicking it runs onClick
type fakeElement struct {
	text     string
	attrs    map[string]string
	hidden   bool
	clicks   int
	onClick  func()
	children map[string][]*fakeElement
}

func (e *fakeElement) Text() string { return e.text }

func (e *fakeElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Visible() bool { return !e.hidden }

func (e *fakeElement) FindAll(selector string) []page.Element {
	return elements(e.children[selector])
}

// fakePage answers FindAll from a selector table and Evaluate from a table
// of expressions that become defined after a number of evaluations
type fakePage struct {
	mu      sync.Mutex
	url     string
	source  string
	title   string
	nodes   map[string][]*fakeElement
	globals map[string]interface{}
	// readyAfter delays globals until that many Evaluate calls were made
	readyAfter int
	evals      int
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:     url,
		nodes:   make(map[string][]*fakeElement),
		globals: make(map[string]interface{}),
	}
}

func (p *fakePage) set(selector string, els ...*fakeElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes[selector] = els
}

func (p *fakePage) Navigate(url string) error {
	p.url = url
	return nil
}

func (p *fakePage) FindAll(selector string) []page.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return elements(p.nodes[selector])
}

func (p *fakePage) FindOne(selector string) (page.Element, bool) {
	els := p.FindAll(selector)
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (p *fakePage) Evaluate(script string, out interface{}) error {
	p.mu.Lock()
	p.evals++
	ready := p.evals > p.readyAfter
	p.mu.Unlock()

	var value interface{}
	if ready {
		for expr, v := range p.globals {
			if strings.Contains(script, expr) {
				value = v
				break
			}
		}
	}
	switch o := out.(type) {
	case nil:
		return nil
	case *bool:
		*o = value != nil
		return nil
	case *interface{}:
		*o = value
		return nil
	}
	if value == nil {
		return errors.New("undefined")
	}
	reflect.ValueOf(out).Elem().Set(reflect.ValueOf(value))
	return nil
}

func (p *fakePage) CurrentURL() string { return p.url }
func (p *fakePage) Source() string     { return p.source }
func (p *fakePage) Title() string      { return p.title }

func elements(in []*fakeElement) []page.Element {
	out := make([]page.Element, 0, len(in))
	for _, e := range in {
		out = append(out, e)
	}
	return out
}

func el(text string, attrs ...string) *fakeElement {
	e := &fakeElement{text: text, attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.attrs[attrs[i]] = attrs[i+1]
	}
	return e
}

// testSet is a small site configuration used across the engine tests
func testSet() *StrategySet {
	return &StrategySet{
		Name:           "testshop",
		Hosts:          []string{"testshop.example"},
		ReadyGlobals:   []string{"window.__STATE__"},
		ReadySelectors: []string{".title"},
		TitleSelectors: []string{".title"},
		RelatedMarkers: []string{"추천 상품"},
		PriceSelectors: []string{".price"},
		PriceMetaKeys:  []string{"product:sale_price:amount"},
		SoldOutMarkers: []string{"btn_soldout"},
		SizeDropdowns: []Dropdown{
			{Trigger: ".combo", Options: ".listbox li", Labels: []string{"사이즈"}},
		},
		SizeSelectors: []string{".size-btn"},
		Notice: &NoticePanel{
			Container:   ".notice",
			Toggle:      ".notice-toggle",
			Rows:        "tr",
			SizeLabels:  []string{"치수"},
			ColorLabels: []string{"색상"},
		},
		ColorDropdowns: []Dropdown{
			{Trigger: ".combo", Options: ".listbox li", Labels: []string{"색상"}},
		},
	}
}

func newTestContext(t *testing.T, p page.Page, set *StrategySet) *Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	c := NewContext(ctx, p, set, p.CurrentURL())
	c.Options.ReadyInterval = time.Millisecond
	c.Options.PollAttempts = 3
	c.Options.PollInterval = time.Millisecond
	return c
}
