// Package page defines the page handle the extraction engine works against
// and a static implementation backed by goquery and an embedded JS runtime.
package page

import "errors"

// ErrNotInteractive is returned by interactions a static page cannot perform
var ErrNotInteractive = errors.New("page: element is not interactive")

// Page is one loaded document. Finders never fail: no match or an invalid
// selector yields an empty result.
type Page interface {
	Navigate(url string) error
	FindAll(selector string) []Element
	FindOne(selector string) (Element, bool)
	// Evaluate runs script in the page and decodes its JSON-serializable
	// result into out. out may be nil.
	Evaluate(script string, out interface{}) error
	CurrentURL() string
	Source() string
	Title() string
}

// Element is a node of a Page
type Element interface {
	// Text returns the rendered text with line breaks between blocks
	Text() string
	Attribute(name string) (string, bool)
	Click() error
	Visible() bool
	FindAll(selector string) []Element
}

// First returns the first visible element matching any of selectors, in
// selector order.
func First(p Page, selectors []string) (Element, bool) {
	for _, sel := range selectors {
		for _, el := range p.FindAll(sel) {
			if el.Visible() {
				return el, true
			}
		}
	}
	return nil, false
}

// Meta returns the content of a <meta> tag matched by property or name
func Meta(p Page, key string) string {
	for _, sel := range []string{`meta[property="` + key + `"]`, `meta[name="` + key + `"]`} {
		if el, ok := p.FindOne(sel); ok {
			if v, ok := el.Attribute("content"); ok && v != "" {
				return v
			}
		}
	}
	return ""
}
