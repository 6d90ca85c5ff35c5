package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"
	"github.com/law-makers/goodscrawl/internal/jsstate"
	"github.com/law-makers/goodscrawl/internal/normalize"
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Structured is what the embedded machine-readable product state says
// about the page. Zero values mean the source did not carry the field.
type Structured struct {
	Sources    []string
	Title      string
	Price      int
	Image      string
	SoldOut    *bool
	Sizes      []models.SizeOption
	Colors     []models.ColorOption
	Color      string
	HasOptions bool
}

// merge fills fields still empty in s from o
func (s *Structured) merge(o *Structured) {
	s.Sources = append(s.Sources, o.Sources...)
	if s.Title == "" {
		s.Title = o.Title
	}
	if s.Price <= 0 {
		s.Price = o.Price
	}
	if s.Image == "" {
		s.Image = o.Image
	}
	if s.SoldOut == nil {
		s.SoldOut = o.SoldOut
	}
	if len(s.Sizes) == 0 {
		s.Sizes = o.Sizes
	}
	if len(s.Colors) == 0 {
		s.Colors = o.Colors
	}
	if s.Color == "" {
		s.Color = o.Color
	}
	s.HasOptions = s.HasOptions || o.HasOptions
}

func (s *Structured) empty() bool {
	return s.Title == "" && s.Price <= 0 && s.Image == "" && s.SoldOut == nil &&
		len(s.Sizes) == 0 && len(s.Colors) == 0
}

// StructuredSource reads one embedded data blob. Exactly one of Selector
// (a script element holding JSON) or Global (a JS expression) is set.
type StructuredSource struct {
	Name     string
	Selector string
	Global   string
	Parse    func(data interface{}) (*Structured, error)
}

// Read loads and parses the source from p
func (src StructuredSource) Read(c *Context, p page.Page) (*Structured, error) {
	var (
		data interface{}
		err  error
	)
	switch {
	case src.Selector != "":
		data, err = ReadScriptJSON(p, src.Selector)
	case src.Global != "":
		data, err = ReadGlobal(c, p, src.Global)
	default:
		return nil, absent(CodeStructuredDataAbsent, "source %s has nothing to read", src.Name)
	}
	if err != nil {
		return nil, err
	}
	st, err := src.Parse(data)
	if err != nil {
		return nil, err
	}
	if st == nil || st.empty() {
		return nil, absent(CodeStructuredDataShapeMismatch, "%s carries no product fields", src.Name)
	}
	st.Sources = []string{src.Name}
	return st, nil
}

// ReadScriptJSON decodes the scripts matching selector. A single blob is
// returned as is; several are returned as a list in document order.
func ReadScriptJSON(p page.Page, selector string) (interface{}, error) {
	els := p.FindAll(selector)
	if len(els) == 0 {
		return nil, absent(CodeStructuredDataAbsent, "no %s element", selector)
	}
	var (
		blobs   []interface{}
		lastErr error
	)
	for _, el := range els {
		body := strings.TrimSpace(el.Text())
		if body == "" {
			continue
		}
		var data interface{}
		if err := json.UnmarshalFromString(body, &data); err != nil {
			lastErr = err
			continue
		}
		blobs = append(blobs, data)
	}
	switch len(blobs) {
	case 0:
		return nil, NewError(CodeStructuredDataAbsent, selector+" is not JSON", lastErr)
	case 1:
		return blobs[0], nil
	}
	return blobs, nil
}

// ReadGlobal evaluates expr in the page. When the page cannot evaluate it,
// the page's inline scripts are run in an embedded runtime and expr is
// read from there.
func ReadGlobal(c *Context, p page.Page, expr string) (interface{}, error) {
	guarded := "(function(){ try { return (" + expr + "); } catch (e) { return undefined; } })()"

	var data interface{}
	err := p.Evaluate(guarded, &data)
	if err == nil && data != nil {
		return data, nil
	}
	if _, static := p.(*page.StaticPage); static {
		return nil, NewError(CodeStructuredDataAbsent, expr+" is undefined", err)
	}

	doc, perr := goquery.NewDocumentFromReader(strings.NewReader(p.Source()))
	if perr != nil {
		return nil, NewError(CodeStructuredDataAbsent, "page source unreadable", perr)
	}
	rt := jsstate.New(p.CurrentURL(), page.DefaultScriptTimeout)
	rt.Run(jsstate.InlineScripts(doc))
	if ferr := rt.EvalJSON(guarded, &data); ferr != nil || data == nil {
		return nil, NewError(CodeStructuredDataAbsent, expr+" is undefined", ferr)
	}
	return data, nil
}

// ParseJSONLD reads a schema.org Product node from decoded JSON-LD
func ParseJSONLD(data interface{}) (*Structured, error) {
	product := findLDProduct(data)
	if product == nil {
		return nil, absent(CodeStructuredDataShapeMismatch, "no Product node in JSON-LD")
	}
	st := &Structured{
		Title: normalize.DigString(product, "name"),
		Image: normalize.EnsureHTTPS(ldImage(product["image"])),
		Color: normalize.DigString(product, "color"),
	}
	offer := normalize.FirstOf(product["offers"])
	if m, ok := offer.(map[string]interface{}); ok {
		st.Price = normalize.ToInt(normalize.FirstOf(firstNonNil(m["price"], m["lowPrice"])))
		if avail := normalize.DigString(m, "availability"); avail != "" {
			sold := strings.Contains(avail, "OutOfStock") || strings.Contains(avail, "SoldOut")
			st.SoldOut = &sold
		}
	}
	return st, nil
}

func findLDProduct(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if p := findLDProduct(item); p != nil {
				return p
			}
		}
	case map[string]interface{}:
		if isLDProduct(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findLDProduct(graph)
		}
	}
	return nil
}

func isLDProduct(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product" || strings.HasSuffix(v, "schema.org/Product")
	case []interface{}:
		for _, item := range v {
			if isLDProduct(item) {
				return true
			}
		}
	}
	return false
}

func ldImage(v interface{}) string {
	switch img := normalize.FirstOf(v).(type) {
	case string:
		return img
	case map[string]interface{}:
		return normalize.FirstString(img, "url", "contentUrl")
	}
	return ""
}

func firstNonNil(vs ...interface{}) interface{} {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// OptionReader describes how a site's structured option entries are shaped
type OptionReader struct {
	NameKeys []string
	// Join names every key of NameKeys and joins the non-empty ones
	Join    bool
	SoldOut func(opt map[string]interface{}) bool
}

// Read converts raw option entries into size options in list order
func (r OptionReader) Read(list []interface{}) []models.SizeOption {
	out := []models.SizeOption{}
	for _, item := range list {
		opt, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var name string
		if r.Join {
			var parts []string
			for _, k := range r.NameKeys {
				if s := normalize.DigString(opt, k); s != "" {
					parts = append(parts, s)
				}
			}
			name = strings.Join(parts, " ")
		} else {
			name = normalize.FirstString(opt, r.NameKeys...)
		}
		name = CleanOptionName(name)
		if name == "" {
			continue
		}
		sold := false
		if r.SoldOut != nil {
			sold = r.SoldOut(opt)
		}
		out = append(out, models.SizeOption{Name: name, IsSoldOut: sold})
	}
	return out
}
