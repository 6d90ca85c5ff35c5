package extract

import (
	"regexp"
	"strings"

	"github.com/law-makers/goodscrawl/internal/normalize"
	"github.com/law-makers/goodscrawl/internal/page"
)

// Price sanity thresholds, in won
const (
	MinSelectorPrice = 100
	MaxTextPrice     = 10_000_000
)

var bodyPrice = regexp.MustCompile(`([\d,]+)\s*원`)

// InPriceBand reports whether a price found by free-text scanning is plausible
func InPriceBand(p int) bool {
	return p > MinSelectorPrice && p < MaxTextPrice
}

func titleStrategies() []Strategy[string] {
	return []Strategy[string]{
		{Name: "structured", Run: structuredTitle},
		{Name: "dom-selectors", Run: domTitle},
		{Name: "meta-og-title", Run: func(c *Context) (string, error) {
			return acceptTitle(c, page.Meta(c.Page, "og:title"), "og:title")
		}},
		{Name: "document-title", Run: func(c *Context) (string, error) {
			return acceptTitle(c, c.Page.Title(), "document title")
		}},
	}
}

func structuredTitle(c *Context) (string, error) {
	st := c.Structured()
	if st == nil || st.Title == "" {
		return "", absent(CodeStructuredDataAbsent, "no structured title")
	}
	if normalize.HasRelatedMarker(st.Title, c.Set.RelatedMarkers) {
		return "", rejected("structured title %q belongs to a related-products widget", st.Title)
	}
	return acceptTitle(c, st.Title, "structured title")
}

func domTitle(c *Context) (string, error) {
	for _, sel := range c.Set.TitleSelectors {
		for _, el := range c.Page.FindAll(sel) {
			if !el.Visible() {
				continue
			}
			if t, err := acceptTitle(c, el.Text(), sel); err == nil {
				return t, nil
			}
		}
	}
	return "", notFound("no title selector matched")
}

func acceptTitle(c *Context, raw, from string) (string, error) {
	if normalize.HasRelatedMarker(raw, c.Set.RelatedMarkers) {
		return "", rejected("%s carries a related-products marker", from)
	}
	t := normalize.CleanTitle(raw)
	if t == "" {
		return "", notFound("%s is empty", from)
	}
	return t, nil
}

func priceStrategies() []Strategy[int] {
	return []Strategy[int]{
		{Name: "structured", Run: func(c *Context) (int, error) {
			st := c.Structured()
			if st == nil {
				return 0, absent(CodeStructuredDataAbsent, "no structured data")
			}
			if st.Price <= 0 {
				return 0, rejected("structured price %d", st.Price)
			}
			return st.Price, nil
		}},
		{Name: "dom-selectors", Run: domPrice},
		{Name: "meta-sale-price", Run: func(c *Context) (int, error) {
			for _, key := range c.Set.PriceMetaKeys {
				if p := normalize.ExtractNumber(page.Meta(c.Page, key)); p > 0 {
					return p, nil
				}
			}
			return 0, notFound("no sale price meta tag")
		}},
		{Name: "body-text-scan", Run: bodyTextPrice},
	}
}

func domPrice(c *Context) (int, error) {
	for _, sel := range c.Set.PriceSelectors {
		for _, el := range c.Page.FindAll(sel) {
			if !el.Visible() {
				continue
			}
			if p := normalize.ExtractNumber(el.Text()); p > MinSelectorPrice {
				return p, nil
			}
		}
	}
	return 0, notFound("no price selector yielded a value above %d", MinSelectorPrice)
}

func bodyTextPrice(c *Context) (int, error) {
	body, ok := c.Page.FindOne("body")
	if !ok {
		return 0, notFound("no body")
	}
	return ScanTextPrice(body.Text())
}

// ScanTextPrice returns the first "N원" amount in text inside the sanity band
func ScanTextPrice(text string) (int, error) {
	matches := bodyPrice.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, notFound("no won amount in text")
	}
	for _, m := range matches {
		if p := normalize.ExtractNumber(m[1]); InPriceBand(p) {
			return p, nil
		}
	}
	return 0, rejected("no won amount inside (%d, %d)", MinSelectorPrice, MaxTextPrice)
}

// resolveCoupon applies the site coupon pattern to the page source
func resolveCoupon(c *Context) (*int, error) {
	if c.Set.CouponPattern == nil {
		return nil, absent(CodeSelectorNotFound, "site has no coupon price")
	}
	m := c.Set.CouponPattern.FindStringSubmatch(c.Page.Source())
	if len(m) < 2 {
		return nil, notFound("coupon pattern did not match")
	}
	p := normalize.ExtractNumber(m[1])
	if p <= 0 {
		return nil, rejected("coupon price %q", m[1])
	}
	return &p, nil
}

func imageStrategies() []Strategy[string] {
	return []Strategy[string]{
		{Name: "structured", Run: func(c *Context) (string, error) {
			st := c.Structured()
			if st == nil || st.Image == "" {
				return "", absent(CodeStructuredDataAbsent, "no structured image")
			}
			return normalize.EnsureHTTPS(st.Image), nil
		}},
		{Name: "meta-og-image", Run: func(c *Context) (string, error) {
			img := normalize.EnsureHTTPS(page.Meta(c.Page, "og:image"))
			if img == "" {
				return "", notFound("no og:image")
			}
			return img, nil
		}},
	}
}

func statusStrategies() []Strategy[bool] {
	return []Strategy[bool]{
		{Name: "structured", Run: func(c *Context) (bool, error) {
			st := c.Structured()
			if st == nil || st.SoldOut == nil {
				return false, absent(CodeStructuredDataAbsent, "no structured sold-out flag")
			}
			return *st.SoldOut, nil
		}},
		{Name: "source-markers", Run: func(c *Context) (bool, error) {
			src := c.Page.Source()
			for _, m := range c.Set.SoldOutMarkers {
				if m != "" && strings.Contains(src, m) {
					return true, nil
				}
			}
			return false, notFound("no sold-out marker in page source")
		}},
	}
}
