package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

// StrategySet is the immutable per-site configuration the pipeline runs
// against: selector lists, patterns and alias tables, plus the few
// site-specific readers that cannot be expressed as data.
type StrategySet struct {
	Name string
	// Hosts are matched as substrings of the URL host
	Hosts []string

	// ReadyGlobals are JS expressions that become defined once the page's
	// structured data is available. ReadySelectors are the minimal DOM
	// signals (title or price regions) accepted instead.
	ReadyGlobals   []string
	ReadySelectors []string

	// GoodsID derives the canonical product identifier from a URL
	GoodsID *regexp.Regexp

	Structured []StructuredSource

	TitleSelectors []string
	RelatedMarkers []string
	PriceSelectors []string
	PriceMetaKeys  []string
	CouponPattern  *regexp.Regexp
	SoldOutMarkers []string

	SizeAPI        *SizeAPI
	ShoeScan       *ShoeScan
	SizeDropdowns  []Dropdown
	SizeSelectors  []string
	Notice         *NoticePanel
	ColorDropdowns []Dropdown
	ColorLinks     []string
	ColorWords     []string
}

// Dropdown is an option list revealed by clicking a trigger. Without a
// trigger the options are read as rendered (a native <select>). Labels,
// when set, restrict the trigger to one whose text names the option kind.
type Dropdown struct {
	Trigger string
	Options string
	Labels  []string
}

// SizeAPI describes the auxiliary per-product sizing endpoint
type SizeAPI struct {
	// URLTemplate contains one %s for the goods id
	URLTemplate string
	Timeout     time.Duration
	Headers     map[string]string
}

// URL returns the endpoint for goodsID
func (a *SizeAPI) URL(goodsID string) string {
	return fmt.Sprintf(a.URLTemplate, url.PathEscape(goodsID))
}

// ShoeScan configures the footwear size scan over page sections
type ShoeScan struct {
	Sections        []string
	StockKeywords   []string
	SoldOutKeywords []string
	Min, Max, Step  int
}

// NoticePanel is the collapsible product-information disclosure
type NoticePanel struct {
	Container   string
	Toggle      string
	Rows        string
	SizeLabels  []string
	ColorLabels []string
}

// Matches reports whether rawURL belongs to this site
func (s *StrategySet) Matches(rawURL string) bool {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	for _, h := range s.Hosts {
		if h != "" && strings.Contains(host, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// DeriveGoodsID extracts the product identifier from rawURL, or ""
func (s *StrategySet) DeriveGoodsID(rawURL string) string {
	if s.GoodsID == nil {
		return ""
	}
	m := s.GoodsID.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// Selectors returns every CSS selector referenced by the set
func (s *StrategySet) Selectors() []string {
	var out []string
	out = append(out, s.ReadySelectors...)
	out = append(out, s.TitleSelectors...)
	out = append(out, s.PriceSelectors...)
	out = append(out, s.SizeSelectors...)
	out = append(out, s.ColorLinks...)
	for _, d := range append(append([]Dropdown{}, s.SizeDropdowns...), s.ColorDropdowns...) {
		out = append(out, d.Trigger, d.Options)
	}
	if s.ShoeScan != nil {
		out = append(out, s.ShoeScan.Sections...)
	}
	if s.Notice != nil {
		out = append(out, s.Notice.Container, s.Notice.Toggle, s.Notice.Rows)
	}
	for _, src := range s.Structured {
		if src.Selector != "" {
			out = append(out, src.Selector)
		}
	}
	return out
}

// Validate checks that the set is usable and every selector compiles
func (s *StrategySet) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("strategy set has no name")
	}
	if len(s.Hosts) == 0 {
		return fmt.Errorf("strategy set %s has no host predicates", s.Name)
	}
	for _, sel := range s.Selectors() {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("strategy set %s: invalid selector %q: %w", s.Name, sel, err)
		}
	}
	if s.SizeAPI != nil && strings.Count(s.SizeAPI.URLTemplate, "%s") != 1 {
		return fmt.Errorf("strategy set %s: size API template needs exactly one %%s", s.Name)
	}
	if s.ShoeScan != nil && (s.ShoeScan.Step <= 0 || s.ShoeScan.Min >= s.ShoeScan.Max) {
		return fmt.Errorf("strategy set %s: invalid footwear range", s.Name)
	}
	return nil
}
