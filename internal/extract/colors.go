package extract

import (
	"regexp"
	"strings"

	"github.com/law-makers/goodscrawl/internal/normalize"
	"github.com/law-makers/goodscrawl/internal/page"
	urlutil "github.com/law-makers/goodscrawl/internal/utils/url"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// DefaultColorWords is the lexicon used for the title guess when a site
// does not bring its own
var DefaultColorWords = []string{
	"블랙", "화이트", "아이보리", "그레이", "차콜", "네이비", "블루", "스카이블루", "베이지",
	"브라운", "카키", "올리브", "그린", "레드", "버건디", "핑크", "퍼플", "옐로우", "오렌지",
	"크림", "멜란지", "실버", "골드",
	"black", "white", "ivory", "gray", "grey", "charcoal", "navy", "blue", "beige",
	"brown", "khaki", "olive", "green", "red", "burgundy", "pink", "purple", "yellow",
	"orange", "cream", "silver", "gold",
}

func colorStrategies() []Strategy[[]models.ColorOption] {
	return []Strategy[[]models.ColorOption]{
		{Name: "structured", Run: func(c *Context) ([]models.ColorOption, error) {
			st := c.Structured()
			if st == nil || len(st.Colors) == 0 {
				return nil, absent(CodeStructuredDataAbsent, "no structured colors")
			}
			return st.Colors, nil
		}},
		{Name: "dropdown", Run: func(c *Context) ([]models.ColorOption, error) {
			opts, err := readDropdowns(c, c.Set.ColorDropdowns)
			if err != nil {
				return nil, err
			}
			return toColors(opts), nil
		}},
		{Name: "sibling-links", Run: siblingColors},
		{Name: "notice-panel", Run: noticeColors},
		{Name: "title-guess", Run: titleColor},
	}
}

// siblingColors opens each same-product-other-color page linked from this
// one and names its color. The current page's own color comes first.
func siblingColors(c *Context) ([]models.ColorOption, error) {
	if c.Opener == nil || len(c.Set.ColorLinks) == 0 {
		return nil, notFound("no sibling color links configured")
	}
	links := siblingLinks(c)
	if len(links) == 0 {
		return nil, notFound("no sibling color links")
	}

	var colors []models.ColorOption
	if name := ownColor(c); name != "" {
		colors = append(colors, models.ColorOption{Name: name, IsSoldOut: c.SoldOut()})
	}
	for _, link := range links {
		p, err := c.Opener.Open(c.Ctx(), link)
		if err != nil {
			c.Log.Debug().Err(err).Str("link", link).Msg("sibling page unavailable")
			if c.Ctx().Err() != nil {
				break
			}
			continue
		}
		name, soldOut := variantColor(c, p)
		if name == "" {
			continue
		}
		colors = append(colors, models.ColorOption{Name: name, IsSoldOut: soldOut})
	}
	colors = dedupeColors(colors)
	if len(colors) < 2 {
		return nil, notFound("sibling pages did not name distinct colors")
	}
	return colors, nil
}

func siblingLinks(c *Context) []string {
	self := urlutil.Canonical(c.URL)
	seen := map[string]bool{self: true}
	var out []string
	for _, sel := range c.Set.ColorLinks {
		for _, el := range c.Page.FindAll(sel) {
			href, ok := el.Attribute("href")
			if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
				continue
			}
			abs := urlutil.ResolveURL(c.URL, href)
			key := urlutil.Canonical(abs)
			if seen[key] || !c.Set.Matches(abs) {
				continue
			}
			seen[key] = true
			out = append(out, abs)
			if c.Options.MaxSiblings > 0 && len(out) >= c.Options.MaxSiblings {
				return out
			}
		}
	}
	return out
}

func ownColor(c *Context) string {
	if st := c.Structured(); st != nil && st.Color != "" {
		return st.Color
	}
	return ColorFromTitle(c.title)
}

// variantColor names the color of a sibling page from its structured data,
// falling back to its title suffix
func variantColor(c *Context, p page.Page) (string, bool) {
	st := &Structured{}
	for _, src := range c.Set.Structured {
		if got, err := src.Read(c, p); err == nil {
			st.merge(got)
		}
	}
	soldOut := false
	if st.SoldOut != nil {
		soldOut = *st.SoldOut
	} else {
		src := p.Source()
		for _, m := range c.Set.SoldOutMarkers {
			if m != "" && strings.Contains(src, m) {
				soldOut = true
				break
			}
		}
	}
	if st.Color != "" {
		return st.Color, soldOut
	}
	title := st.Title
	if title == "" {
		title = page.Meta(p, "og:title")
	}
	if title == "" {
		title = p.Title()
	}
	return ColorFromTitle(normalize.CleanTitle(title)), soldOut
}

var (
	parenSuffix   = regexp.MustCompile(`\(([^()]+)\)\s*$`)
	bracketSuffix = regexp.MustCompile(`\[([^\[\]]+)\]\s*$`)
)

// ColorFromTitle guesses a variant color from the end of a title:
// a trailing (X) or [X], the part after the last " - " or " / ", or the
// last word
func ColorFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if m := parenSuffix.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bracketSuffix.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, sep := range []string{" - ", " / "} {
		if i := strings.LastIndex(title, sep); i >= 0 {
			if s := strings.TrimSpace(title[i+len(sep):]); s != "" {
				return s
			}
		}
	}
	fields := strings.Fields(title)
	return fields[len(fields)-1]
}

func noticeColors(c *Context) ([]models.ColorOption, error) {
	if !c.SoldOut() {
		return nil, absent(CodeSelectorNotFound, "notice colors are only read for sold-out listings")
	}
	if c.Set.Notice == nil {
		return nil, notFound("site has no notice panel")
	}
	value, err := readNotice(c, c.Set.Notice.ColorLabels)
	if err != nil {
		return nil, err
	}
	var colors []models.ColorOption
	for _, l := range noticeLabels(value) {
		colors = append(colors, models.ColorOption{Name: l, IsSoldOut: true})
	}
	if len(colors) == 0 {
		return nil, rejected("notice color row %q lists no colors", value)
	}
	return colors, nil
}

// titleColor finds the color word that appears last in the title. It only
// runs when the page carries no structured option data at all.
func titleColor(c *Context) ([]models.ColorOption, error) {
	if st := c.Structured(); st != nil && st.HasOptions {
		return nil, absent(CodeSanityRejected, "structured options exist; title guess skipped")
	}
	words := c.Set.ColorWords
	if len(words) == 0 {
		words = DefaultColorWords
	}
	name := GuessColor(c.title, words)
	if name == "" {
		return nil, notFound("title names no color")
	}
	return []models.ColorOption{{Name: name, IsSoldOut: c.SoldOut()}}, nil
}

// GuessColor returns the lexicon word occurring last in title, preferring
// the longer word when two end at the same place
func GuessColor(title string, words []string) string {
	lower := strings.ToLower(title)
	best, bestEnd := "", -1
	for _, w := range words {
		if w == "" {
			continue
		}
		i := strings.LastIndex(lower, strings.ToLower(w))
		if i < 0 {
			continue
		}
		end := i + len(w)
		if end > bestEnd || (end == bestEnd && len(w) > len(best)) {
			best, bestEnd = title[i:end], end
		}
	}
	return best
}

func dedupeColors(in []models.ColorOption) []models.ColorOption {
	out := make([]models.ColorOption, 0, len(in))
	seen := make(map[string]bool)
	for _, col := range in {
		name := strings.TrimSpace(col.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		col.Name = name
		out = append(out, col)
	}
	return out
}
