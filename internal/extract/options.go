package extract

import (
	"regexp"
	"strings"

	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// SoldOutKeywords mark an option or line as unavailable
var SoldOutKeywords = []string{"품절", "일시품절", "sold out", "soldout", "재입고", "입고 예정", "입고예정", "out of stock"}

var (
	annotations   = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:[+\-]?\s*[\d,]+\s*원|품절|일시품절|재입고\s*알림|재입고|sold\s*out|out of stock|\d+\s*개\s*남음)\s*[\)\]]`)
	trailingNotes = regexp.MustCompile(`(?i)\s*[-/|:·]?\s*(?:품절|일시품절|재입고\s*알림|재입고\s*신청|재입고|sold\s*out|out of stock|\d+\s*개\s*남음|[+\-]\s*[\d,]+\s*원)\s*$`)
	placeholders  = regexp.MustCompile(`(?i)^(?:[-=\s]*|.*선택.*|select.*|choose.*)$`)
)

// CleanOptionName reduces raw option text to its label: the first line,
// without stock or surcharge annotations.
func CleanOptionName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexAny(name, "\r\n"); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	for {
		next := strings.TrimSpace(annotations.ReplaceAllString(name, ""))
		next = strings.TrimSpace(trailingNotes.ReplaceAllString(next, ""))
		if next == name {
			break
		}
		name = next
	}
	if placeholders.MatchString(name) {
		return ""
	}
	return name
}

// HasSoldOutKeyword reports whether s carries a sold-out or restock keyword
func HasSoldOutKeyword(s string, keywords []string) bool {
	return containsAny(s, keywords)
}

// containsAny is a case-insensitive substring test against words
func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// elementSoldOut checks the disabled markers of an option element
func elementSoldOut(el page.Element) bool {
	if v, ok := el.Attribute("aria-disabled"); ok && v == "true" {
		return true
	}
	if _, ok := el.Attribute("disabled"); ok {
		return true
	}
	if class, ok := el.Attribute("class"); ok {
		class = strings.ToLower(class)
		if strings.Contains(class, "disabled") || strings.Contains(class, "soldout") || strings.Contains(class, "sold-out") {
			return true
		}
	}
	return HasSoldOutKeyword(el.Text(), SoldOutKeywords)
}

// readOptionElements turns option elements into deduplicated options
func readOptionElements(els []page.Element) []models.SizeOption {
	out := []models.SizeOption{}
	seen := make(map[string]bool)
	for _, el := range els {
		name := CleanOptionName(el.Text())
		if name == "" {
			if v, ok := el.Attribute("data-value"); ok {
				name = CleanOptionName(v)
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, models.SizeOption{Name: name, IsSoldOut: elementSoldOut(el)})
	}
	return out
}

func toColors(opts []models.SizeOption) []models.ColorOption {
	out := make([]models.ColorOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, models.ColorOption{Name: o.Name, IsSoldOut: o.IsSoldOut})
	}
	return out
}
