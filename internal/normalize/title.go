package normalize

import (
	"regexp"
	"strings"
)

// RelatedMarkers are phrases injected by "recommended products" widgets.
// A title containing one of them belongs to another product.
var RelatedMarkers = []string{"이런 상품 어때요?", "함께 보면 좋은 상품", "추천 상품"}

var (
	storePrefix = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)
	lineBreaks  = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// CleanTitle removes marker phrases, collapses line breaks and strips
// leading bracketed store names. Applying it twice equals applying it once.
func CleanTitle(title string) string {
	for i := 0; i < 8; i++ {
		next := cleanOnce(title)
		if next == title {
			break
		}
		title = next
	}
	return title
}

func cleanOnce(title string) string {
	for _, m := range RelatedMarkers {
		title = strings.ReplaceAll(title, m, "")
	}
	title = lineBreaks.Replace(title)
	for storePrefix.MatchString(title) {
		title = storePrefix.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// HasRelatedMarker reports whether s contains a related-products marker
func HasRelatedMarker(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
