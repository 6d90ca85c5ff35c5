package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/law-makers/goodscrawl/pkg/models"
)

// numberRun matches digit runs including grouped forms like 129,000 so
// that grouped amounts are never mistaken for sizes
var numberRun = regexp.MustCompile(`\d+(?:[.,]\d+)*(\s*원)?`)

// shoeTokens returns the standalone three-digit tokens of line in range
func shoeTokens(line string, cfg *ShoeScan, requireStep bool) []int {
	var out []int
	for _, m := range numberRun.FindAllStringSubmatch(line, -1) {
		if m[1] != "" || len(m[0]) != 3 {
			continue
		}
		n, err := strconv.Atoi(m[0])
		if err != nil || n < cfg.Min || n > cfg.Max {
			continue
		}
		if requireStep && n%cfg.Step != 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ScanShoeSizes extracts footwear sizes from one section's text, one line
// at a time. A size is sold out when its line carries a sold-out keyword.
func ScanShoeSizes(text string, cfg *ShoeScan) []models.SizeOption {
	out := []models.SizeOption{}
	seen := make(map[int]bool)
	for _, line := range strings.Split(text, "\n") {
		sold := HasSoldOutKeyword(line, cfg.SoldOutKeywords)
		for _, n := range shoeTokens(line, cfg, true) {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, models.SizeOption{Name: strconv.Itoa(n), IsSoldOut: sold})
		}
	}
	return out
}

// isShoeSection reports whether a section looks like a footwear stock list
func isShoeSection(text string, cfg *ShoeScan) bool {
	if !containsAny(text, cfg.StockKeywords) {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		if len(shoeTokens(line, cfg, false)) > 0 {
			return true
		}
	}
	return false
}

func footwearScan(c *Context) (sizeResult, error) {
	cfg := c.Set.ShoeScan
	if cfg == nil {
		return sizeResult{}, notFound("site has no footwear scan")
	}
	for _, sel := range cfg.Sections {
		for _, el := range c.Page.FindAll(sel) {
			if !el.Visible() {
				continue
			}
			text := el.Text()
			if !isShoeSection(text, cfg) {
				continue
			}
			if sizes := ScanShoeSizes(text, cfg); len(sizes) > 0 {
				return sizeResult{Sizes: sizes}, nil
			}
		}
	}
	return sizeResult{}, notFound("no section lists footwear sizes with stock")
}
