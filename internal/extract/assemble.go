package extract

import (
	"maps"
	"slices"
	"strings"

	"github.com/law-makers/goodscrawl/internal/normalize"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// DefaultSizeName is the single entry synthesized for products that are
// known to exist but expose no size information
const DefaultSizeName = "Free / One Size"

// Assemble finalizes a record: titles are cleaned, option lists deduplicated
// and never nil, sizes made consistent with actualSizes, and the default
// size synthesized when structured data found the product but no size
// source produced anything.
func Assemble(c *Context, rec *models.ProductRecord) *models.ProductRecord {
	rec.Title = normalize.CleanTitle(rec.Title)
	rec.Image = normalize.EnsureHTTPS(rec.Image)
	if rec.Status == "" {
		rec.Status = models.StatusActive
	}
	if rec.CouponPrice != nil && *rec.CouponPrice <= 0 {
		rec.CouponPrice = nil
	}

	rec.Sizes = dedupeSizes(rec.Sizes)
	rec.Colors = dedupeColors(rec.Colors)

	if len(rec.ActualSizes) == 0 {
		rec.ActualSizes = nil
	} else {
		rec.Sizes = alignSizes(rec.Sizes, rec.ActualSizes)
	}

	if len(rec.Sizes) == 0 && rec.ActualSizes == nil && c != nil && c.Structured() != nil {
		rec.Sizes = []models.SizeOption{{Name: DefaultSizeName, IsSoldOut: rec.SoldOut()}}
	}
	return rec
}

// alignSizes keeps exactly one in-stock entry per measured label, in the
// order sizes already had them, appending labels sizes lacked
func alignSizes(sizes []models.SizeOption, actual map[string]map[string]float64) []models.SizeOption {
	out := make([]models.SizeOption, 0, len(actual))
	have := make(map[string]bool, len(actual))
	for _, s := range sizes {
		if _, ok := actual[s.Name]; ok && !have[s.Name] {
			have[s.Name] = true
			out = append(out, models.SizeOption{Name: s.Name})
		}
	}
	for _, label := range slices.Sorted(maps.Keys(actual)) {
		if !have[label] {
			out = append(out, models.SizeOption{Name: label})
		}
	}
	return out
}

func dedupeSizes(in []models.SizeOption) []models.SizeOption {
	out := make([]models.SizeOption, 0, len(in))
	seen := make(map[string]bool)
	for _, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		s.Name = name
		out = append(out, s)
	}
	return out
}
