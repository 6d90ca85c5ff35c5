package site

import (
	"fmt"
	"slices"

	"github.com/law-makers/goodscrawl/internal/config"
)

// ApplyOverrides prepends configured selectors to the named sets. Each
// overridden set is copied, validated and re-registered, so a set already
// handed to a running scrape is never mutated.
func ApplyOverrides(r *Registry, overrides map[string]config.SiteOverride) error {
	for name, o := range overrides {
		base, ok := r.Get(name)
		if !ok {
			return fmt.Errorf("override for unknown site %q", name)
		}
		set := *base
		set.TitleSelectors = prepend(o.TitleSelectors, base.TitleSelectors)
		set.PriceSelectors = prepend(o.PriceSelectors, base.PriceSelectors)
		set.SizeSelectors = prepend(o.SizeSelectors, base.SizeSelectors)
		set.ColorLinks = prepend(o.ColorLinks, base.ColorLinks)
		set.SoldOutMarkers = prepend(o.SoldOutMarkers, base.SoldOutMarkers)
		if err := r.Register(&set); err != nil {
			return fmt.Errorf("override for %s: %w", name, err)
		}
	}
	return nil
}

func prepend(extra, base []string) []string {
	if len(extra) == 0 {
		return base
	}
	return slices.Concat(extra, base)
}
