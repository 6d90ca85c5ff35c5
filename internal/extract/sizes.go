package extract

import (
	"github.com/law-makers/goodscrawl/pkg/models"
)

type sizeResult struct {
	Sizes  []models.SizeOption
	Actual Measurements
}

// sizeStrategies is the size sub-cascade. The sizing API needs a goods id;
// the notice panel is consulted only for sold-out listings. Exhausting the
// list leaves sizes empty, which is a valid outcome.
func sizeStrategies() []Strategy[sizeResult] {
	return []Strategy[sizeResult]{
		{Name: "structured", Run: func(c *Context) (sizeResult, error) {
			st := c.Structured()
			if st == nil || len(st.Sizes) == 0 {
				return sizeResult{}, absent(CodeStructuredDataAbsent, "no structured options")
			}
			return sizeResult{Sizes: st.Sizes}, nil
		}},
		{Name: "sizing-api", Run: sizingAPI},
		{Name: "footwear-scan", Run: footwearScan},
		{Name: "option-dropdown", Run: func(c *Context) (sizeResult, error) {
			opts, err := readDropdowns(c, c.Set.SizeDropdowns)
			if err != nil {
				return sizeResult{}, err
			}
			return sizeResult{Sizes: opts}, nil
		}},
		{Name: "option-buttons", Run: optionButtons},
		{Name: "notice-panel", Run: noticeSizes},
	}
}

// sizingAPI turns API measurements into actualSizes and synthesizes one
// in-stock size per label; the API carries no stock signal
func sizingAPI(c *Context) (sizeResult, error) {
	actual, labels, err := fetchSizeAPI(c)
	if err != nil {
		return sizeResult{}, err
	}
	sizes := make([]models.SizeOption, 0, len(labels))
	for _, l := range labels {
		sizes = append(sizes, models.SizeOption{Name: l})
	}
	return sizeResult{Sizes: sizes, Actual: actual}, nil
}

func optionButtons(c *Context) (sizeResult, error) {
	for _, sel := range c.Set.SizeSelectors {
		if opts := readOptionElements(visibleOnly(c.Page.FindAll(sel))); len(opts) > 0 {
			return sizeResult{Sizes: opts}, nil
		}
	}
	return sizeResult{}, notFound("no option buttons")
}

func noticeSizes(c *Context) (sizeResult, error) {
	if !c.SoldOut() {
		return sizeResult{}, absent(CodeSelectorNotFound, "notice sizes are only read for sold-out listings")
	}
	if c.Set.Notice == nil {
		return sizeResult{}, notFound("site has no notice panel")
	}
	value, err := readNotice(c, c.Set.Notice.SizeLabels)
	if err != nil {
		return sizeResult{}, err
	}
	var sizes []models.SizeOption
	for _, l := range noticeLabels(value) {
		sizes = append(sizes, models.SizeOption{Name: l, IsSoldOut: true})
	}
	if len(sizes) == 0 {
		return sizeResult{}, rejected("notice size row %q lists no sizes", value)
	}
	return sizeResult{Sizes: sizes}, nil
}
