package extract

import (
	"github.com/law-makers/goodscrawl/pkg/models"
)

// Resolve runs every attribute cascade against the page and assembles the
// record. It never fails: unresolved fields keep their sentinel values.
func Resolve(c *Context) *models.ProductRecord {
	rec := models.NewProductRecord(c.Set.Name)

	c.structured = structuredPass(c)

	if title, _, ok := FirstAccepted(c, "title", titleStrategies()); ok {
		rec.Title = title
		c.title = title
	}
	if price, _, ok := FirstAccepted(c, "price", priceStrategies()); ok {
		rec.Price = price
	}
	if coupon, err := resolveCoupon(c); err == nil {
		rec.CouponPrice = coupon
	} else {
		c.Log.Debug().Str("family", "coupon").Str("outcome", "rejected").Str("reason", err.Error()).Msg("strategy attempt")
	}
	if img, _, ok := FirstAccepted(c, "image", imageStrategies()); ok {
		rec.Image = img
	}
	// status comes before sizes: the notice branches only run for sold-out listings
	if soldOut, _, ok := FirstAccepted(c, "status", statusStrategies()); ok && soldOut {
		rec.Status = models.StatusSoldOut
	}
	c.soldOut = rec.SoldOut()

	if sizes, _, ok := FirstAccepted(c, "sizes", sizeStrategies()); ok {
		rec.Sizes = sizes.Sizes
		if len(sizes.Actual) > 0 {
			rec.ActualSizes = sizes.Actual
		}
	}
	if colors, _, ok := FirstAccepted(c, "colors", colorStrategies()); ok {
		rec.Colors = colors
	}

	return Assemble(c, rec)
}

// structuredPass reads every structured source of the site. Later sources
// only fill fields earlier ones left empty.
func structuredPass(c *Context) *Structured {
	var merged *Structured
	for _, src := range c.Set.Structured {
		st, err := src.Read(c, c.Page)
		ev := c.Log.Debug().Str("family", "structured").Str("strategy", src.Name)
		if err != nil {
			ev.Str("outcome", "rejected").
				Str("code", string(CodeOf(err))).
				Str("reason", err.Error()).
				Msg("strategy attempt")
			continue
		}
		ev.Str("outcome", "accepted").Msg("strategy attempt")
		if merged == nil {
			merged = st
			continue
		}
		merged.merge(st)
	}
	return merged
}
