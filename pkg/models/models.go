package models

import "time"

// Status is the stock status of a product listing
type Status string

const (
	StatusActive  Status = "active"
	StatusSoldOut Status = "soldout"
)

// SizeOption is one selectable size of a product
type SizeOption struct {
	Name      string `json:"name"`
	IsSoldOut bool   `json:"isSoldOut"`
}

// ColorOption is one selectable color of a product
type ColorOption struct {
	Name      string `json:"name"`
	IsSoldOut bool   `json:"isSoldOut"`
}

// ProductRecord is the normalized product extracted from one page visit.
//
// Price 0 and an empty Image mean "unresolved". CouponPrice and ActualSizes
// are omitted from the output when nothing was found for them.
type ProductRecord struct {
	Site        string                        `json:"site"`
	Title       string                        `json:"title"`
	Price       int                           `json:"price"`
	CouponPrice *int                          `json:"couponPrice,omitempty"`
	Image       string                        `json:"image"`
	Status      Status                        `json:"status"`
	Sizes       []SizeOption                  `json:"sizes"`
	ActualSizes map[string]map[string]float64 `json:"actualSizes,omitempty"`
	Colors      []ColorOption                 `json:"colors"`
}

// NewProductRecord returns an empty record bound to a site
func NewProductRecord(site string) *ProductRecord {
	return &ProductRecord{
		Site:   site,
		Status: StatusActive,
		Sizes:  []SizeOption{},
		Colors: []ColorOption{},
	}
}

// Clone returns a deep copy of the record
func (r *ProductRecord) Clone() *ProductRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.CouponPrice != nil {
		v := *r.CouponPrice
		out.CouponPrice = &v
	}
	out.Sizes = append([]SizeOption{}, r.Sizes...)
	out.Colors = append([]ColorOption{}, r.Colors...)
	if r.ActualSizes != nil {
		out.ActualSizes = make(map[string]map[string]float64, len(r.ActualSizes))
		for label, fields := range r.ActualSizes {
			m := make(map[string]float64, len(fields))
			for k, v := range fields {
				m[k] = v
			}
			out.ActualSizes[label] = m
		}
	}
	return &out
}

// SoldOut reports whether the record status is sold out
func (r *ProductRecord) SoldOut() bool {
	return r.Status == StatusSoldOut
}

// PageMode defines which page handle implementation to use
type PageMode string

const (
	ModeAuto    PageMode = "auto"
	ModeBrowser PageMode = "browser"
	ModeStatic  PageMode = "static"
)

// ScrapeResult is the outcome of scraping one URL in a batch
type ScrapeResult struct {
	Index    int
	URL      string
	Record   *ProductRecord
	Err      error
	Duration time.Duration
}
