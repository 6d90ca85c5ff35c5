package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// CSVHeader is the column layout of CSVWriter
var CSVHeader = []string{"url", "site", "title", "price", "coupon_price", "image", "status", "sizes", "colors", "error", "code"}

// CSVWriter writes one row per batch result. Options are joined with "|",
// sold-out ones suffixed with "(soldout)".
type CSVWriter struct {
	w      *csv.Writer
	header bool
}

// NewCSVWriter wraps w
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write appends res, writing the header before the first row
func (cw *CSVWriter) Write(res models.ScrapeResult) error {
	if !cw.header {
		if err := cw.w.Write(CSVHeader); err != nil {
			return err
		}
		cw.header = true
	}
	if err := cw.w.Write(csvRow(res)); err != nil {
		return err
	}
	cw.w.Flush()
	return cw.w.Error()
}

func csvRow(res models.ScrapeResult) []string {
	row := make([]string, len(CSVHeader))
	row[0] = res.URL
	if res.Err != nil {
		row[9] = res.Err.Error()
		row[10] = string(extract.CodeOf(res.Err))
		return row
	}
	rec := res.Record
	row[1] = rec.Site
	row[2] = rec.Title
	row[3] = strconv.Itoa(rec.Price)
	if rec.CouponPrice != nil {
		row[4] = strconv.Itoa(*rec.CouponPrice)
	}
	row[5] = rec.Image
	row[6] = string(rec.Status)

	sizes := make([]string, len(rec.Sizes))
	for i, s := range rec.Sizes {
		sizes[i] = optionCell(s.Name, s.IsSoldOut)
	}
	colors := make([]string, len(rec.Colors))
	for i, c := range rec.Colors {
		colors[i] = optionCell(c.Name, c.IsSoldOut)
	}
	row[7] = strings.Join(sizes, "|")
	row[8] = strings.Join(colors, "|")
	return row
}

func optionCell(name string, soldOut bool) string {
	if soldOut {
		return name + "(soldout)"
	}
	return name
}
