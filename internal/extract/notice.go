package extract

import (
	"strings"

	"github.com/law-makers/goodscrawl/internal/normalize"
	"github.com/law-makers/goodscrawl/internal/page"
)

// placeholderValues are notice values that point elsewhere instead of
// listing anything
var placeholderValues = []string{"참조", "상세페이지", "상세 페이지", "see detail", "해당없음", "해당 없음"}

// readNotice opens the product-notice panel if needed and returns the value
// of the first row whose heading carries one of labels
func readNotice(c *Context, labels []string) (string, error) {
	n := c.Set.Notice
	if n == nil || len(labels) == 0 {
		return "", notFound("site has no notice panel")
	}

	rows := noticeRows(c, n)
	if len(rows) == 0 && n.Toggle != "" {
		if toggle, ok := page.First(c.Page, []string{n.Toggle}); ok {
			if err := toggle.Click(); err == nil {
				if _, ok := PollFind(c, []string{n.Container}, c.Options.PollAttempts, c.Options.PollInterval); ok {
					rows = noticeRows(c, n)
				}
			}
		}
	}
	if len(rows) == 0 {
		return "", notFound("notice panel not found")
	}

	for _, row := range rows {
		if v, ok := rowValue(row, labels); ok {
			return v, nil
		}
	}
	return "", notFound("notice panel has no %s row", labels[0])
}

func noticeRows(c *Context, n *NoticePanel) []page.Element {
	var rows []page.Element
	for _, container := range c.Page.FindAll(n.Container) {
		if !container.Visible() {
			continue
		}
		rows = append(rows, visibleOnly(container.FindAll(n.Rows))...)
	}
	return rows
}

const (
	noticeHeadCells  = "th, dt"
	noticeValueCells = "td, dd"
)

// rowValue reads a table or definition-list row cell by cell, pairing the
// n-th heading with the n-th value, so a row holding several pairs never
// leaks one pair into another. Rows without cells (list items) or with
// unbalanced cells fall back to splitting the row text.
func rowValue(row page.Element, labels []string) (string, bool) {
	heads := row.FindAll(noticeHeadCells)
	values := row.FindAll(noticeValueCells)
	if len(heads) > 0 && len(heads) == len(values) {
		for i, head := range heads {
			if v, ok := noticePair(head.Text(), values[i].Text(), labels); ok {
				return v, true
			}
		}
		return "", false
	}
	return NoticeValue(row.Text(), labels)
}

// NoticeValue splits the text of a notice row into heading and value. The
// heading ends at the first tab (a rendered table row, whose value is the
// next cell only), the first line break, or the first colon.
func NoticeValue(row string, labels []string) (string, bool) {
	row = strings.TrimSpace(row)
	var head, value string
	if i := strings.Index(row, "\t"); i >= 0 {
		head, value = row[:i], row[i+1:]
		if j := strings.Index(value, "\t"); j >= 0 {
			value = value[:j]
		}
	} else if i := strings.Index(row, "\n"); i >= 0 {
		head, value = row[:i], row[i+1:]
	} else if i := strings.IndexAny(row, ":："); i >= 0 {
		head, value = row[:i], strings.TrimLeft(row[i:], ":：")
	} else {
		return "", false
	}
	return noticePair(head, value, labels)
}

func noticePair(head, value string, labels []string) (string, bool) {
	if !containsAny(strings.TrimSpace(head), labels) {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" || containsAny(value, placeholderValues) {
		return "", false
	}
	return value, true
}

// noticeLabels splits a notice value into option names
func noticeLabels(value string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range normalize.SplitLabels(value) {
		if name := CleanOptionName(l); name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
