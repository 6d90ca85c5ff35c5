package extract

import (
	"github.com/law-makers/goodscrawl/internal/page"
	"github.com/law-makers/goodscrawl/pkg/models"
)

// readDropdowns returns the options of the first dropdown that yields any
func readDropdowns(c *Context, dropdowns []Dropdown) ([]models.SizeOption, error) {
	if len(dropdowns) == 0 {
		return nil, notFound("site has no dropdowns")
	}
	var lastErr error
	for _, d := range dropdowns {
		opts, err := readDropdown(c, d)
		if err == nil && len(opts) > 0 {
			return opts, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = notFound("dropdowns listed no options")
	}
	return nil, lastErr
}

// readDropdown reads options already on the page, or clicks the trigger and
// waits for the option list to render
func readDropdown(c *Context, d Dropdown) ([]models.SizeOption, error) {
	if d.Trigger == "" {
		// native <option>s have no layout box, so they are not visibility-filtered
		els := c.Page.FindAll(d.Options)
		if len(els) == 0 {
			return nil, notFound("no %s options", d.Options)
		}
		return readOptionElements(els), nil
	}
	trigger, ok := findTrigger(c, d)
	if !ok {
		return nil, notFound("no dropdown trigger %s", d.Trigger)
	}
	if err := trigger.Click(); err != nil {
		return nil, NewError(CodeSelectorNotFound, "dropdown trigger not clickable", err)
	}
	els, ok := PollFind(c, []string{d.Options}, c.Options.PollAttempts, c.Options.PollInterval)
	if !ok {
		return nil, notFound("dropdown %s did not open", d.Trigger)
	}
	opts := readOptionElements(els)
	// close it so the next dropdown's list is not confused with this one
	_ = trigger.Click()
	return opts, nil
}

func visibleOnly(els []page.Element) []page.Element {
	var out []page.Element
	for _, el := range els {
		if el.Visible() {
			out = append(out, el)
		}
	}
	return out
}

func findTrigger(c *Context, d Dropdown) (page.Element, bool) {
	for _, el := range c.Page.FindAll(d.Trigger) {
		if !el.Visible() {
			continue
		}
		if len(d.Labels) == 0 || containsAny(el.Text(), d.Labels) {
			return el, true
		}
	}
	return nil, false
}
