package extract

import (
	"time"

	"github.com/law-makers/goodscrawl/internal/page"
)

// ReadyKind is the outcome of the readiness gate
type ReadyKind int

const (
	ReadyTimeout ReadyKind = iota
	ReadyStructured
	ReadyDOM
)

func (k ReadyKind) String() string {
	switch k {
	case ReadyStructured:
		return "structured"
	case ReadyDOM:
		return "dom"
	}
	return "timeout"
}

// AwaitReady polls until a structured-data global is defined or a minimal
// DOM signal is rendered, at most maxAttempts times with interval between
// attempts. Running out of attempts is not an error: resolution proceeds
// with whatever the page has.
func AwaitReady(c *Context, maxAttempts int, interval time.Duration) ReadyKind {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if kind := readyOnce(c); kind != ReadyTimeout {
			c.Log.Debug().
				Str("ready", kind.String()).
				Int("attempt", attempt).
				Msg("page ready")
			return kind
		}
		if attempt < maxAttempts && !c.sleep(interval) {
			break
		}
	}
	c.Log.Debug().Int("attempts", maxAttempts).Msg("readiness budget exhausted")
	return ReadyTimeout
}

func readyOnce(c *Context) ReadyKind {
	for _, expr := range c.Set.ReadyGlobals {
		if defined(c.Page, expr) {
			return ReadyStructured
		}
	}
	if _, ok := page.First(c.Page, c.Set.ReadySelectors); ok {
		return ReadyDOM
	}
	return ReadyTimeout
}

// defined reports whether expr is neither undefined nor null in the page
func defined(p page.Page, expr string) bool {
	var ok bool
	script := "(function(){ try { var v = (" + expr + "); return v !== undefined && v !== null; } catch (e) { return false; } })()"
	if err := p.Evaluate(script, &ok); err != nil {
		return false
	}
	return ok
}

// PollFind waits for any of selectors to match a visible element, checking
// up to attempts times with interval between checks.
func PollFind(c *Context, selectors []string, attempts int, interval time.Duration) ([]page.Element, bool) {
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		for _, sel := range selectors {
			var visible []page.Element
			for _, el := range c.Page.FindAll(sel) {
				if el.Visible() {
					visible = append(visible, el)
				}
			}
			if len(visible) > 0 {
				return visible, true
			}
		}
		if i < attempts-1 && !c.sleep(interval) {
			break
		}
	}
	return nil, false
}
