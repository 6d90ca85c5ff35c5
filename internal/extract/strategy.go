package extract

import "fmt"

// Strategy is one way of producing a value for an attribute family.
// Run returns the value when it passes the strategy's own sanity rules and
// an error describing the absence otherwise.
type Strategy[T any] struct {
	Name string
	Run  func(c *Context) (T, error)
}

// FirstAccepted runs strategies in order and returns the first accepted
// value. Every attempt is logged; failures never escape.
func FirstAccepted[T any](c *Context, family string, strategies []Strategy[T]) (T, string, bool) {
	var zero T
	for _, s := range strategies {
		v, err := run(c, s)
		ev := c.Log.Debug().Str("family", family).Str("strategy", s.Name)
		if err != nil {
			ev.Str("outcome", "rejected").
				Str("code", string(CodeOf(err))).
				Str("reason", err.Error()).
				Msg("strategy attempt")
			if c.Ctx().Err() != nil {
				return zero, "", false
			}
			continue
		}
		ev.Str("outcome", "accepted").Msg("strategy attempt")
		return v, s.Name, true
	}
	return zero, "", false
}

// run shields the cascade from a panicking strategy
func run[T any](c *Context, s Strategy[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(CodeInternal, fmt.Sprintf("strategy %s panicked", s.Name), fmt.Errorf("%v", r))
		}
	}()
	return s.Run(c)
}
