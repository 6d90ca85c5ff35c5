// Package jsstate runs a page's inline scripts in an embedded JS runtime so
// that state globals assigned by those scripts can be read without a browser.
package jsstate

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUndefined is returned by EvalJSON when the expression has no value
var ErrUndefined = errors.New("jsstate: expression is undefined")

// Script is one inline <script> element
type Script struct {
	ID   string
	Type string
	Body string
}

// IsData reports whether the script carries JSON rather than code
func (s Script) IsData() bool {
	return strings.Contains(strings.ToLower(s.Type), "json")
}

// InlineScripts collects scripts without a src attribute in document order
func InlineScripts(doc *goquery.Document) []Script {
	var out []Script
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		body := sel.Text()
		if strings.TrimSpace(body) == "" {
			return
		}
		id, _ := sel.Attr("id")
		typ, _ := sel.Attr("type")
		out = append(out, Script{ID: id, Type: typ, Body: body})
	})
	return out
}

// Runtime is a goja VM with a minimal browser-like global scope.
// It is not safe for concurrent use.
type Runtime struct {
	vm      *goja.Runtime
	timeout time.Duration
}

// New creates a runtime whose location points at pageURL. Each script and
// evaluation is interrupted after timeout; zero disables the limit.
func New(pageURL string, timeout time.Duration) *Runtime {
	vm := goja.New()

	loc := map[string]interface{}{"href": pageURL}
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }

	_ = vm.Set("window", vm.GlobalObject())
	_ = vm.Set("self", vm.GlobalObject())
	_ = vm.Set("globalThis", vm.GlobalObject())
	_ = vm.Set("location", loc)
	_ = vm.Set("document", map[string]interface{}{
		"location":         loc,
		"cookie":           "",
		"addEventListener": noop,
		"getElementById":   func(goja.FunctionCall) goja.Value { return goja.Null() },
		"querySelector":    func(goja.FunctionCall) goja.Value { return goja.Null() },
	})
	_ = vm.Set("navigator", map[string]interface{}{"userAgent": "goodscrawl"})
	_ = vm.Set("console", map[string]interface{}{
		"log":   noop,
		"warn":  noop,
		"error": noop,
		"info":  noop,
		"debug": noop,
	})
	_ = vm.Set("addEventListener", noop)
	_ = vm.Set("setTimeout", noop)
	_ = vm.Set("setInterval", noop)

	return &Runtime{vm: vm, timeout: timeout}
}

// Run executes scripts in order and returns how many ran without error.
// JSON data scripts with an id are bound to a global of that name, the way
// a page runtime exposes __NEXT_DATA__.
func (r *Runtime) Run(scripts []Script) int {
	ok := 0
	for _, s := range scripts {
		var err error
		if s.IsData() {
			if s.ID == "" {
				continue
			}
			err = r.bindJSON(s.ID, s.Body)
		} else {
			_, err = r.run(s.Body)
		}
		if err != nil {
			// most page scripts fail on the missing DOM
			log.Trace().Err(err).Str("script_id", s.ID).Msg("inline script failed")
			continue
		}
		ok++
	}
	return ok
}

func (r *Runtime) bindJSON(name, body string) error {
	parse, ok := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
	if !ok {
		return errors.New("jsstate: JSON.parse unavailable")
	}
	v, err := parse(goja.Undefined(), r.vm.ToValue(body))
	if err != nil {
		return err
	}
	return r.vm.Set(name, v)
}

func (r *Runtime) run(src string) (goja.Value, error) {
	if r.timeout > 0 {
		t := time.AfterFunc(r.timeout, func() { r.vm.Interrupt("timeout") })
		defer func() {
			t.Stop()
			r.vm.ClearInterrupt()
		}()
	}
	return r.vm.RunString(src)
}

// Defined reports whether expr evaluates to something other than undefined
// or null. Reference errors count as not defined.
func (r *Runtime) Defined(expr string) bool {
	v, err := r.run("(function(){ try { return (" + expr + "); } catch (e) { return undefined; } })()")
	if err != nil || v == nil {
		return false
	}
	return !goja.IsUndefined(v) && !goja.IsNull(v)
}

// EvalJSON evaluates expr, serializes the result with JSON.stringify and
// decodes it into out.
func (r *Runtime) EvalJSON(expr string, out interface{}) error {
	v, err := r.run("JSON.stringify((" + expr + "))")
	if err != nil {
		return err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ErrUndefined
	}
	return json.Unmarshal([]byte(v.String()), out)
}

// Globals returns the non-standard globals left behind by page scripts
func (r *Runtime) Globals() map[string]interface{} {
	out := make(map[string]interface{})
	for _, key := range r.vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		if v := r.vm.Get(key); v != nil && !goja.IsUndefined(v) {
			if exported := v.Export(); exported != nil {
				if _, fn := goja.AssertFunction(v); fn {
					continue
				}
				out[key] = exported
			}
		}
	}
	return out
}

var standardGlobals = map[string]bool{
	"window": true, "self": true, "globalThis": true, "document": true, "location": true,
	"console": true, "navigator": true, "addEventListener": true, "setTimeout": true,
	"setInterval": true, "Object": true, "Array": true, "String": true, "Number": true,
	"Boolean": true, "Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
	"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
	"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
	"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
}

func isStandardGlobal(key string) bool {
	return standardGlobals[key]
}

// Eval runs expr and returns its exported Go value
func (r *Runtime) Eval(expr string) (interface{}, error) {
	v, err := r.run(expr)
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) {
		return nil, ErrUndefined
	}
	return v.Export(), nil
}
