// Package normalize holds the pure helpers used to turn noisy page values
// into record fields. Nothing here touches a page.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// ExtractNumber returns the first digit run of s after removing thousands
// separators and the won suffix. It returns 0 when s holds no digits.
func ExtractNumber(s string) int {
	if s == "" {
		return 0
	}
	clean := strings.NewReplacer(",", "", "원", "").Replace(s)
	m := digitRun.FindString(clean)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ToInt converts a decoded JSON value into an integer amount.
func ToInt(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > 1e15 {
			return 0
		}
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return ToInt(f)
		}
		return 0
	case string:
		return ExtractNumber(n)
	default:
		return 0
	}
}

// ToFloat converts a decoded JSON value into a float measurement.
// ok is false when v is not numeric.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", "")), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
