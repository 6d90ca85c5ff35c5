package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Dig walks keys through nested maps. It returns nil as soon as a level is
// not a map or a key is missing.
func Dig(tree any, keys ...string) any {
	cur := tree
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[k]
		if !ok {
			return nil
		}
	}
	return cur
}

// DigOr is Dig with a default for missing or empty values
func DigOr(tree any, def any, keys ...string) any {
	v := Dig(tree, keys...)
	if isEmpty(v) {
		return def
	}
	return v
}

// DigMap returns the map at keys, or nil
func DigMap(tree any, keys ...string) map[string]any {
	m, _ := Dig(tree, keys...).(map[string]any)
	return m
}

// DigList returns the list at keys, or nil
func DigList(tree any, keys ...string) []any {
	l, _ := Dig(tree, keys...).([]any)
	return l
}

// DigString returns the trimmed string form of the value at keys
func DigString(tree any, keys ...string) string {
	switch v := Dig(tree, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// FirstString returns the first non-empty string among the aliases of m
func FirstString(m map[string]any, aliases ...string) string {
	for _, a := range aliases {
		if s := DigString(m, a); s != "" {
			return s
		}
	}
	return ""
}

// FirstOf returns the first element of a list, or v itself
func FirstOf(v any) any {
	if l, ok := v.([]any); ok {
		if len(l) == 0 {
			return nil
		}
		return l[0]
	}
	return v
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}

var labelSep = regexp.MustCompile(`[,/\n]+`)

// SplitLabels splits a disclosure value into discrete labels
func SplitLabels(s string) []string {
	var out []string
	for _, part := range labelSep.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
