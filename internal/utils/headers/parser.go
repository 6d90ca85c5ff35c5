// Package headers parses "Key: Value" header flags.
package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders converts header strings ("Key: Value") into a map keyed by
// canonical header name. Entries without a colon or with an empty name are
// rejected.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		m[http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
	}
	return m, nil
}

// Merge layers the maps left to right; later values win
func Merge(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, l := range layers {
		for k, v := range l {
			out[http.CanonicalHeaderKey(k)] = v
		}
	}
	return out
}
