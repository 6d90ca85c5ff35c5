package normalize

import "strings"

// EnsureHTTPS rewrites a protocol-relative URL to https.
func EnsureHTTPS(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
