package config

import "github.com/spf13/cobra"

// RegisterFlags adds the persistent flags every command shares. Only flags
// the user actually set override the config file and environment.
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Only log errors")
	pf.Bool("json", false, "Emit logs as JSON")
	pf.String("log-file", "", "Also write logs to this file (rotated)")
	pf.String("config", "", "Path to configuration file (optional)")

	pf.String("mode", DefaultMode, "Page mode: auto, browser or static")
	pf.String("chrome", "", "Path to the Chrome executable")
	pf.Int("pool-size", DefaultBrowserPoolSize, "Browser tabs open at once")
	pf.String("proxy", "", "HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	pf.String("user-agent", "", "Custom user agent string")
	pf.String("timeout", DefaultHTTPTimeout.String(), "Hard timeout for one page")
	pf.Int("retries", DefaultRetryAttempts, "Extra navigation attempts after a transient failure")
	pf.Float64("rate-limit", DefaultRateLimitRPS, "Requests per second per shop domain")
	pf.String("cache-ttl", DefaultCacheTTL.String(), "How long records are reused (0 disables the cache)")
}
