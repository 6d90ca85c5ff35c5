package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default constants for application configuration
const (
	DefaultLogLevel           = "info"
	DefaultJSONLog            = false
	DefaultMode               = "auto"
	DefaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultHTTPTimeout        = 60 * time.Second
	DefaultNavigateTimeout    = 30 * time.Second
	DefaultRetryAttempts      = 2
	DefaultRateLimitRPS       = 2.0
	DefaultRateLimitBurst     = 4
	DefaultBrowserPoolSize    = 3
	DefaultMaxBrowserPoolSize = 10
	DefaultBrowserHeadless    = true
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheMaxEntries    = 500
	DefaultReadyAttempts      = 20
	DefaultReadyInterval      = 500 * time.Millisecond
	DefaultPollAttempts       = 6
	DefaultPollInterval       = 300 * time.Millisecond
	DefaultAuxTimeout         = 3 * time.Second
	DefaultMaxSiblings        = 8
	DefaultBatchConcurrency   = 0 // auto
	DefaultServerAddr         = ":8080"
	DefaultServerRPS          = 1.0
	DefaultServerBurst        = 5
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("json", DefaultJSONLog)
	v.SetDefault("log_file", "")

	v.SetDefault("mode", DefaultMode)
	v.SetDefault("timeout", DefaultHTTPTimeout)
	v.SetDefault("navigate_timeout", DefaultNavigateTimeout)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("proxy", "")
	v.SetDefault("proxies", []string{})
	v.SetDefault("retry_attempts", DefaultRetryAttempts)

	v.SetDefault("rate_limit_rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit_burst", DefaultRateLimitBurst)

	v.SetDefault("browser_pool_size", DefaultBrowserPoolSize)
	v.SetDefault("browser_headless", DefaultBrowserHeadless)
	v.SetDefault("chrome_path", "")

	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("cache_max_entries", DefaultCacheMaxEntries)

	v.SetDefault("ready_attempts", DefaultReadyAttempts)
	v.SetDefault("ready_interval", DefaultReadyInterval)
	v.SetDefault("poll_attempts", DefaultPollAttempts)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("aux_timeout", DefaultAuxTimeout)
	v.SetDefault("max_siblings", DefaultMaxSiblings)

	v.SetDefault("batch_concurrency", DefaultBatchConcurrency)
	v.SetDefault("server_addr", DefaultServerAddr)
	v.SetDefault("server_rps", DefaultServerRPS)
	v.SetDefault("server_burst", DefaultServerBurst)
}
