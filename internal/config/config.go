// Package config layers defaults, an optional config file, GOODSCRAWL_*
// environment variables and CLI flags into one Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GOODSCRAWL"

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"`
	JSONLog  bool   `mapstructure:"json"`
	LogFile  string `mapstructure:"log_file"`

	// HTTP/Scraping
	Mode            string        `mapstructure:"mode"`
	HTTPTimeout     time.Duration `mapstructure:"timeout"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	Proxy           string        `mapstructure:"proxy"`
	Proxies         []string      `mapstructure:"proxies"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`

	// Rate Limiting
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// Browser Pool
	BrowserPoolSize int    `mapstructure:"browser_pool_size"`
	BrowserHeadless bool   `mapstructure:"browser_headless"`
	ChromePath      string `mapstructure:"chrome_path"`

	// Caching
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`

	// Resolution
	ReadyAttempts int           `mapstructure:"ready_attempts"`
	ReadyInterval time.Duration `mapstructure:"ready_interval"`
	PollAttempts  int           `mapstructure:"poll_attempts"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	AuxTimeout    time.Duration `mapstructure:"aux_timeout"`
	MaxSiblings   int           `mapstructure:"max_siblings"`

	// Batch and server
	BatchConcurrency int     `mapstructure:"batch_concurrency"`
	ServerAddr       string  `mapstructure:"server_addr"`
	ServerRPS        float64 `mapstructure:"server_rps"`
	ServerBurst      int     `mapstructure:"server_burst"`

	// Per-site selector additions, keyed by site name.
	Sites map[string]SiteOverride `mapstructure:"sites"`
}

// SiteOverride lists selectors that are tried before a site's built-in ones.
type SiteOverride struct {
	TitleSelectors []string `mapstructure:"title_selectors"`
	PriceSelectors []string `mapstructure:"price_selectors"`
	SizeSelectors  []string `mapstructure:"size_selectors"`
	ColorLinks     []string `mapstructure:"color_links"`
	SoldOutMarkers []string `mapstructure:"sold_out_markers"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"timeout":    "timeout",
	"user-agent": "user_agent",
	"proxy":      "proxy",
	"json":       "json",
	"log-file":   "log_file",
	"chrome":     "chrome_path",
	"mode":       "mode",
	"pool-size":  "browser_pool_size",
	"retries":    "retry_attempts",
	"rate-limit": "rate_limit_rps",
	"cache-ttl":  "cache_ttl",
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var file string
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			file = f.Value.String()
		}
	}
	if err := readConfigFile(v, file); err != nil {
		return nil, err
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			v.Set("log_level", "debug")
		} else if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			v.Set("log_level", "error")
		}
	}

	return decode(v)
}

// FromViper decodes an already-populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("goodscrawl")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/goodscrawl")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
