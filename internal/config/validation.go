package config

import "fmt"

var modes = map[string]bool{"auto": true, "browser": true, "static": true}

var levels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

func validate(c *Config) error {
	if !levels[c.LogLevel] {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if !modes[c.Mode] {
		return fmt.Errorf("mode must be one of auto, browser, static (got %q)", c.Mode)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.NavigateTimeout <= 0 {
		return fmt.Errorf("navigate timeout must be > 0")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must be >= 0")
	}
	if c.BrowserPoolSize <= 0 || c.BrowserPoolSize > DefaultMaxBrowserPoolSize {
		return fmt.Errorf("browser pool size must be between 1 and %d", DefaultMaxBrowserPoolSize)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be > 0")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache max entries must be >= 0")
	}
	if c.ReadyAttempts <= 0 || c.PollAttempts <= 0 {
		return fmt.Errorf("ready and poll attempts must be > 0")
	}
	if c.ReadyInterval <= 0 || c.PollInterval <= 0 {
		return fmt.Errorf("ready and poll intervals must be > 0")
	}
	if c.AuxTimeout <= 0 {
		return fmt.Errorf("aux timeout must be > 0")
	}
	if c.MaxSiblings < 0 {
		return fmt.Errorf("max siblings must be >= 0")
	}
	if c.BatchConcurrency < 0 {
		return fmt.Errorf("batch concurrency must be >= 0")
	}
	if c.ServerRPS <= 0 || c.ServerBurst <= 0 {
		return fmt.Errorf("server rps and burst must be > 0")
	}
	return nil
}
