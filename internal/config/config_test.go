package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "goodscrawl", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultReadyAttempts, cfg.ReadyAttempts)
	assert.Equal(t, DefaultReadyInterval, cfg.ReadyInterval)
	assert.Equal(t, DefaultAuxTimeout, cfg.AuxTimeout)
	assert.Equal(t, DefaultBrowserPoolSize, cfg.BrowserPoolSize)
	assert.True(t, cfg.BrowserHeadless)
	assert.Empty(t, cfg.Sites)
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOODSCRAWL_USER_AGENT", "env-agent")
	t.Setenv("GOODSCRAWL_AUX_TIMEOUT", "1500ms")
	t.Setenv("GOODSCRAWL_BROWSER_POOL_SIZE", "5")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.Equal(t, 1500*time.Millisecond, cfg.AuxTimeout)
	assert.Equal(t, 5, cfg.BrowserPoolSize)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOODSCRAWL_USER_AGENT", "env-agent")

	cmd := newRoot(t, "--user-agent", "flag-agent", "--timeout", "10s", "--mode", "static", "-v")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "flag-agent", cfg.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "static", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadTuningFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRoot(t, "--pool-size", "6", "--retries", "0", "--rate-limit", "0.5", "--cache-ttl", "0s")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.BrowserPoolSize)
	assert.Equal(t, 0, cfg.RetryAttempts)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Zero(t, cfg.CacheTTL)
}

func TestLoadRejectsOversizedPool(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(newRoot(t, "--pool-size", "99"))
	assert.ErrorContains(t, err, "browser pool size")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "custom.yaml")
	content := `
log_level: warn
ready_attempts: 4
sites:
  musinsa:
    title_selectors: ["h1.custom-title"]
    sold_out_markers: ["is-soldout"]
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cmd := newRoot(t, "--config", file)
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 4, cfg.ReadyAttempts)
	require.Contains(t, cfg.Sites, "musinsa")
	assert.Equal(t, []string{"h1.custom-title"}, cfg.Sites["musinsa"].TitleSelectors)
	assert.Equal(t, []string{"is-soldout"}, cfg.Sites["musinsa"].SoldOutMarkers)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goodscrawl.yaml"), []byte("max_siblings: 2\n"), 0o600))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxSiblings)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cmd := newRoot(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(cmd)
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{"bad mode", "mode", "headful"},
		{"bad level", "log_level", "loud"},
		{"zero timeout", "timeout", 0},
		{"pool too large", "browser_pool_size", DefaultMaxBrowserPoolSize + 1},
		{"zero ready attempts", "ready_attempts", 0},
		{"negative siblings", "max_siblings", -1},
		{"zero aux timeout", "aux_timeout", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}
