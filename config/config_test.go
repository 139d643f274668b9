package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforasia/git-jekyll-preview/config"
	"github.com/codeforasia/git-jekyll-preview/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, config.Validate(cfg))

	assert.Equal(t, time.Minute, cfg.Freshness)
	assert.Equal(t, config.RecordsSidecar, cfg.Records)
	assert.Equal(t, config.ProviderSDK, cfg.GitHub.Provider)
	assert.Equal(t, "https://github.com", cfg.GitHub.CloneURL)
	assert.Equal(t, config.ResolverCLI, cfg.Git.Resolver)
	assert.Equal(t, 7*24*time.Hour, cfg.Prune.OlderThan)
}

//nolint:tparallel // subtests use t.Setenv
func TestLoad(t *testing.T) {
	t.Run("should overlay file values on defaults", func(t *testing.T) {
		// given
		t.Setenv(config.EnvCacheDir, "")
		t.Setenv(config.EnvToken, "")
		path := writeConfig(t, `
cache_dir: /srv/jekit
freshness: 30s
records: index
lock:
  poll_interval: 100ms
github:
  provider: cli
  host: ghe.example.com
git:
  resolver: native
  timeout: 2m
log:
  level: debug
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/srv/jekit", cfg.CacheDir)
		assert.Equal(t, 30*time.Second, cfg.Freshness)
		assert.Equal(t, config.RecordsIndex, cfg.Records)
		assert.Equal(t, 100*time.Millisecond, cfg.Lock.PollInterval)
		assert.Equal(t, config.ProviderCLI, cfg.GitHub.Provider)
		assert.Equal(t, "ghe.example.com", cfg.GitHub.Host)
		assert.Equal(t, "https://github.com", cfg.GitHub.CloneURL, "unset keys keep defaults")
		assert.Equal(t, "git", cfg.Git.Binary)
		assert.Equal(t, config.ResolverNative, cfg.Git.Resolver)
		assert.Equal(t, 2*time.Minute, cfg.Git.Timeout)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("should expand environment variables", func(t *testing.T) {
		// given
		t.Setenv(config.EnvCacheDir, "")
		t.Setenv("JEKIT_TEST_DIR", "/tmp/from-env")
		t.Setenv("JEKIT_TEST_TOKEN", "ghp_secret")
		path := writeConfig(t, "cache_dir: ${JEKIT_TEST_DIR}\ngithub:\n  token: ${JEKIT_TEST_TOKEN}\n")

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/tmp/from-env", cfg.CacheDir)
		assert.Equal(t, "ghp_secret", cfg.GitHub.Token)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		// given
		t.Setenv(config.EnvCacheDir, "/override")
		t.Setenv(config.EnvToken, "env-token")
		path := writeConfig(t, "cache_dir: /from-file\n")

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/override", cfg.CacheDir)
		assert.Equal(t, "env-token", cfg.GitHub.Token)
	})

	t.Run("should fail on missing file", func(t *testing.T) {
		// when
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		// then
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		// given
		path := writeConfig(t, "cache_dir: [unclosed\n")

		// when
		_, err := config.Load(path)

		// then
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("should fail validation", func(t *testing.T) {
		// given
		t.Setenv(config.EnvLogLevel, "")
		path := writeConfig(t, "records: sqlite\n")

		// when
		_, err := config.Load(path)

		// then
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		assert.Contains(t, err.Error(), "records")
	})
}

func TestResolveToken(t *testing.T) {
	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "ghp_abc", config.ResolveToken("ghp_abc"))
	})

	t.Run("should return empty for unset env var", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, config.ResolveToken("${JEKIT_DEFINITELY_NOT_SET_12345}"))
	})

	t.Run("should read token from file", func(t *testing.T) {
		t.Parallel()

		// given
		file := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(file, []byte("  file-token \n"), 0o600))

		// when / then
		assert.Equal(t, "file-token", config.ResolveToken(file))
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"empty cache dir", func(c *config.Config) { c.CacheDir = " " }, "cache_dir"},
		{"negative freshness", func(c *config.Config) { c.Freshness = -time.Second }, "freshness"},
		{"unknown records", func(c *config.Config) { c.Records = "db" }, "records"},
		{"zero poll interval", func(c *config.Config) { c.Lock.PollInterval = 0 }, "lock.poll_interval"},
		{"unknown provider", func(c *config.Config) { c.GitHub.Provider = "rest" }, "github.provider"},
		{"empty clone url", func(c *config.Config) { c.GitHub.CloneURL = "" }, "github.clone_url"},
		{"empty git binary", func(c *config.Config) { c.Git.Binary = "" }, "git.binary"},
		{"unknown resolver", func(c *config.Config) { c.Git.Resolver = "libgit2" }, "git.resolver"},
		{"negative timeout", func(c *config.Config) { c.Git.Timeout = -1 }, "git.timeout"},
		{"negative max bytes", func(c *config.Config) { c.Prune.MaxBytes = -1 }, "prune.max_bytes"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(cfg)

			err := config.Validate(cfg)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

			var perr errors.PlatformError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.field, perr.Context()["field"])
		})
	}
}
