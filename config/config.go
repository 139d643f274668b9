// Package config loads jekit settings from YAML, the environment and a
// .env file.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// Accepted values of the enumerated settings.
const (
	RecordsSidecar = "sidecar"
	RecordsIndex   = "index"

	ProviderSDK = "sdk"
	ProviderCLI = "cli"

	ResolverCLI    = "cli"
	ResolverNative = "native"
)

// Environment variables that override file settings.
const (
	EnvCacheDir = "JEKIT_CACHE_DIR"
	EnvToken    = "JEKIT_GITHUB_TOKEN"
	EnvLogLevel = "JEKIT_LOG_LEVEL"
)

// Config is the complete jekit configuration.
type Config struct {
	CacheDir  string        `yaml:"cache_dir"`
	Freshness time.Duration `yaml:"freshness"`
	Records   string        `yaml:"records"` // "sidecar" or "index"
	Lock      LockConfig    `yaml:"lock"`
	GitHub    GitHubConfig  `yaml:"github"`
	Git       GitConfig     `yaml:"git"`
	Prune     PruneConfig   `yaml:"prune"`
	Log       LogConfig     `yaml:"log"`
}

// LockConfig tunes checkout locking.
type LockConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// GitHubConfig selects how the GitHub API is reached.
type GitHubConfig struct {
	Provider string `yaml:"provider"` // "sdk" or "cli"
	APIURL   string `yaml:"api_url"`  // empty for github.com
	Host     string `yaml:"host"`     // gh CLI host, for GitHub Enterprise
	CloneURL string `yaml:"clone_url"`
	Token    string `yaml:"token"` // inline, ${ENV_VAR}, or file path
}

// GitConfig configures the git binary.
type GitConfig struct {
	Binary   string        `yaml:"binary"`
	Resolver string        `yaml:"resolver"` // "cli" or "native"
	Timeout  time.Duration `yaml:"timeout"`
}

// PruneConfig holds the defaults of the prune command.
type PruneConfig struct {
	OlderThan time.Duration `yaml:"older_than"`
	MaxBytes  int64         `yaml:"max_bytes"`
	Interval  time.Duration `yaml:"interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Default returns the configuration used when no file is found.
func Default() *Config {
	cacheDir := ".jekit"
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "jekit")
	}

	return &Config{
		CacheDir:  cacheDir,
		Freshness: time.Minute,
		Records:   RecordsSidecar,
		Lock:      LockConfig{PollInterval: 250 * time.Millisecond},
		GitHub: GitHubConfig{
			Provider: ProviderSDK,
			CloneURL: "https://github.com",
		},
		Git: GitConfig{
			Binary:   "git",
			Resolver: ResolverCLI,
		},
		Prune: PruneConfig{OlderThan: 7 * 24 * time.Hour},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads the file at path over the defaults. Values may reference
// environment variables as ${VAR}; a .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config file %q", path),
			"path", path,
		)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config file"),
			"path", path,
		)
	}

	return finish(cfg)
}

// LoadOrDefault loads path, or the first file FindConfigFile finds when
// path is empty, or the defaults when there is none.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			logger.Debugf("No config file found, using defaults")
			_ = godotenv.Load(".env")
			return finish(Default())
		}
		path = found
	}

	logger.Debugf("Loading config from %s", path)
	return Load(path)
}

func finish(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	cfg.GitHub.Token = ResolveToken(cfg.GitHub.Token)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override the file.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		cfg.CacheDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = strings.TrimSpace(os.Getenv(EnvToken))
	}
}

// FindConfigFile searches the usual locations for a configuration file and
// returns the first one found.
func FindConfigFile() (string, error) {
	locations := []string{".", ".config", "configs"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		locations = append(locations, home, filepath.Join(home, ".config"))
	}

	names := []string{".jekit.yaml", ".jekit.yml", "jekit.yaml", "jekit.yml"}

	for _, loc := range locations {
		for _, name := range names {
			p := filepath.Join(loc, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}

	return "", errors.New(errors.CodeNotFound, "config file not found in default locations")
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		logger.Warnf("Environment variable %q is not set", name)
		return ""
	})
}

// ResolveToken expands ${VAR} references and, when the result names an
// existing file, reads the token from that file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := expandEnv(raw)
	if resolved == "" {
		return ""
	}

	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		data, err := os.ReadFile(resolved)
		if err != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, err)
			return resolved
		}
		logger.Debugf("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// Validate checks every setting.
func Validate(cfg *Config) error {
	switch {
	case strings.TrimSpace(cfg.CacheDir) == "":
		return invalid("cache_dir", "cache_dir is required")
	case cfg.Freshness < 0:
		return invalid("freshness", "freshness must not be negative")
	case cfg.Records != RecordsSidecar && cfg.Records != RecordsIndex:
		return invalid("records", "records must be %q or %q, got %q", RecordsSidecar, RecordsIndex, cfg.Records)
	case cfg.Lock.PollInterval <= 0:
		return invalid("lock.poll_interval", "lock.poll_interval must be positive")
	case cfg.GitHub.Provider != ProviderSDK && cfg.GitHub.Provider != ProviderCLI:
		return invalid("github.provider", "github.provider must be %q or %q, got %q", ProviderSDK, ProviderCLI, cfg.GitHub.Provider)
	case cfg.GitHub.CloneURL == "":
		return invalid("github.clone_url", "github.clone_url is required")
	case cfg.Git.Binary == "":
		return invalid("git.binary", "git.binary is required")
	case cfg.Git.Resolver != ResolverCLI && cfg.Git.Resolver != ResolverNative:
		return invalid("git.resolver", "git.resolver must be %q or %q, got %q", ResolverCLI, ResolverNative, cfg.Git.Resolver)
	case cfg.Git.Timeout < 0:
		return invalid("git.timeout", "git.timeout must not be negative")
	case cfg.Prune.MaxBytes < 0:
		return invalid("prune.max_bytes", "prune.max_bytes must not be negative")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInvalidConfig, "invalid log.level"), "field", "log.level")
	}

	return nil
}

func invalid(field, format string, args ...interface{}) error {
	return errors.WithContext(errors.Newf(errors.CodeInvalidConfig, format, args...), "field", field)
}
