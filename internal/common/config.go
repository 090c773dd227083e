package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/geo-audit/models"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadConfigFile(path string) (models.AuditConfig, error) {
	cfg := models.DefaultAuditConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigFromContext builds the run configuration. Flags (and their env vars)
// override the YAML file, which overrides the defaults.
func ConfigFromContext(c *cli.Context) (models.AuditConfig, error) {
	cfg, err := LoadConfigFile(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("provider") {
		cfg.Provider = strings.ToLower(c.String("provider"))
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("fetch-timeout") {
		cfg.FetchTimeout = c.Duration("fetch-timeout")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("max-tokens") {
		cfg.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("temperature") {
		cfg.Temperature = float32(c.Float64("temperature"))
	}
	if c.IsSet("cache-ttl") {
		cfg.CacheTTL = c.Duration("cache-ttl")
	}
	if c.IsSet("cache-db") {
		cfg.CacheDB = c.String("cache-db")
	}
	if c.IsSet("cache-per-token") {
		cfg.CachePerToken = c.Bool("cache-per-token")
	}
	if c.IsSet("snippet-chars") {
		cfg.SnippetChars = c.Int("snippet-chars")
	}

	switch cfg.Provider {
	case "", models.ProviderOpenAI, models.ProviderPerplexity:
	default:
		return cfg, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, models.ProviderOpenAI, models.ProviderPerplexity)
	}

	cfg.Normalize()
	return cfg, nil
}

// ResolveCredentials picks the bearer token: explicit value, then
// GEO_AUDIT_API_KEY, then the provider's conventional variable.
func ResolveCredentials(explicit, provider string, getenv func(string) string) models.Credentials {
	if v := strings.TrimSpace(explicit); v != "" {
		return models.Credentials(v)
	}
	if v := strings.TrimSpace(getenv("GEO_AUDIT_API_KEY")); v != "" {
		return models.Credentials(v)
	}
	name := "OPENAI_API_KEY"
	if provider == models.ProviderPerplexity {
		name = "PERPLEXITY_API_KEY"
	}
	return models.Credentials(strings.TrimSpace(getenv(name)))
}

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")
