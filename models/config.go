// Package models defines the data structures shared by the audit pipeline.
package models

import "time"

// Provider presets. The provider only selects a default base URL and model;
// both speak the OpenAI chat-completions wire format.
const (
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
)

const (
	DefaultMaxPages     = 5
	MaxPagesCeiling     = 10
	DefaultFetchTimeout = 10 * time.Second
	DefaultUserAgent    = "GEO-Audit/1.0"
	DefaultMaxTokens    = 1200
	DefaultTemperature  = 0.3
	DefaultCacheTTL     = 10 * time.Minute
	DefaultSnippetChars = 800
)

// AuditConfig holds runtime configuration for audit runs.
// Values come from CLI flags, optionally seeded from a YAML file.
type AuditConfig struct {
	Provider     string        `yaml:"provider"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	MaxPages     int           `yaml:"max_pages"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float32       `yaml:"temperature"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheDB      string        `yaml:"cache_db"`
	SnippetChars int           `yaml:"snippet_chars"`

	// CachePerToken keys cached reports on a hash of the caller's token.
	CachePerToken bool `yaml:"cache_per_token"`
}

// DefaultAuditConfig returns the configuration used when nothing is overridden.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Provider:     ProviderOpenAI,
		MaxPages:     DefaultMaxPages,
		FetchTimeout: DefaultFetchTimeout,
		UserAgent:    DefaultUserAgent,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		CacheTTL:     DefaultCacheTTL,
		SnippetChars: DefaultSnippetChars,
	}
}

// Normalize fills provider-dependent defaults and clamps MaxPages.
func (c *AuditConfig) Normalize() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL(c.Provider)
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.MaxPages > MaxPagesCeiling {
		c.MaxPages = MaxPagesCeiling
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.SnippetChars <= 0 || c.SnippetChars > DefaultSnippetChars {
		c.SnippetChars = DefaultSnippetChars
	}
}

// DefaultBaseURL returns the chat-completions base URL for a provider preset.
func DefaultBaseURL(provider string) string {
	if provider == ProviderPerplexity {
		return "https://api.perplexity.ai"
	}
	return "https://api.openai.com/v1"
}

// DefaultModel returns the model identifier used when none is configured.
// Model identifiers are opaque; the provider validates them.
func DefaultModel(provider string) string {
	if provider == ProviderPerplexity {
		return "sonar"
	}
	return "gpt-4o-mini"
}
