package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full runtime configuration.
// Sources, highest priority first: CLI flags, SYMPTRIAGE_* env, config file, DefaultConfig.
type Config struct {
	Lexicon      LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Authority    AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Augment      AugmentConfig     `yaml:"augment" mapstructure:"augment"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LexiconConfig selects the symptom table
type LexiconConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`                   // Empty = built-in table
	MinAuthority string `yaml:"min_authority" mapstructure:"min_authority"` // primary, secondary, tertiary
}

// AuthorityConfig drives resource-link host classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// AugmentConfig configures the optional external severity estimate
type AugmentConfig struct {
	Provider         string        `yaml:"provider" mapstructure:"provider"` // huggingface, openai, anthropic, ollama
	Model            string        `yaml:"model" mapstructure:"model"`
	APIKey           string        `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL          string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Threshold        float64       `yaml:"threshold" mapstructure:"threshold"`                 // Score above this raises urgency one level
	SuggestThreshold float64       `yaml:"suggest_threshold" mapstructure:"suggest_threshold"` // Label score for suggested symptoms
	MaxTokens        int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Configured reports whether augmentation should run at all.
// Presence of a credential is the switch; ollama runs locally and needs none.
func (a AugmentConfig) Configured() bool {
	provider := strings.ToLower(strings.TrimSpace(a.Provider))
	if provider == "" {
		return false
	}
	if provider == "ollama" {
		return true
	}
	return a.APIKey != ""
}

// CacheConfig configures the in-memory inference response cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// RateLimitConfig bounds outbound inference calls per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// HTTPConfig holds settings shared by outbound HTTP clients
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"` // Link checks only; augmentation uses augment.timeout
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"` // Link checks skip paths robots.txt disallows
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ServerConfig configures the JSON endpoint
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// MaxAugmentTimeout caps augment.timeout; triage is user-facing
const MaxAugmentTimeout = 30 * time.Second

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Lexicon: LexiconConfig{
			MinAuthority: "tertiary",
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"medlineplus.gov",
				"nih.gov",
				"cdc.gov",
				"who.int",
				"nhs.uk",
			},
			SecondaryDomains: []string{
				"mayoclinic.org",
				"clevelandclinic.org",
				"hopkinsmedicine.org",
			},
		},
		Augment: AugmentConfig{
			Provider:         "huggingface",
			Model:            "",
			Timeout:          5 * time.Second,
			Threshold:        0.7,
			SuggestThreshold: 0.35,
			MaxTokens:        200,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Symptriage/0.1 (+https://github.com/ppiankov/symptriage)",
			RespectRobots: true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 64 * 1024,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks all configuration fields and reports every problem at once
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Lexicon.MinAuthority) {
	case "", "primary", "secondary", "tertiary":
	default:
		errs = append(errs, fmt.Errorf("invalid lexicon.min_authority %q (must be primary, secondary or tertiary)", c.Lexicon.MinAuthority))
	}

	switch strings.ToLower(c.Augment.Provider) {
	case "", "huggingface", "hf", "openai", "anthropic", "claude", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown augment.provider %q (supported: huggingface, openai, anthropic, ollama)", c.Augment.Provider))
	}
	if c.Augment.Timeout <= 0 || c.Augment.Timeout > MaxAugmentTimeout {
		errs = append(errs, fmt.Errorf("invalid augment.timeout %v (must be in (0, %v])", c.Augment.Timeout, MaxAugmentTimeout))
	}
	if c.Augment.Threshold <= 0 || c.Augment.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("invalid augment.threshold %v (must be in (0, 1))", c.Augment.Threshold))
	}
	if c.Augment.SuggestThreshold < 0 || c.Augment.SuggestThreshold > 1 {
		errs = append(errs, fmt.Errorf("invalid augment.suggest_threshold %v (must be in [0, 1])", c.Augment.SuggestThreshold))
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid cache.ttl %v (must be positive when cache is enabled)", c.Cache.TTL))
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("invalid rate_limiting.requests_per_second %v (must be positive)", c.RateLimiting.RequestsPerSecond))
	}
	if c.Concurrency.Workers <= 0 {
		errs = append(errs, fmt.Errorf("invalid concurrency.workers %d (must be positive)", c.Concurrency.Workers))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	return errors.Join(errs...)
}

// ParseTier converts a tier name to an AuthorityTier; unknown names map to tertiary
func ParseTier(tier string) AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	default:
		return TierTertiary
	}
}
