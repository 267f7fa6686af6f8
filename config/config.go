// Package config loads doclai settings from TOML or YAML files and the
// environment, and builds the generator, client and translator they describe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/cache"
	"github.com/ZaguanLabs/doclai/provider"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string such as "1s" or "24h".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CacheConfig selects the translation cache.
type CacheConfig struct {
	Type     string   `toml:"type" yaml:"type"` // none, memory, file, redis
	TTL      Duration `toml:"ttl" yaml:"ttl"`
	RedisURL string   `toml:"redis_url" yaml:"redis_url"`
	File     string   `toml:"file" yaml:"file"`
}

// Config holds every setting of a doclai run.
type Config struct {
	Provider       string  `toml:"provider" yaml:"provider"`
	Model          string  `toml:"model" yaml:"model"`
	APIKey         string  `toml:"api_key" yaml:"api_key"`
	BaseURL        string  `toml:"base_url" yaml:"base_url"`
	LambdaFunction string  `toml:"lambda_function" yaml:"lambda_function"`
	Region         string  `toml:"region" yaml:"region"`
	Temperature    float32 `toml:"temperature" yaml:"temperature"`

	TargetLanguage    string   `toml:"target_language" yaml:"target_language"`
	RetryAttempts     int      `toml:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay        Duration `toml:"retry_delay" yaml:"retry_delay"`
	MaxUnitTokens     int      `toml:"max_unit_tokens" yaml:"max_unit_tokens"`
	Concurrency       int      `toml:"concurrency" yaml:"concurrency"`
	RequestsPerMinute int      `toml:"requests_per_minute" yaml:"requests_per_minute"`

	HTMLTags            []string `toml:"html_tags" yaml:"html_tags"`
	HTMLDocumentRegions bool     `toml:"html_document_regions" yaml:"html_document_regions"`
	XMLTags             []string `toml:"xml_tags" yaml:"xml_tags"`
	XMLAttributes       []string `toml:"xml_attributes" yaml:"xml_attributes"`
	XMLIndent           int      `toml:"xml_indent" yaml:"xml_indent"`

	Cache   CacheConfig `toml:"cache" yaml:"cache"`
	Verbose bool        `toml:"verbose" yaml:"verbose"`
}

// Providers lists the accepted provider names.
var Providers = []string{
	provider.NameOpenAI,
	provider.NameOllama,
	provider.NameGemini,
	provider.NameLambda,
	provider.NameMock,
}

// Default returns the built-in settings.
func Default() *Config {
	retry := doclai.DefaultRetryConfig()
	return &Config{
		Provider:      provider.NameOpenAI,
		Temperature:   0.1,
		RetryAttempts: retry.MaxAttempts,
		RetryDelay:    Duration(retry.Delay),
		MaxUnitTokens: doclai.DefaultMaxUnitTokens,
		Concurrency:   1,
		HTMLTags:      slices.Clone(doclai.DefaultHTMLTags),
		XMLTags:       slices.Clone(doclai.DefaultXMLTags),
		XMLAttributes: slices.Clone(doclai.DefaultXMLAttributes),
		Cache:         CacheConfig{Type: cache.TypeNone},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml / .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is user-provided
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, &doclai.ConfigError{Field: "path", Message: "unsupported config format " + filepath.Ext(path)}
	}
	if err != nil {
		return nil, &doclai.ConfigError{Field: "path", Message: "parsing " + path, Cause: err}
	}
	return cfg, nil
}

// ApplyEnv fills settings from the environment. API keys are taken from
// OPENAI_API_KEY or GEMINI_API_KEY only when none is configured; DOCLAI_*
// variables override file values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, "DOCLAI_PROVIDER")
	set(&c.Model, "DOCLAI_MODEL")
	set(&c.BaseURL, "DOCLAI_BASE_URL")
	set(&c.LambdaFunction, "DOCLAI_LAMBDA_FUNCTION")
	set(&c.TargetLanguage, "DOCLAI_TARGET_LANGUAGE")
	set(&c.Cache.Type, "DOCLAI_CACHE")
	set(&c.Cache.RedisURL, "DOCLAI_REDIS_URL")
	set(&c.Region, "AWS_REGION")

	c.FillAPIKey(getenv)
}

// FillAPIKey sets the API key from the provider's environment variable when
// none is configured.
func (c *Config) FillAPIKey(getenv func(string) string) {
	if c.APIKey != "" {
		return
	}
	switch c.Provider {
	case provider.NameOpenAI:
		c.APIKey = getenv("OPENAI_API_KEY")
	case provider.NameGemini:
		c.APIKey = getenv("GEMINI_API_KEY")
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return &doclai.ConfigError{Field: "provider", Message: fmt.Sprintf("unknown provider %q (want one of %s)", c.Provider, strings.Join(Providers, ", "))}
	}
	switch c.Provider {
	case provider.NameOpenAI, provider.NameGemini:
		if c.APIKey == "" {
			return &doclai.ConfigError{Field: "api_key", Message: "required for provider " + c.Provider}
		}
	case provider.NameLambda:
		if c.LambdaFunction == "" {
			return &doclai.ConfigError{Field: "lambda_function", Message: "required for provider lambda"}
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &doclai.ConfigError{Field: "temperature", Message: "must be between 0 and 2"}
	}
	if c.RetryAttempts < 1 {
		return &doclai.ConfigError{Field: "retry_attempts", Message: "must be at least 1"}
	}
	if c.RetryDelay < 0 {
		return &doclai.ConfigError{Field: "retry_delay", Message: "must not be negative"}
	}
	if c.MaxUnitTokens < 1 {
		return &doclai.ConfigError{Field: "max_unit_tokens", Message: "must be positive"}
	}
	if c.Concurrency < 1 {
		return &doclai.ConfigError{Field: "concurrency", Message: "must be at least 1"}
	}
	if c.RequestsPerMinute < 0 {
		return &doclai.ConfigError{Field: "requests_per_minute", Message: "must not be negative"}
	}
	if len(c.HTMLTags) == 0 {
		return &doclai.ConfigError{Field: "html_tags", Message: "at least one tag is required"}
	}
	if len(c.XMLTags) == 0 {
		return &doclai.ConfigError{Field: "xml_tags", Message: "at least one tag is required"}
	}
	if c.XMLIndent < 0 {
		return &doclai.ConfigError{Field: "xml_indent", Message: "must not be negative"}
	}
	if len(c.XMLAttributes) == 0 {
		return &doclai.ConfigError{Field: "xml_attributes", Message: "at least one attribute is required"}
	}
	switch strings.ToLower(c.Cache.Type) {
	case "", cache.TypeNone, cache.TypeMemory:
	case cache.TypeFile:
		if c.Cache.File == "" {
			return &doclai.ConfigError{Field: "cache.file", Message: "required for the file cache"}
		}
	case cache.TypeRedis:
		if c.Cache.RedisURL == "" {
			return &doclai.ConfigError{Field: "cache.redis_url", Message: "required for the redis cache"}
		}
	default:
		return &doclai.ConfigError{Field: "cache.type", Message: fmt.Sprintf("unknown cache type %q", c.Cache.Type)}
	}
	return nil
}
