// Package config loads and validates the runtime configuration for the
// assessment copilot. Values come from an optional YAML file overlaid with
// AZURE_OPENAI_* environment variables; a missing endpoint or credential is
// a fatal startup error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Cache       CacheConfig       `yaml:"cache"`
	Compression CompressionConfig `yaml:"compression"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Assessment  AssessmentConfig  `yaml:"assessment"`
}

type OpenAIConfig struct {
	// Endpoint is the Azure OpenAI resource endpoint or any
	// OpenAI-compatible base URL.
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates requests. Required.
	APIKey string `yaml:"api_key"`

	// APIVersion is forwarded to Azure deployments.
	APIVersion string `yaml:"api_version"`

	// Model is the default completion model (deployment name on Azure).
	Model string `yaml:"model"`

	// FallbackModel is used for the single escalation retry when a
	// completion is truncated. Configurable because escalating a
	// reasoning model to a plain large-context model changes output
	// semantics; operators can point this at a like-for-like tier.
	FallbackModel string `yaml:"fallback_model"`

	// ReasoningEffort is passed to reasoning-family models ("minimal",
	// "low", "medium", "high"). Ignored for standard chat models.
	ReasoningEffort string `yaml:"reasoning_effort"`

	// Timeout bounds each provider call.
	Timeout Duration `yaml:"timeout"`
}

// Duration decodes YAML durations written like "20s" or "2m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type CacheConfig struct {
	// Path is the SQLite completion-cache file.
	Path string `yaml:"path"`

	// MemoryEntries sizes the in-process read-through layer.
	MemoryEntries int64 `yaml:"memory_entries"`
}

type CompressionConfig struct {
	// Enabled turns llmlingua-style prompt compression on. When off,
	// compression markup is stripped from prompts before fingerprinting.
	Enabled bool `yaml:"enabled"`

	// ServiceURL is the external compressor endpoint. When empty or
	// unreachable the identity compressor is used instead.
	ServiceURL string `yaml:"service_url"`

	// GlobalRate is the default compression rate for segments that do
	// not carry their own rate annotation.
	GlobalRate float64 `yaml:"global_rate"`
}

type PricingConfig struct {
	// OverridePath points at a YAML pricing table that replaces the
	// built-in one. The file is watched and hot-reloaded on change.
	OverridePath string `yaml:"override_path"`
}

type AssessmentConfig struct {
	// Language is the target language for generated answers.
	Language string `yaml:"language"`

	// MaxIntendedUses caps the numbered placeholder slots per template.
	MaxIntendedUses int `yaml:"max_intended_uses"`
}

func DefaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIVersion:      "2024-12-01-preview",
			Model:           "gpt-4o",
			FallbackModel:   "gpt-4-32k",
			ReasoningEffort: "medium",
			Timeout:         Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Path:          "cache/completions.db",
			MemoryEntries: 4096,
		},
		Compression: CompressionConfig{
			GlobalRate: 0.33,
		},
		Assessment: AssessmentConfig{
			Language:        "English",
			MaxIntendedUses: 10,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides. Callers that talk to
// the provider validate the result; cache maintenance does not need
// credentials and skips validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env-only configuration
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		c.OpenAI.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		c.OpenAI.APIVersion = v
	}
	if v := os.Getenv("AZURE_OPENAI_GPT_DEPLOYMENT"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("AZURE_OPENAI_FALLBACK_DEPLOYMENT"); v != "" {
		c.OpenAI.FallbackModel = v
	}
	if v := os.Getenv("AZURE_OPENAI_REASONING_EFFORT"); v != "" {
		c.OpenAI.ReasoningEffort = v
	}
	if v := os.Getenv("RAI_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("RAI_COMPRESSION_SERVICE_URL"); v != "" {
		c.Compression.ServiceURL = v
		c.Compression.Enabled = true
	}
	if v := os.Getenv("RAI_TARGET_LANGUAGE"); v != "" {
		c.Assessment.Language = v
	}
	if v := os.Getenv("RAI_COMPRESSION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Compression.Enabled = b
		}
	}
}

func (c *Config) Validate() error {
	if c.OpenAI.Endpoint == "" {
		return fmt.Errorf("openai config: endpoint is required (set AZURE_OPENAI_ENDPOINT)")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai config: api_key is required (set AZURE_OPENAI_API_KEY)")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai config: model is required")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai config: timeout must be positive")
	}
	if c.Compression.GlobalRate <= 0 || c.Compression.GlobalRate > 1 {
		return fmt.Errorf("compression config: global_rate must be in (0, 1]")
	}
	if c.Assessment.MaxIntendedUses <= 0 {
		return fmt.Errorf("assessment config: max_intended_uses must be positive")
	}
	return nil
}
