package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from path and then applies
// CCRELAY_* environment variable overrides before re-validating.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides overrides cfg fields from CCRELAY_SECTION_FIELD
// environment variables. API keys typically arrive this way: the wrapper
// reads ANTHROPIC_API_KEY/ZAI_API_KEY and maps them onto CCRELAY_* names
// before invoking the core (spec.md §6) — the core itself only ever reads
// its own CCRELAY_ namespace.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CCRELAY_PROXY_HOST"); v != "" {
		cfg.Proxy.Host = v
	}
	if v := os.Getenv("CCRELAY_PROXY_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Proxy.Port = i
		}
	}
	if v := os.Getenv("CCRELAY_UPSTREAM_ANTHROPIC_URL"); v != "" {
		cfg.Upstream.Anthropic.URL = v
	}
	if v := os.Getenv("CCRELAY_UPSTREAM_ZAI_URL"); v != "" {
		cfg.Upstream.Zai.URL = v
	}
	if v := os.Getenv("CCRELAY_UPSTREAM_ZAI_API_KEY"); v != "" {
		cfg.Upstream.Zai.APIKey = v
	}
	if v := os.Getenv("CCRELAY_ROUTING_DEFAULT"); v != "" {
		cfg.Routing.Default = v
	}
	if v := os.Getenv("CCRELAY_LIFECYCLE_STATE_DIR"); v != "" {
		cfg.Lifecycle.StateDir = v
	}
	if v := os.Getenv("CCRELAY_LIFECYCLE_STOP_GRACE_SECONDS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Lifecycle.StopGraceSeconds = i
		}
	}
	if v := os.Getenv("CCRELAY_LIFECYCLE_START_WAIT_SECONDS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Lifecycle.StartWaitSeconds = i
		}
	}
	if v := os.Getenv("CCRELAY_SIGNATURE_STORE_MAX_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Signature.MaxSize = i
		}
	}
	if v := os.Getenv("CCRELAY_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CCRELAY_LOGGING_FILE"); v != "" {
		cfg.Logging.File = v
	}
}
