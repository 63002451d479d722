// Package config loads the server configuration. Values come from built-in
// defaults, an optional YAML file and environment variables, in that order,
// and the resulting Config is passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/version"
)

// Config represents the application configuration
type Config struct {
	SiteName          string          `yaml:"site_name"`
	Debug             bool            `yaml:"debug"`
	TemplateReload    bool            `yaml:"template_reload"` // Re-read templates from TemplateDir on every render
	TemplateDir       string          `yaml:"template_dir"`
	StaticDir         string          `yaml:"static_dir"`
	Port              string          `yaml:"port"`
	RequestsPerMinute int             `yaml:"requests_per_minute"` // Per client IP, 0 disables the limiter
	TrustProxyHeaders bool            `yaml:"trust_proxy_headers"` // Key the limiter on X-Forwarded-For; only behind a proxy that sets it
	Discovery         DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig holds settings for outbound WebFinger lookups
type DiscoveryConfig struct {
	UserAgent            string        `yaml:"user_agent"`
	Timeout              time.Duration `yaml:"timeout"`    // 0 means no timeout
	RateLimit            float64       `yaml:"rate_limit"` // Requests per second, 0 means unlimited
	Burst                int           `yaml:"burst"`
	AllowPrivateNetworks bool          `yaml:"allow_private_networks"` // Dev/testing only
}

// Default returns the configuration used when nothing else is provided
func Default() *Config {
	return &Config{
		SiteName:          "A Lamia Community",
		TemplateDir:       "internal/web/templates",
		StaticDir:         "static",
		Port:              "8080",
		RequestsPerMinute: 100,
		Discovery: DiscoveryConfig{
			UserAgent: version.UserAgent(),
			Timeout:   10 * time.Second,
			Burst:     1,
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// LAMIA_CONFIG environment variable is consulted, and when that is empty too
// only defaults and environment variables are used.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path, _ = lookup("LAMIA_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Allow ${VAR} references inside the file
		expanded := os.Expand(string(data), func(key string) string {
			v, _ := lookup(key)
			return v
		})

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides cfg with any environment variables that are set
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("SITE_NAME", &cfg.SiteName)
	boolean("DEBUG", &cfg.Debug)
	boolean("TEMPLATE_RELOAD", &cfg.TemplateReload)
	str("TEMPLATE_DIR", &cfg.TemplateDir)
	str("STATIC_DIR", &cfg.StaticDir)
	str("PORT", &cfg.Port)
	integer("RATE_LIMIT_PER_MINUTE", &cfg.RequestsPerMinute)
	boolean("TRUST_PROXY_HEADERS", &cfg.TrustProxyHeaders)

	str("DISCOVERY_USER_AGENT", &cfg.Discovery.UserAgent)
	integer("DISCOVERY_BURST", &cfg.Discovery.Burst)
	boolean("DISCOVERY_ALLOW_PRIVATE", &cfg.Discovery.AllowPrivateNetworks)

	if v, ok := lookup("DISCOVERY_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DISCOVERY_TIMEOUT: %w", err))
		} else {
			cfg.Discovery.Timeout = d
		}
	}
	if v, ok := lookup("DISCOVERY_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DISCOVERY_RATE_LIMIT: %w", err))
		} else {
			cfg.Discovery.RateLimit = f
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.SiteName == "" {
		return fmt.Errorf("site name is required")
	}

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", c.Port)
	}

	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute cannot be negative")
	}
	if c.Discovery.Timeout < 0 {
		return fmt.Errorf("discovery.timeout cannot be negative")
	}
	if c.Discovery.RateLimit < 0 {
		return fmt.Errorf("discovery.rate_limit cannot be negative")
	}
	if c.Discovery.Burst < 0 {
		return fmt.Errorf("discovery.burst cannot be negative")
	}
	if c.TemplateReload && c.TemplateDir == "" {
		return fmt.Errorf("template_dir is required when template_reload is enabled")
	}

	return nil
}

// WebfingerConfig maps the discovery settings onto the client configuration
func (c *Config) WebfingerConfig() webfinger.Config {
	wf := webfinger.DefaultConfig()
	if c.Discovery.UserAgent != "" {
		wf.UserAgent = c.Discovery.UserAgent
	}
	wf.Timeout = c.Discovery.Timeout
	if c.Discovery.RateLimit > 0 {
		wf.RateLimit = rate.Limit(c.Discovery.RateLimit)
	}
	if c.Discovery.Burst > 0 {
		wf.Burst = c.Discovery.Burst
	}
	wf.AllowPrivate = c.Discovery.AllowPrivateNetworks
	return wf
}
