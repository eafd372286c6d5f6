package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/logging"
	"gopkg.in/yaml.v3"
)

// Provider type names accepted in the configuration file.
const (
	TypeEnv    = "env"
	TypeFile   = "file"
	TypeHybrid = "hybrid"
	TypeAWS    = "aws-secrets-manager"
)

// Environment variables that override the configuration file.
const (
	EnvSecretsFilePath = "SECRETS_FILE_PATH"
	EnvStrictMode      = "SECRETS_STRICT_MODE"
)

// DefaultSecretsFilePath is the fallback secrets file used when neither the
// configuration nor SECRETS_FILE_PATH names one.
const DefaultSecretsFilePath = "/etc/titan/secrets.json"

// DefaultMetricsAddr is where the serve command exposes /metrics.
const DefaultMetricsAddr = ":9464"

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Definition represents the secretchain.yaml structure
type Definition struct {
	Version  int              `yaml:"version"`
	Provider ProviderConfig   `yaml:"provider"`
	Required []RequiredSecret `yaml:"required,omitempty"`
	Metrics  MetricsConfig    `yaml:"metrics,omitempty"`
}

// ProviderConfig describes one provider. Hybrid providers nest their
// primary and fallback.
type ProviderConfig struct {
	Type string `yaml:"type"`

	// file
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`

	// hybrid
	StrictMode bool            `yaml:"strict_mode,omitempty"`
	Primary    *ProviderConfig `yaml:"primary,omitempty"`
	Fallback   *ProviderConfig `yaml:"fallback,omitempty"`

	// aws-secrets-manager
	AWS *AWSConfig `yaml:"aws,omitempty"`

	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// AWSConfig is accepted so configurations can name the backend; no
// implementation ships with this module.
type AWSConfig struct {
	Region       string `yaml:"region"`
	SecretPrefix string `yaml:"secret_prefix,omitempty"`
}

// CacheConfig tunes a provider's cache. Unset fields take the defaults.
type CacheConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	TTL     time.Duration `yaml:"ttl,omitempty"`
	MaxSize int           `yaml:"max_size,omitempty"`
}

// RequiredSecret is a key that must resolve at startup.
type RequiredSecret struct {
	Key       string `yaml:"key"`
	MinLength int    `yaml:"min_length,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"` // warn instead of failing
}

// MetricsConfig configures the metrics listener.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// CacheEnabled reports whether caching is on. Caching defaults to on.
func (c *CacheConfig) CacheEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// CacheTTL returns the configured TTL or def when unset.
func (c *CacheConfig) CacheTTL(def time.Duration) time.Duration {
	if c == nil || c.TTL <= 0 {
		return def
	}
	return c.TTL
}

// CacheMaxSize returns the configured bound, zero meaning unbounded.
func (c *CacheConfig) CacheMaxSize() int {
	if c == nil {
		return 0
	}
	return c.MaxSize
}

// Default returns the production layout: environment first, then the
// secrets file, non-strict.
func Default() *Definition {
	return &Definition{
		Version: 0,
		Provider: ProviderConfig{
			Type:    TypeHybrid,
			Primary: &ProviderConfig{Type: TypeEnv},
			Fallback: &ProviderConfig{
				Type: TypeFile,
				Path: DefaultSecretsFilePath,
			},
		},
		Required: DefaultRequired(),
		Metrics:  MetricsConfig{Addr: DefaultMetricsAddr},
	}
}

// DefaultRequired lists the secrets an application cannot start without.
func DefaultRequired() []RequiredSecret {
	return []RequiredSecret{
		{Key: "JWT_SECRET", MinLength: 8},
		{Key: "DATABASE_URL", MinLength: 8},
	}
}

// Load reads and parses the configuration file. A missing file yields the
// production default. Environment overrides are applied last.
func (c *Config) Load() error {
	if c.Logger == nil {
		c.Logger = logging.Discard()
	}
	if c.LookupEnv == nil {
		c.LookupEnv = os.LookupEnv
	}

	def, err := c.readDefinition()
	if err != nil {
		return err
	}

	c.applyEnvOverrides(def)

	if err := def.Validate(); err != nil {
		return err
	}

	c.Definition = def
	return nil
}

func (c *Config) readDefinition() (*Definition, error) {
	if c.Path == "" {
		c.Logger.Debug("No configuration file given, using defaults")
		return Default(), nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Logger.Debug("Configuration file %s not found, using defaults", c.Path)
			return Default(), nil
		}
		return nil, dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return nil, dserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your secretchain.yaml file",
		}
	}

	if def.Provider.Type == "" {
		def.Provider = Default().Provider
	}
	if def.Required == nil {
		def.Required = DefaultRequired()
	}
	if def.Metrics.Addr == "" {
		def.Metrics.Addr = DefaultMetricsAddr
	}

	return &def, nil
}

func (c *Config) applyEnvOverrides(def *Definition) {
	if path, ok := c.LookupEnv(EnvSecretsFilePath); ok && path != "" {
		if fileCfg := def.Provider.FileProvider(); fileCfg != nil {
			c.Logger.Debug("Using secrets file from %s", EnvSecretsFilePath)
			fileCfg.Path = path
		}
	}

	if strict, ok := c.LookupEnv(EnvStrictMode); ok {
		def.Provider.StrictMode = strict == "true"
	}
}

// FileProvider returns the first file provider in the tree, searching the
// provider itself, then its fallback, then its primary.
func (p *ProviderConfig) FileProvider() *ProviderConfig {
	if p == nil {
		return nil
	}
	if p.Type == TypeFile {
		return p
	}
	if f := p.Fallback.FileProvider(); f != nil {
		return f
	}
	return p.Primary.FileProvider()
}

// Validate checks the whole definition.
func (d *Definition) Validate() error {
	if err := d.Provider.validate("provider"); err != nil {
		return err
	}

	for i, req := range d.Required {
		field := fmt.Sprintf("required[%d]", i)
		if strings.TrimSpace(req.Key) == "" {
			return dserrors.ConfigError{
				Field:      field + ".key",
				Message:    "required secret has no key",
				Suggestion: "Give every entry under 'required:' a 'key'",
			}
		}
		if req.MinLength < 0 {
			return dserrors.ConfigError{
				Field:      field + ".min_length",
				Value:      req.MinLength,
				Message:    "min_length cannot be negative",
				Suggestion: "Use 0 to accept any non-empty value",
			}
		}
	}

	return nil
}

func (p *ProviderConfig) validate(field string) error {
	switch p.Type {
	case TypeEnv, TypeAWS:
	case TypeFile:
		if p.Path == "" {
			return dserrors.ConfigError{
				Field:      field + ".path",
				Message:    "file provider requires a path",
				Suggestion: fmt.Sprintf("Set 'path' or export %s", EnvSecretsFilePath),
			}
		}
	case TypeHybrid:
		if p.Primary == nil {
			return dserrors.ConfigError{
				Field:      field + ".primary",
				Message:    "hybrid provider requires a primary provider",
				Suggestion: "Add a 'primary:' block, for example 'primary: {type: env}'",
			}
		}
		if err := p.Primary.validate(field + ".primary"); err != nil {
			return err
		}
		if p.Fallback != nil {
			if err := p.Fallback.validate(field + ".fallback"); err != nil {
				return err
			}
		}
	default:
		return dserrors.ConfigError{
			Field:      field + ".type",
			Value:      p.Type,
			Message:    "unknown provider type",
			Suggestion: fmt.Sprintf("Supported types: %s", strings.Join([]string{TypeEnv, TypeFile, TypeHybrid}, ", ")),
		}
	}

	if p.Cache != nil {
		if p.Cache.TTL < 0 {
			return dserrors.ConfigError{
				Field:      field + ".cache.ttl",
				Value:      p.Cache.TTL,
				Message:    "cache ttl cannot be negative",
				Suggestion: "Use a duration such as '5m'",
			}
		}
		if p.Cache.MaxSize < 0 {
			return dserrors.ConfigError{
				Field:      field + ".cache.max_size",
				Value:      p.Cache.MaxSize,
				Message:    "cache max_size cannot be negative",
				Suggestion: "Use 0 for an unbounded cache",
			}
		}
	}

	return nil
}
