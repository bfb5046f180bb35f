// Package config loads the server configuration from a YAML file with
// QUILL_* environment overrides for deployment secrets.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can use Go duration syntax
// ("30s", "1h") rather than raw nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// RedisConfig holds the session store backend settings. An empty Addr keeps
// sessions in process memory.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// CacheConfig holds the analysis result cache settings.
type CacheConfig struct {
	Size int      `yaml:"size"`
	TTL  Duration `yaml:"ttl"`
}

// AuthConfig holds the token verification settings.
type AuthConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// ProviderConfig holds the analysis model endpoint settings. An empty BaseURL
// selects the built-in static provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// AnalysisConfig bounds analysis provider calls.
type AnalysisConfig struct {
	Timeout          Duration `yaml:"timeout"`
	RetryUnavailable int      `yaml:"retry_unavailable"`
}

// PersistenceConfig hardens session checkpoints at rest.
type PersistenceConfig struct {
	// EncryptionKey is a hex-encoded 32-byte AES-256 key. Empty disables
	// encryption at rest.
	EncryptionKey string `yaml:"encryption_key"`

	// MaskPatterns are regular expressions masked out of persisted document
	// text and analysis citations.
	MaskPatterns []string `yaml:"mask_patterns"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Provider ProviderConfig `yaml:"provider"`
	Analysis AnalysisConfig `yaml:"analysis"`

	Persistence PersistenceConfig `yaml:"persistence"`

	Log LogConfig `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 16 << 20,
		},
		Redis: RedisConfig{
			TTL: Duration(24 * time.Hour),
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  Duration(time.Hour),
		},
		Auth: AuthConfig{
			Issuer: "quill",
		},
		Analysis: AnalysisConfig{
			Timeout: Duration(60 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "QUILL_ADDR")
	setString(&c.Redis.Addr, "QUILL_REDIS_ADDR")
	setString(&c.Redis.Password, "QUILL_REDIS_PASSWORD")
	setInt(&c.Redis.DB, "QUILL_REDIS_DB")
	setString(&c.Auth.Secret, "QUILL_AUTH_SECRET")
	setString(&c.Auth.Issuer, "QUILL_AUTH_ISSUER")
	setString(&c.Provider.BaseURL, "QUILL_PROVIDER_URL")
	setString(&c.Provider.APIKey, "QUILL_PROVIDER_API_KEY")
	setString(&c.Provider.Model, "QUILL_PROVIDER_MODEL")
	setString(&c.Persistence.EncryptionKey, "QUILL_STATE_KEY")
	setString(&c.Log.Level, "QUILL_LOG_LEVEL")
}

// EncryptionKeyBytes decodes the configured hex key, or returns nil when
// encryption at rest is disabled.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	if c.Persistence.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Persistence.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: persistence.encryption_key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("config: persistence.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive")
	}
	if c.Provider.BaseURL != "" && c.Provider.Model == "" {
		return fmt.Errorf("provider.model is required when provider.base_url is set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
