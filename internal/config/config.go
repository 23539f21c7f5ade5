// Package config loads the storefront client configuration.
//
// Precedence: built-in defaults, then the YAML config file, then
// environment variables. Every field has a usable default so the CLI
// works out of the box against a local backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvAPIURL   = "STOREFRONT_API_URL"
	EnvDatabase = "STOREFRONT_DB"
	EnvToken    = "STOREFRONT_TOKEN"
)

// Duration wraps time.Duration so YAML can carry values like "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the client settings.
type Config struct {
	// APIBaseURL is the backend API root, including the /api prefix.
	APIBaseURL string `yaml:"api_base_url"`

	// Timeout bounds each gateway request.
	Timeout Duration `yaml:"timeout"`

	// Database is the path of the SQLite cart snapshot.
	Database string `yaml:"database"`

	// Currency is the BCP 47 language tag used for price rendering.
	Currency string `yaml:"currency"`

	// TokenFile points at a file holding the bearer token for
	// authenticated sessions. Empty means guest requests.
	TokenFile string `yaml:"token_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL: "http://localhost:5043/api",
		Timeout:    Duration(10 * time.Second),
		Database:   defaultDatabasePath(),
		Currency:   "es-CL",
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront", "config.yaml")
	}
	return "config.yaml"
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. explicit marks a user-provided --config path, for
// which absence is an error rather than a silent default.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults and env apply.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(10 * time.Second)
	}
	return cfg, nil
}

// Token resolves the bearer token: the STOREFRONT_TOKEN variable wins,
// then the configured token file. Empty means guest.
func (c Config) Token() string {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		return v
	}
	if c.TokenFile == "" {
		return ""
	}
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		cfg.Database = v
	}
}

func defaultDatabasePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront", "cart.db")
	}
	return "cart.db"
}
