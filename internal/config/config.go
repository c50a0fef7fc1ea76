// Package config loads HackSpark settings. Precedence, lowest first:
// built-in defaults, the YAML config file, the process environment (which
// a .env file in the working directory may populate).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hackspark/hackspark/pkg/client"
)

// DefaultSessionSecret signs session tokens when SESSION_SECRET is unset.
// It is only fit for local development.
const DefaultSessionSecret = "secret"

// Config is read once at startup and passed to constructors.
type Config struct {
	BackendURL    string        `yaml:"api_url"`
	FrontendURL   string        `yaml:"frontend_url"`
	SessionSecret string        `yaml:"session_secret"`
	SessionFile   string        `yaml:"session_file"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	LogLevel      string        `yaml:"log_level"`
	Listen        string        `yaml:"listen"`
	RateLimit     int           `yaml:"rate_limit"` // requests per minute per IP

	// SessionToken is a raw signed session from HACKSPARK_SESSION. It is
	// never read from the config file.
	SessionToken string `yaml:"-"`
}

// Dir returns ~/.hackspark.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: %w", err)
	}
	return filepath.Join(home, ".hackspark"), nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	cfg := &Config{
		BackendURL:    "http://localhost:8080",
		FrontendURL:   "http://localhost:3000",
		SessionSecret: DefaultSessionSecret,
		HTTPTimeout:   30 * time.Second,
		LogLevel:      "info",
		Listen:        "127.0.0.1:3001",
		RateLimit:     120,
	}
	if dir, err := Dir(); err == nil {
		cfg.SessionFile = filepath.Join(dir, "session")
	}
	return cfg
}

// Load builds the configuration. The config file is HACKSPARK_CONFIG, or
// ~/.hackspark/config.yaml when that is unset; a missing file is not an error.
func Load() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	path := os.Getenv("HACKSPARK_CONFIG")
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	return load(path)
}

func load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.BackendURL = getEnvString("API_URL", c.BackendURL)
	c.FrontendURL = getEnvString("FRONTEND_URL", c.FrontendURL)
	c.SessionSecret = getEnvString("SESSION_SECRET", c.SessionSecret)
	c.SessionFile = getEnvString("HACKSPARK_SESSION_FILE", c.SessionFile)
	c.SessionToken = getEnvString("HACKSPARK_SESSION", c.SessionToken)
	c.LogLevel = getEnvString("HACKSPARK_LOG_LEVEL", c.LogLevel)
	c.Listen = getEnvString("HACKSPARK_LISTEN", c.Listen)

	var err error
	if c.HTTPTimeout, err = getEnvDuration("HACKSPARK_HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.RateLimit, err = getEnvInt("HACKSPARK_RATE_LIMIT", c.RateLimit); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: API_URL %q is not an absolute URL", c.BackendURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: HACKSPARK_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: HACKSPARK_RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET must not be empty")
	}
	return nil
}

// UsesDefaultSecret reports whether sessions are signed with DefaultSessionSecret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Client returns the API client settings.
func (c *Config) Client() client.Config {
	return client.Config{BackendURL: c.BackendURL, Timeout: c.HTTPTimeout}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
