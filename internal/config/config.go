package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the curator CLI and gateway configuration.
type Config struct {
	Curator CuratorConfig `yaml:"curator"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// CuratorConfig holds the upstream Curator API settings.
type CuratorConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	UserAgent      string `yaml:"user_agent"`
	DefaultPerPage int    `yaml:"default_per_page"`
}

// HTTPConfig holds gateway HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds gateway authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// ErrAuthRequired signals a prod gateway config without any API key.
var ErrAuthRequired = errors.New("auth.api_keys must contain a non-empty key in prod")

// envOnlyYAML is used when no config file exists. Every setting comes from
// CURATOR_* environment variables or the defaults.
const envOnlyYAML = `
curator:
  base_url: ${CURATOR_BASE_URL}
  access_token: ${CURATOR_ACCESS_TOKEN}
  timeout_sec: ${CURATOR_TIMEOUT_SEC:-0}
  user_agent: ${CURATOR_USER_AGENT}
  default_per_page: ${CURATOR_DEFAULT_PER_PAGE:-0}

http:
  port: ${CURATOR_HTTP_PORT:-0}

auth:
  api_keys:
    - ${CURATOR_GATEWAY_API_KEY}

logging:
  level: ${CURATOR_LOG_LEVEL}
`

// Load reads configuration by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadOrEnv reads config/{env}.yaml when it exists and otherwise builds the
// configuration from the environment (see FromEnv).
func LoadOrEnv(env string) (Config, error) {
	if path := findConfigPath(env); fileExists(path) {
		return LoadFile(path)
	}
	return FromEnv()
}

// FromEnv builds the configuration from CURATOR_* environment variables and defaults.
func FromEnv() (Config, error) {
	return Parse([]byte(envOnlyYAML))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Curator.BaseURL == "" {
		c.Curator.BaseURL = "https://api.clarifai.com/v1"
	}
	if c.Curator.TimeoutSec <= 0 {
		c.Curator.TimeoutSec = 30
	}
	if c.Curator.DefaultPerPage <= 0 {
		c.Curator.DefaultPerPage = 20
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Curator.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("curator.base_url must be an absolute http(s) URL, got %q", c.Curator.BaseURL)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// ValidateGateway checks settings that only the gateway needs.
// In prod at least one non-empty API key is required.
func (c *Config) ValidateGateway(env string) error {
	if env != "prod" {
		return nil
	}
	for _, k := range c.Auth.APIKeys {
		if strings.TrimSpace(k) != "" {
			return nil
		}
	}
	return ErrAuthRequired
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
