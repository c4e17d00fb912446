// Package config provides configuration loading for the Pyxis MCP server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/pyxis-mcp-server/internal/telemetry"
)

const (
	// EnvPrefix is prepended to every environment variable the server reads
	EnvPrefix = "PYXIS"

	// DefaultBaseURL is the public Pyxis v1 endpoint
	DefaultBaseURL = "https://catalog.redhat.com/api/containers/v1/"

	// DefaultTimeout is the per-request timeout against Pyxis
	DefaultTimeout = 30 * time.Second

	// DefaultAddress is the listen address of the http transport
	DefaultAddress = ":8080"

	// DefaultEnvFile is loaded from the working directory when present
	DefaultEnvFile = ".env"
)

const (
	// TransportStdio serves MCP over standard input and output
	TransportStdio = "stdio"

	// TransportHTTP serves MCP over streamable HTTP
	TransportHTTP = "http"
)

// Keys shared by the environment, dotenv files and command line flags.
const (
	KeyAPIKey            = "api_key"
	KeyBaseURL           = "base_url"
	KeyTimeout           = "timeout"
	KeyRequestsPerSecond = "requests_per_second"
	KeyBurst             = "burst"
	KeyTransport         = "transport"
	KeyAddress           = "address"
)

var keys = []string{
	KeyAPIKey,
	KeyBaseURL,
	KeyTimeout,
	KeyRequestsPerSecond,
	KeyBurst,
	KeyTransport,
	KeyAddress,
}

// EnvName returns the environment variable backing key, e.g. PYXIS_API_KEY
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path    string
	envFile string
	viper   *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		realPath, err := resolvePath(path)
		if err != nil {
			return err
		}
		cfg.path = realPath
		return nil
	}
}

// WithEnvFile loads variables from a dotenv file. Variables already present
// in the environment take precedence over the file.
func WithEnvFile(path string) Option {
	return func(cfg *loaderConfig) error {
		realPath, err := resolvePath(path)
		if err != nil {
			return err
		}
		cfg.envFile = realPath
		return nil
	}
}

// WithViper uses v to look up environment variables and bound command line
// flags. Flags bound to v with the Key* names override the environment.
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return fmt.Errorf("viper instance is required")
		}
		cfg.viper = v
		return nil
	}
}

func resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	// Resolve symlinks to prevent symlink attacks.
	// Note that this calls filepath.Clean internally.
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate symlinks: %w", err)
	}

	if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
		return "", fmt.Errorf("path is not local or contains invalid traversal: %s", path)
	}

	return realPath, nil
}

// Config represents the root configuration structure
type Config struct {
	// APIKey authenticates against Pyxis. It is only read from the
	// environment or a dotenv file, never from the YAML file.
	APIKey string `yaml:"-"`

	// BaseURL is the Pyxis REST API root
	BaseURL string `yaml:"baseURL,omitempty"`

	// Timeout bounds each request to Pyxis
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RequestsPerSecond throttles outgoing requests; 0 disables throttling
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// Burst is the token bucket size used with RequestsPerSecond
	Burst int `yaml:"burst,omitempty"`

	// Transport is either "stdio" or "http"
	Transport string `yaml:"transport,omitempty"`

	// Address is the listen address of the http transport
	Address string `yaml:"address,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		Burst:     1,
		Transport: TransportStdio,
		Address:   DefaultAddress,
	}
}

// LoadConfig builds the configuration from, in increasing precedence, the
// built-in defaults, the YAML file, the dotenv file, the environment and
// bound command line flags.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := Default()

	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	dotenv, err := readEnvFile(loaderCfg.envFile)
	if err != nil {
		return nil, err
	}

	v := loaderCfg.viper
	if v == nil {
		v = viper.New()
	}
	for _, key := range keys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", EnvName(key), err)
		}
		if val, ok := dotenv[EnvName(key)]; ok {
			v.SetDefault(key, val)
		}
	}

	if err := config.overlay(v); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// readEnvFile reads path, or DefaultEnvFile when path is empty and the file
// exists. Missing default files are not an error.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil, nil
		}
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// overlay copies every key set in v over the file and default values
func (c *Config) overlay(v *viper.Viper) error {
	if v.IsSet(KeyAPIKey) {
		c.APIKey = strings.TrimSpace(v.GetString(KeyAPIKey))
	}
	if v.IsSet(KeyBaseURL) {
		c.BaseURL = strings.TrimSpace(v.GetString(KeyBaseURL))
	}
	if v.IsSet(KeyTimeout) {
		timeout, err := parseTimeout(v.GetString(KeyTimeout))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvName(KeyTimeout), err)
		}
		c.Timeout = timeout
	}
	if v.IsSet(KeyRequestsPerSecond) {
		rps, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(KeyRequestsPerSecond)), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvName(KeyRequestsPerSecond), err)
		}
		c.RequestsPerSecond = rps
	}
	if v.IsSet(KeyBurst) {
		burst, err := strconv.Atoi(strings.TrimSpace(v.GetString(KeyBurst)))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvName(KeyBurst), err)
		}
		c.Burst = burst
	}
	if v.IsSet(KeyTransport) {
		c.Transport = strings.ToLower(strings.TrimSpace(v.GetString(KeyTransport)))
	}
	if v.IsSet(KeyAddress) {
		c.Address = strings.TrimSpace(v.GetString(KeyAddress))
	}
	return nil
}

// parseTimeout accepts Go durations ("45s") and bare numbers of seconds ("45", "2.5")
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// Validate performs validation on the configuration. A missing API key is
// not an error here; it is reported when the first tool call needs it.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	u, err := url.Parse(c.BaseURL)
	switch {
	case c.BaseURL == "":
		errs = append(errs, fmt.Errorf("base URL is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid base URL: %w", err))
	case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("base URL must be an absolute http(s) URL, got %q", c.BaseURL))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be greater than zero, got %s", c.Timeout))
	}

	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond))
	}
	if c.RequestsPerSecond > 0 && c.Burst < 1 {
		errs = append(errs, fmt.Errorf("burst must be at least 1 when throttling, got %d", c.Burst))
	}

	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Address == "" {
			errs = append(errs, fmt.Errorf("address is required for the %s transport", TransportHTTP))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q, must be %q or %q", c.Transport, TransportStdio, TransportHTTP))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

// HasAPIKey reports whether an API key is configured
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}
