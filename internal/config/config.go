package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-mdrender/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Environment variables read at startup. A .env file in the working
// directory may set them; real environment values win over the file.
const (
	EnvAddr     = "MDRENDER_ADDR"
	EnvLogLevel = "MDRENDER_LOG_LEVEL"
	EnvConfig   = "MDRENDER_CONFIG"

	envPrefix = "MDRENDER_"
)

var knownEnvVars = map[string]bool{
	EnvAddr:     true,
	EnvLogLevel: true,
	EnvConfig:   true,
}

// Limits on server settings.
const (
	DefaultMaxBodyBytes = 1 << 20
	MaxBodyBytesLimit   = 64 << 20
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds everything the server and CLI need at startup.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
	Assets AssetsConfig `yaml:"assets"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"` // request body cap for POST endpoints
	Metrics      bool          `yaml:"metrics"`      // expose GET /metrics
}

// RenderConfig overrides parts of the default render policy.
type RenderConfig struct {
	Extensions []string `yaml:"extensions"` // nil keeps the default set
	LinkEmails bool     `yaml:"linkEmails"`
}

// LogConfig defines server logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // any logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// AssetsConfig points at a directory overriding the embedded page assets.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded only
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8989",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: DefaultMaxBodyBytes,
			Metrics:      true,
		},
		Render: RenderConfig{
			LinkEmails: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// Validate checks every field that has a constrained value. Extension
// names are checked later, when the render policy is built.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("%w: server.readTimeout must not be negative, got %s", ErrInvalidConfig, c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("%w: server.writeTimeout must not be negative, got %s", ErrInvalidConfig, c.Server.WriteTimeout)
	}
	if c.Server.MaxBodyBytes <= 0 || c.Server.MaxBodyBytes > MaxBodyBytesLimit {
		return fmt.Errorf("%w: server.maxBodyBytes must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxBodyBytesLimit, c.Server.MaxBodyBytes)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format: invalid value %q (must be text or json)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig, so keys the file
// omits keep their default. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrConfigNotFound)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfigParse, p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with MDRENDER_* values found through lookup.
// Env values win over the config file; CLI flags are applied after this.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// UnknownEnvVars returns MDRENDER_* names in environ that are not
// recognized, to catch typos.
func UnknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// YAML returns the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yamlutil.Encode(c)
}
