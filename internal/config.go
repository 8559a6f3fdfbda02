package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	pkgconfig "github.com/ForestKatsch/apogee-ssg/pkg/config"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration: the site configuration
// plus the settings of the preview surfaces.
type Config struct {
	site.Config `yaml:",inline"`

	App   ApplicationConfig `toml:"app" yaml:"app"`
	Index IndexConfig       `toml:"index" yaml:"index"`
	Auth  AuthConfig        `toml:"auth" yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `toml:"log_level" yaml:"log_level"`
	LogFormat string     `toml:"log_format" yaml:"log_format"`
	HTTP      HTTPConfig `toml:"http" yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(logging.FormatConsole, logging.FormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `toml:"port" yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// IndexConfig holds the SQLite page index location. An empty path disables
// the index and with it search.
type IndexConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `toml:"mode" yaml:"mode"`
	Token string `toml:"token" yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Config: site.DefaultConfig(),
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: logging.FormatConsole,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Index: IndexConfig{
			Path: ".apogee/index.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

// LoadConfig decodes filename over NewDefaultConfig and validates it.
// Failures carry an apperr kind.
func LoadConfig(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filename, cfg); err != nil {
		return nil, site.ConfigError(filename, err)
	}
	return cfg, nil
}

// Root returns the directory relative paths in filename resolve against.
func Root(filename string) string {
	return filepath.Dir(filename)
}

// resolve anchors p at root unless it is absolute or empty.
func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
