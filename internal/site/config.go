package site

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/limiter"
	"github.com/ForestKatsch/apogee-ssg/pkg/config"
)

// Synthetic stages bracketing the configured operations.
const (
	StageStart  = "@start"
	StageEnd    = "@end"
	StageRender = "@render"
)

// VariantPage is the render variant stored into a page by @render.
const VariantPage = "@page"

// Config is the site configuration.
type Config struct {
	Site      MetaConfig               `toml:"site" yaml:"site"`
	Content   ContentConfig            `toml:"content" yaml:"content"`
	Output    OutputConfig             `toml:"output" yaml:"output"`
	Static    StaticConfig             `toml:"static" yaml:"static"`
	Transform TransformConfig          `toml:"transform" yaml:"transform"`
	Build     BuildConfig              `toml:"build" yaml:"build"`
	Handlers  map[string]HandlerConfig `toml:"handlers" yaml:"handlers"`
}

// Validate validates the site configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Transform.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	for name, h := range c.Handlers {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("handlers.%s: %w", name, err)
		}
	}
	return nil
}

// MetaConfig holds site metadata.
type MetaConfig struct {
	Title string `toml:"title" yaml:"title"`
	URL   string `toml:"url" yaml:"url"`
}

// Validate validates the site metadata.
func (c *MetaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.By(func(any) error {
			if c.URL != "" && !strings.Contains(c.URL, "://") {
				return fmt.Errorf("must be an absolute URL")
			}
			return nil
		})),
	)
}

// ContentConfig holds the content root.
type ContentConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OutputConfig holds the output root.
type OutputConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StaticConfig controls copying of the static root.
type StaticConfig struct {
	Path   string `toml:"path" yaml:"path"`
	Output string `toml:"output" yaml:"output"`
	Copy   bool   `toml:"copy" yaml:"copy"`
}

// TransformConfig lists the build stages in order.
type TransformConfig struct {
	Operations []string `toml:"operations" yaml:"operations"`
}

// Validate validates the stage list.
func (c *TransformConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Operations))
	for _, op := range c.Operations {
		switch op {
		case "":
			return fmt.Errorf("transform.operations: stage names must not be empty")
		case StageStart, StageEnd:
			return fmt.Errorf("transform.operations: '%s' is implicit and must not be listed", op)
		}
		if _, dup := seen[op]; dup {
			return fmt.Errorf("transform.operations: duplicate stage '%s'", op)
		}
		seen[op] = struct{}{}
	}
	if _, ok := seen[StageRender]; !ok {
		return apperr.New(apperr.KindUnknownOperation,
			"site configuration does not specify required operation '%s' in transform.operations array", StageRender)
	}
	return nil
}

// BuildConfig tunes the build.
type BuildConfig struct {
	Concurrency int `toml:"concurrency" yaml:"concurrency"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(1)),
	)
}

// HandlerConfig binds a handler type to extensions.
type HandlerConfig struct {
	Extensions []string       `toml:"extensions" yaml:"extensions"`
	Handler    string         `toml:"handler" yaml:"handler"`
	Options    map[string]any `toml:"options" yaml:"options"`
}

// Validate validates the handler binding.
func (c *HandlerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extensions, validation.Each(validation.By(func(v any) error {
			ext, _ := v.(string)
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				return fmt.Errorf("extension '%s' must start with '.'", ext)
			}
			return nil
		}))),
	)
}

// Type returns the handler type name, defaulting to name.
func (c HandlerConfig) Type(name string) string {
	if c.Handler != "" {
		return c.Handler
	}
	return name
}

// DefaultConfig returns a Config with the default roots and bounds.
func DefaultConfig() Config {
	return Config{
		Site: MetaConfig{
			Title: "My Apogee Site",
		},
		Content: ContentConfig{Path: "content"},
		Output:  OutputConfig{Path: "dist"},
		Static: StaticConfig{
			Path:   "static",
			Output: "static",
			Copy:   true,
		},
		Build:    BuildConfig{Concurrency: limiter.DefaultMax},
		Handlers: map[string]HandlerConfig{},
	}
}

// LoadConfig decodes filename over DefaultConfig and validates the result.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.Load(filename, &cfg); err != nil {
		return Config{}, ConfigError(filename, err)
	}
	return cfg, nil
}

// ConfigError classifies a configuration load failure.
func ConfigError(filename string, err error) error {
	if err == nil {
		return nil
	}
	var perr *config.ParseError
	switch {
	case errors.As(err, &perr):
		e := apperr.Wrap(perr.Err, apperr.KindParse, "could not parse configuration file '%s'", filename)
		if perr.Line > 0 {
			e = apperr.Wrap(perr.Err, apperr.KindParse, "could not parse configuration file '%s' at [%d:%d]", filename, perr.Line, perr.Column).
				With("line", perr.Line).With("column", perr.Column)
		}
		return e
	case apperr.KindOf(err) != apperr.KindInternal:
		return err
	case errors.Is(err, fs.ErrPermission):
		return apperr.Wrap(err, apperr.KindPermission, "configuration file read permission denied; make sure to allow read access to the configuration file")
	default:
		return apperr.Wrap(err, apperr.KindConfig, "could not load configuration file '%s'", filename)
	}
}
