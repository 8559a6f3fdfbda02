// Package config provides TOML and YAML configuration loading with
// environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// ParseError reports a malformed configuration document.
type ParseError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("could not parse configuration file '%s' at [%d:%d]: %v", e.File, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("could not parse configuration file '%s': %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load decodes filename into target. The format follows the extension:
// ".toml" for TOML, ".yaml" or ".yml" for YAML. Fields absent from the file
// keep the values target already holds, so callers pass a populated default.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := Decode(filename, data, target); err != nil {
		return err
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Decode expands environment variables in data and decodes it by the format
// filename's extension names.
func Decode[T any](filename string, data []byte, target *T) error {
	expanded := []byte(os.ExpandEnv(string(data)))

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(expanded, target); err != nil {
			perr := &ParseError{File: filename, Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				perr.Line, perr.Column = de.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, target); err != nil {
			return &ParseError{File: filename, Err: err}
		}
	default:
		return fmt.Errorf("unsupported config format %q for %s", filepath.Ext(filename), filename)
	}
	return nil
}

// LoadWithDefaults loads configuration with fallback to a default file.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		return fmt.Errorf("config file not found: %s", filename)
	}
	return Load(filename, target)
}
