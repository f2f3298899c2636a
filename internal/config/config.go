// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is the root configuration structure.
type Config struct {
	// LibraryPaths are directories scanned for .scad libraries, in
	// addition to the OPENSCADPATH environment variable.
	LibraryPaths []string `toml:"library_paths"`
	// IgnoreDefault drops defaulted parameters from completion snippets
	// instead of spelling them out as plain text.
	IgnoreDefault bool      `toml:"ignore_default"`
	LogLevel      string    `toml:"log_level"`
	Fmt           FmtConfig `toml:"fmt"`
}

// FmtConfig holds external formatter settings.
type FmtConfig struct {
	// Exe is the formatter executable, resolved through $PATH. Empty
	// disables formatting.
	Exe string `toml:"exe"`
	// Style is passed as --style to the formatter.
	Style       string `toml:"style"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Fmt: FmtConfig{
			Exe:         "clang-format",
			Style:       "file",
			TimeoutSecs: 5,
		},
	}
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. An empty path loads defaults; a given path must
// exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level=%q is invalid: %w", c.LogLevel, err))
		}
	}

	if c.Fmt.TimeoutSecs < 0 {
		errs = append(errs, fmt.Errorf("fmt.timeout_secs=%d must not be negative", c.Fmt.TimeoutSecs))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		// OPENSCADPATH is the path list OpenSCAD itself searches.
		{"OPENSCADPATH", func(v string) {
			if v != "" {
				cfg.LibraryPaths = append(cfg.LibraryPaths, filepath.SplitList(v)...)
			}
		}},
		{"OPENSCAD_LSP_FMT_EXE", func(v string) {
			if v != "" {
				cfg.Fmt.Exe = v
			}
		}},
		{"OPENSCAD_LSP_FMT_STYLE", func(v string) {
			if v != "" {
				cfg.Fmt.Style = v
			}
		}},
		{"OPENSCAD_LSP_LOG", func(v string) {
			if v != "" {
				cfg.LogLevel = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the server's data directory
// (~/.config/openscad-lsp).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "openscad-lsp"), nil
}

// DefaultPath returns the default config file path if one exists, else "".
func DefaultPath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
