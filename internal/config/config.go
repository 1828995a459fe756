// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrNoConfig is returned by Load when an explicitly named file does not exist.
var ErrNoConfig = errors.New("config file not found")

// Config is the root configuration structure.
type Config struct {
	Extensions    []string       `toml:"extensions"`
	Extractor     string         `toml:"extractor"`
	Workers       int            `toml:"workers"`
	SkipUnchanged bool           `toml:"skip_unchanged"`
	Validation    ValidateConfig `toml:"validate"`
	Cache         CacheConfig    `toml:"cache"`
	Output        OutputConfig   `toml:"output"`
}

// ValidateConfig configures the syntax check run before extraction.
type ValidateConfig struct {
	// Command is a shell script fed each file's text on stdin. Empty disables
	// validation.
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-file validation timeout.
func (v ValidateConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// TTL returns the configured TTL, or 168 hours if unset.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// PathOrDefault returns the configured database path or cache.db in the
// data directory.
func (c CacheConfig) PathOrDefault() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `toml:"format"`
	// Theme is the Chroma theme used to color text reports.
	Theme string `toml:"theme"`
}

// Extractor modes.
const (
	ExtractorAuto  = "auto"
	ExtractorLines = "lines"
)

var formats = []string{"json", "yaml", "text", "summary"}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Extensions: []string{".res", ".resi", ".ml"},
		Extractor:  ExtractorAuto,
		Workers:    8,
		Validation: ValidateConfig{TimeoutSeconds: 30},
		Cache:      CacheConfig{Enabled: true, TTLHours: 168},
		Output:     OutputConfig{Format: "json", Theme: "github-dark"},
	}
}

// Load reads configuration from a TOML file over the defaults and applies
// environment variable overrides. An empty path means DefaultPath, which may
// be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	_, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && explicit:
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions: at least one extension is required"))
	}
	for _, ext := range c.Extensions {
		if strings.TrimPrefix(ext, ".") == "" || strings.ContainsAny(ext, "/\\") {
			errs = append(errs, fmt.Errorf("extensions: %q is not a file extension", ext))
		}
	}

	if c.Extractor != ExtractorAuto && c.Extractor != ExtractorLines {
		errs = append(errs, fmt.Errorf("extractor=%q must be %q or %q", c.Extractor, ExtractorAuto, ExtractorLines))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers=%d must be at least 1", c.Workers))
	}
	if c.Validation.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("validate.timeout_seconds=%d must not be negative", c.Validation.TimeoutSeconds))
	}
	if c.Cache.TTLHours < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_hours=%d must not be negative", c.Cache.TTLHours))
	}

	validFormat := false
	for _, f := range formats {
		if c.Output.Format == f {
			validFormat = true
		}
	}
	if !validFormat {
		errs = append(errs, fmt.Errorf("output.format=%q must be one of %s", c.Output.Format, strings.Join(formats, ", ")))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"DECLDIFF_EXTENSIONS", func(v string) {
			if v == "" {
				return
			}
			cfg.Extensions = cfg.Extensions[:0]
			for _, ext := range strings.Split(v, ",") {
				if ext = strings.TrimSpace(ext); ext != "" {
					cfg.Extensions = append(cfg.Extensions, ext)
				}
			}
		}},
		{"DECLDIFF_WORKERS", func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Workers = n
			}
		}},
		{"DECLDIFF_VALIDATE_COMMAND", func(v string) {
			if v != "" {
				cfg.Validation.Command = v
			}
		}},
		{"DECLDIFF_CACHE", func(v string) {
			if b, err := strconv.ParseBool(v); err == nil {
				cfg.Cache.Enabled = b
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the decldiff configuration and data directory:
// $XDG_CONFIG_HOME/decldiff, or ~/.config/decldiff.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "decldiff"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "decldiff"), nil
}

// DefaultPath returns the config file read when no path is given.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
