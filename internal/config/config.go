// Package config loads the pixtext command configuration from TOML.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/gogpu/pixtext/text"
)

// Config is the top-level configuration.
type Config struct {
	// Fonts holds the font directory settings.
	Fonts FontsConfig `toml:"fonts"`
	// Render holds rasterization settings.
	Render RenderConfig `toml:"render"`
	// Export holds encoder settings.
	Export ExportConfig `toml:"export"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// FontsConfig holds the font directory settings.
type FontsConfig struct {
	// Dir is scanned for font files. It is created if missing.
	Dir string `toml:"dir"`
	// Patterns are doublestar patterns matched against lower-cased file names.
	Patterns []string `toml:"patterns"`
	// Watch rescans Dir when font files change.
	Watch bool `toml:"watch"`
}

// RenderConfig holds rasterization settings.
type RenderConfig struct {
	// AlphaThreshold is the coverage (1-255) below which pixels are dropped.
	AlphaThreshold int `toml:"alpha_threshold"`
	// CacheLimit is the per-shard bitmap cache size; negative disables it.
	CacheLimit int `toml:"cache_limit"`
	// DefaultColor is the "#rrggbb" color of new layers.
	DefaultColor string `toml:"default_color"`
}

// ExportConfig holds encoder settings.
type ExportConfig struct {
	// JPEGQuality is 1-100.
	JPEGQuality int `toml:"jpeg_quality"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `toml:"level"`
	// File, when set, receives logs through a rotating writer instead of stderr.
	File string `toml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fonts: FontsConfig{
			Dir:      "fonts",
			Patterns: append([]string(nil), text.DefaultFontPatterns...),
		},
		Render: RenderConfig{
			AlphaThreshold: int(text.DefaultAlphaThreshold),
			CacheLimit:     32,
			DefaultColor:   text.Black.Hex(),
		},
		Export: ExportConfig{
			JPEGQuality: 95,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// Load reads path on top of Default. An empty path or a missing file
// yields the defaults. Relative font directories are resolved against the
// directory of the config file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- config path is provided by the user
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}

	if md.IsDefined("fonts", "dir") && !filepath.IsAbs(cfg.Fonts.Dir) {
		cfg.Fonts.Dir = filepath.Join(filepath.Dir(path), cfg.Fonts.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Render.AlphaThreshold < 1 || c.Render.AlphaThreshold > 255 {
		return fmt.Errorf("alpha_threshold must be 1-255, got %d", c.Render.AlphaThreshold)
	}
	if _, err := text.ParseRGB(c.Render.DefaultColor); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be 1-100, got %d", c.Export.JPEGQuality)
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("max_size_mb must be >= 0, got %d", c.Log.MaxSizeMB)
	}
	if len(c.Fonts.Patterns) == 0 {
		return fmt.Errorf("fonts.patterns must not be empty")
	}
	for _, p := range c.Fonts.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid font pattern %q", p)
		}
	}
	return nil
}

// Threshold returns the alpha threshold as a byte.
func (c *Config) Threshold() uint8 {
	return uint8(c.Render.AlphaThreshold) //nolint:gosec // range checked by Validate
}

// Encode writes c as TOML, for generating a starter config file.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
