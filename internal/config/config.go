// Package config holds the window layout and the optional YAML application
// configuration.
//
// The configuration file is looked up at ~/.config/fractal-tree/config.yaml
// unless a path is given explicitly. A missing file means defaults.
package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1000
	WindowHeight = 700

	// Tree canvas on the left of the window
	CanvasWidth  = 700
	CanvasHeight = 600

	// Control panel on the right
	PanelWidth = WindowWidth - CanvasWidth

	StatusLines = 4
)

// CanvasConfig places the tree root on the interactive canvas.
type CanvasConfig struct {
	OriginX      float64 `yaml:"origin_x"`
	OriginY      float64 `yaml:"origin_y"`
	AngleDegrees float64 `yaml:"angle_degrees"` // root direction, -90 grows up
}

// ExportConfig controls raster and vector exports.
type ExportConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	AnchorX       float64 `yaml:"anchor_x"` // fraction of the width
	AnchorY       float64 `yaml:"anchor_y"` // fraction of the height
	ReferenceSize float64 `yaml:"reference_size"`
	Background    string  `yaml:"background"` // #rrggbb
}

// Config is the top-level application configuration.
type Config struct {
	Canvas   CanvasConfig `yaml:"canvas"`
	Export   ExportConfig `yaml:"export"`
	Seed     int64        `yaml:"seed,omitempty"` // 0 means time-based
	LogLevel string       `yaml:"log_level"`
	Watch    bool         `yaml:"watch,omitempty"` // reload the loaded settings file on change
}

// DefaultConfig returns the reference layout: a 700×600 canvas with the
// root at (400, 550) and 1600×1600 white exports.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{OriginX: 400, OriginY: 550, AngleDegrees: -90},
		Export: ExportConfig{
			Width:         1600,
			Height:        1600,
			AnchorX:       0.25,
			AnchorY:       0.79,
			ReferenceSize: 1600,
			Background:    "#ffffff",
		},
		LogLevel: "info",
	}
}

// Path returns the default location of config.yaml.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fractal-tree", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fractal-tree", "config.yaml")
}

// Load reads the config from the default location.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path, layered over the defaults.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks sizes, anchors, the background colour and the log level.
func (c Config) Validate() error {
	if c.Export.Width < 1 || c.Export.Height < 1 {
		return fmt.Errorf("export size must be positive, got %dx%d", c.Export.Width, c.Export.Height)
	}
	if c.Export.AnchorX < 0 || c.Export.AnchorX > 1 || c.Export.AnchorY < 0 || c.Export.AnchorY > 1 {
		return fmt.Errorf("export anchor must be within [0,1], got (%g, %g)", c.Export.AnchorX, c.Export.AnchorY)
	}
	if c.Export.ReferenceSize <= 0 {
		return fmt.Errorf("export reference_size must be positive, got %g", c.Export.ReferenceSize)
	}
	if _, err := ParseHexColor(c.Export.Background); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// BackgroundColor returns the parsed export background, white on error.
func (c Config) BackgroundColor() color.RGBA {
	bg, err := ParseHexColor(c.Export.Background)
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return bg
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
