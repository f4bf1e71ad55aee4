// Package config loads the plotter configuration from YAML plus command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"etherplot/internal/logging"
	"etherplot/plot"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window WindowConfig `mapstructure:"window" yaml:"window"`
	Camera CameraConfig `mapstructure:"camera" yaml:"camera"`
	Grid   GridConfig   `mapstructure:"grid" yaml:"grid"`
	Curve  CurveConfig  `mapstructure:"curve" yaml:"curve"`
	Theme  ThemeConfig  `mapstructure:"theme" yaml:"theme"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	// Plots are the formulas of a fresh session, used when the store is empty.
	Plots []string `mapstructure:"plots" yaml:"plots"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	TPS    int    `mapstructure:"tps" yaml:"tps"`
}

type CameraConfig struct {
	PixelsPerUnit float64 `mapstructure:"pixels_per_unit" yaml:"pixels_per_unit"`
	MaxScale      float64 `mapstructure:"max_scale" yaml:"max_scale"`
}

type GridConfig struct {
	MajorEvery int     `mapstructure:"major_every" yaml:"major_every"`
	AxisWidth  float64 `mapstructure:"axis_width" yaml:"axis_width"`
}

type CurveConfig struct {
	SlopeThreshold float64 `mapstructure:"slope_threshold" yaml:"slope_threshold"`
	MaxSamples     int     `mapstructure:"max_samples" yaml:"max_samples"`
	Width          float64 `mapstructure:"width" yaml:"width"`
}

type ThemeConfig struct {
	Background plot.Color `mapstructure:"background" yaml:"background"`
	Axes       plot.Color `mapstructure:"axes" yaml:"axes"`
	GridMajor  plot.Color `mapstructure:"grid_major" yaml:"grid_major"`
	GridMinor  plot.Color `mapstructure:"grid_minor" yaml:"grid_minor"`
	Text       plot.Color `mapstructure:"text" yaml:"text"`
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
)

type StoreConfig struct {
	Driver    string      `mapstructure:"driver" yaml:"driver"`
	Path      string      `mapstructure:"path" yaml:"path"`
	LoadLimit int         `mapstructure:"load_limit" yaml:"load_limit"`
	Redis     RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DB     int    `mapstructure:"db" yaml:"db"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

type HTTPConfig struct {
	// Addr is the debug API listen address; empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 800, Height: 600, Title: "etherplot", TPS: 60},
		Camera: CameraConfig{PixelsPerUnit: 100, MaxScale: 30},
		Grid:   GridConfig{MajorEvery: 5, AxisWidth: 2},
		Curve:  CurveConfig{SlopeThreshold: 1000, MaxSamples: 8192, Width: 2},
		Theme: ThemeConfig{
			Background: plot.Color{R: 0x12, G: 0x12, B: 0x12},
			Axes:       plot.Color{R: 0xEE, G: 0xEE, B: 0xEE},
			GridMajor:  plot.Color{R: 0x55, G: 0x55, B: 0x55},
			GridMinor:  plot.Color{R: 0x2A, G: 0x2A, B: 0x2A},
			Text:       plot.Color{R: 0xCC, G: 0xCC, B: 0xCC},
		},
		Store: StoreConfig{
			Driver:    DriverMemory,
			Path:      "etherplot.db",
			LoadLimit: plot.DefaultLoadLimit,
			Redis:     RedisConfig{Addr: "127.0.0.1:6379", Prefix: "etherplot:"},
		},
		Log:   LogConfig{Level: "info", Format: "auto"},
		Plots: plot.Formulas(plot.Defaults()),
	}
}

// Load reads path (skipped when empty), applies "key.path=value" overrides and validates the result.
func Load(path string, overrides []string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	for _, o := range overrides {
		if err := Set(raw, o); err != nil {
			return Config{}, err
		}
	}

	cfg, err := Decode(raw)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode lays raw over Default. Scalars may be strings.
func Decode(raw map[string]any) (Config, error) {
	cfg := Default()
	if _, ok := raw["plots"]; ok {
		cfg.Plots = nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Set applies one "a.b.c=value" override to raw, creating sections as needed.
func Set(raw map[string]any, override string) error {
	key, val, ok := strings.Cut(override, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("%w: override %q is not key=value", ErrInvalid, override)
	}

	parts := strings.Split(key, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p]
		if !ok {
			child := map[string]any{}
			m[p] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is not a section", ErrInvalid, p)
		}
		m = child
	}
	m[parts[len(parts)-1]] = val
	return nil
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.TPS <= 0:
		return fmt.Errorf("%w: window.tps must be positive", ErrInvalid)
	case c.Camera.PixelsPerUnit <= 0:
		return fmt.Errorf("%w: camera.pixels_per_unit must be positive", ErrInvalid)
	case c.Camera.MaxScale < 1:
		return fmt.Errorf("%w: camera.max_scale must be at least 1", ErrInvalid)
	case c.Grid.MajorEvery < 1:
		return fmt.Errorf("%w: grid.major_every must be at least 1", ErrInvalid)
	case c.Grid.AxisWidth <= 0 || c.Curve.Width <= 0:
		return fmt.Errorf("%w: line widths must be positive", ErrInvalid)
	case c.Curve.SlopeThreshold <= 0:
		return fmt.Errorf("%w: curve.slope_threshold must be positive", ErrInvalid)
	case c.Curve.MaxSamples < 2:
		return fmt.Errorf("%w: curve.max_samples must be at least 2", ErrInvalid)
	case c.Store.LoadLimit < 0:
		return fmt.Errorf("%w: store.load_limit must not be negative", ErrInvalid)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for bolt", ErrInvalid)
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required for redis", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
