// Package config holds the editor's settings, read from an optional TOML
// file over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/BurntSushi/toml"

	"DesignBoard/internal/scene"
)

const (
	// CustomURLScheme prefixes share links handed out by a host.
	CustomURLScheme = "designboard://"
	Port            = 8888
)

type Config struct {
	Port      int       `toml:"port"`
	Scheme    string    `toml:"scheme"`
	Headless  bool      `toml:"headless"`
	History   History   `toml:"history"`
	Assets    Assets    `toml:"assets"`
	Export    Export    `toml:"export"`
	Canvas    Canvas    `toml:"canvas"`
	Discovery Discovery `toml:"discovery"`
}

type History struct {
	// Depth bounds the undo stack; 0 keeps every step.
	Depth int `toml:"depth"`
	// CheckpointNoopReorder records a step even when a reorder at the
	// stacking boundary moved nothing.
	CheckpointNoopReorder bool `toml:"checkpoint_noop_reorder"`
}

type Assets struct {
	MaxBytes int64 `toml:"max_bytes"`
}

type Export struct {
	Dir     string  `toml:"dir"`
	Quality float64 `toml:"quality"`
}

type Canvas struct {
	Preset     string `toml:"preset"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
}

type Discovery struct {
	Enabled bool   `toml:"enabled"`
	Service string `toml:"service"`
}

func Default() Config {
	return Config{
		Port:   Port,
		Scheme: CustomURLScheme,
		History: History{
			Depth: 100,
		},
		Assets: Assets{MaxBytes: 5 << 20},
		Export: Export{Quality: 1},
		Canvas: Canvas{
			Preset:     "Instagram Post",
			Background: scene.DefaultBackground,
		},
		Discovery: Discovery{Enabled: true, Service: "_designboard._tcp"},
	}
}

// Load decodes path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CONFIG] %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// CanvasSize resolves the configured start size. An explicit width and
// height take precedence over the preset.
func (c Config) CanvasSize() (scene.CanvasSize, error) {
	if c.Canvas.Width != 0 || c.Canvas.Height != 0 {
		return scene.CustomSize(c.Canvas.Width, c.Canvas.Height)
	}
	size, ok := scene.Preset(c.Canvas.Preset)
	if !ok {
		return scene.CanvasSize{}, fmt.Errorf("%w: unknown canvas preset %q", scene.ErrValidation, c.Canvas.Preset)
	}
	return size, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.History.Depth < 0 {
		return fmt.Errorf("history depth %d is negative", c.History.Depth)
	}
	if c.Assets.MaxBytes <= 0 {
		return fmt.Errorf("asset limit %d must be positive", c.Assets.MaxBytes)
	}
	if c.Export.Quality < 0 || c.Export.Quality > 1 {
		return fmt.Errorf("export quality %g outside [0,1]", c.Export.Quality)
	}
	if _, err := scene.ParseColor(c.Canvas.Background); err != nil {
		return err
	}
	_, err := c.CanvasSize()
	return err
}

// ShareLink is the address a client passes on its command line.
func (c Config) ShareLink(ip string) string {
	return fmt.Sprintf("%s%s:%d", c.Scheme, ip, c.Port)
}
