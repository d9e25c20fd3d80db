package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"DesignBoard/internal/scene"

	"github.com/tdewolff/test"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "designboard.toml")
	test.Error(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	test.Error(t, err)
	test.T(t, cfg.Port, 8888)
	test.T(t, cfg.History.Depth, 100)
	test.T(t, cfg.Assets.MaxBytes, int64(5<<20))
	test.That(t, !cfg.History.CheckpointNoopReorder)

	size, err := cfg.CanvasSize()
	test.Error(t, err)
	test.T(t, size.Width, 1080)
	test.T(t, size.Height, 1080)
	test.Error(t, cfg.Validate())
}

func TestMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	test.Error(t, err)
	test.T(t, cfg, Default())
}

func TestOverrides(t *testing.T) {
	path := writeConfig(t, `
port = 9000

[history]
depth = 5
checkpoint_noop_reorder = true

[canvas]
preset = "youtube thumbnail"
background = "#101010"

[export]
dir = "out"
quality = 0.8
`)
	cfg, err := Load(path)
	test.Error(t, err)
	test.T(t, cfg.Port, 9000)
	test.T(t, cfg.History.Depth, 5)
	test.That(t, cfg.History.CheckpointNoopReorder)
	test.String(t, cfg.Export.Dir, "out")
	test.Float(t, cfg.Export.Quality, 0.8)
	test.T(t, cfg.Assets.MaxBytes, int64(5<<20), "untouched keys keep defaults")

	size, err := cfg.CanvasSize()
	test.Error(t, err)
	test.T(t, size.Width, 1280)
	test.String(t, cfg.ShareLink("10.0.0.2"), "designboard://10.0.0.2:9000")
}

func TestCustomCanvas(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[canvas]\nwidth = 640\nheight = 480\n"))
	test.Error(t, err)
	size, err := cfg.CanvasSize()
	test.Error(t, err)
	test.T(t, size, scene.CanvasSize{Name: "Custom", Width: 640, Height: 480})

	_, err = Load(writeConfig(t, "[canvas]\nwidth = 5000\nheight = 480\n"))
	test.That(t, errors.Is(err, scene.ErrValidation))
}

func TestInvalid(t *testing.T) {
	var tests = []string{
		"port = 0",
		"[history]\ndepth = -1",
		"[export]\nquality = 2.0",
		"[canvas]\nbackground = \"blue\"",
		"[canvas]\npreset = \"Poster\"",
		"colour = \"red\"",
		"port = ",
	}
	for _, body := range tests {
		_, err := Load(writeConfig(t, body))
		test.That(t, err != nil, body)
	}
}
