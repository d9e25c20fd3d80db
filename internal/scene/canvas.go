package scene

import "strings"

// MaxCanvasDimension bounds each side of a custom canvas size.
const MaxCanvasDimension = 4000

// CanvasSize is a named canvas pixel size.
type CanvasSize struct {
	Name   string `json:"name" toml:"name"`
	Width  int    `json:"width" toml:"width"`
	Height int    `json:"height" toml:"height"`
}

var Presets = []CanvasSize{
	{Name: "Instagram Post", Width: 1080, Height: 1080},
	{Name: "Instagram Story", Width: 1080, Height: 1920},
	{Name: "Facebook Post", Width: 1200, Height: 630},
	{Name: "Twitter Post", Width: 1200, Height: 675},
	{Name: "YouTube Thumbnail", Width: 1280, Height: 720},
	{Name: "Custom", Width: 800, Height: 600},
}

// Preset looks up a preset by name, ignoring case.
func Preset(name string) (CanvasSize, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return CanvasSize{}, false
}

// CustomSize validates a user-entered canvas size.
func CustomSize(width, height int) (CanvasSize, error) {
	if width <= 0 || height <= 0 {
		return CanvasSize{}, invalidf("canvas size %dx%d must be positive", width, height)
	}
	if width > MaxCanvasDimension || height > MaxCanvasDimension {
		return CanvasSize{}, invalidf("canvas size %dx%d exceeds %dpx", width, height, MaxCanvasDimension)
	}
	return CanvasSize{Name: "Custom", Width: width, Height: height}, nil
}
