// Package export names, encodes and writes exported designs.
package export

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"DesignBoard/internal/render"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	PDF  Format = "pdf"
)

// BaseName is the stem of every exported file.
const BaseName = "canvas-design"

// ParseFormat accepts png, jpeg (or jpg) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Filename is the download name for format, e.g. "canvas-design.png".
func Filename(f Format) string {
	return BaseName + "." + string(f)
}

// Download writes data into dir under the export filename and returns the
// written path. dir is created if needed; an empty dir means the working
// directory.
func Download(dir string, f Format, data []byte) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}
	path := filepath.Join(dir, Filename(f))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %s (%d bytes)", path, len(data))
	return path, nil
}

// Encode writes a rendered canvas in format f. quality in [0,1] applies to
// JPEG; a PDF embeds the lossless raster.
func Encode(img image.Image, f Format, quality float64) ([]byte, error) {
	switch f {
	case PNG:
		return render.Encode(img, render.PNG, quality)
	case JPEG:
		return render.Encode(img, render.JPEG, quality)
	case PDF:
		data, err := render.Encode(img, render.PNG, 1)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		return PDFDocument(data, b.Dx(), b.Dy())
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}
