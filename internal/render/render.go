// Package render rasterizes scenes with gogpu/gg and encodes the result.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"DesignBoard/internal/scene"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

type fontKey struct {
	mono, bold, italic bool
}

// Renderer draws scenes. Decoded and filtered image assets are cached by
// content; the cache never feeds back into the scene model.
type Renderer struct {
	mu      sync.Mutex
	sources map[fontKey]*text.FontSource
	images  map[string]*gg.ImageBuf
}

func NewRenderer() *Renderer {
	return &Renderer{
		sources: make(map[fontKey]*text.FontSource),
		images:  make(map[string]*gg.ImageBuf),
	}
}

// Render rasterizes objects in paint order onto a width x height canvas
// filled with background. Hidden objects are skipped.
func (r *Renderer) Render(objects []scene.Object, width, height int, background string) (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(width, height)
	defer dc.Close()

	bg, err := scene.ParseColor(background)
	if err != nil {
		return nil, err
	}
	dc.ClearWithColor(gg.FromColor(bg))

	for _, obj := range objects {
		if !obj.Common().Visible {
			continue
		}
		if err := r.draw(dc, obj); err != nil {
			return nil, fmt.Errorf("draw %s %s: %w", obj.Kind(), obj.Common().ID, err)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out, nil
}

func (r *Renderer) draw(dc *gg.Context, obj scene.Object) error {
	b := obj.Common()
	dc.Push()
	defer dc.Pop()
	dc.Translate(b.X, b.Y)
	// Images are blitted axis-aligned; the image path only honours
	// translation and scale.
	if _, isImage := obj.(*scene.Image); !isImage && b.Angle != 0 {
		dc.Rotate(b.Angle * math.Pi / 180)
	}

	switch o := obj.(type) {
	case *scene.Rect:
		dc.DrawRoundedRectangle(-o.Width/2, -o.Height/2, o.Width, o.Height, o.CornerRadius)
		return fillAndStroke(dc, b.Fill, o.Stroke, o.StrokeWidth, b.Opacity)
	case *scene.Circle:
		dc.DrawCircle(0, 0, o.Radius)
		return fillAndStroke(dc, b.Fill, o.Stroke, o.StrokeWidth, b.Opacity)
	case *scene.Text:
		return r.drawText(dc, o)
	case *scene.Image:
		if b.Opacity <= 0 {
			return nil
		}
		buf, err := r.imageBuf(o)
		if err != nil {
			return err
		}
		w, h := o.DisplaySize()
		dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:             -w / 2,
			Y:             -h / 2,
			DstWidth:      w,
			DstHeight:     h,
			Interpolation: gg.InterpBilinear,
			Opacity:       b.Opacity,
			BlendMode:     gg.BlendNormal,
		})
	}
	return nil
}

func withOpacity(hex string, opacity float64) (gg.RGBA, error) {
	c, err := scene.ParseColor(hex)
	if err != nil {
		return gg.RGBA{}, err
	}
	rgba := gg.FromColor(c)
	rgba.A *= opacity
	return rgba, nil
}

func fillAndStroke(dc *gg.Context, fill, stroke string, strokeWidth, opacity float64) error {
	fc, err := withOpacity(fill, opacity)
	if err != nil {
		return err
	}
	dc.SetColor(fc.Color())
	if stroke == "" || strokeWidth <= 0 {
		return dc.Fill()
	}
	if err := dc.FillPreserve(); err != nil {
		return err
	}
	sc, err := withOpacity(stroke, opacity)
	if err != nil {
		return err
	}
	dc.SetColor(sc.Color())
	dc.SetLineWidth(strokeWidth)
	return dc.Stroke()
}

func (r *Renderer) face(t *scene.Text) (text.Face, error) {
	key := fontKey{
		mono:   strings.Contains(strings.ToLower(t.FontFamily), "courier") || strings.Contains(strings.ToLower(t.FontFamily), "mono"),
		bold:   t.FontWeight == scene.WeightBold,
		italic: t.FontStyle == scene.StyleItalic,
	}
	src, ok := r.sources[key]
	if !ok {
		var err error
		src, err = text.NewFontSource(fontData(key))
		if err != nil {
			return nil, err
		}
		r.sources[key] = src
	}
	return src.Face(t.FontSize), nil
}

func fontData(k fontKey) []byte {
	switch {
	case k.mono && k.bold:
		return gomonobold.TTF
	case k.mono:
		return gomono.TTF
	case k.bold && k.italic:
		return gobolditalic.TTF
	case k.bold:
		return gobold.TTF
	case k.italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

// drawText lays out t's lines around its centre. Glyph placement is not
// rotated; the rendering library draws text in device space.
func (r *Renderer) drawText(dc *gg.Context, t *scene.Text) error {
	face, err := r.face(t)
	if err != nil {
		return err
	}
	col, err := withOpacity(t.Fill, t.Opacity)
	if err != nil {
		return err
	}
	dc.SetFont(face)
	dc.SetColor(col.Color())

	spacing := t.FontSize * t.CharSpacing / 1000
	lines := strings.Split(t.Text, "\n")
	widths := make([]float64, len(lines))
	boxW := 0.0
	for i, l := range lines {
		widths[i] = lineWidth(dc, l, spacing)
		boxW = math.Max(boxW, widths[i])
	}
	lineH := t.FontSize * t.LineHeight
	boxH := lineH * float64(len(lines))

	cx, cy := dc.TransformPoint(0, 0)
	for i, l := range lines {
		x := cx - boxW/2
		switch t.TextAlign {
		case scene.AlignCenter:
			x += (boxW - widths[i]) / 2
		case scene.AlignRight:
			x += boxW - widths[i]
		}
		baseline := cy - boxH/2 + lineH*float64(i) + t.FontSize
		drawLine(dc, l, x, baseline, spacing)
		if t.Underline && widths[i] > 0 {
			dc.Push()
			dc.Identity()
			dc.SetLineWidth(math.Max(1, t.FontSize/15))
			dc.DrawLine(x, baseline+t.FontSize/10, x+widths[i], baseline+t.FontSize/10)
			err := dc.Stroke()
			dc.Pop()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func lineWidth(dc *gg.Context, line string, spacing float64) float64 {
	if spacing == 0 {
		w, _ := dc.MeasureString(line)
		return w
	}
	total := 0.0
	for _, ch := range line {
		w, _ := dc.MeasureString(string(ch))
		total += w + spacing
	}
	return total
}

func drawLine(dc *gg.Context, line string, x, baseline, spacing float64) {
	if spacing == 0 {
		dc.DrawString(line, x, baseline)
		return
	}
	for _, ch := range line {
		s := string(ch)
		dc.DrawString(s, x, baseline)
		w, _ := dc.MeasureString(s)
		x += w + spacing
	}
}

func (r *Renderer) imageBuf(im *scene.Image) (*gg.ImageBuf, error) {
	key := imageKey(im)
	if buf, ok := r.images[key]; ok {
		return buf, nil
	}
	src, _, err := image.Decode(bytes.NewReader(im.Src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	buf := gg.ImageBufFromImage(ApplyFilters(src, im.Filters, im.FlipX, im.FlipY))
	r.images[key] = buf
	log.Printf("[RENDER] Cached image %s (%d entries)", key[:12], len(r.images))
	return buf, nil
}

func imageKey(im *scene.Image) string {
	var sb strings.Builder
	sb.WriteString(scene.CheckpointFromBytes(im.Src).Digest())
	fmt.Fprintf(&sb, "|%t|%t", im.FlipX, im.FlipY)
	for _, f := range im.Filters {
		fmt.Fprintf(&sb, "|%s:%g", f.Type, f.Value)
	}
	return sb.String()
}

// Encode writes img in format. quality is in [0,1] and only used for JPEG.
func Encode(img image.Image, format Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case PNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case JPEG:
		q := int(math.Round(quality * 100))
		q = max(1, min(q, 100))
		if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: q}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported raster format %q", format)
	}
	return buf.Bytes(), nil
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}
