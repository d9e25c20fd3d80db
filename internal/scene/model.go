package scene

import (
	"fmt"
	"math"
	"unicode/utf8"
)

type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
	KindImage  Kind = "image"
)

// Object is one drawable element of a scene. The set of implementations is
// closed: *Rect, *Circle, *Text and *Image.
type Object interface {
	Kind() Kind
	Common() *Base
	Clone() Object
	validate() error
}

// Base holds the fields every variant carries. X and Y are the centre of
// the object in canvas pixels.
type Base struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	Opacity float64 `json:"opacity"`
	Fill    string  `json:"fill"`
	Visible bool    `json:"visible"`
}

func (b *Base) Common() *Base { return b }

func (b *Base) validate() error {
	if b.ID == "" {
		return invalidf("object without id")
	}
	for name, v := range map[string]float64{"x": b.X, "y": b.Y, "angle": b.Angle, "opacity": b.Opacity} {
		if !finite(v) {
			return invalidf("%s is not finite", name)
		}
	}
	if b.Angle < 0 || b.Angle >= 360 {
		return invalidf("angle %v outside [0,360)", b.Angle)
	}
	if b.Opacity < 0 || b.Opacity > 1 {
		return invalidf("opacity %v outside [0,1]", b.Opacity)
	}
	if _, err := ParseColor(b.Fill); err != nil {
		return err
	}
	return nil
}

type Rect struct {
	Base
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Stroke       string  `json:"stroke,omitempty"`
	StrokeWidth  float64 `json:"stroke_width"`
	CornerRadius float64 `json:"corner_radius"`
}

func (r *Rect) Kind() Kind { return KindRect }

func (r *Rect) Clone() Object {
	c := *r
	return &c
}

func (r *Rect) validate() error {
	if err := r.Base.validate(); err != nil {
		return err
	}
	if err := positive("width", r.Width); err != nil {
		return err
	}
	if err := positive("height", r.Height); err != nil {
		return err
	}
	if err := nonNegative("stroke_width", r.StrokeWidth); err != nil {
		return err
	}
	if err := nonNegative("corner_radius", r.CornerRadius); err != nil {
		return err
	}
	return optionalColor(r.Stroke)
}

type Circle struct {
	Base
	Radius      float64 `json:"radius"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width"`
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Clone() Object {
	cc := *c
	return &cc
}

func (c *Circle) validate() error {
	if err := c.Base.validate(); err != nil {
		return err
	}
	if err := positive("radius", c.Radius); err != nil {
		return err
	}
	if err := nonNegative("stroke_width", c.StrokeWidth); err != nil {
		return err
	}
	return optionalColor(c.Stroke)
}

const (
	WeightNormal = "normal"
	WeightBold   = "bold"
	StyleNormal  = "normal"
	StyleItalic  = "italic"
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
)

type Text struct {
	Base
	Text        string  `json:"text"`
	FontFamily  string  `json:"font_family"`
	FontSize    float64 `json:"font_size"`
	FontWeight  string  `json:"font_weight"`
	FontStyle   string  `json:"font_style"`
	Underline   bool    `json:"underline"`
	TextAlign   string  `json:"text_align"`
	CharSpacing float64 `json:"char_spacing"`
	LineHeight  float64 `json:"line_height"`
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) Clone() Object {
	c := *t
	return &c
}

func (t *Text) validate() error {
	if err := t.Base.validate(); err != nil {
		return err
	}
	if err := positive("font_size", t.FontSize); err != nil {
		return err
	}
	if err := oneOf("font_weight", t.FontWeight, WeightNormal, WeightBold); err != nil {
		return err
	}
	if err := oneOf("font_style", t.FontStyle, StyleNormal, StyleItalic); err != nil {
		return err
	}
	if err := oneOf("text_align", t.TextAlign, AlignLeft, AlignCenter, AlignRight); err != nil {
		return err
	}
	if err := within("char_spacing", t.CharSpacing, MinCharSpacing, MaxCharSpacing); err != nil {
		return err
	}
	return within("line_height", t.LineHeight, MinLineHeight, MaxLineHeight)
}

type FilterType string

const (
	FilterGrayscale  FilterType = "grayscale"
	FilterSepia      FilterType = "sepia"
	FilterInvert     FilterType = "invert"
	FilterBrightness FilterType = "brightness"
	FilterContrast   FilterType = "contrast"
)

// Filter is one entry of an image's filter chain. Value is only used by
// brightness and contrast, in [-1,1].
type Filter struct {
	Type  FilterType `json:"type"`
	Value float64    `json:"value,omitempty"`
}

func (f Filter) validate() error {
	switch f.Type {
	case FilterGrayscale, FilterSepia, FilterInvert:
		return nil
	case FilterBrightness, FilterContrast:
		return within(string(f.Type), f.Value, -1, 1)
	}
	return invalidf("unknown filter %q", f.Type)
}

// Image is a placed raster asset. Src holds the encoded source bytes and is
// never modified in place, so clones share it.
type Image struct {
	Base
	Src     []byte   `json:"src"`
	MIME    string   `json:"mime"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	ScaleX  float64  `json:"scale_x"`
	ScaleY  float64  `json:"scale_y"`
	FlipX   bool     `json:"flip_x"`
	FlipY   bool     `json:"flip_y"`
	Filters []Filter `json:"filters,omitempty"`
	Sticker bool     `json:"sticker,omitempty"`
}

func (im *Image) Kind() Kind { return KindImage }

func (im *Image) Clone() Object {
	c := *im
	if im.Filters != nil {
		c.Filters = append([]Filter(nil), im.Filters...)
	}
	return &c
}

func (im *Image) validate() error {
	if err := im.Base.validate(); err != nil {
		return err
	}
	if len(im.Src) == 0 {
		return invalidf("image without source")
	}
	for name, v := range map[string]float64{"width": im.Width, "height": im.Height, "scale_x": im.ScaleX, "scale_y": im.ScaleY} {
		if err := positive(name, v); err != nil {
			return err
		}
	}
	for _, f := range im.Filters {
		if err := f.validate(); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySize is the on-canvas size after scaling.
func (im *Image) DisplaySize() (w, h float64) {
	return im.Width * im.ScaleX, im.Height * im.ScaleY
}

// DisplayName is the label shown in layer lists.
func DisplayName(obj Object) string {
	if n := obj.Common().Name; n != "" {
		return n
	}
	switch o := obj.(type) {
	case *Rect:
		return "Rectangle"
	case *Circle:
		return "Circle"
	case *Image:
		return "Image"
	case *Text:
		if o.Text == "" {
			return "Text"
		}
		if utf8.RuneCountInString(o.Text) > 15 {
			return string([]rune(o.Text)[:15]) + "..."
		}
		return o.Text
	}
	return fmt.Sprintf("%T", obj)
}

// NormalizeAngle wraps degrees into [0,360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(name string, v float64) error {
	if !finite(v) || v <= 0 {
		return invalidf("%s must be a positive number, got %v", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if !finite(v) || v < 0 {
		return invalidf("%s must be a non-negative number, got %v", name, v)
	}
	return nil
}

func within(name string, v, lo, hi float64) error {
	if !finite(v) || v < lo || v > hi {
		return invalidf("%s must be within [%v,%v], got %v", name, lo, hi, v)
	}
	return nil
}

func oneOf(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return invalidf("%s %q is not one of %v", name, v, allowed)
}

func optionalColor(s string) error {
	if s == "" {
		return nil
	}
	_, err := ParseColor(s)
	return err
}
