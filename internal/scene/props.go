package scene

import (
	"fmt"
	"strings"
)

// Field names one editable property.
type Field string

const (
	FieldName    Field = "name"
	FieldX       Field = "x"
	FieldY       Field = "y"
	FieldAngle   Field = "angle"
	FieldOpacity Field = "opacity"
	FieldFill    Field = "fill"

	FieldWidth        Field = "width"
	FieldHeight       Field = "height"
	FieldStroke       Field = "stroke"
	FieldStrokeWidth  Field = "stroke_width"
	FieldCornerRadius Field = "corner_radius"
	FieldRadius       Field = "radius"

	FieldText        Field = "text"
	FieldFontFamily  Field = "font_family"
	FieldFontSize    Field = "font_size"
	FieldFontWeight  Field = "font_weight"
	FieldFontStyle   Field = "font_style"
	FieldUnderline   Field = "underline"
	FieldTextAlign   Field = "text_align"
	FieldCharSpacing Field = "char_spacing"
	FieldLineHeight  Field = "line_height"

	FieldScaleX  Field = "scale_x"
	FieldScaleY  Field = "scale_y"
	FieldFlipX   Field = "flip_x"
	FieldFlipY   Field = "flip_y"
	FieldFilters Field = "filters"
)

const (
	MaxStrokeWidth = 20
	MinCharSpacing = 0
	MaxCharSpacing = 1000
	MinLineHeight  = 0.5
	MaxLineHeight  = 3
)

var commonFields = []Field{FieldName, FieldX, FieldY, FieldAngle, FieldOpacity, FieldFill}

var variantFields = map[Kind][]Field{
	KindRect:   {FieldWidth, FieldHeight, FieldStroke, FieldStrokeWidth, FieldCornerRadius},
	KindCircle: {FieldRadius, FieldStroke, FieldStrokeWidth},
	KindText: {FieldText, FieldFontFamily, FieldFontSize, FieldFontWeight, FieldFontStyle,
		FieldUnderline, FieldTextAlign, FieldCharSpacing, FieldLineHeight},
	KindImage: {FieldScaleX, FieldScaleY, FieldFlipX, FieldFlipY, FieldFilters},
}

// ApplicableFields lists the fields an editing surface may offer for kind.
func ApplicableFields(kind Kind) []Field {
	v, ok := variantFields[kind]
	if !ok {
		return nil
	}
	out := make([]Field, 0, len(commonFields)+len(v))
	out = append(out, commonFields...)
	return append(out, v...)
}

// Applicable reports whether kind carries field f.
func Applicable(kind Kind, f Field) bool {
	for _, af := range ApplicableFields(kind) {
		if af == f {
			return true
		}
	}
	return false
}

// Props is a partial property set. Nil fields are left untouched when
// applied.
type Props struct {
	Name    *string  `json:"name,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Angle   *float64 `json:"angle,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Fill    *string  `json:"fill,omitempty"`

	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Stroke       *string  `json:"stroke,omitempty"`
	StrokeWidth  *float64 `json:"stroke_width,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	Radius       *float64 `json:"radius,omitempty"`

	Text        *string  `json:"text,omitempty"`
	FontFamily  *string  `json:"font_family,omitempty"`
	FontSize    *float64 `json:"font_size,omitempty"`
	FontWeight  *string  `json:"font_weight,omitempty"`
	FontStyle   *string  `json:"font_style,omitempty"`
	Underline   *bool    `json:"underline,omitempty"`
	TextAlign   *string  `json:"text_align,omitempty"`
	CharSpacing *float64 `json:"char_spacing,omitempty"`
	LineHeight  *float64 `json:"line_height,omitempty"`

	ScaleX  *float64  `json:"scale_x,omitempty"`
	ScaleY  *float64  `json:"scale_y,omitempty"`
	FlipX   *bool     `json:"flip_x,omitempty"`
	FlipY   *bool     `json:"flip_y,omitempty"`
	Filters *[]Filter `json:"filters,omitempty"`
}

// Ptr is a helper for building Props literals.
func Ptr[T any](v T) *T { return &v }

// Fields lists the fields set in p.
func (p Props) Fields() []Field {
	var out []Field
	add := func(set bool, f Field) {
		if set {
			out = append(out, f)
		}
	}
	add(p.Name != nil, FieldName)
	add(p.X != nil, FieldX)
	add(p.Y != nil, FieldY)
	add(p.Angle != nil, FieldAngle)
	add(p.Opacity != nil, FieldOpacity)
	add(p.Fill != nil, FieldFill)
	add(p.Width != nil, FieldWidth)
	add(p.Height != nil, FieldHeight)
	add(p.Stroke != nil, FieldStroke)
	add(p.StrokeWidth != nil, FieldStrokeWidth)
	add(p.CornerRadius != nil, FieldCornerRadius)
	add(p.Radius != nil, FieldRadius)
	add(p.Text != nil, FieldText)
	add(p.FontFamily != nil, FieldFontFamily)
	add(p.FontSize != nil, FieldFontSize)
	add(p.FontWeight != nil, FieldFontWeight)
	add(p.FontStyle != nil, FieldFontStyle)
	add(p.Underline != nil, FieldUnderline)
	add(p.TextAlign != nil, FieldTextAlign)
	add(p.CharSpacing != nil, FieldCharSpacing)
	add(p.LineHeight != nil, FieldLineHeight)
	add(p.ScaleX != nil, FieldScaleX)
	add(p.ScaleY != nil, FieldScaleY)
	add(p.FlipX != nil, FieldFlipX)
	add(p.FlipY != nil, FieldFlipY)
	add(p.Filters != nil, FieldFilters)
	return out
}

// Validate checks the values in p at the editing boundary: numbers must be
// finite and in range, colours and enumerations well formed. It does not
// check applicability to any particular variant.
func (p Props) Validate() error {
	var errs []string
	check := func(err error) {
		if err != nil {
			errs = append(errs, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
		}
	}
	if p.X != nil && !finite(*p.X) {
		check(invalidf("x is not finite"))
	}
	if p.Y != nil && !finite(*p.Y) {
		check(invalidf("y is not finite"))
	}
	if p.Angle != nil && !finite(*p.Angle) {
		check(invalidf("angle is not finite"))
	}
	if p.Opacity != nil {
		check(within("opacity", *p.Opacity, 0, 1))
	}
	if p.Fill != nil {
		_, err := ParseColor(*p.Fill)
		check(err)
	}
	if p.Stroke != nil {
		check(optionalColor(*p.Stroke))
	}
	for _, v := range []struct {
		name string
		val  *float64
	}{
		{"width", p.Width}, {"height", p.Height}, {"radius", p.Radius},
		{"font_size", p.FontSize}, {"scale_x", p.ScaleX}, {"scale_y", p.ScaleY},
	} {
		if v.val != nil {
			check(positive(v.name, *v.val))
		}
	}
	if p.StrokeWidth != nil {
		check(within("stroke_width", *p.StrokeWidth, 0, MaxStrokeWidth))
	}
	if p.CornerRadius != nil {
		check(nonNegative("corner_radius", *p.CornerRadius))
	}
	if p.CharSpacing != nil {
		check(within("char_spacing", *p.CharSpacing, MinCharSpacing, MaxCharSpacing))
	}
	if p.LineHeight != nil {
		check(within("line_height", *p.LineHeight, MinLineHeight, MaxLineHeight))
	}
	if p.FontFamily != nil && strings.TrimSpace(*p.FontFamily) == "" {
		check(invalidf("font_family is empty"))
	}
	if p.FontWeight != nil {
		check(oneOf("font_weight", *p.FontWeight, WeightNormal, WeightBold))
	}
	if p.FontStyle != nil {
		check(oneOf("font_style", *p.FontStyle, StyleNormal, StyleItalic))
	}
	if p.TextAlign != nil {
		check(oneOf("text_align", *p.TextAlign, AlignLeft, AlignCenter, AlignRight))
	}
	if p.Filters != nil {
		for _, f := range *p.Filters {
			check(f.validate())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

// Apply merges p onto obj. Every set field must be applicable to obj's
// variant; otherwise nothing is changed and ErrInapplicableField is
// returned.
func Apply(obj Object, p Props) error {
	kind := obj.Kind()
	for _, f := range p.Fields() {
		if !Applicable(kind, f) {
			return fmt.Errorf("%w: %s on %s", ErrInapplicableField, f, kind)
		}
	}

	b := obj.Common()
	set(&b.Name, p.Name)
	set(&b.X, p.X)
	set(&b.Y, p.Y)
	if p.Angle != nil {
		b.Angle = NormalizeAngle(*p.Angle)
	}
	set(&b.Opacity, p.Opacity)
	set(&b.Fill, p.Fill)

	switch o := obj.(type) {
	case *Rect:
		set(&o.Width, p.Width)
		set(&o.Height, p.Height)
		set(&o.Stroke, p.Stroke)
		set(&o.StrokeWidth, p.StrokeWidth)
		set(&o.CornerRadius, p.CornerRadius)
	case *Circle:
		set(&o.Radius, p.Radius)
		set(&o.Stroke, p.Stroke)
		set(&o.StrokeWidth, p.StrokeWidth)
	case *Text:
		set(&o.Text, p.Text)
		set(&o.FontFamily, p.FontFamily)
		set(&o.FontSize, p.FontSize)
		set(&o.FontWeight, p.FontWeight)
		set(&o.FontStyle, p.FontStyle)
		set(&o.Underline, p.Underline)
		set(&o.TextAlign, p.TextAlign)
		set(&o.CharSpacing, p.CharSpacing)
		set(&o.LineHeight, p.LineHeight)
	case *Image:
		set(&o.ScaleX, p.ScaleX)
		set(&o.ScaleY, p.ScaleY)
		set(&o.FlipX, p.FlipX)
		set(&o.FlipY, p.FlipY)
		if p.Filters != nil {
			o.Filters = append([]Filter(nil), (*p.Filters)...)
		}
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// PropsOf returns the full property set of obj as Props, restricted to the
// fields its variant carries.
func PropsOf(obj Object) Props {
	b := obj.Common()
	p := Props{
		Name:    Ptr(b.Name),
		X:       Ptr(b.X),
		Y:       Ptr(b.Y),
		Angle:   Ptr(b.Angle),
		Opacity: Ptr(b.Opacity),
		Fill:    Ptr(b.Fill),
	}
	switch o := obj.(type) {
	case *Rect:
		p.Width, p.Height = Ptr(o.Width), Ptr(o.Height)
		p.Stroke, p.StrokeWidth = Ptr(o.Stroke), Ptr(o.StrokeWidth)
		p.CornerRadius = Ptr(o.CornerRadius)
	case *Circle:
		p.Radius = Ptr(o.Radius)
		p.Stroke, p.StrokeWidth = Ptr(o.Stroke), Ptr(o.StrokeWidth)
	case *Text:
		p.Text, p.FontFamily, p.FontSize = Ptr(o.Text), Ptr(o.FontFamily), Ptr(o.FontSize)
		p.FontWeight, p.FontStyle = Ptr(o.FontWeight), Ptr(o.FontStyle)
		p.Underline, p.TextAlign = Ptr(o.Underline), Ptr(o.TextAlign)
		p.CharSpacing, p.LineHeight = Ptr(o.CharSpacing), Ptr(o.LineHeight)
	case *Image:
		p.ScaleX, p.ScaleY = Ptr(o.ScaleX), Ptr(o.ScaleY)
		p.FlipX, p.FlipY = Ptr(o.FlipX), Ptr(o.FlipY)
		p.Filters = Ptr(append([]Filter(nil), o.Filters...))
	}
	return p
}
