package ui

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"golang.org/x/image/draw"

	"DesignBoard/internal/scene"
)

type inputKind int

const (
	inputNumber inputKind = iota
	inputText
	inputBool
	inputChoice
	inputFilters
)

var fieldLabels = map[scene.Field]string{
	scene.FieldName:         "Name",
	scene.FieldX:            "X",
	scene.FieldY:            "Y",
	scene.FieldAngle:        "Rotation",
	scene.FieldOpacity:      "Opacity",
	scene.FieldFill:         "Fill",
	scene.FieldWidth:        "Width",
	scene.FieldHeight:       "Height",
	scene.FieldStroke:       "Stroke",
	scene.FieldStrokeWidth:  "Stroke width",
	scene.FieldCornerRadius: "Corner radius",
	scene.FieldRadius:       "Radius",
	scene.FieldText:         "Text",
	scene.FieldFontFamily:   "Font",
	scene.FieldFontSize:     "Font size",
	scene.FieldFontWeight:   "Weight",
	scene.FieldFontStyle:    "Style",
	scene.FieldUnderline:    "Underline",
	scene.FieldTextAlign:    "Align",
	scene.FieldCharSpacing:  "Letter spacing",
	scene.FieldLineHeight:   "Line height",
	scene.FieldScaleX:       "Scale X",
	scene.FieldScaleY:       "Scale Y",
	scene.FieldFlipX:        "Flip horizontal",
	scene.FieldFlipY:        "Flip vertical",
	scene.FieldFilters:      "Filters",
}

// fontFamilies offered by the font picker.
var fontFamilies = []string{"Inter", "Arial", "Helvetica", "Times New Roman", "Georgia", "Courier New"}

func label(f scene.Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

func inputFor(f scene.Field) inputKind {
	switch f {
	case scene.FieldName, scene.FieldFill, scene.FieldStroke, scene.FieldText:
		return inputText
	case scene.FieldUnderline, scene.FieldFlipX, scene.FieldFlipY:
		return inputBool
	case scene.FieldFontFamily, scene.FieldFontWeight, scene.FieldFontStyle, scene.FieldTextAlign:
		return inputChoice
	case scene.FieldFilters:
		return inputFilters
	}
	return inputNumber
}

func choices(f scene.Field) []string {
	switch f {
	case scene.FieldFontFamily:
		return fontFamilies
	case scene.FieldFontWeight:
		return []string{scene.WeightNormal, scene.WeightBold}
	case scene.FieldFontStyle:
		return []string{scene.StyleNormal, scene.StyleItalic}
	case scene.FieldTextAlign:
		return []string{scene.AlignLeft, scene.AlignCenter, scene.AlignRight}
	}
	return nil
}

// formatValue renders the current value of f for an entry widget.
func formatValue(p scene.Props, f scene.Field) string {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	num := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	flag := func(v *bool) string {
		return strconv.FormatBool(v != nil && *v)
	}
	switch f {
	case scene.FieldName:
		return str(p.Name)
	case scene.FieldFill:
		return str(p.Fill)
	case scene.FieldStroke:
		return str(p.Stroke)
	case scene.FieldText:
		return str(p.Text)
	case scene.FieldFontFamily:
		return str(p.FontFamily)
	case scene.FieldFontWeight:
		return str(p.FontWeight)
	case scene.FieldFontStyle:
		return str(p.FontStyle)
	case scene.FieldTextAlign:
		return str(p.TextAlign)
	case scene.FieldUnderline:
		return flag(p.Underline)
	case scene.FieldFlipX:
		return flag(p.FlipX)
	case scene.FieldFlipY:
		return flag(p.FlipY)
	case scene.FieldX:
		return num(p.X)
	case scene.FieldY:
		return num(p.Y)
	case scene.FieldAngle:
		return num(p.Angle)
	case scene.FieldOpacity:
		return num(p.Opacity)
	case scene.FieldWidth:
		return num(p.Width)
	case scene.FieldHeight:
		return num(p.Height)
	case scene.FieldStrokeWidth:
		return num(p.StrokeWidth)
	case scene.FieldCornerRadius:
		return num(p.CornerRadius)
	case scene.FieldRadius:
		return num(p.Radius)
	case scene.FieldFontSize:
		return num(p.FontSize)
	case scene.FieldCharSpacing:
		return num(p.CharSpacing)
	case scene.FieldLineHeight:
		return num(p.LineHeight)
	case scene.FieldScaleX:
		return num(p.ScaleX)
	case scene.FieldScaleY:
		return num(p.ScaleY)
	}
	return ""
}

// propsFor parses an entry value into a single-field update.
func propsFor(f scene.Field, value string) (scene.Props, error) {
	var p scene.Props
	switch inputFor(f) {
	case inputText, inputChoice:
		v := value
		if f != scene.FieldText {
			v = strings.TrimSpace(v)
		}
		switch f {
		case scene.FieldName:
			p.Name = &v
		case scene.FieldFill:
			p.Fill = &v
		case scene.FieldStroke:
			p.Stroke = &v
		case scene.FieldText:
			p.Text = &v
		case scene.FieldFontFamily:
			p.FontFamily = &v
		case scene.FieldFontWeight:
			p.FontWeight = &v
		case scene.FieldFontStyle:
			p.FontStyle = &v
		case scene.FieldTextAlign:
			p.TextAlign = &v
		}
	case inputBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%w: %s must be true or false", scene.ErrValidation, label(f))
		}
		switch f {
		case scene.FieldUnderline:
			p.Underline = &b
		case scene.FieldFlipX:
			p.FlipX = &b
		case scene.FieldFlipY:
			p.FlipY = &b
		}
	case inputNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return p, fmt.Errorf("%w: %s must be a number", scene.ErrValidation, label(f))
		}
		dst := map[scene.Field]**float64{
			scene.FieldX: &p.X, scene.FieldY: &p.Y, scene.FieldAngle: &p.Angle,
			scene.FieldOpacity: &p.Opacity, scene.FieldWidth: &p.Width, scene.FieldHeight: &p.Height,
			scene.FieldStrokeWidth: &p.StrokeWidth, scene.FieldCornerRadius: &p.CornerRadius,
			scene.FieldRadius: &p.Radius, scene.FieldFontSize: &p.FontSize,
			scene.FieldCharSpacing: &p.CharSpacing, scene.FieldLineHeight: &p.LineHeight,
			scene.FieldScaleX: &p.ScaleX, scene.FieldScaleY: &p.ScaleY,
		}[f]
		if dst == nil {
			return p, fmt.Errorf("%w: %s is not numeric", scene.ErrValidation, f)
		}
		*dst = &n
	default:
		return p, fmt.Errorf("%w: %s cannot be set from text", scene.ErrValidation, f)
	}
	return p, p.Validate()
}

// toggleFilter adds or removes a value-less filter from a chain.
func toggleFilter(filters []scene.Filter, t scene.FilterType, on bool) []scene.Filter {
	out := make([]scene.Filter, 0, len(filters)+1)
	for _, f := range filters {
		if f.Type != t {
			out = append(out, f)
		}
	}
	if on {
		out = append(out, scene.Filter{Type: t})
	}
	return out
}

// setFilterValue replaces the valued filter t; zero removes it.
func setFilterValue(filters []scene.Filter, t scene.FilterType, v float64) []scene.Filter {
	out := toggleFilter(filters, t, false)
	if v != 0 {
		out = append(out, scene.Filter{Type: t, Value: v})
	}
	return out
}

func hasFilter(filters []scene.Filter, t scene.FilterType) (scene.Filter, bool) {
	for _, f := range filters {
		if f.Type == t {
			return f, true
		}
	}
	return scene.Filter{}, false
}

// fitFactor is the preview scale that shows a canvasW x canvasH design in
// area, never enlarging it.
func fitFactor(area fyne.Size, canvasW, canvasH int) float64 {
	if canvasW <= 0 || canvasH <= 0 || area.Width <= 0 || area.Height <= 0 {
		return 1
	}
	return min(float64(area.Width)/float64(canvasW), float64(area.Height)/float64(canvasH), 1)
}

// toCanvas maps a position in the preview area to canvas coordinates. The
// preview is centred in area.
func toCanvas(pos fyne.Position, area fyne.Size, canvasW, canvasH int) (x, y float64, ok bool) {
	s := fitFactor(area, canvasW, canvasH)
	offX := (float64(area.Width) - float64(canvasW)*s) / 2
	offY := (float64(area.Height) - float64(canvasH)*s) / 2
	x = (float64(pos.X) - offX) / s
	y = (float64(pos.Y) - offY) / s
	ok = x >= 0 && y >= 0 && x <= float64(canvasW) && y <= float64(canvasH)
	return x, y, ok
}

// scaleImage resamples src by factor s for display.
func scaleImage(src image.Image, s float64) image.Image {
	if s >= 1 {
		return src
	}
	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*s))
	h := max(1, int(float64(b.Dy())*s))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
