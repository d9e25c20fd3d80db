package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func TestApplicableFields(t *testing.T) {
	test.That(t, Applicable(KindCircle, FieldRadius))
	test.That(t, !Applicable(KindRect, FieldRadius))
	test.That(t, Applicable(KindText, FieldFontSize))
	test.That(t, !Applicable(KindImage, FieldFontSize))
	test.That(t, Applicable(KindImage, FieldFlipX))
	test.That(t, Applicable(KindRect, FieldOpacity))
	test.T(t, len(ApplicableFields("polygon")), 0)
}

func TestApplyMerges(t *testing.T) {
	r := NewRect(0, 0)
	err := Apply(r, Props{X: Ptr(12.0), Fill: Ptr("#ff0000"), Angle: Ptr(-90.0)})
	test.Error(t, err)
	test.Float(t, r.X, 12)
	test.Float(t, r.Y, 0)
	test.Float(t, r.Angle, 270)
	test.String(t, r.Fill, "#ff0000")
	test.Float(t, r.Width, DefaultRectSize)
}

func TestApplyRejectsInapplicable(t *testing.T) {
	r := NewRect(0, 0)
	err := Apply(r, Props{X: Ptr(12.0), Radius: Ptr(5.0)})
	test.That(t, errors.Is(err, ErrInapplicableField))
	test.That(t, errors.Is(err, ErrValidation))
	test.Float(t, r.X, 0)
}

func TestApplyImageFiltersCopied(t *testing.T) {
	img := NewImage(0, 0, []byte{1}, "image/png", 10, 10, 1)
	filters := []Filter{{Type: FilterInvert}}
	test.Error(t, Apply(img, Props{Filters: &filters, FlipY: Ptr(true)}))
	filters[0].Type = FilterSepia
	test.T(t, img.Filters[0].Type, FilterInvert)
	test.That(t, img.FlipY)
}

func TestPropsValidate(t *testing.T) {
	var tests = []struct {
		name  string
		props Props
		ok    bool
	}{
		{"empty", Props{}, true},
		{"position", Props{X: Ptr(-10.0), Y: Ptr(5000.0)}, true},
		{"nan x", Props{X: Ptr(math.NaN())}, false},
		{"inf angle", Props{Angle: Ptr(math.Inf(1))}, false},
		{"opacity high", Props{Opacity: Ptr(1.5)}, false},
		{"opacity edge", Props{Opacity: Ptr(0.0)}, true},
		{"zero width", Props{Width: Ptr(0.0)}, false},
		{"stroke width", Props{StrokeWidth: Ptr(25.0)}, false},
		{"colour", Props{Fill: Ptr("red")}, false},
		{"empty stroke", Props{Stroke: Ptr("")}, true},
		{"weight", Props{FontWeight: Ptr("heavy")}, false},
		{"line height", Props{LineHeight: Ptr(0.4)}, false},
		{"char spacing", Props{CharSpacing: Ptr(500.0)}, true},
		{"filter", Props{Filters: &[]Filter{{Type: "blur"}}}, false},
		{"brightness", Props{Filters: &[]Filter{{Type: FilterBrightness, Value: 0.5}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.props.Validate()
			if tt.ok {
				test.Error(t, err)
			} else {
				test.That(t, errors.Is(err, ErrValidation), "got", err)
			}
		})
	}
}

func TestPropsOfRoundTrip(t *testing.T) {
	src := NewText(1, 2)
	src.Text, src.FontSize = "hello", 44
	dst := NewText(0, 0)
	dst.ID = src.ID
	test.Error(t, Apply(dst, PropsOf(src)))
	test.T(t, Object(dst), Object(src))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#fa0")
	test.Error(t, err)
	test.T(t, [4]uint8{c.R, c.G, c.B, c.A}, [4]uint8{0xff, 0xaa, 0x00, 0xff})

	c, err = ParseColor("#11223380")
	test.Error(t, err)
	test.T(t, c.A, uint8(0x80))
	test.String(t, FormatColor(c), "#11223380")

	for _, bad := range []string{"", "fff", "#ff", "#gggggg", "#1234567"} {
		_, err := ParseColor(bad)
		test.That(t, errors.Is(err, ErrValidation), bad)
	}
}

func TestCanvasSizes(t *testing.T) {
	_, err := CustomSize(0, 500)
	test.That(t, errors.Is(err, ErrValidation))
	_, err = CustomSize(5000, 500)
	test.That(t, errors.Is(err, ErrValidation))
	size, err := CustomSize(800, 600)
	test.Error(t, err)
	test.T(t, size, CanvasSize{Name: "Custom", Width: 800, Height: 600})

	p, ok := Preset("youtube thumbnail")
	test.That(t, ok)
	test.T(t, p.Width, 1280)
	_, ok = Preset("Billboard")
	test.That(t, !ok)
}

func TestNormalizeAngle(t *testing.T) {
	test.Float(t, NormalizeAngle(370), 10)
	test.Float(t, NormalizeAngle(-10), 350)
	test.Float(t, NormalizeAngle(360), 0)
}
