package scene

// Default styles for newly created objects.
const (
	DefaultBackground = "#ffffff"

	DefaultRectSize   = 100
	DefaultRectFill   = "#4299e1"
	DefaultRectCorner = 8

	DefaultCircleRadius = 50
	DefaultCircleFill   = "#ed8936"

	DefaultText       = "Edit this text"
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 30
	DefaultTextFill   = "#333333"
	DefaultLineHeight = 1.2
)

func newBase(x, y float64, fill string) Base {
	return Base{ID: NewID(), X: x, Y: y, Opacity: 1, Fill: fill, Visible: true}
}

// NewRect returns a default rectangle centred on (x, y).
func NewRect(x, y float64) *Rect {
	return &Rect{
		Base:         newBase(x, y, DefaultRectFill),
		Width:        DefaultRectSize,
		Height:       DefaultRectSize,
		CornerRadius: DefaultRectCorner,
	}
}

// NewCircle returns a default circle centred on (x, y).
func NewCircle(x, y float64) *Circle {
	return &Circle{
		Base:   newBase(x, y, DefaultCircleFill),
		Radius: DefaultCircleRadius,
	}
}

// NewText returns a default text box centred on (x, y).
func NewText(x, y float64) *Text {
	return &Text{
		Base:       newBase(x, y, DefaultTextFill),
		Text:       DefaultText,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		FontWeight: WeightNormal,
		FontStyle:  StyleNormal,
		TextAlign:  AlignLeft,
		LineHeight: DefaultLineHeight,
	}
}

// NewImage returns an image of the given native size centred on (x, y),
// uniformly scaled by scale.
func NewImage(x, y float64, src []byte, mime string, width, height int, scale float64) *Image {
	return &Image{
		Base:   newBase(x, y, "#000000"),
		Src:    src,
		MIME:   mime,
		Width:  float64(width),
		Height: float64(height),
		ScaleX: scale,
		ScaleY: scale,
	}
}
