package scene

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Area is an axis-aligned rectangle on the canvas.
type Area struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Area) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

func (r Area) Overlaps(o Area) bool {
	return !(r.X+r.Width < o.X || o.X+o.Width < r.X ||
		r.Y+r.Height < o.Y || o.Y+o.Height < r.Y)
}

// LocalSize is the unrotated width and height of obj. Text is estimated
// from its font metrics since layout belongs to the renderer.
func LocalSize(obj Object) (w, h float64) {
	switch o := obj.(type) {
	case *Rect:
		return o.Width + o.StrokeWidth, o.Height + o.StrokeWidth
	case *Circle:
		d := 2*o.Radius + o.StrokeWidth
		return d, d
	case *Image:
		return o.DisplaySize()
	case *Text:
		lines := strings.Split(o.Text, "\n")
		longest := 0
		for _, l := range lines {
			longest = max(longest, utf8.RuneCountInString(l))
		}
		advance := o.FontSize*0.6 + o.FontSize*o.CharSpacing/1000
		return float64(longest) * advance, float64(len(lines)) * o.FontSize * o.LineHeight
	}
	return 0, 0
}

// Bounds is the axis-aligned box enclosing obj after rotation.
func Bounds(obj Object) Area {
	b := obj.Common()
	w, h := LocalSize(obj)
	rad := b.Angle * math.Pi / 180
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	bw := w*cos + h*sin
	bh := w*sin + h*cos
	return Area{X: b.X - bw/2, Y: b.Y - bh/2, Width: bw, Height: bh}
}

// hit reports whether (x, y) falls inside obj's rotated box.
func hit(obj Object, x, y float64) bool {
	b := obj.Common()
	w, h := LocalSize(obj)
	rad := -b.Angle * math.Pi / 180
	dx, dy := x-b.X, y-b.Y
	lx := dx*math.Cos(rad) - dy*math.Sin(rad)
	ly := dx*math.Sin(rad) + dy*math.Cos(rad)
	if c, ok := obj.(*Circle); ok {
		r := c.Radius + c.StrokeWidth/2
		return lx*lx+ly*ly <= r*r
	}
	return math.Abs(lx) <= w/2 && math.Abs(ly) <= h/2
}

// ObjectAt returns the id of the front-most visible object under (x, y).
func (a *Adapter) ObjectAt(x, y float64) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := len(a.objects) - 1; i >= 0; i-- {
		obj := a.objects[i]
		if obj.Common().Visible && hit(obj, x, y) {
			return obj.Common().ID, true
		}
	}
	return "", false
}

// InBounds reports whether obj's box overlaps the canvas at all.
func (a *Adapter) InBounds(obj Object) bool {
	w, h := a.Size()
	return Bounds(obj).Overlaps(Area{Width: float64(w), Height: float64(h)})
}
