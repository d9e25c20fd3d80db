package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func newTestAdapter() *Adapter {
	return NewAdapter(CanvasSize{Width: 800, Height: 600}, DefaultBackground)
}

func ids(a *Adapter) []string {
	var out []string
	for _, obj := range a.Objects() {
		out = append(out, obj.Common().ID)
	}
	return out
}

func TestAddMakesActive(t *testing.T) {
	a := newTestAdapter()
	r := NewRect(10, 10)
	test.Error(t, a.Add(r))
	id, ok := a.Active()
	test.That(t, ok)
	test.T(t, id, r.ID)

	err := a.Add(r)
	test.That(t, errors.Is(err, ErrDuplicateID), "duplicate id must be rejected")
	test.T(t, a.Len(), 1)
}

func TestRemove(t *testing.T) {
	a := newTestAdapter()
	r, c := NewRect(0, 0), NewCircle(0, 0)
	test.Error(t, a.Add(r))
	test.Error(t, a.Add(c))

	test.That(t, !a.Remove("missing"))
	test.T(t, a.Len(), 2)

	test.That(t, a.Remove(c.ID))
	_, ok := a.Active()
	test.That(t, !ok, "removing the active object clears selection")

	a.SetActive(r.ID)
	test.That(t, a.Remove(r.ID))
	test.T(t, a.Len(), 0)
}

func TestReorder(t *testing.T) {
	a := newTestAdapter()
	r1, r2, r3 := NewRect(0, 0), NewRect(0, 0), NewRect(0, 0)
	for _, r := range []*Rect{r1, r2, r3} {
		test.Error(t, a.Add(r))
	}

	var tests = []struct {
		id    string
		dir   Direction
		moved bool
		order []string
	}{
		{r3.ID, Forward, false, []string{r1.ID, r2.ID, r3.ID}},
		{r1.ID, Backward, false, []string{r1.ID, r2.ID, r3.ID}},
		{r1.ID, Forward, true, []string{r2.ID, r1.ID, r3.ID}},
		{r1.ID, Front, true, []string{r2.ID, r3.ID, r1.ID}},
		{r1.ID, Front, false, []string{r2.ID, r3.ID, r1.ID}},
		{r1.ID, Back, true, []string{r1.ID, r2.ID, r3.ID}},
		{r3.ID, Backward, true, []string{r1.ID, r3.ID, r2.ID}},
		{"missing", Front, false, []string{r1.ID, r3.ID, r2.ID}},
	}
	for i, tt := range tests {
		moved := a.Reorder(tt.id, tt.dir)
		test.T(t, moved, tt.moved, "step", i)
		test.T(t, ids(a), tt.order, "step", i)
	}
}

func TestHideClearsSelection(t *testing.T) {
	a := newTestAdapter()
	r := NewRect(0, 0)
	test.Error(t, a.Add(r))

	test.That(t, a.SetVisible(r.ID, false))
	_, ok := a.Active()
	test.That(t, !ok)
	test.That(t, !a.SetActive(r.ID), "hidden objects cannot be selected")

	test.That(t, a.SetVisible(r.ID, true))
	test.That(t, a.SetActive(r.ID))
}

func TestObjectsAreCopies(t *testing.T) {
	a := newTestAdapter()
	r := NewRect(5, 5)
	test.Error(t, a.Add(r))

	objs := a.Objects()
	objs[0].Common().X = 99
	got, _ := a.Get(r.ID)
	test.Float(t, got.Common().X, 5)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	a := newTestAdapter()
	r := NewRect(5, 5)
	test.Error(t, a.Add(r))

	err := a.Update(r.ID, func(obj Object) error {
		obj.Common().X = 50
		return errors.New("boom")
	})
	test.That(t, err != nil)
	got, _ := a.Get(r.ID)
	test.Float(t, got.Common().X, 5)
}

func TestLayers(t *testing.T) {
	a := newTestAdapter()
	r := NewRect(0, 0)
	txt := NewText(0, 0)
	txt.Text = "A rather long caption here"
	test.Error(t, a.Add(r))
	test.Error(t, a.Add(txt))

	layers := a.Layers()
	test.T(t, len(layers), 2)
	test.T(t, layers[0].Name, "A rather long c...")
	test.That(t, layers[0].Active)
	test.T(t, layers[1].Name, "Rectangle")
}

func TestObjectAt(t *testing.T) {
	a := newTestAdapter()
	back := NewRect(100, 100)
	front := NewCircle(120, 100)
	test.Error(t, a.Add(back))
	test.Error(t, a.Add(front))

	id, ok := a.ObjectAt(130, 100)
	test.That(t, ok)
	test.T(t, id, front.ID)

	id, ok = a.ObjectAt(55, 55)
	test.That(t, ok)
	test.T(t, id, back.ID)

	_, ok = a.ObjectAt(400, 400)
	test.That(t, !ok)

	a.SetVisible(front.ID, false)
	id, _ = a.ObjectAt(130, 100)
	test.T(t, id, back.ID)
}

func TestBoundsRotated(t *testing.T) {
	r := NewRect(0, 0)
	r.Width, r.Height, r.Angle = 100, 20, 90
	b := Bounds(r)
	test.Float(t, math.Round(b.Width), 20)
	test.Float(t, math.Round(b.Height), 100)
}
