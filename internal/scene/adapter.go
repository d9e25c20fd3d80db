package scene

import (
	"fmt"
	"log"
	"sync"
)

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Front    Direction = "front"
	Back     Direction = "back"
)

// ParseDirection accepts the four reorder directions by name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Forward, Backward, Front, Back:
		return d, nil
	}
	return "", invalidf("unknown reorder direction %q", s)
}

// Layer is one row of a layer list.
type Layer struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Active  bool   `json:"active"`
}

// Adapter owns an ordered scene and its active selection. Index 0 is the
// back-most object.
type Adapter struct {
	width, height int
	background    string
	objects       []Object
	active        string
	mu            sync.RWMutex
}

// NewAdapter creates an empty scene.
func NewAdapter(size CanvasSize, background string) *Adapter {
	return &Adapter{
		width:      size.Width,
		height:     size.Height,
		background: background,
	}
}

// Add inserts obj front-most and makes it active.
func (a *Adapter) Add(obj Object) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := obj.Common().ID
	if id == "" {
		return invalidf("object without id")
	}
	if a.indexLocked(id) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	a.objects = append(a.objects, obj)
	a.active = id
	log.Printf("[SCENE] Added %s %s", obj.Kind(), id)
	return nil
}

// Remove deletes the object with the given id and reports whether it was
// present.
func (a *Adapter) Remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(id)
	if i < 0 {
		return false
	}
	a.objects = append(a.objects[:i], a.objects[i+1:]...)
	if a.active == id {
		a.active = ""
	}
	log.Printf("[SCENE] Removed %s", id)
	return true
}

// Reorder moves the object one step or to an extreme of the paint order
// and reports whether its index changed.
func (a *Adapter) Reorder(id string, dir Direction) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(id)
	if i < 0 {
		return false
	}
	last := len(a.objects) - 1
	j := i
	switch dir {
	case Forward:
		j = min(i+1, last)
	case Backward:
		j = max(i-1, 0)
	case Front:
		j = last
	case Back:
		j = 0
	}
	if j == i {
		return false
	}
	obj := a.objects[i]
	a.objects = append(a.objects[:i], a.objects[i+1:]...)
	a.objects = append(a.objects[:j], append([]Object{obj}, a.objects[j:]...)...)
	return true
}

// Get returns a copy of the object with the given id.
func (a *Adapter) Get(id string) (Object, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i := a.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return a.objects[i].Clone(), true
}

// Update runs fn on the live object. If fn fails the object is restored to
// its state before the call.
func (a *Adapter) Update(id string, fn func(Object) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("object %s not found", id)
	}
	work := a.objects[i].Clone()
	if err := fn(work); err != nil {
		return err
	}
	a.objects[i] = work
	return nil
}

// Index returns the paint-order index of id, or -1.
func (a *Adapter) Index(id string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexLocked(id)
}

func (a *Adapter) indexLocked(id string) int {
	for i, obj := range a.objects {
		if obj.Common().ID == id {
			return i
		}
	}
	return -1
}

// Objects returns copies of all objects in paint order.
func (a *Adapter) Objects() []Object {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Object, len(a.objects))
	for i, obj := range a.objects {
		out[i] = obj.Clone()
	}
	return out
}

func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.objects)
}

// Active returns the id of the active object.
func (a *Adapter) Active() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active, a.active != ""
}

// ActiveObject returns a copy of the active object.
func (a *Adapter) ActiveObject() (Object, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.active == "" {
		return nil, false
	}
	i := a.indexLocked(a.active)
	if i < 0 {
		return nil, false
	}
	return a.objects[i].Clone(), true
}

// SetActive selects id, or clears the selection when id is empty. Absent
// and hidden objects cannot be selected.
func (a *Adapter) SetActive(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id == "" {
		a.active = ""
		return true
	}
	i := a.indexLocked(id)
	if i < 0 || !a.objects[i].Common().Visible {
		return false
	}
	a.active = id
	return true
}

// SetVisible shows or hides id. Hiding the active object clears the
// selection.
func (a *Adapter) SetVisible(id string, visible bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexLocked(id)
	if i < 0 {
		return false
	}
	obj := a.objects[i].Clone()
	obj.Common().Visible = visible
	a.objects[i] = obj
	if !visible && a.active == id {
		a.active = ""
	}
	return true
}

// Clear removes every object. Background and size are kept.
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects = nil
	a.active = ""
}

func (a *Adapter) Background() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.background
}

func (a *Adapter) SetBackground(hex string) error {
	if _, err := ParseColor(hex); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.background = hex
	return nil
}

func (a *Adapter) Size() (width, height int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.width, a.height
}

func (a *Adapter) SetSize(width, height int) error {
	if _, err := CustomSize(width, height); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = width, height
	return nil
}

// Serialize captures the whole scene as a checkpoint.
func (a *Adapter) Serialize() (Checkpoint, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return encode(a.width, a.height, a.background, a.objects)
}

// Deserialize replaces the scene with the checkpoint contents and clears
// the selection. A corrupt checkpoint leaves the scene untouched.
func (a *Adapter) Deserialize(c Checkpoint) error {
	d, err := decode(c)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = d.width, d.height
	a.background = d.background
	a.objects = d.objects
	a.active = ""
	return nil
}

// Layers lists objects top-most first, the way a layer panel shows them.
func (a *Adapter) Layers() []Layer {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Layer, 0, len(a.objects))
	for i := len(a.objects) - 1; i >= 0; i-- {
		obj := a.objects[i]
		b := obj.Common()
		out = append(out, Layer{
			ID:      b.ID,
			Kind:    obj.Kind(),
			Name:    DisplayName(obj),
			Visible: b.Visible,
			Active:  b.ID == a.active,
		})
	}
	return out
}
