package editor

import (
	"fmt"
	"log"

	"DesignBoard/internal/scene"
)

// DuplicateOffset is how far a duplicate is placed from its original.
const DuplicateOffset = 20

func (s *Session) centre() (float64, float64) {
	w, h := s.scene.Size()
	return float64(w) / 2, float64(h) / 2
}

func (s *Session) add(reason string, obj scene.Object) error {
	if err := s.scene.Add(obj); err != nil {
		return err
	}
	s.commit(reason)
	return nil
}

// AddRect adds a default rectangle at the canvas centre.
func (s *Session) AddRect() (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	r := scene.NewRect(s.centre())
	return r.ID, s.add("add_rect", r)
}

// AddCircle adds a default circle at the canvas centre.
func (s *Session) AddCircle() (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	c := scene.NewCircle(s.centre())
	return c.ID, s.add("add_circle", c)
}

// AddText adds a default text box at the canvas centre and enters editing
// with the whole text selected.
func (s *Session) AddText() (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	t := scene.NewText(s.centre())
	if err := s.scene.Add(t); err != nil {
		return "", err
	}
	s.editing = Editing{ObjectID: t.ID, SelectAll: true}
	s.commit("add_text")
	return t.ID, nil
}

// DeleteSelected removes the active object. Without a selection it does
// nothing.
func (s *Session) DeleteSelected() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	id, ok := s.scene.Active()
	if !ok || !s.scene.Remove(id) {
		return nil
	}
	s.commit("delete")
	return nil
}

// DuplicateSelected clones the active object under a new id, offset by
// DuplicateOffset on both axes, and selects the clone.
func (s *Session) DuplicateSelected() (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	obj, ok := s.scene.ActiveObject()
	if !ok {
		return "", nil
	}
	clone := obj.Clone()
	b := clone.Common()
	b.ID = scene.NewID()
	b.X += DuplicateOffset
	b.Y += DuplicateOffset
	return b.ID, s.add("duplicate", clone)
}

func (s *Session) BringForward() error { return s.Reorder(scene.Forward) }

func (s *Session) SendBackward() error { return s.Reorder(scene.Backward) }

func (s *Session) BringToFront() error { return s.Reorder(scene.Front) }

func (s *Session) SendToBack() error { return s.Reorder(scene.Back) }

// Reorder moves the active object in the paint order. A move that changes
// nothing is not recorded unless configured otherwise.
func (s *Session) Reorder(dir scene.Direction) error {
	if _, err := scene.ParseDirection(string(dir)); err != nil {
		return err
	}
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	id, ok := s.scene.Active()
	if !ok {
		return nil
	}
	moved := s.scene.Reorder(id, dir)
	if !moved && !s.cfg.History.CheckpointNoopReorder {
		return nil
	}
	s.commit("reorder_" + string(dir))
	return nil
}

// UpdateObjectProps merges p onto the active object. Every field set in p
// must apply to the object's variant or nothing changes. Without a
// selection it does nothing.
func (s *Session) UpdateObjectProps(p scene.Props) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	id, ok := s.scene.Active()
	if !ok || len(p.Fields()) == 0 {
		return nil
	}
	if err := s.scene.Update(id, func(obj scene.Object) error {
		return scene.Apply(obj, p)
	}); err != nil {
		return err
	}
	s.commit("update")
	return nil
}

// SetVisible shows or hides an object. Hiding the active object clears the
// selection.
func (s *Session) SetVisible(id string, visible bool) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	obj, ok := s.scene.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if obj.Common().Visible == visible {
		return nil
	}
	s.scene.SetVisible(id, visible)
	s.commit("visibility")
	return nil
}

// Select makes id the active object. Hidden objects cannot be selected.
func (s *Session) Select(id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if id == "" {
		s.scene.SetActive("")
	} else if !s.scene.SetActive(id) {
		return fmt.Errorf("%w: %s is absent or hidden", ErrNotFound, id)
	}
	s.publish("select")
	return nil
}

func (s *Session) ClearSelection() error { return s.Select("") }

// EndEditing leaves inline text editing.
func (s *Session) EndEditing() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.editing == (Editing{}) {
		return nil
	}
	s.editing = Editing{}
	s.publish("end_editing")
	return nil
}

// ClearCanvas removes every object and drops pending asset loads. The
// background and canvas size are kept.
func (s *Session) ClearCanvas() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.scene.Clear()
	s.epoch++
	log.Println("[EDITOR] Canvas cleared")
	s.commit("clear")
	return nil
}

// SetBackground sets the canvas colour.
func (s *Session) SetBackground(hex string) error {
	if _, err := scene.ParseColor(hex); err != nil {
		return err
	}
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.scene.Background() == hex {
		return nil
	}
	if err := s.scene.SetBackground(hex); err != nil {
		return err
	}
	s.commit("background")
	return nil
}

// SetCanvasSize switches to a named preset.
func (s *Session) SetCanvasSize(preset string) error {
	size, ok := scene.Preset(preset)
	if !ok {
		return fmt.Errorf("%w: unknown canvas preset %q", scene.ErrValidation, preset)
	}
	return s.resize(size)
}

// SetCustomCanvasSize sets an explicit size; each side must be within
// 1..MaxCanvasDimension.
func (s *Session) SetCustomCanvasSize(width, height int) error {
	size, err := scene.CustomSize(width, height)
	if err != nil {
		return err
	}
	return s.resize(size)
}

func (s *Session) resize(size scene.CanvasSize) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if w, h := s.scene.Size(); w == size.Width && h == size.Height {
		return nil
	}
	if err := s.scene.SetSize(size.Width, size.Height); err != nil {
		return err
	}
	s.commit("canvas_size")
	return nil
}
