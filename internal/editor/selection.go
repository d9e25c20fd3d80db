package editor

import "DesignBoard/internal/scene"

// PropertySnapshot is what a property panel shows for the active object.
// ID is empty when nothing is selected.
type PropertySnapshot struct {
	ID       string        `json:"id,omitempty"`
	Kind     scene.Kind    `json:"kind,omitempty"`
	Name     string        `json:"name,omitempty"`
	Fields   []scene.Field `json:"fields,omitempty"`
	Props    scene.Props   `json:"props"`
	Editing  Editing       `json:"editing"`
	OnCanvas bool          `json:"on_canvas"`
}

func (p PropertySnapshot) Selected() bool { return p.ID != "" }

// Selection returns the snapshot for the active object.
func (s *Session) Selection() PropertySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionLocked()
}

func (s *Session) selectionLocked() PropertySnapshot {
	obj, ok := s.scene.ActiveObject()
	if !ok {
		return PropertySnapshot{}
	}
	return PropertySnapshot{
		ID:       obj.Common().ID,
		Kind:     obj.Kind(),
		Name:     scene.DisplayName(obj),
		Fields:   scene.ApplicableFields(obj.Kind()),
		Props:    scene.PropsOf(obj),
		Editing:  s.editing,
		OnCanvas: s.scene.InBounds(obj),
	}
}
