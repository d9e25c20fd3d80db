package editor

import (
	"context"
	"fmt"

	"DesignBoard/internal/asset"
	"DesignBoard/internal/scene"
)

// Operation names accepted by Apply.
const (
	OpAddRect        = "add_rect"
	OpAddCircle      = "add_circle"
	OpAddText        = "add_text"
	OpAddImage       = "add_image"
	OpAddSticker     = "add_sticker"
	OpDelete         = "delete"
	OpDuplicate      = "duplicate"
	OpReorder        = "reorder"
	OpUpdate         = "update"
	OpSetVisible     = "set_visible"
	OpSelect         = "select"
	OpClearSelection = "clear_selection"
	OpEndEditing     = "end_editing"
	OpClear          = "clear"
	OpBackground     = "background"
	OpCanvasPreset   = "canvas_preset"
	OpCanvasSize     = "canvas_size"
	OpUndo           = "undo"
	OpRedo           = "redo"
)

// Command is a serializable operation request, as sent by remote viewers
// and toolbar bindings.
type Command struct {
	Op        string       `json:"op"`
	ID        string       `json:"id,omitempty"`
	Props     *scene.Props `json:"props,omitempty"`
	Visible   *bool        `json:"visible,omitempty"`
	Direction string       `json:"direction,omitempty"`
	Color     string       `json:"color,omitempty"`
	Preset    string       `json:"preset,omitempty"`
	Width     int          `json:"width,omitempty"`
	Height    int          `json:"height,omitempty"`
	URL       string       `json:"url,omitempty"`
	File      *asset.File  `json:"file,omitempty"`
}

// Async reports whether cmd may block on an asset fetch. Callers run such
// commands on their own goroutine; the session commits them under its lock.
func (c Command) Async() bool {
	return c.Op == OpAddImage || c.Op == OpAddSticker
}

func (c Command) source() (asset.Source, error) {
	switch {
	case c.File != nil:
		return asset.FromFile(*c.File), nil
	case c.URL != "":
		return asset.FromURL(c.URL), nil
	}
	return asset.Source{}, fmt.Errorf("%w: %s needs a url or file", scene.ErrValidation, c.Op)
}

// Apply runs cmd against the session.
func (s *Session) Apply(ctx context.Context, cmd Command) error {
	switch cmd.Op {
	case OpAddRect:
		_, err := s.AddRect()
		return err
	case OpAddCircle:
		_, err := s.AddCircle()
		return err
	case OpAddText:
		_, err := s.AddText()
		return err
	case OpAddImage, OpAddSticker:
		src, err := cmd.source()
		if err != nil {
			return err
		}
		if cmd.Op == OpAddSticker {
			_, err = s.AddSticker(ctx, src)
		} else {
			_, err = s.AddImage(ctx, src)
		}
		return err
	case OpDelete:
		return s.DeleteSelected()
	case OpDuplicate:
		_, err := s.DuplicateSelected()
		return err
	case OpReorder:
		dir, err := scene.ParseDirection(cmd.Direction)
		if err != nil {
			return err
		}
		return s.Reorder(dir)
	case OpUpdate:
		if cmd.Props == nil {
			return fmt.Errorf("%w: update without props", scene.ErrValidation)
		}
		return s.UpdateObjectProps(*cmd.Props)
	case OpSetVisible:
		if cmd.Visible == nil {
			return fmt.Errorf("%w: set_visible without visible", scene.ErrValidation)
		}
		return s.SetVisible(cmd.ID, *cmd.Visible)
	case OpSelect:
		return s.Select(cmd.ID)
	case OpClearSelection:
		return s.ClearSelection()
	case OpEndEditing:
		return s.EndEditing()
	case OpClear:
		return s.ClearCanvas()
	case OpBackground:
		return s.SetBackground(cmd.Color)
	case OpCanvasPreset:
		return s.SetCanvasSize(cmd.Preset)
	case OpCanvasSize:
		return s.SetCustomCanvasSize(cmd.Width, cmd.Height)
	case OpUndo:
		_, err := s.Undo()
		return err
	case OpRedo:
		_, err := s.Redo()
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
}

// ApplyRemote is Apply for commands from another machine. Assets must come
// inline or over http(s); paths on this host are refused.
func (s *Session) ApplyRemote(ctx context.Context, cmd Command) error {
	if cmd.Async() {
		src, err := cmd.source()
		if err != nil {
			return err
		}
		if src.Local() {
			return fmt.Errorf("%w: remote asset %s must be http(s), data or inline", asset.ErrAssetLoad, src)
		}
	}
	return s.Apply(ctx, cmd)
}
