package editor

import (
	"context"
	"log"

	"DesignBoard/internal/asset"
	"DesignBoard/internal/scene"
)

// AddImage loads src and places it at the canvas centre, fitted to 80% of
// the canvas's minor dimension and never scaled up.
func (s *Session) AddImage(ctx context.Context, src asset.Source) (string, error) {
	return s.addAsset(ctx, src, asset.PurposeImage)
}

// AddSticker is AddImage fitted to 30% of the minor dimension.
func (s *Session) AddSticker(ctx context.Context, src asset.Source) (string, error) {
	return s.addAsset(ctx, src, asset.PurposeSticker)
}

// addAsset decodes without holding the session, so other operations keep
// running. Undo and redo in the meantime are fine; the image lands on
// whatever scene is current. The result is dropped with ErrStale if the
// scene was cleared or the session closed.
func (s *Session) addAsset(ctx context.Context, src asset.Source, purpose asset.Purpose) (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	if src.File != nil {
		if err := s.loader.ValidateFile(*src.File); err != nil {
			s.mu.Unlock()
			log.Printf("[ASSET] Rejected %s: %v", src, err)
			return "", err
		}
	}
	epoch := s.epoch
	s.mu.Unlock()

	a, err := s.loader.Load(ctx, src)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch {
		log.Printf("[ASSET] Discarding %s %s loaded for a previous scene", purpose, src)
		return "", ErrStale
	}
	w, h := s.scene.Size()
	scale := asset.FitScale(purpose, a.Width, a.Height, w, h)
	im := scene.NewImage(float64(w)/2, float64(h)/2, a.Data, a.MIME, a.Width, a.Height, scale)
	im.Sticker = purpose == asset.PurposeSticker
	if err := s.add("add_"+purpose.String(), im); err != nil {
		return "", err
	}
	return im.ID, nil
}
