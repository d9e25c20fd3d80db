package editor

import "DesignBoard/internal/export"

// Export encodes the visible scene. quality in [0,1] applies to JPEG.
// Exporting never records a checkpoint.
func (s *Session) Export(format export.Format, quality float64) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	objects := s.scene.Objects()
	w, h := s.scene.Size()
	bg := s.scene.Background()
	s.mu.Unlock()

	img, err := s.renderer.Render(objects, w, h, bg)
	if err != nil {
		return nil, err
	}
	return export.Encode(img, format, quality)
}

// ExportFile exports and writes the file into the configured directory,
// returning its path.
func (s *Session) ExportFile(format export.Format) (string, error) {
	data, err := s.Export(format, s.cfg.Export.Quality)
	if err != nil {
		return "", err
	}
	return export.Download(s.cfg.Export.Dir, format, data)
}
