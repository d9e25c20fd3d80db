// Package editor is the design session: it owns the scene, its history and
// selection, and exposes every user operation. Each successful mutation
// records exactly one checkpoint and publishes a Change.
package editor

import (
	"errors"
	"image"
	"log"
	"sync"

	"DesignBoard/internal/asset"
	"DesignBoard/internal/config"
	"DesignBoard/internal/history"
	"DesignBoard/internal/render"
	"DesignBoard/internal/scene"
)

var (
	// ErrStale is returned when an asset finished decoding after the scene
	// it was meant for was cleared, replaced or closed.
	ErrStale = errors.New("stale asset: scene changed while loading")

	ErrClosed         = errors.New("session closed")
	ErrNotFound       = errors.New("object not found")
	ErrUnknownCommand = errors.New("unknown command")
)

// Editing is the inline text editing state. SelectAll asks the surface to
// select the whole text when editing begins.
type Editing struct {
	ObjectID  string `json:"object_id,omitempty"`
	SelectAll bool   `json:"select_all,omitempty"`
}

// Change describes the state after an operation.
type Change struct {
	// Seq increases with every published change.
	Seq         uint64
	Reason      string
	Selection   PropertySnapshot
	Layers      []scene.Layer
	Width       int
	Height      int
	Background  string
	CanUndo     bool
	CanRedo     bool
	Depth       int
	FutureDepth int
	Checkpoint  scene.Checkpoint
}

// Session is the editing context shared by every surface.
type Session struct {
	cfg      config.Config
	scene    *scene.Adapter
	history  *history.History
	loader   *asset.Loader
	renderer *render.Renderer

	// epoch changes on clear and close, discarding pending asset loads.
	epoch   uint64
	closed  bool
	editing Editing

	subs    map[int]func(Change)
	nextSub int
	seq     uint64

	mu sync.Mutex
}

// New starts a session with an empty scene and records its baseline.
func New(cfg config.Config) (*Session, error) {
	size, err := cfg.CanvasSize()
	if err != nil {
		return nil, err
	}
	bg := cfg.Canvas.Background
	if bg == "" {
		bg = scene.DefaultBackground
	}
	if _, err := scene.ParseColor(bg); err != nil {
		return nil, err
	}
	a := scene.NewAdapter(size, bg)
	cp, err := a.Serialize()
	if err != nil {
		return nil, err
	}
	log.Printf("[EDITOR] New session %dx%d, history depth %d", size.Width, size.Height, cfg.History.Depth)
	return &Session{
		cfg:      cfg,
		scene:    a,
		history:  history.New(cp, cfg.History.Depth),
		loader:   asset.NewLoader(cfg.Assets.MaxBytes),
		renderer: render.NewRenderer(),
		subs:     make(map[int]func(Change)),
	}, nil
}

func (s *Session) Config() config.Config { return s.cfg }

// Close discards pending asset loads and rejects further operations.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.subs = nil
	log.Println("[EDITOR] Session closed")
}

// Subscribe registers fn for every Change. fn runs while the session is
// locked and must not call back into it. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// lock acquires the session for an operation.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// commit records a checkpoint and publishes. A checkpoint that cannot be
// serialized is logged by the history; the mutation stands.
func (s *Session) commit(reason string) {
	if err := s.history.Checkpoint(s.scene); err != nil {
		log.Printf("[EDITOR] %s applied without checkpoint: %v", reason, err)
	}
	s.publish(reason)
}

func (s *Session) publish(reason string) {
	if id, ok := s.scene.Active(); !ok || id != s.editing.ObjectID {
		s.editing = Editing{}
	}
	s.seq++
	if len(s.subs) == 0 {
		return
	}
	c := s.changeLocked(reason)
	for _, fn := range s.subs {
		fn(c)
	}
}

func (s *Session) changeLocked(reason string) Change {
	w, h := s.scene.Size()
	return Change{
		Seq:         s.seq,
		Reason:      reason,
		Selection:   s.selectionLocked(),
		Layers:      s.scene.Layers(),
		Width:       w,
		Height:      h,
		Background:  s.scene.Background(),
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		Depth:       s.history.Depth(),
		FutureDepth: s.history.FutureDepth(),
		Checkpoint:  s.history.Baseline(),
	}
}

// State returns the current state as a Change with the given reason.
func (s *Session) State(reason string) Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeLocked(reason)
}

// Objects returns copies of the scene objects in paint order.
func (s *Session) Objects() []scene.Object { return s.scene.Objects() }

func (s *Session) Layers() []scene.Layer { return s.scene.Layers() }

func (s *Session) Size() (width, height int) { return s.scene.Size() }

func (s *Session) Background() string { return s.scene.Background() }

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryDepth reports the available undo and redo steps.
func (s *Session) HistoryDepth() (past, future int) {
	return s.history.Depth(), s.history.FutureDepth()
}

// ObjectAt returns the front-most visible object under a canvas point.
func (s *Session) ObjectAt(x, y float64) (string, bool) { return s.scene.ObjectAt(x, y) }

// Preview rasterizes the current scene.
func (s *Session) Preview() (image.Image, error) {
	objects := s.scene.Objects()
	w, h := s.scene.Size()
	return s.renderer.Render(objects, w, h, s.scene.Background())
}

// Undo restores the previous checkpoint. It reports false when there was
// nothing to undo.
func (s *Session) Undo() (bool, error) {
	return s.step("undo", s.history.Undo)
}

// Redo re-applies the next checkpoint.
func (s *Session) Redo() (bool, error) {
	return s.step("redo", s.history.Redo)
}

func (s *Session) step(reason string, fn func(history.Scene) (bool, error)) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	ok, err := fn(s.scene)
	if err != nil || !ok {
		return false, err
	}
	s.publish(reason)
	return true, nil
}
