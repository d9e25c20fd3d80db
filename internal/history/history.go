// Package history keeps the linear undo/redo record of a scene as two
// stacks of checkpoints around a baseline describing the current state.
package history

import (
	"log"
	"sync"

	"DesignBoard/internal/scene"
)

// DefaultDepth is the number of undo steps kept when no depth is configured.
const DefaultDepth = 100

// Scene is what the engine snapshots and restores.
type Scene interface {
	Serialize() (scene.Checkpoint, error)
	Deserialize(scene.Checkpoint) error
}

// History is the undo/redo record. past runs oldest to newest; the newest
// entry is the state just before the baseline.
type History struct {
	past     []scene.Checkpoint
	future   []scene.Checkpoint
	baseline scene.Checkpoint
	depth    int
	mu       sync.Mutex
}

// New starts a history whose current state is initial. depth bounds the
// number of undo steps; 0 means unbounded.
func New(initial scene.Checkpoint, depth int) *History {
	if depth < 0 {
		depth = 0
	}
	return &History{baseline: initial, depth: depth}
}

// Record makes cp the current state, pushing the previous one onto past
// and discarding the redo branch.
func (h *History) Record(cp scene.Checkpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.past = append(h.past, h.baseline)
	if h.depth > 0 && len(h.past) > h.depth {
		// drop oldest
		h.past = append([]scene.Checkpoint(nil), h.past[len(h.past)-h.depth:]...)
	}
	h.future = nil
	h.baseline = cp
}

// Checkpoint serializes s and records it. A serialization failure is
// logged and leaves the history as it was; the caller's change stands.
func (h *History) Checkpoint(s Scene) error {
	cp, err := s.Serialize()
	if err != nil {
		log.Printf("[HISTORY] Checkpoint not recorded: %v", err)
		return err
	}
	h.Record(cp)
	return nil
}

// Undo restores the newest past entry into s. The live state of s is moved
// onto future. It reports false when there is nothing to undo; on a restore
// error both stacks are left unchanged.
func (h *History) Undo(s Scene) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return false, nil
	}
	current, err := h.current(s)
	if err != nil {
		return false, err
	}
	prev := h.past[len(h.past)-1]
	if err := s.Deserialize(prev); err != nil {
		log.Printf("[HISTORY] Undo failed: %v", err)
		return false, err
	}
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	h.baseline = prev
	return true, nil
}

// Redo is the mirror of Undo.
func (h *History) Redo(s Scene) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return false, nil
	}
	current, err := h.current(s)
	if err != nil {
		return false, err
	}
	next := h.future[len(h.future)-1]
	if err := s.Deserialize(next); err != nil {
		log.Printf("[HISTORY] Redo failed: %v", err)
		return false, err
	}
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	if h.depth > 0 && len(h.past) > h.depth {
		h.past = append([]scene.Checkpoint(nil), h.past[len(h.past)-h.depth:]...)
	}
	h.baseline = next
	return true, nil
}

// current captures the live state, falling back to the baseline when the
// scene cannot be serialized.
func (h *History) current(s Scene) (scene.Checkpoint, error) {
	cp, err := s.Serialize()
	if err != nil {
		log.Printf("[HISTORY] Using last checkpoint for current state: %v", err)
		if h.baseline.IsZero() {
			return scene.Checkpoint{}, err
		}
		return h.baseline, nil
	}
	return cp, nil
}

// Baseline is the checkpoint of the current state as last recorded.
func (h *History) Baseline() scene.Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.baseline
}

// Depth is the number of available undo steps.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past)
}

// FutureDepth is the number of available redo steps.
func (h *History) FutureDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future)
}

func (h *History) CanUndo() bool { return h.Depth() > 0 }

func (h *History) CanRedo() bool { return h.FutureDepth() > 0 }

// Limit is the configured depth bound, 0 when unbounded.
func (h *History) Limit() int { return h.depth }
