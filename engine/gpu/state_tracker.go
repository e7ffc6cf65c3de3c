package gpu

import (
	"fmt"
	"sync"
)

// StateTracker records the GPU-timeline state of every texture a device created. Barriers are
// applied when a command list is executed, not when it is recorded.
type StateTracker struct {
	mu     sync.Mutex
	states map[Resource]ResourceState
}

// NewStateTracker returns an empty tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{states: make(map[Resource]ResourceState)}
}

// Register starts tracking r in state s.
func (t *StateTracker) Register(r Resource, s ResourceState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[r] = s
}

// Forget stops tracking r.
func (t *StateTracker) Forget(r Resource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, r)
}

// State returns the tracked state of r.
func (t *StateTracker) State(r Resource) (ResourceState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[r]
	return s, ok
}

// Apply validates and performs a barrier.
//
// Parameters:
//   - b: the barrier to apply
//
// Returns:
//   - error: ErrInvalidState if b.Before is not the tracked state or b.After is not allowed by the texture usage
func (t *StateTracker) Apply(b Barrier) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.states[b.Resource]
	if !ok {
		return fmt.Errorf("%w: barrier on untracked resource %q", ErrInvalidState, label(b.Resource))
	}
	if cur != b.Before {
		return fmt.Errorf("%w: %q is %s, barrier expects %s", ErrInvalidState, label(b.Resource), cur, b.Before)
	}
	if tex, ok := b.Resource.(Texture); ok && !tex.Desc().Usage.Allows(b.After) {
		return fmt.Errorf("%w: %q usage does not allow %s", ErrInvalidState, tex.Label(), b.After)
	}
	t.states[b.Resource] = b.After
	return nil
}

func (t *StateTracker) expect(r Resource, want ResourceState) error {
	s, ok := t.State(r)
	if !ok {
		return fmt.Errorf("%w: untracked resource %q", ErrInvalidState, label(r))
	}
	if s != want {
		return fmt.Errorf("%w: %q is %s, need %s", ErrInvalidState, label(r), s, want)
	}
	return nil
}

func label(r Resource) string {
	if r == nil {
		return "<nil>"
	}
	return r.Label()
}
