package input

import "github.com/Carmen-Shannon/oxy-rsm/common"

// Handler reacts to input events and may poll held state once per frame.
type Handler interface {
	// Handle processes one discrete event.
	//
	// Parameters:
	//   - e: the event to process
	Handle(e Event)

	// IsValid reports whether the handler can still act. Invalid handlers are removed from
	// the Registry on the next dispatch.
	//
	// Returns:
	//   - bool: false once the handler's target is gone
	IsValid() bool

	// ProcessContinuousInput applies per-frame effects of held input.
	ProcessContinuousInput()
}

// Registry holds the active input handlers. It is used from the window thread only.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler. Nil handlers are ignored.
//
// Parameters:
//   - h: the handler to add
func (r *Registry) Register(h Handler) {
	if h == nil {
		return
	}
	r.handlers = append(r.handlers, h)
}

// Dispatch removes invalid handlers and forwards e to the remaining ones in registration order.
//
// Parameters:
//   - e: the event to forward
func (r *Registry) Dispatch(e Event) {
	r.prune()
	for _, h := range r.handlers {
		h.Handle(e)
	}
}

// ProcessContinuousInput removes invalid handlers and polls the remaining ones.
func (r *Registry) ProcessContinuousInput() {
	r.prune()
	for _, h := range r.handlers {
		h.ProcessContinuousInput()
	}
}

// Len returns the number of registered handlers, including ones not yet pruned.
func (r *Registry) Len() int {
	return len(r.handlers)
}

func (r *Registry) prune() {
	kept := r.handlers[:0]
	for _, h := range r.handlers {
		if h.IsValid() {
			kept = append(kept, h)
		}
	}
	if removed := len(r.handlers) - len(kept); removed > 0 {
		common.Logger().Warn("pruned input handlers", "count", removed)
		clear(r.handlers[len(kept):])
	}
	r.handlers = kept
}
