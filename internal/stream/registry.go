package stream

import "sync"

// Handler receives dispatched events.
type Handler func(Event)

// Registry maps event types to their handlers, preserving registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Handler)}
}

// Add appends h to the handlers for eventType. Duplicates are kept and fire once per registration.
func (r *Registry) Add(eventType string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], h)
}

// Handlers returns a snapshot of the handlers registered for eventType.
func (r *Registry) Handlers(eventType string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := r.handlers[eventType]
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Len returns the number of handlers registered for eventType.
func (r *Registry) Len(eventType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[eventType])
}
