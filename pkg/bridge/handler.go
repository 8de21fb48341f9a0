package bridge

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Handler computes an Outcome from a request payload. The payload is nil
// when the request carried none; handlers must tolerate both. Handlers are
// expected to return promptly and must not assume any ordering between
// invocations for different request ids.
type Handler interface {
	Invoke(ctx context.Context, payload json.RawMessage) Outcome
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) Outcome

// Invoke calls the function.
func (f HandlerFunc) Invoke(ctx context.Context, payload json.RawMessage) Outcome {
	return f(ctx, payload)
}

// Registry maps method names to handlers. It may be mutated at any time,
// including between dispatch cycles; lookups are point-in-time snapshot
// reads guarded by the lock.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a registry preloaded with the given handlers.
// Pass nil to start empty.
func NewRegistry(initial map[string]Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(initial))}
	for method, h := range initial {
		r.handlers[method] = h
	}
	return r
}

// Register binds a handler to a method name. The last registration for a
// given name wins.
func (r *Registry) Register(method string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = h
}

// Unregister removes the handler for a method name, if any.
func (r *Registry) Unregister(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, method)
}

// Resolve looks up the handler for a method name.
func (r *Registry) Resolve(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[method]
	return h, ok
}

// Methods returns the registered method names, sorted.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.handlers))
	for method := range r.handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
