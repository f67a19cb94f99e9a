package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrInvalidHandler  = errors.New("invalid job handler")
	ErrHandlerConflict  = errors.New("job type already registered")
)

// Handler runs one job type. Run reports terminal state through the Context.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job_type to its handler. It is filled during wiring and read by workers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(h Handler) error {
	if h == nil || h.Type() == "" {
		return ErrInvalidHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.handlers[h.Type()]; dup {
		return fmt.Errorf("%w: %s", ErrHandlerConflict, h.Type())
	}
	r.handlers[h.Type()] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	h, ok := r.handlers[jobType]
	r.mu.RUnlock()
	return h, ok
}

// Types is sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
