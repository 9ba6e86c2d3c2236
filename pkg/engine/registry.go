package engine

import (
	"fmt"
	"sync"

	"github.com/weftui/weft/pkg/view"
)

// Presenter is a pure function from (props, tracked context) to a view
// node tree. Presenters must not retain the Ctx, read sources outside it,
// or mutate anything they can reach; all effects flow through data-source
// writes on the host side.
type Presenter func(props any, ctx *Ctx) *view.Node

// Registry maps presenter function ids to their implementations.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Presenter
}

// NewRegistry returns an empty presenter registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Presenter)}
}

// Register binds a presenter function to an id. Registering an id twice
// replaces the earlier function.
func (r *Registry) Register(id string, fn Presenter) {
	r.mu.Lock()
	r.fns[id] = fn
	r.mu.Unlock()
}

// Resolve returns the presenter registered under id.
func (r *Registry) Resolve(id string) (Presenter, error) {
	r.mu.RLock()
	fn, ok := r.fns[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", id, ErrUnknownPresenter)
	}
	return fn, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	_, ok := r.fns[id]
	r.mu.RUnlock()
	return ok
}
