package shape

import (
	"fmt"
	"sync"
)

// Registry holds fully materialized node shapes, in registration order.
// Applications populate a registry at startup, typically from init()
// functions of their shape packages, and hand it to the validation service.
// The engine itself never parses shape definitions from serialized form.
type Registry struct {
	mu     sync.RWMutex
	shapes []*NodeShape
	byID   map[string]*NodeShape
}

// NewRegistry returns an empty shape registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*NodeShape)}
}

// Register validates and adds a node shape. Duplicate IDs are rejected.
func (r *Registry) Register(ns *NodeShape) error {
	if ns == nil {
		return fmt.Errorf("shape: cannot register nil shape")
	}
	if err := ns.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[ns.ID]; exists {
		return fmt.Errorf("shape: duplicate shape id %q", ns.ID)
	}
	r.byID[ns.ID] = ns
	r.shapes = append(r.shapes, ns)
	return nil
}

// Get returns the shape with the given ID and whether it exists.
func (r *Registry) Get(id string) (*NodeShape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.byID[id]
	return ns, ok
}

// Shapes returns all registered shapes in registration order.
func (r *Registry) Shapes() []*NodeShape {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NodeShape, len(r.shapes))
	copy(out, r.shapes)
	return out
}

// Select returns the shapes with the given IDs in registry order. An empty
// id list selects every registered shape. Unknown IDs are reported.
func (r *Registry) Select(ids []string) ([]*NodeShape, error) {
	if len(ids) == 0 {
		return r.Shapes(), nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*NodeShape
	for _, ns := range r.shapes {
		if want[ns.ID] {
			out = append(out, ns)
			delete(want, ns.ID)
		}
	}
	if len(want) > 0 {
		for id := range want {
			return nil, fmt.Errorf("shape: unknown shape id %q", id)
		}
	}
	return out, nil
}

// Len returns the number of registered shapes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shapes)
}

// Default is the process-wide registry used by services that do not construct
// their own.
var Default = NewRegistry()
