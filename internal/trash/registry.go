package trash

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrResourceExists is returned when registering the same resource name twice.
var ErrResourceExists = errors.New("trash registry: resource already registered")

// Registry maintains the catalogue of soft-deletable resources the trash
// service can administer. Resources are registered once at start-up and
// listed in registration order.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
	order     []string
}

// NewRegistry constructs an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]Resource),
	}
}

// Register adds a resource to the registry, enforcing uniqueness by name.
func (r *Registry) Register(res Resource) error {
	if res == nil {
		return errors.New("trash registry: nil resource")
	}

	name := strings.ToLower(strings.TrimSpace(res.Name()))
	if name == "" {
		return errors.New("trash registry: resource name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[name]; exists {
		return fmt.Errorf("%w: %s", ErrResourceExists, name)
	}

	r.resources[name] = res
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a resource by name.
func (r *Registry) Get(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[strings.ToLower(strings.TrimSpace(name))]
	return res, ok
}

// Names returns the registered resource names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resources returns the registered resources in registration order.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.resources[name])
	}
	return out
}
