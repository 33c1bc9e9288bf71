package statecell

import (
	"fmt"
	"sync"
)

// Registry maps names to cells so that call sites can share state through
// an explicit holder instead of package-level variables. Cells installed
// in a registry inherit its logger and are named after their key.
type Registry struct {
	mu     sync.RWMutex
	logger Logger
	cells  map[string]interface{}
}

// RegistryOption configures a Registry at creation time.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger installed cells report to.
func WithRegistryLogger(logger Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: noopLogger{},
		cells:  make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// The process-wide registry. Reserved for leaf utility code; anything
// with an initialization path should receive a *Registry explicitly.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Install creates a cell under name and registers it. It fails if the
// name is already taken. The cell's value is still constructed lazily,
// on first acquisition, not here.
func Install[T any](r *Registry, name string, init func() T, opts ...Option[T]) (*Cell[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cells[name]; exists {
		return nil, fmt.Errorf("state cell %q is already installed", name)
	}
	cell := newRegistryCell(r, name, init, opts)
	r.cells[name] = cell
	r.logger.Debug("state cell installed", "cell", name)
	return cell, nil
}

// Lookup returns the cell registered under name, if one exists and holds
// type T.
func Lookup[T any](r *Registry, name string) (*Cell[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cell, ok := r.cells[name].(*Cell[T])
	return cell, ok
}

// Obtain returns the cell registered under name, creating and
// registering it if absent. Racing callers get the same cell. It fails
// if the name is taken by a cell of a different type.
func Obtain[T any](r *Registry, name string, init func() T, opts ...Option[T]) (*Cell[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.cells[name]; exists {
		cell, ok := existing.(*Cell[T])
		if !ok {
			return nil, fmt.Errorf("state cell %q is already installed with a different type", name)
		}
		return cell, nil
	}
	cell := newRegistryCell(r, name, init, opts)
	r.cells[name] = cell
	r.logger.Debug("state cell installed", "cell", name)
	return cell, nil
}

// Names returns the names of all registered cells.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cells))
	for name := range r.cells {
		names = append(names, name)
	}
	return names
}

// Caller options run last so tests can still override the name or logger.
func newRegistryCell[T any](r *Registry, name string, init func() T, opts []Option[T]) *Cell[T] {
	all := make([]Option[T], 0, len(opts)+2)
	all = append(all, WithName[T](name), WithLogger[T](r.logger))
	all = append(all, opts...)
	return New(init, all...)
}
