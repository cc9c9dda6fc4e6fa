// Package tool holds the tool catalog shown to the language model, the typed
// argument decoding for each tool and the dispatch handlers behind them.
package tool

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrUnknownTool                   = errors.New("tool not registered")
	ErrToolExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrToolDefinitionNotFound        = errors.New("tool definition not found")
)

// Registry pairs each catalog definition with its executor. The catalog is
// fixed at construction; executors are registered once during startup.
type Registry struct {
	definitions []Definition
	byName      map[string]Definition

	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates a Registry over the given definitions.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{
		definitions: make([]Definition, len(defs)),
		byName:      make(map[string]Definition, len(defs)),
		executors:   make(map[string]Executor, len(defs)),
	}
	copy(r.definitions, defs)
	for _, d := range defs {
		r.byName[d.Name] = d
	}
	return r
}

// Register binds an executor to a catalog definition.
func (r *Registry) Register(name string, executor Executor) error {
	name = strings.TrimSpace(name)
	if name == "" || executor == nil {
		return fmt.Errorf("register %q: %w", name, ErrUnknownTool)
	}
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("register %q: %w", name, ErrToolDefinitionNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrToolExecutorAlreadyRegistered)
	}
	r.executors[name] = executor
	return nil
}

// Get returns the executor for name or ErrUnknownTool.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	executor, ok := r.executors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return executor, nil
}

// Definitions returns the catalog in declaration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Definition looks up one catalog entry by name.
func (r *Registry) Definition(name string) (Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Unbound lists catalog entries that have no executor yet.
func (r *Registry) Unbound() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for _, d := range r.definitions {
		if _, ok := r.executors[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	return missing
}
