// Package nodetypes maps node type tags to their default payloads. The
// registry is the single authority on which node types a board may contain.
package nodetypes

import (
	"sort"
	"sync"

	pkgerrors "tabula-backend/pkg/errors"
)

// DefaultsFactory produces a fresh default payload for a node type.
// Each call must return an independent map so callers can mutate freely.
type DefaultsFactory func() map[string]interface{}

// Registry holds the known node types and their default payloads
type Registry struct {
	mu        sync.RWMutex
	factories map[string]DefaultsFactory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]DefaultsFactory),
	}
}

// Builtin returns a registry pre-populated with the standard node types
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("sticky", func() map[string]interface{} {
		return map[string]interface{}{
			"text":  "",
			"color": "#FFEB3B",
		}
	})
	r.Register("task", func() map[string]interface{} {
		return map[string]interface{}{
			"title":     "",
			"priority":  "medium",
			"completed": false,
		}
	})
	r.Register("text", func() map[string]interface{} {
		return map[string]interface{}{
			"text": "",
		}
	})
	r.Register("image", func() map[string]interface{} {
		return map[string]interface{}{
			"src": "",
			"alt": "",
		}
	})
	return r
}

// Register adds or replaces a node type. A nil factory registers the type
// with an empty default payload.
func (r *Registry) Register(nodeType string, factory DefaultsFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if factory == nil {
		factory = func() map[string]interface{} { return map[string]interface{}{} }
	}
	r.factories[nodeType] = factory
}

// DefaultsFor returns a fresh default payload for the given node type
func (r *Registry) DefaultsFor(nodeType string) (map[string]interface{}, error) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewUnknownNodeTypeError(nodeType)
	}
	return factory(), nil
}

// IsKnown reports whether the node type is registered
func (r *Registry) IsKnown(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[nodeType]
	return ok
}

// Types returns the registered type tags in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
