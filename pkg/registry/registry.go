package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/schema"
)

// Factory builds an action from its definition.
type Factory func(cfg schema.ActionConfig) (ports.Action, error)

// Registry manages the available action types.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds an action type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(actionType string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[actionType] = fn
}

// Build looks up the factory of cfg.Type and builds the action.
// Unknown types are reported as a *domain.ConfigurationError.
func (r *Registry) Build(cfg schema.ActionConfig) (ports.Action, error) {
	r.mu.RLock()
	fn, ok := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.ConfigurationError{
			Field:  "type",
			Reason: "no action registered for this type",
			Value:  cfg.Type,
			Err:    domain.ErrUnknownActionType,
		}
	}

	action, err := fn(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s action: %w", cfg.Type, err)
	}
	return action, nil
}

// Types returns the registered action types in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
