package params

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// ScopeAll is the scope key whose defaults apply to every template.
const ScopeAll = "*"

var (
	// ErrInvalidScope is returned when a default is registered without a scope.
	ErrInvalidScope = errors.New("params: scope is required")
	// ErrInvalidName is returned when a default is registered without a name.
	ErrInvalidName = errors.New("params: parameter name is required")
)

// Registry stores default parameter values per scope. Writes are additive;
// registering an existing name in the same scope overwrites its value.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]map[string]any
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		scopes: make(map[string]map[string]any),
	}
}

// Add registers value as the default for name within scope.
func (r *Registry) Add(scope, name string, value any) error {
	if strings.TrimSpace(scope) == "" {
		return ErrInvalidScope
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w (scope %q)", ErrInvalidName, scope)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scopes == nil {
		r.scopes = make(map[string]map[string]any)
	}
	values, ok := r.scopes[scope]
	if !ok {
		values = make(map[string]any)
		r.scopes[scope] = values
	}
	values[name] = value
	return nil
}

// MustAdd panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustAdd(scope, name string, value any) {
	if err := r.Add(scope, name, value); err != nil {
		panic(err)
	}
}

// Scope returns a copy of the defaults registered for exactly scope.
func (r *Registry) Scope(scope string) map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any, len(r.scopes[scope]))
	maps.Copy(out, r.scopes[scope])
	return out
}

// Defaults returns the effective defaults for templateID: global values
// overlaid with the values registered for the template itself. The overlay
// is shallow: a nested map registered for the template replaces the global
// one under the same name. The returned map is always a fresh copy.
func (r *Registry) Defaults(templateID string) map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	global := r.scopes[ScopeAll]
	scoped := r.scopes[templateID]

	out := make(map[string]any, len(global)+len(scoped))
	maps.Copy(out, global)
	if templateID != ScopeAll {
		maps.Copy(out, scoped)
	}
	return out
}

// Scopes returns a sorted list of scopes holding at least one default.
func (r *Registry) Scopes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scopes))
	for name, values := range r.scopes {
		if len(values) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
