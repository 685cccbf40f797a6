package params

import (
	"maps"
	"sync"
)

// Merger resolves the parameters handed to the template engine by combining
// supplied values with the defaults held in a Registry.
type Merger struct {
	registry *Registry

	mu         sync.RWMutex
	strategies []Strategy
}

// NewMerger constructs a Merger reading defaults from registry and registers
// the built-in strategies: MergeMap first, then FillObject. A nil registry is
// replaced with an empty one.
func NewMerger(registry *Registry) *Merger {
	if registry == nil {
		registry = NewRegistry()
	}
	m := &Merger{registry: registry}
	m.Attach(MergeMap())
	m.Attach(FillObject())
	return m
}

// Registry exposes the defaults registry backing the merger.
func (m *Merger) Registry() *Registry {
	return m.registry
}

// Attach appends a strategy. Strategies are consulted in reverse order of
// attachment, so s is tried first on the next Resolve call.
func (m *Merger) Attach(s Strategy) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies = append(m.strategies, s)
}

// Resolve returns the parameters to render templateID with. The first
// strategy producing an accepted result wins; otherwise supplied is returned
// unchanged. Resolve never fails.
func (m *Merger) Resolve(templateID string, supplied any) any {
	defaults := m.registry.Defaults(templateID)

	m.mu.RLock()
	strategies := make([]Strategy, len(m.strategies))
	copy(strategies, m.strategies)
	m.mu.RUnlock()

	return apply(strategies, supplied, defaults)
}

// apply walks strategies from last to first and returns the first accepted
// result, or supplied when every strategy declines. Each strategy receives
// its own copy of defaults.
func apply(strategies []Strategy, supplied any, defaults map[string]any) any {
	for i := len(strategies) - 1; i >= 0; i-- {
		result := strategies[i].Merge(supplied, maps.Clone(defaults))
		if accepted(result) {
			return result
		}
	}
	return supplied
}
