package resolver

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultPriority is the priority used by Attach.
const DefaultPriority = 1

// Aggregate queries attached resolvers by descending priority. Resolvers
// sharing a priority are queried in attachment order.
type Aggregate struct {
	mu      sync.RWMutex
	entries []entry
	seq     int
}

type entry struct {
	resolver Resolver
	priority int
	seq      int
}

var _ Resolver = (*Aggregate)(nil)

// NewAggregate constructs an Aggregate attaching resolvers at DefaultPriority.
func NewAggregate(resolvers ...Resolver) *Aggregate {
	agg := &Aggregate{}
	for _, r := range resolvers {
		agg.Attach(r)
	}
	return agg
}

// Attach adds r at DefaultPriority.
func (a *Aggregate) Attach(r Resolver) {
	a.AttachWithPriority(r, DefaultPriority)
}

// AttachWithPriority adds r with an explicit priority; higher runs first.
func (a *Aggregate) AttachWithPriority(r Resolver, priority int) {
	if r == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	a.entries = append(a.entries, entry{resolver: r, priority: priority, seq: a.seq})
	sort.SliceStable(a.entries, func(i, j int) bool {
		if a.entries[i].priority != a.entries[j].priority {
			return a.entries[i].priority > a.entries[j].priority
		}
		return a.entries[i].seq < a.entries[j].seq
	})
}

// Len reports the number of attached resolvers.
func (a *Aggregate) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Resolvers returns the attached resolvers in query order.
func (a *Aggregate) Resolvers() []Resolver {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Resolver, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.resolver)
	}
	return out
}

// Resolve returns the source from the first resolver that has the template.
// Errors other than ErrNotFound stop the search.
func (a *Aggregate) Resolve(name string) (string, error) {
	for _, r := range a.Resolvers() {
		src, err := r.Resolve(name)
		if err == nil {
			return src, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return "", fmt.Errorf("resolver: resolve %q: %w", name, err)
	}
	return "", notFound(name)
}

// Get implements the engine's partial provider contract so partials resolve
// through the same chain as top-level templates.
func (a *Aggregate) Get(name string) (string, error) {
	return a.Resolve(name)
}

// Default returns the first *Default resolver in query order, searching
// nested aggregates depth first.
func (a *Aggregate) Default() (*Default, bool) {
	for _, r := range a.Resolvers() {
		switch typed := r.(type) {
		case *Default:
			return typed, true
		case *Aggregate:
			if d, ok := typed.Default(); ok {
				return d, true
			}
		}
	}
	return nil, false
}
