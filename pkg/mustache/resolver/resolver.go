// Package resolver locates Mustache template sources by name. Resolvers are
// combined in an Aggregate, which also serves partials to the engine.
package resolver

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when a resolver has no template for a
// name. Aggregates move on to the next resolver only for this error.
var ErrNotFound = errors.New("resolver: template not found")

// Resolver returns the source of the named template.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Func adapts a function to the Resolver interface.
type Func func(name string) (string, error)

// Resolve calls f(name).
func (f Func) Resolve(name string) (string, error) {
	return f(name)
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}
