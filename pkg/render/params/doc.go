// Package params merges registered default template parameters into the
// variables supplied to a render call.
//
// Defaults live in a Registry keyed by scope: ScopeAll applies to every
// template, any other key applies only to the template with that name.
// Template scoped values override global ones. The combined defaults are
// handed to an ordered chain of strategies; the most recently attached
// strategy is consulted first and the first one returning an accepted value
// (non-nil and not a scalar) wins. When every strategy declines, the supplied
// value is returned untouched.
//
// Two strategies ship with the package. MergeMap handles map[string]any and
// returns a new map where supplied keys win. FillObject handles view models
// implementing Object and grafts missing defaults onto the same instance, so
// callers observe the added properties after the call returns.
package params
