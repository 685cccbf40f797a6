// Package template defines the engine-agnostic renderer contract consumed by
// applications: render a named template, manage search paths and register
// default parameters. Engine adapters live in sub-packages.
package template
