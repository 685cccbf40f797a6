// Package mustachetpl adapts the Mustache engine to the template.TemplateRenderer
// contract, merging registered default parameters into every render call.
package mustachetpl

import (
	"errors"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/goliatone/go-stache/pkg/mustache"
	"github.com/goliatone/go-stache/pkg/mustache/resolver"
	"github.com/goliatone/go-stache/pkg/render/params"
	"github.com/goliatone/go-stache/pkg/render/template"
)

// Engine is the subset of *mustache.Engine the adapter renders through.
type Engine interface {
	Render(name string, data any) (string, error)
	Resolver() *resolver.Aggregate
}

var _ Engine = (*mustache.Engine)(nil)

// Option configures the adapter before construction.
type Option func(*Template)

// WithRegistry shares a defaults registry with other components, such as a
// configuration loader populating defaults ahead of time.
func WithRegistry(registry *params.Registry) Option {
	return func(t *Template) {
		if registry != nil {
			t.registry = registry
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Template satisfies template.TemplateRenderer on top of a Mustache engine.
type Template struct {
	engine   Engine
	resolver *resolver.Default
	registry *params.Registry
	merger   *params.Merger
	logger   log.Logger
}

// Ensure Template implements the TemplateRenderer interface.
var _ template.TemplateRenderer = (*Template)(nil)

// New wraps engine. Path bookkeeping goes through the first resolver.Default
// found in the engine's aggregate; when there is none, a fresh one is
// attached at priority 0 so it runs after every configured resolver.
func New(engine Engine, options ...Option) (*Template, error) {
	if engine == nil {
		return nil, errors.New("mustachetpl: engine is required")
	}
	agg := engine.Resolver()
	if agg == nil {
		return nil, errors.New("mustachetpl: engine has no resolver")
	}

	t := &Template{engine: engine}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.NewLogger()
	}
	if t.registry == nil {
		t.registry = params.NewRegistry()
	}
	t.merger = params.NewMerger(t.registry)

	if def, ok := agg.Default(); ok {
		t.resolver = def
	} else {
		t.resolver = resolver.NewDefault()
		agg.AttachWithPriority(t.resolver, 0)
		t.logger.Debugf("mustachetpl: attached default resolver")
	}
	return t, nil
}

// Render merges defaults into data and renders the named template. Engine
// errors are returned wrapped.
func (t *Template) Render(name string, data any) (string, error) {
	merged := t.merger.Resolve(name, data)
	out, err := t.engine.Render(name, merged)
	if err != nil {
		return "", fmt.Errorf("mustachetpl: %w", err)
	}
	return out, nil
}

// AddPath registers a search path on the default resolver. Invalid paths are
// logged and ignored.
func (t *Template) AddPath(path, namespace string) {
	if err := t.resolver.AddTemplatePath(path, namespace); err != nil {
		t.logger.Warnf("mustachetpl: add path %q: %s", path, err)
	}
}

// Paths lists every search path of the default resolver. Paths of the default
// namespace carry an empty Namespace.
func (t *Template) Paths() []template.TemplatePath {
	var out []template.TemplatePath
	for _, namespace := range t.resolver.Namespaces() {
		reported := namespace
		if namespace == resolver.DefaultNamespace {
			reported = ""
		}
		for _, path := range t.resolver.TemplatePaths(namespace) {
			out = append(out, template.TemplatePath{Path: path, Namespace: reported})
		}
	}
	return out
}

// AddDefaultParam registers a default for templateName, or for every template
// when templateName is template.TemplateAll.
func (t *Template) AddDefaultParam(templateName, param string, value any) error {
	if err := t.registry.Add(templateName, param, value); err != nil {
		return fmt.Errorf("mustachetpl: %w", err)
	}
	return nil
}

// AttachParamListener adds a merge strategy. The most recently attached
// strategy is consulted first; returning nil hands over to the next one.
func (t *Template) AttachParamListener(s params.Strategy) {
	t.merger.Attach(s)
}

// DefaultResolver exposes the resolver used for path bookkeeping.
func (t *Template) DefaultResolver() *resolver.Default {
	return t.resolver
}

// Registry exposes the defaults registry.
func (t *Template) Registry() *params.Registry {
	return t.registry
}
