// Package mustache wraps github.com/cbroglie/mustache behind a small engine
// that resolves templates and partials by name through a resolver.Aggregate.
package mustache

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
	cbmustache "github.com/cbroglie/mustache"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-stache/pkg/mustache/resolver"
	"github.com/goliatone/go-stache/pkg/render/params"
)

// Escaping selects how variable tags are escaped.
type Escaping int

const (
	// EscapeHTML escapes {{var}} output for HTML. It is the default.
	EscapeHTML Escaping = iota
	// EscapeRaw renders every variable unescaped.
	EscapeRaw
)

// ParseEscaping maps configuration values ("html", "raw") to an Escaping.
func ParseEscaping(value string) (Escaping, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "html":
		return EscapeHTML, nil
	case "raw", "none":
		return EscapeRaw, nil
	default:
		return EscapeHTML, fmt.Errorf("mustache: unknown escaper %q", value)
	}
}

// Option configures the engine before construction.
type Option func(*Engine)

// WithResolver replaces the aggregate used to find templates and partials.
func WithResolver(agg *resolver.Aggregate) Option {
	return func(e *Engine) {
		if agg != nil {
			e.resolver = agg
		}
	}
}

// WithEscaping selects the escaping applied to variable tags.
func WithEscaping(mode Escaping) Option {
	return func(e *Engine) {
		e.escaping = mode
	}
}

// WithSanitizer runs every rendered document through policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(e *Engine) {
		e.sanitizer = policy
	}
}

// WithCache toggles caching of parsed templates by name. Enabled by default.
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		e.cache = enabled
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine renders Mustache templates located through a resolver aggregate.
type Engine struct {
	mu        sync.RWMutex
	templates map[string]*cbmustache.Template

	resolver  *resolver.Aggregate
	escaping  Escaping
	sanitizer *bluemonday.Policy
	cache     bool
	logger    log.Logger
}

// New constructs an Engine. Without WithResolver the engine starts with an
// aggregate holding a single, empty resolver.Default.
func New(options ...Option) *Engine {
	e := &Engine{
		templates: make(map[string]*cbmustache.Template),
		cache:     true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = resolver.NewAggregate(resolver.NewDefault())
	}
	if e.logger == nil {
		e.logger = log.NewLogger()
	}
	return e
}

// Resolver exposes the aggregate used for templates and partials.
func (e *Engine) Resolver() *resolver.Aggregate {
	return e.resolver
}

// Render renders the named template with data.
func (e *Engine) Render(name string, data any) (string, error) {
	if e == nil || e.resolver == nil {
		return "", errors.New("mustache: engine is nil")
	}

	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Render(contextStack(data)...)
	if err != nil {
		return "", fmt.Errorf("mustache: render %q: %w", name, err)
	}
	return e.sanitize(out), nil
}

// RenderString parses and renders an inline template. Partials resolve through
// the engine's aggregate.
func (e *Engine) RenderString(source string, data any) (string, error) {
	if e == nil || e.resolver == nil {
		return "", errors.New("mustache: engine is nil")
	}

	tmpl, err := e.parse(source)
	if err != nil {
		return "", fmt.Errorf("mustache: parse template string: %w", err)
	}
	out, err := tmpl.Render(contextStack(data)...)
	if err != nil {
		return "", fmt.Errorf("mustache: render template string: %w", err)
	}
	return e.sanitize(out), nil
}

// Reset drops every cached template.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates = make(map[string]*cbmustache.Template)
}

func (e *Engine) template(name string) (*cbmustache.Template, error) {
	if e.cache {
		e.mu.RLock()
		if tmpl, ok := e.templates[name]; ok {
			e.mu.RUnlock()
			return tmpl, nil
		}
		e.mu.RUnlock()
	}

	source, err := e.resolver.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("mustache: load template %q: %w", name, err)
	}
	tmpl, err := e.parse(source)
	if err != nil {
		return nil, fmt.Errorf("mustache: parse template %q: %w", name, err)
	}
	e.logger.Debugf("mustache: parsed template %s", name)

	if e.cache {
		e.mu.Lock()
		e.templates[name] = tmpl
		e.mu.Unlock()
	}
	return tmpl, nil
}

func (e *Engine) parse(source string) (*cbmustache.Template, error) {
	return cbmustache.ParseStringPartialsRaw(source, e.resolver, e.escaping == EscapeRaw)
}

func (e *Engine) sanitize(out string) string {
	if e.sanitizer == nil {
		return out
	}
	return e.sanitizer.Sanitize(out)
}

// contextStack builds the lookup chain handed to the underlying engine, which
// searches it front to back. View models come before their dynamic properties
// so fields and methods take precedence.
func contextStack(data any) []any {
	if data == nil {
		return nil
	}
	if lister, ok := data.(params.PropertyLister); ok {
		return []any{data, lister.Properties()}
	}
	return []any{data}
}

// Lambda adapts fn to the engine's lambda type so it can be placed in render
// data and invoked for sections such as {{#uri}}...{{/uri}}.
func Lambda(fn func(text string, render func(string) (string, error)) (string, error)) cbmustache.LambdaFunc {
	return func(text string, render cbmustache.RenderFunc) (string, error) {
		return fn(text, render)
	}
}
