// Package factory builds a ready to use Mustache renderer adapter from
// configuration.
package factory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/mustache"
	"github.com/goliatone/go-stache/pkg/mustache/resolver"
	"github.com/goliatone/go-stache/pkg/render/template"
	"github.com/goliatone/go-stache/pkg/render/template/mustachetpl"
	"github.com/goliatone/go-stache/pkg/urihelper"
)

// URIParam is the default parameter the URL helper is registered under.
const URIParam = "uri"

// Option customises construction.
type Option func(*builder)

type builder struct {
	generator urihelper.Generator
	resolvers map[string]resolver.Resolver
	logger    log.Logger
	engine    []mustache.Option
}

// WithURLGenerator enables the {{#uri}} section helper backed by gen.
func WithURLGenerator(gen urihelper.Generator) Option {
	return func(b *builder) {
		b.generator = gen
	}
}

// WithResolver makes r available to configuration entries of type "named"
// under name.
func WithResolver(name string, r resolver.Resolver) Option {
	return func(b *builder) {
		if b.resolvers == nil {
			b.resolvers = make(map[string]resolver.Resolver)
		}
		b.resolvers[strings.TrimSpace(name)] = r
	}
}

// WithLogger sets the logger shared by the engine, the adapter and HTTP
// resolvers.
func WithLogger(logger log.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithEngineOptions appends raw engine options, applied after the ones derived
// from configuration.
func WithEngineOptions(options ...mustache.Option) Option {
	return func(b *builder) {
		b.engine = append(b.engine, options...)
	}
}

// New builds an engine and adapter from cfg. Without any configuration the
// result renders from an empty default resolver with HTML escaping.
func New(cfg config.Config, options ...Option) (*mustachetpl.Template, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.NewLogger()
	}
	if cfg.Debug {
		b.logger.EnableDebugLog(true)
	}

	agg, err := b.aggregate(cfg)
	if err != nil {
		return nil, err
	}

	escaping, err := mustache.ParseEscaping(cfg.Escaper)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}
	engineOptions := []mustache.Option{
		mustache.WithResolver(agg),
		mustache.WithEscaping(escaping),
		mustache.WithCache(cfg.CacheEnabled()),
		mustache.WithLogger(b.logger),
	}
	if policy := sanitizer(cfg.Sanitize); policy != nil {
		engineOptions = append(engineOptions, mustache.WithSanitizer(policy))
	}
	engine := mustache.New(append(engineOptions, b.engine...)...)

	tpl, err := mustachetpl.New(engine, mustachetpl.WithLogger(b.logger))
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}

	def := tpl.DefaultResolver()
	if cfg.Suffix != "" {
		def.SetSuffix(cfg.Suffix)
	}
	if cfg.Separator != "" {
		def.SetSeparator(cfg.Separator)
	}
	for _, entry := range cfg.Paths {
		if err := def.AddTemplatePath(entry.Path, entry.Namespace); err != nil {
			return nil, fmt.Errorf("factory: paths: %w", err)
		}
	}

	if err := addDefaults(tpl, cfg.DefaultParams); err != nil {
		return nil, err
	}

	if b.generator != nil {
		helper, err := urihelper.New(b.generator)
		if err != nil {
			return nil, fmt.Errorf("factory: %w", err)
		}
		if err := tpl.AddDefaultParam(template.TemplateAll, URIParam, helper.Lambda()); err != nil {
			return nil, fmt.Errorf("factory: %w", err)
		}
	}

	b.logger.Debugf("factory: renderer ready with %d resolvers and %d paths", agg.Len(), len(cfg.Paths))
	return tpl, nil
}

func (b *builder) aggregate(cfg config.Config) (*resolver.Aggregate, error) {
	agg := resolver.NewAggregate()
	for i, rc := range cfg.Resolvers {
		r, err := b.resolver(cfg, rc)
		if err != nil {
			return nil, fmt.Errorf("factory: resolvers[%d]: %w", i, err)
		}
		priority := resolver.DefaultPriority
		if rc.Priority != nil {
			priority = *rc.Priority
		}
		agg.AttachWithPriority(r, priority)
	}
	return agg, nil
}

func (b *builder) resolver(cfg config.Config, rc config.Resolver) (resolver.Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(rc.Type)) {
	case config.ResolverHTTP:
		return resolver.NewHTTP(rc.BaseURL,
			resolver.WithHTTPSuffix(cfg.Suffix),
			resolver.WithHTTPLogger(b.logger),
		)
	case config.ResolverFS:
		return resolver.NewFS(os.DirFS(rc.Dir), cfg.Suffix), nil
	default:
		r, ok := b.resolvers[strings.TrimSpace(rc.Name)]
		if !ok || r == nil {
			return nil, fmt.Errorf("named resolver %q was not provided", rc.Name)
		}
		return r, nil
	}
}

func addDefaults(tpl *mustachetpl.Template, defaults map[string]map[string]any) error {
	scopes := make([]string, 0, len(defaults))
	for scope := range defaults {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	for _, scope := range scopes {
		for name, value := range defaults[scope] {
			if err := tpl.AddDefaultParam(scope, name, value); err != nil {
				return fmt.Errorf("factory: default_params[%q]: %w", scope, err)
			}
		}
	}
	return nil
}

func sanitizer(mode string) *bluemonday.Policy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "ugc":
		return bluemonday.UGCPolicy()
	case "strict":
		return bluemonday.StrictPolicy()
	default:
		return nil
	}
}
