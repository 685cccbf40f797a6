// Package stache renders Mustache templates with layered default parameters.
//
// The quickest start loads a configuration file:
//
//	tpl, err := stache.NewFromFile("stache.yaml")
//	if err != nil {
//		return err
//	}
//	_ = tpl.AddDefaultParam(stache.TemplateAll, "site", "Example")
//	html, err := tpl.Render("blog::post", map[string]any{"title": "Hello"})
package stache

import (
	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/factory"
	"github.com/goliatone/go-stache/pkg/render/params"
	"github.com/goliatone/go-stache/pkg/render/template"
	"github.com/goliatone/go-stache/pkg/render/template/mustachetpl"
)

// TemplateAll registers a default parameter for every template.
const TemplateAll = template.TemplateAll

// Template is the Mustache backed renderer adapter.
type Template = mustachetpl.Template

// Config aliases config.Config for callers building configuration in code.
type Config = config.Config

// Option aliases factory.Option.
type Option = factory.Option

// Strategy aliases params.Strategy for custom default-parameter listeners.
type Strategy = params.Strategy

// StrategyFunc aliases params.StrategyFunc.
type StrategyFunc = params.StrategyFunc

// Props is the embeddable property bag for view models that accept defaults.
type Props = params.Props

// New builds a renderer from cfg. The embedded templates are available to
// configuration as the named resolver BuiltinResolverName.
func New(cfg Config, options ...Option) (*Template, error) {
	all := append([]Option{factory.WithResolver(BuiltinResolverName, BuiltinResolver())}, options...)
	return factory.New(cfg, all...)
}

// NewFromFile loads the configuration file at path and builds a renderer.
func NewFromFile(path string, options ...Option) (*Template, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, options...)
}
