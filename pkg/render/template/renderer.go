package template

import (
	"github.com/goliatone/go-stache/pkg/render/params"
)

// TemplateAll is the template name used to register defaults shared by every
// template.
const TemplateAll = params.ScopeAll

// TemplateRenderer is the seam applications render through. Adapters wrap a
// concrete engine and merge registered defaults into the supplied parameters
// before delegating.
type TemplateRenderer interface {
	// Render renders the named template. params is usually a map[string]any
	// or a view model pointer; other values are passed through unchanged.
	Render(name string, params any) (string, error)
	// AddPath registers a search path, optionally scoped to a namespace.
	// An empty namespace targets the default namespace.
	AddPath(path, namespace string)
	// Paths lists every registered search path.
	Paths() []TemplatePath
	// AddDefaultParam registers a default for templateName, or for every
	// template when templateName is TemplateAll.
	AddDefaultParam(templateName, param string, value any) error
}

// TemplatePath pairs a search path with the namespace it was registered
// under. Namespace is empty for the default namespace.
type TemplatePath struct {
	Path      string
	Namespace string
}

// String returns the path.
func (p TemplatePath) String() string {
	return p.Path
}
