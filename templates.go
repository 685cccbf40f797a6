package stache

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-stache/pkg/mustache/resolver"
)

// BuiltinResolverName is the name configuration uses to reference the
// embedded templates:
//
//	resolvers:
//	  - name: builtin
const BuiltinResolverName = "builtin"

//go:embed templates/*/*.mustache
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in templates ("stache/page.mustache",
// "stache/link.mustache") so callers can reuse or mount them directly.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// BuiltinResolver resolves the embedded templates by namespaced name, such as
// "stache::page".
func BuiltinResolver() *resolver.FS {
	return resolver.NewFS(EmbeddedTemplates(), resolver.DefaultSuffix)
}
