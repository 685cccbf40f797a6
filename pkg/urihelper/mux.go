package urihelper

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gorilla/mux"
)

// ErrRouteNotFound is returned when no route carries the requested name.
var ErrRouteNotFound = errors.New("urihelper: route not found")

// MuxGenerator generates URLs from the named routes of a gorilla/mux router.
type MuxGenerator struct {
	router *mux.Router
}

var _ Generator = (*MuxGenerator)(nil)

// NewMuxGenerator wraps router.
func NewMuxGenerator(router *mux.Router) *MuxGenerator {
	return &MuxGenerator{router: router}
}

// Generate builds the URL of the named route, using options as route
// variables. Missing variables fail with the router's error.
func (g *MuxGenerator) Generate(route string, options map[string]string) (string, error) {
	if g == nil || g.router == nil {
		return "", errors.New("urihelper: router is nil")
	}
	r := g.router.Get(route)
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, route)
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(options)*2)
	for _, key := range keys {
		pairs = append(pairs, key, options[key])
	}

	u, err := r.URL(pairs...)
	if err != nil {
		return "", fmt.Errorf("urihelper: generate %q: %w", route, err)
	}
	return u.String(), nil
}
