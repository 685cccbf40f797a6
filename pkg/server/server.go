// Package server exposes configured routes over HTTP, rendering one template
// per route. Routes are named so templates can link to each other through the
// {{#uri}} section helper.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/urfave/negroni"

	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/factory"
	"github.com/goliatone/go-stache/pkg/mustache/resolver"
	"github.com/goliatone/go-stache/pkg/render/template/mustachetpl"
	"github.com/goliatone/go-stache/pkg/urihelper"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Option customises the server.
type Option func(*Server)

// WithLogger sets the logger used by the server and the renderer it builds.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCORS overrides the CORS policy.
func WithCORS(options cors.Options) Option {
	return func(s *Server) {
		s.cors = options
	}
}

// WithFactoryOptions forwards options to factory.New, for example named
// resolvers referenced by the configuration.
func WithFactoryOptions(options ...factory.Option) Option {
	return func(s *Server) {
		s.factory = append(s.factory, options...)
	}
}

// Server pairs the route table with the renderer and middleware chain.
type Server struct {
	router   *mux.Router
	handler  *negroni.Negroni
	renderer *mustachetpl.Template
	logger   log.Logger
	cors     cors.Options
	factory  []factory.Option
}

// New registers cfg.Routes and builds a renderer whose uri helper generates
// URLs from the same router.
func New(cfg config.Config, options ...Option) (*Server, error) {
	s := &Server{
		router: mux.NewRouter(),
		cors: cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Origin", "Accept", "Accept-Language"},
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewLogger()
	}

	for _, route := range cfg.Routes {
		methods := route.Methods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodHead}
		}
		r := s.router.Handle(route.Path, s.renderRoute(route)).Methods(upper(methods)...)
		if route.Name != "" {
			r.Name(route.Name)
		}
	}

	factoryOptions := append([]factory.Option{
		factory.WithURLGenerator(urihelper.NewMuxGenerator(s.router)),
		factory.WithLogger(s.logger),
	}, s.factory...)
	renderer, err := factory.New(cfg, factoryOptions...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.renderer = renderer

	recovery := negroni.NewRecovery()
	recovery.PrintStack = cfg.Debug
	n := negroni.New()
	n.Use(recovery)
	n.Use(negroni.NewLogger())
	n.Use(cors.New(s.cors))
	n.UseHandler(s.router)
	s.handler = n

	s.logger.Debugf("server: registered %d routes", len(cfg.Routes))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Renderer exposes the renderer backing every route.
func (s *Server) Renderer() *mustachetpl.Template {
	return s.renderer
}

// renderRoute builds the handler for route. Data is layered from the route's
// configured params, then query values, then path variables. Query values
// never shadow section helpers: URIParam and any default registered as a
// function for the route's template are skipped.
func (s *Server) renderRoute(route config.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := make(map[string]any, len(route.Params))
		for key, value := range route.Params {
			data[key] = value
		}
		reserved := s.reservedParams(route.Template)
		for key, values := range r.URL.Query() {
			if _, skip := reserved[key]; skip {
				continue
			}
			if len(values) > 0 {
				data[key] = values[0]
			}
		}
		for key, value := range mux.Vars(r) {
			data[key] = value
		}

		out, err := s.renderer.Render(route.Template, data)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, resolver.ErrNotFound) {
				status = http.StatusNotFound
			}
			s.logger.Errorf("server: render %s for %s: %s", route.Template, r.URL.Path, err)
			http.Error(w, http.StatusText(status), status)
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(out))
		}
	})
}

// reservedParams lists the parameter names request input may not override.
func (s *Server) reservedParams(templateName string) map[string]struct{} {
	reserved := map[string]struct{}{factory.URIParam: {}}
	for key, value := range s.renderer.Registry().Defaults(templateName) {
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
			reserved[key] = struct{}{}
		}
	}
	return reserved
}

func upper(methods []string) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, strings.ToUpper(strings.TrimSpace(m)))
	}
	return out
}
