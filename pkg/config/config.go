// Package config loads renderer configuration from YAML or JSON documents.
//
//	mustache:
//	  paths:
//	    - templates/
//	    - admin: templates/admin
//	  suffix: .mustache
//	  escaper: html
//	  sanitize: ugc
//	  resolvers:
//	    - type: http
//	      base_url: https://cdn.example.com/templates
//	  default_params:
//	    "*":
//	      site: Example
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the top-level document layout.
type File struct {
	Mustache Config `yaml:"mustache"`
}

// Config describes how to build the engine and the renderer adapter.
type Config struct {
	Paths         Paths                     `yaml:"paths"`
	Suffix        string                    `yaml:"suffix"`
	Separator     string                    `yaml:"separator"`
	Escaper       string                    `yaml:"escaper"`
	Sanitize      string                    `yaml:"sanitize"`
	Cache         *bool                     `yaml:"cache"`
	Debug         bool                      `yaml:"debug"`
	Resolvers     []Resolver                `yaml:"resolvers"`
	DefaultParams map[string]map[string]any `yaml:"default_params"`
	Routes        []Route                   `yaml:"routes"`
}

// Resolver kinds accepted in configuration.
const (
	ResolverNamed = "named"
	ResolverHTTP  = "http"
	ResolverFS    = "fs"
)

// Resolver configures an additional template resolver.
type Resolver struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url"`
	Dir      string `yaml:"dir"`
	Priority *int   `yaml:"priority"`
}

// Route maps an HTTP path to a template.
type Route struct {
	Name     string         `yaml:"name"`
	Path     string         `yaml:"path"`
	Template string         `yaml:"template"`
	Methods  []string       `yaml:"methods"`
	Params   map[string]any `yaml:"params"`
}

// CacheEnabled reports whether parsed templates should be cached. Defaults to
// true when unset.
func (c Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("config: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML (or JSON, which YAML accepts) document and validates
// it.
func Parse(data []byte) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, nil
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := file.Mustache.Validate(); err != nil {
		return Config{}, err
	}
	return file.Mustache, nil
}

// Validate checks enumerations and required fields.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Escaper)) {
	case "", "html", "raw", "none":
	default:
		return fmt.Errorf("config: escaper: unsupported value %q", c.Escaper)
	}
	switch strings.ToLower(strings.TrimSpace(c.Sanitize)) {
	case "", "none", "ugc", "strict":
	default:
		return fmt.Errorf("config: sanitize: unsupported value %q", c.Sanitize)
	}

	for i, r := range c.Resolvers {
		switch strings.ToLower(strings.TrimSpace(r.Type)) {
		case ResolverNamed, "":
			if strings.TrimSpace(r.Name) == "" {
				return fmt.Errorf("config: resolvers[%d]: name is required", i)
			}
		case ResolverHTTP:
			if strings.TrimSpace(r.BaseURL) == "" {
				return fmt.Errorf("config: resolvers[%d]: base_url is required", i)
			}
		case ResolverFS:
			if strings.TrimSpace(r.Dir) == "" {
				return fmt.Errorf("config: resolvers[%d]: dir is required", i)
			}
		default:
			return fmt.Errorf("config: resolvers[%d]: unsupported type %q", i, r.Type)
		}
	}

	for scope, values := range c.DefaultParams {
		if strings.TrimSpace(scope) == "" {
			return errors.New("config: default_params: scope is required")
		}
		for name := range values {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("config: default_params[%q]: parameter name is required", scope)
			}
		}
	}

	seen := make(map[string]struct{}, len(c.Routes))
	for i, route := range c.Routes {
		if strings.TrimSpace(route.Path) == "" || strings.TrimSpace(route.Template) == "" {
			return fmt.Errorf("config: routes[%d]: path and template are required", i)
		}
		if route.Name == "" {
			continue
		}
		if _, dup := seen[route.Name]; dup {
			return fmt.Errorf("config: routes[%d]: duplicate route name %q", i, route.Name)
		}
		seen[route.Name] = struct{}{}
	}
	return nil
}

// DecodeData parses a render data document. JSON is tried first, then YAML;
// the result is always a string keyed map.
func DecodeData(data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}
	out = map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: decode data: invalid JSON or YAML: %w", err)
	}
	return out, nil
}
