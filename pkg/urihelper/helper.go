// Package urihelper turns JSON section bodies into router generated URLs.
//
// Compose the helper as the "uri" default parameter and write links as
//
//	<a href="{{#uri}}{"name": "user", "options": {"id": "{{id}}"}}{{/uri}}">profile</a>
//
// Bodies that are not a JSON object with a "name" key are returned verbatim.
package urihelper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	cbmustache "github.com/cbroglie/mustache"

	"github.com/goliatone/go-stache/pkg/mustache"
)

// optionalSegmentArtifact is left behind by some routers when an optional
// trailing slash is not filled in.
const optionalSegmentArtifact = "[/]"

var templateExpr = regexp.MustCompile(`\{\{[^{]+\}\}`)

// Generator builds a URL for a named route.
type Generator interface {
	Generate(route string, options map[string]string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(route string, options map[string]string) (string, error)

// Generate calls f(route, options).
func (f GeneratorFunc) Generate(route string, options map[string]string) (string, error) {
	return f(route, options)
}

// Helper renders {{#uri}} sections.
type Helper struct {
	generator Generator
}

// New constructs a Helper around generator.
func New(generator Generator) (*Helper, error) {
	if generator == nil {
		return nil, errors.New("urihelper: url generator is required")
	}
	return &Helper{generator: generator}, nil
}

// Section decodes text as JSON and, when it is an object holding "name",
// generates the URL for that route. Option values containing {{...}} are
// rendered through render first. Generator errors are returned unchanged.
func (h *Helper) Section(text string, render func(string) (string, error)) (string, error) {
	data, ok := decode(text)
	if !ok {
		return text, nil
	}
	route, ok := data["name"]
	if !ok || route == nil {
		return text, nil
	}

	options, err := parseOptions(data, render)
	if err != nil {
		return "", err
	}

	uri, err := h.generator.Generate(stringify(route), options)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(uri, optionalSegmentArtifact, ""), nil
}

// Lambda returns the helper as an engine lambda, ready to register as a
// default parameter.
func (h *Helper) Lambda() cbmustache.LambdaFunc {
	return mustache.Lambda(h.Section)
}

func decode(text string) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	data, ok := raw.(map[string]any)
	return data, ok
}

func parseOptions(data map[string]any, render func(string) (string, error)) (map[string]string, error) {
	raw, ok := data["options"].(map[string]any)
	if !ok {
		return map[string]string{}, nil
	}

	options := make(map[string]string, len(raw))
	for key, value := range raw {
		str := stringify(value)
		if render != nil && templateExpr.MatchString(str) {
			rendered, err := render(str)
			if err != nil {
				return nil, fmt.Errorf("urihelper: render option %q: %w", key, err)
			}
			str = rendered
		}
		options[key] = str
	}
	return options, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool, map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
