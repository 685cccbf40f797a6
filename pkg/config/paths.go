package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathEntry is a search path and the namespace it belongs to. Namespace is
// empty for the default namespace.
type PathEntry struct {
	Namespace string
	Path      string
}

// Paths lists template search paths in declaration order. It accepts a
// single path, a sequence of paths and/or {namespace: path(s)} mappings, or a
// mapping of namespace to path(s). Numeric mapping keys select the default
// namespace.
type Paths []PathEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Paths) UnmarshalYAML(value *yaml.Node) error {
	var out Paths
	if err := collectPaths(value, "", &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Namespaced groups paths by namespace, keeping declaration order.
func (p Paths) Namespaced() map[string][]string {
	out := make(map[string][]string)
	for _, entry := range p {
		out[entry.Namespace] = append(out[entry.Namespace], entry.Path)
	}
	return out
}

func collectPaths(node *yaml.Node, namespace string, out *Paths) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		path := strings.TrimSpace(node.Value)
		if path == "" {
			return fmt.Errorf("config: paths: empty path at line %d", node.Line)
		}
		*out = append(*out, PathEntry{Namespace: namespace, Path: path})
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.SequenceNode {
				return fmt.Errorf("config: paths: nested sequences are not supported (line %d)", item.Line)
			}
			if item.Kind == yaml.MappingNode && namespace != "" {
				return fmt.Errorf("config: paths: namespace %q cannot nest mappings (line %d)", namespace, item.Line)
			}
			if err := collectPaths(item, namespace, out); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		if namespace != "" {
			return fmt.Errorf("config: paths: namespace %q cannot nest mappings (line %d)", namespace, node.Line)
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := strings.TrimSpace(node.Content[i].Value)
			if _, err := strconv.Atoi(key); err == nil {
				key = ""
			}
			if key != "" && node.Content[i+1].Kind == yaml.MappingNode {
				return fmt.Errorf("config: paths: namespace %q cannot nest mappings (line %d)", key, node.Content[i+1].Line)
			}
			if err := collectPaths(node.Content[i+1], key, out); err != nil {
				return err
			}
		}
		return nil
	case yaml.AliasNode:
		return collectPaths(node.Alias, namespace, out)
	default:
		return fmt.Errorf("config: paths: unsupported node at line %d", node.Line)
	}
}
