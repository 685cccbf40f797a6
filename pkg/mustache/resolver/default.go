package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultNamespace holds paths registered without a namespace.
	DefaultNamespace = "__DEFAULT__"
	// NamespaceSeparator splits "namespace::template" names.
	NamespaceSeparator = "::"
	// DefaultSuffix is appended to template names lacking it.
	DefaultSuffix = ".mustache"
	// DefaultSeparator splits directory segments inside template names.
	DefaultSeparator = "/"
)

// ErrInvalidPath is returned when registering an empty search path.
var ErrInvalidPath = errors.New("resolver: template path is required")

// Default resolves "namespace::name" templates against filesystem search
// paths. Paths are searched most recently added first; a namespaced lookup
// that misses falls back to the default namespace.
type Default struct {
	mu         sync.RWMutex
	paths      map[string][]string
	namespaces []string
	suffix     string
	separator  string
}

var _ Resolver = (*Default)(nil)

// NewDefault constructs a Default resolver with no search paths.
func NewDefault() *Default {
	return &Default{
		paths:     make(map[string][]string),
		suffix:    DefaultSuffix,
		separator: DefaultSeparator,
	}
}

// SetSuffix overrides the template file suffix. Empty values are ignored.
func (d *Default) SetSuffix(suffix string) {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	d.mu.Lock()
	d.suffix = suffix
	d.mu.Unlock()
}

// Suffix returns the template file suffix.
func (d *Default) Suffix() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.suffix
}

// SetSeparator overrides the directory separator used in template names.
// Empty values are ignored.
func (d *Default) SetSeparator(separator string) {
	if separator == "" {
		return
	}
	d.mu.Lock()
	d.separator = separator
	d.mu.Unlock()
}

// Separator returns the directory separator used in template names.
func (d *Default) Separator() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.separator
}

// AddTemplatePath registers a search path. An empty namespace targets
// DefaultNamespace.
func (d *Default) AddTemplatePath(path, namespace string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrInvalidPath
	}
	namespace = normalizeNamespace(namespace)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.paths == nil {
		d.paths = make(map[string][]string)
	}
	if _, ok := d.paths[namespace]; !ok {
		d.namespaces = append(d.namespaces, namespace)
	}
	d.paths[namespace] = append(d.paths[namespace], path)
	return nil
}

// Namespaces lists namespaces holding at least one path, in registration
// order.
func (d *Default) Namespaces() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.namespaces...)
}

// TemplatePaths returns the paths of namespace in search order (most recently
// added first). An empty namespace targets DefaultNamespace.
func (d *Default) TemplatePaths(namespace string) []string {
	namespace = normalizeNamespace(namespace)

	d.mu.RLock()
	defer d.mu.RUnlock()

	registered := d.paths[namespace]
	out := make([]string, 0, len(registered))
	for i := len(registered) - 1; i >= 0; i-- {
		out = append(out, registered[i])
	}
	return out
}

// Resolve reads the template source for name.
func (d *Default) Resolve(name string) (string, error) {
	namespace, file, err := d.locate(name)
	if err != nil {
		return "", err
	}

	candidates := d.TemplatePaths(namespace)
	if namespace != DefaultNamespace {
		candidates = append(candidates, d.TemplatePaths(DefaultNamespace)...)
	}

	for _, dir := range candidates {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err == nil {
			return string(data), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", fmt.Errorf("resolver: read %q: %w", name, err)
	}
	return "", notFound(name)
}

// List walks every search path and returns the template names it can
// resolve, sorted.
func (d *Default) List() ([]string, error) {
	suffix := d.Suffix()
	separator := d.Separator()

	seen := make(map[string]struct{})
	for _, namespace := range d.Namespaces() {
		for _, dir := range d.TemplatePaths(namespace) {
			err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					if errors.Is(walkErr, fs.ErrNotExist) {
						return filepath.SkipDir
					}
					return walkErr
				}
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
					return nil
				}
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				name := strings.Join(strings.Split(filepath.ToSlash(strings.TrimSuffix(rel, suffix)), "/"), separator)
				if namespace != DefaultNamespace {
					name = namespace + NamespaceSeparator + name
				}
				seen[name] = struct{}{}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("resolver: list %q: %w", dir, err)
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Default) locate(name string) (string, string, error) {
	namespace := DefaultNamespace
	template := strings.TrimSpace(name)
	if ns, rest, ok := strings.Cut(template, NamespaceSeparator); ok && ns != "" {
		namespace = ns
		template = rest
	}
	if template == "" {
		return "", "", notFound(name)
	}

	d.mu.RLock()
	suffix, separator := d.suffix, d.separator
	d.mu.RUnlock()

	file := filepath.Join(strings.Split(template, separator)...)
	if !strings.HasSuffix(file, suffix) {
		file += suffix
	}
	if !filepath.IsLocal(file) {
		return "", "", fmt.Errorf("%w: %q escapes the template paths", ErrNotFound, name)
	}
	return namespace, file, nil
}

func normalizeNamespace(namespace string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}
