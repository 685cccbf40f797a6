package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FS resolves templates from an fs.FS, typically an embed.FS. Namespaced
// names map to sub-directories: "admin::users/list" reads
// "admin/users/list.mustache".
type FS struct {
	files  fs.FS
	suffix string
}

var _ Resolver = (*FS)(nil)

// NewFS constructs an FS resolver. An empty suffix selects DefaultSuffix.
func NewFS(files fs.FS, suffix string) *FS {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &FS{files: files, suffix: suffix}
}

// Resolve reads the template source for name.
func (r *FS) Resolve(name string) (string, error) {
	if r.files == nil {
		return "", errors.New("resolver: fs is nil")
	}

	file := strings.TrimSpace(name)
	if ns, rest, ok := strings.Cut(file, NamespaceSeparator); ok {
		file = path.Join(ns, rest)
	}
	if !strings.HasSuffix(file, r.suffix) {
		file += r.suffix
	}
	if !fs.ValidPath(file) {
		return "", notFound(name)
	}

	data, err := fs.ReadFile(r.files, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(name)
		}
		return "", fmt.Errorf("resolver: read %q: %w", name, err)
	}
	return string(data), nil
}
