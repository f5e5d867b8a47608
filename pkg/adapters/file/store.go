// Package file serves schema documents from a directory tree.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/value"
	"sigs.k8s.io/yaml"
)

// Store implements ports.SchemaStore using the local filesystem.
//
// A URI is served when it starts with the store's base URI; the rest of the
// URI is the path of the file below the root directory. Files named .yaml or
// .yml hold YAML, all others JSON.
type Store struct {
	root string
	base string
}

type Option func(*Store)

// WithBaseURI maps URIs starting with base onto the root directory instead
// of the default file:// URI of the root.
func WithBaseURI(base string) Option {
	return func(s *Store) {
		s.base = base
	}
}

// New creates a new Store rooted at dir.
// If dir is empty, it defaults to "schemas".
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		dir = "schemas"
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema directory: %w", err)
	}
	s := &Store{root: root, base: URI(root) + "/"}
	for _, opt := range opts {
		opt(s)
	}
	if !strings.HasSuffix(s.base, "/") {
		s.base += "/"
	}
	return s, nil
}

// URI returns the file:// URI of path.
func URI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		// Windows drive letters
		slashed = "/" + slashed
	}
	return "file://" + slashed
}

// Root returns the directory the store serves.
func (s *Store) Root() string { return s.root }

// Base returns the URI prefix the store serves.
func (s *Store) Base() string { return s.base }

func (s *Store) path(uri string) (string, error) {
	rel, ok := strings.CutPrefix(uri, s.base)
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s is outside %s", ports.ErrNotFound, uri, s.base)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s escapes %s", ports.ErrNotFound, uri, s.base)
	}
	return filepath.Join(s.root, clean), nil
}

// Resolve reads and parses the document at uri.
func (s *Store) Resolve(ctx context.Context, uri string) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}
	path, err := s.path(uri)
	if err != nil {
		return value.Value{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return value.Value{}, fmt.Errorf("%w: %s", ports.ErrNotFound, uri)
		}
		return value.Value{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	if isYAML(path) {
		return value.ParseYAML(data)
	}
	return value.ParseJSON(data)
}

// Put writes the document atomically: a temporary file in the same
// directory is synced and then renamed over the destination.
func (s *Store) Put(ctx context.Context, uri string, doc value.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	destPath, err := s.path(uri)
	if err != nil {
		return err
	}
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure schema directory: %w", err)
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	if isYAML(destPath) {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return fmt.Errorf("failed to convert schema to YAML: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// Windows cannot rename over an existing file either.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing schema file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Delete removes the document's file.
func (s *Store) Delete(ctx context.Context, uri string) error {
	path, err := s.path(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete schema file: %w", err)
	}
	return nil
}

// List returns the URIs of every file below the root, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var uris []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		uris = append(uris, s.base+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list schema directory: %w", err)
	}
	slices.Sort(uris)
	return uris, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

var _ ports.SchemaStore = (*Store)(nil)
