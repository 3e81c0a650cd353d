package pack

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a directory-backed store: one file per asset table.
type Dir struct {
	root string
}

// NewDir returns a store rooted at the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// ReadTable reads the named table file.
// It may return an ErrNotFound error.
func (d *Dir) ReadTable(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(d.root, name))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	} else if err != nil {
		return "", fmt.Errorf("pack: read %q: %w", name, err)
	}
	return string(b), nil
}

// WriteTable writes the named table file.
func (d *Dir) WriteTable(name, text string) error {
	path := filepath.Join(d.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pack: write %q: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("pack: write %q: %w", name, err)
	}
	return nil
}

// Exists reports whether the named table file is present.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(d.root, name))
	return err == nil
}
