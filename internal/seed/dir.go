// Package seed reads and writes family snapshots kept as YAML tables in a
// directory, and re-imports them when the files change.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a seed directory on the local file system.
type Dir struct {
	root string // absolute path
}

// NewDir creates a Dir rooted at the given directory, which must exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("seed: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("seed: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute path of the directory.
func (d *Dir) Root() string { return d.root }

// safePath resolves a table file name and rejects anything that is not a
// plain file directly under the root.
func (d *Dir) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("seed: invalid table file name: %s", name)
	}
	return filepath.Join(d.root, cleaned), nil
}

// List returns the names of the .yaml files in the directory.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("seed: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isTableFile(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Exists reports whether the named table file is present.
func (d *Dir) Exists(name string) bool {
	abs, err := d.safePath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Read returns the raw bytes of the named table file.
func (d *Dir) Read(name string) ([]byte, error) {
	abs, err := d.safePath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// Write atomically replaces the named table file.
func (d *Dir) Write(name string, content []byte) error {
	abs, err := d.safePath(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("seed: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("seed: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("seed: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("seed: rename: %w", err)
	}
	return nil
}

// Remove deletes the named table file; a missing file is not an error.
func (d *Dir) Remove(name string) error {
	abs, err := d.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("seed: remove %s: %w", name, err)
	}
	return nil
}

func isTableFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") && !strings.HasPrefix(name, ".")
}
