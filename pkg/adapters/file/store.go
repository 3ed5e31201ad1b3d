package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/vali/pkg/ports"
)

// Extensions are the definition file extensions recognised, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Store implements ports.SchemeStore using the local filesystem.
// Each scheme is a definition file named after the scheme in BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".vali/schemes".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".vali", "schemes")
	}
	return &Store{BasePath: basePath}
}

// find returns the path of the existing definition file for name.
func (s *Store) find(name string) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(s.BasePath, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Save writes the definition atomically. An existing file keeps its
// extension; new schemes are written as .yaml.
func (s *Store) Save(ctx context.Context, name string, definition []byte) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure scheme directory: %w", err)
	}

	destPath, ok := s.find(name)
	if !ok {
		destPath = filepath.Join(s.BasePath, name+".yaml")
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(definition); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing definition for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the definition file for name.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	path, ok := s.find(name)
	if !ok {
		return nil, ports.ErrSchemeNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrSchemeNotFound
		}
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	return data, nil
}

// Delete removes every definition file for name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	for _, ext := range Extensions {
		err := os.Remove(filepath.Join(s.BasePath, name+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete definition file: %w", err)
		}
	}
	return nil
}

// List returns the names of all definition files, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !recognised(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] && ports.ValidateName(name) == nil {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func recognised(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
