// Package storage persists JSON documents through an afero filesystem so that
// services can run against the OS disk in production and an in-memory
// filesystem in tests.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// ErrPathRequired is returned when a document has no path configured.
var ErrPathRequired = errors.New("storage path not provided")

// JSONFile is a single JSON document on disk.
type JSONFile struct {
	fs   afero.Fs
	path string
}

// NewJSONFile returns a document stored at path on fs. A nil fs means the OS
// filesystem.
func NewJSONFile(fs afero.Fs, path string) *JSONFile {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &JSONFile{fs: fs, path: path}
}

// Path returns the document location.
func (f *JSONFile) Path() string {
	return f.path
}

// Load decodes the document into v. It reports false without error when the
// file does not exist or is empty.
func (f *JSONFile) Load(v any) (bool, error) {
	if f.path == "" {
		return false, ErrPathRequired
	}

	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
	}
	return true, nil
}

// Save writes v to a temp file and renames it over the document so readers
// never observe a partial write.
func (f *JSONFile) Save(v any) error {
	if f.path == "" {
		return ErrPathRequired
	}

	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	name := filepath.Base(f.path)
	tmp := f.path + ".tmp"
	file, err := f.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s temp file: %w", name, err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("close %s temp file: %w", name, err)
	}

	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	return nil
}

// Remove deletes the document. A missing file is not an error.
func (f *JSONFile) Remove() error {
	if f.path == "" {
		return ErrPathRequired
	}
	if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filepath.Base(f.path), err)
	}
	return nil
}
