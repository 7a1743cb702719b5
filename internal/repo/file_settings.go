package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileSettings persists settings as a flat YAML mapping. Every Set rewrites
// the whole file through a temp file and rename.
type FileSettings struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

func OpenFileSettings(path string) (*FileSettings, error) {
	s := &FileSettings{path: path, values: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, &StoreError{Driver: "file", Op: "open", Err: err}
	}

	if err := yaml.Unmarshal(raw, &s.values); err != nil {
		return nil, &StoreError{Driver: "file", Op: "open", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

func (s *FileSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileSettings) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value

	if err := s.write(next); err != nil {
		return &StoreError{Driver: "file", Op: "set", Key: key, Err: err}
	}
	s.values = next
	return nil
}

func (s *FileSettings) write(values map[string]string) error {
	b, err := yaml.Marshal(values)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileSettings) Close() error { return nil }
