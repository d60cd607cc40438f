package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage keeps every slot in one JSON object on disk. Writes go to a
// temp file in the same directory and are renamed over the original.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, errors.New("file storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	return &FileStorage{path: path}, nil
}

func (s *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (s *FileStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(m)
}

func (s *FileStorage) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

func (s *FileStorage) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: read: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("file storage: decode %s: %w", s.path, err)
	}
	return m, nil
}

func (s *FileStorage) save(m map[string]string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: close: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
