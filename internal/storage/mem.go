package storage

import (
	"context"
	"sync"
)

type MemStorage struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{m: map[string]string{}}
}

func (s *MemStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStorage) Ping(context.Context) error { return nil }
