// Package storage holds the named string slots a storefront page keeps
// between sessions, the server-side counterpart of browser local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

type Storage interface {
	// Get returns the slot value and whether the slot exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the slot.
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend string

	// file
	Path string

	// redis
	RedisAddr string
	RedisDB   int

	// postgres
	DatabaseURL string
}

// Open builds the backend named by cfg.Backend. The returned close func
// releases any connection the backend holds.
func Open(ctx context.Context, cfg Config) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemStorage(), noop, nil
	case BackendFile:
		s, err := NewFileStorage(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case BackendRedis:
		s := NewRedisStorage(cfg.RedisAddr, cfg.RedisDB)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}
		return s, s.Close, nil
	case BackendPostgres:
		s, err := OpenPostgresStorage(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
