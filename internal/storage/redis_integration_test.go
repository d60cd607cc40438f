//go:build integration
// +build integration

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestRedisStorage_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := NewRedisStorage(addr, 0)
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	key := "test:" + uuid.NewString()
	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, key, `[{"id":1,"amount":2}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || v != `[{"id":1,"amount":2}]` {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
}
