//go:build integration
// +build integration

package integration

import (
	"context"
	"net/http"
	"os/exec"
	"testing"
	"time"
)

// restartShop restarts the shop container and blocks until it serves the
// session's cart again. A fresh process answers 503 for a cart until its
// storage backend is reachable, so readiness alone is not enough.
func restartShop(t *testing.T, ctx context.Context, token string) {
	t.Helper()

	service := getenv("E2E_SHOP_SERVICE", "shop")
	out, err := exec.CommandContext(ctx, "docker", "compose", "restart", service).CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart %s: %v\n%s", service, err, out)
	}

	waitReady(t, ctx, baseURL+"/readyz")
	waitCart(t, ctx, token)
}

func waitCart(t *testing.T, ctx context.Context, token string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	last := 0
	for ctx.Err() == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/cart", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err == nil {
			last = resp.StatusCode
			_ = resp.Body.Close()
			if last == http.StatusOK {
				return
			}
			if last != http.StatusServiceUnavailable {
				t.Fatalf("cart after restart: status=%d", last)
			}
		}

		select {
		case <-ctx.Done():
		case <-time.After(250 * time.Millisecond):
		}
	}
	t.Fatalf("cart not served after restart, last status=%d", last)
}
