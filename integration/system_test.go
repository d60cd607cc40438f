//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartItem struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Amount int    `json:"amount"`
}

type cartResp struct {
	Cart          []cartItem `json:"cart"`
	Notifications []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notifications"`
}

func TestSystem_E2E_CartSurvivesRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var sess struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/session", "", nil, &sess, 201)
	if sess.Token == "" {
		t.Fatalf("empty token")
	}

	var stock []struct {
		ID     int `json:"id"`
		Amount int `json:"amount"`
	}
	doJSON(t, http.MethodGet, baseURL+"/stock", "", nil, &stock, 200)

	pid := 0
	for _, s := range stock {
		if s.Amount > 0 {
			pid = s.ID
			break
		}
	}
	if pid == 0 {
		t.Fatalf("no product in stock: %#v", stock)
	}

	var got cartResp
	doJSON(t, http.MethodPost, baseURL+"/cart/items", sess.Token, map[string]any{"product_id": pid}, &got, 200)
	if len(got.Cart) != 1 || got.Cart[0].Amount != 1 {
		t.Fatalf("cart after add: %#v", got)
	}

	if os.Getenv("E2E_RESTART_SHOP") == "1" {
		restartShop(t, ctx, sess.Token)
	}

	doJSON(t, http.MethodGet, baseURL+"/cart", sess.Token, nil, &got, 200)
	if len(got.Cart) != 1 || got.Cart[0].ID != pid {
		t.Fatalf("cart after reload: %#v", got.Cart)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s: status=%d want=%d", fmt.Sprintf("%s %s", method, url), resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
