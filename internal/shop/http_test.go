package shop_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/catalog"
	"RocketShoes/internal/session"
	"RocketShoes/internal/shop"
	"RocketShoes/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type env struct {
	shop    *httptest.Server
	catalog *catalog.MemStore
	store   *storage.MemStorage
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cs := catalog.NewMemStore()
	cs.Put(catalog.Product{ID: 1, Title: "Shoe", Price: 179.9, Image: "shoe.jpg"}, 2)
	cs.Put(catalog.Product{ID: 2, Title: "Boot", Price: 99.9, Image: "boot.jpg"}, 5)

	catalogTS := httptest.NewServer(catalog.NewHandler(&catalog.Server{Store: cs}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	}))
	t.Cleanup(catalogTS.Close)

	st := storage.NewMemStorage()
	reg := prometheus.NewRegistry()

	s := &shop.Server{
		Sessions: &shop.Sessions{
			Catalog: cart.NewHTTPCatalog(catalogTS.URL),
			Storage: st,
			Log:     zap.NewNop(),
			Metrics: cart.NewMetrics(reg),
		},
		Tokens: session.NewTokenMaker(testSecret),
		Ready:  st,
		Log:    zap.NewNop(),
	}

	h, err := shop.NewHandler(s, shop.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "shop",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "m",
		CatalogURL:     catalogTS.URL,
	})
	if err != nil {
		t.Fatalf("shop.NewHandler: %v", err)
	}

	shopTS := httptest.NewServer(h)
	t.Cleanup(shopTS.Close)

	return &env{shop: shopTS, catalog: cs, store: st}
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

type cartBody struct {
	Cart          []cart.Product      `json:"cart"`
	Notifications []cart.Notification `json:"notifications"`
}

func (e *env) newSession(t *testing.T) (string, string) {
	t.Helper()

	resp, raw := doJSON(t, http.MethodPost, e.shop.URL+"/session", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("session status=%d body=%s", resp.StatusCode, raw)
	}
	var out struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if out.SessionID == "" || out.Token == "" {
		t.Fatalf("session=%+v", out)
	}
	return out.SessionID, out.Token
}

func (e *env) cartCall(t *testing.T, method, path, token string, body any) cartBody {
	t.Helper()

	resp, raw := doJSON(t, method, e.shop.URL+path, token, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s status=%d body=%s", method, path, resp.StatusCode, raw)
	}
	var out cartBody
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, raw)
	}
	return out
}

func TestShop_CartFlow(t *testing.T) {
	e := newEnv(t)
	sid, tok := e.newSession(t)

	got := e.cartCall(t, http.MethodGet, "/cart", tok, nil)
	if len(got.Cart) != 0 || len(got.Notifications) != 0 {
		t.Fatalf("initial=%+v", got)
	}

	got = e.cartCall(t, http.MethodPost, "/cart/items", tok, map[string]any{"product_id": 1})
	if len(got.Cart) != 1 || got.Cart[0].Amount != 1 || got.Cart[0].Title != "Shoe" {
		t.Fatalf("after add=%+v", got)
	}
	if len(got.Notifications) != 1 || got.Notifications[0] != cart.Info("Shoe added to cart") {
		t.Fatalf("notes=%+v", got.Notifications)
	}

	e.cartCall(t, http.MethodPost, "/cart/items", tok, map[string]any{"product_id": 1})
	got = e.cartCall(t, http.MethodPost, "/cart/items", tok, map[string]any{"product_id": 1})
	if got.Cart[0].Amount != 2 {
		t.Fatalf("amount=%d", got.Cart[0].Amount)
	}
	if len(got.Notifications) != 1 || got.Notifications[0] != cart.Error(cart.MsgOutOfStock) {
		t.Fatalf("notes=%+v", got.Notifications)
	}

	e.cartCall(t, http.MethodPost, "/cart/items", tok, map[string]any{"product_id": 2})
	got = e.cartCall(t, http.MethodPatch, "/cart/items/2", tok, map[string]any{"amount": 4})
	if got.Cart[1].ID != 2 || got.Cart[1].Amount != 4 {
		t.Fatalf("after update=%+v", got.Cart)
	}

	got = e.cartCall(t, http.MethodPatch, "/cart/items/2", tok, map[string]any{"amount": 0})
	if got.Cart[1].Amount != 4 || len(got.Notifications) != 0 {
		t.Fatalf("noop update=%+v", got)
	}

	got = e.cartCall(t, http.MethodDelete, "/cart/items/1", tok, nil)
	if len(got.Cart) != 1 || got.Cart[0].ID != 2 {
		t.Fatalf("after remove=%+v", got.Cart)
	}

	got = e.cartCall(t, http.MethodDelete, "/cart/items/1", tok, nil)
	if len(got.Notifications) != 1 || got.Notifications[0] != cart.Error(cart.MsgRemoveFailed) {
		t.Fatalf("second remove notes=%+v", got.Notifications)
	}

	raw, ok, err := e.store.Get(context.Background(), cart.DefaultKey+":"+sid)
	if err != nil || !ok {
		t.Fatalf("stored cart missing: ok=%v err=%v", ok, err)
	}
	stored, err := cart.Decode(raw)
	if err != nil {
		t.Fatalf("decode stored: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != 2 || stored[0].Amount != 4 {
		t.Fatalf("stored=%+v", stored)
	}
}

func TestShop_SessionsAreIsolated(t *testing.T) {
	e := newEnv(t)
	_, a := e.newSession(t)
	_, b := e.newSession(t)

	e.cartCall(t, http.MethodPost, "/cart/items", a, map[string]any{"product_id": 2})

	if got := e.cartCall(t, http.MethodGet, "/cart", b, nil); len(got.Cart) != 0 {
		t.Fatalf("session b sees %+v", got.Cart)
	}
}

func TestShop_RequiresSession(t *testing.T) {
	e := newEnv(t)

	resp, raw := doJSON(t, http.MethodGet, e.shop.URL+"/cart", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, http.MethodGet, e.shop.URL+"/cart", "forged", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestShop_BadInput(t *testing.T) {
	e := newEnv(t)
	_, tok := e.newSession(t)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/cart/items", map[string]any{"product_id": "one"}},
		{http.MethodPost, "/cart/items", map[string]any{"sku": 1}},
		{http.MethodDelete, "/cart/items/abc", nil},
		{http.MethodPatch, "/cart/items/abc", map[string]any{"amount": 1}},
	}
	for _, tc := range cases {
		resp, raw := doJSON(t, tc.method, e.shop.URL+tc.path, tok, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s %s status=%d body=%s", tc.method, tc.path, resp.StatusCode, raw)
		}
	}
}

func TestShop_UnknownProductNotifies(t *testing.T) {
	e := newEnv(t)
	_, tok := e.newSession(t)

	got := e.cartCall(t, http.MethodPost, "/cart/items", tok, map[string]any{"product_id": 999})
	if len(got.Cart) != 0 {
		t.Fatalf("cart=%+v", got.Cart)
	}
	if len(got.Notifications) != 1 || got.Notifications[0] != cart.Error(cart.MsgAddFailed) {
		t.Fatalf("notes=%+v", got.Notifications)
	}
}

func TestShop_ProxiesCatalog(t *testing.T) {
	e := newEnv(t)

	resp, raw := doJSON(t, http.MethodGet, e.shop.URL+"/stock/2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
	var st catalog.Stock
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Amount != 5 {
		t.Fatalf("stock=%+v", st)
	}

	resp, _ = doJSON(t, http.MethodGet, e.shop.URL+"/products", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("products status=%d", resp.StatusCode)
	}
}

func TestShop_HealthAndReady(t *testing.T) {
	e := newEnv(t)

	for _, p := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, e.shop.URL+p, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", p, resp.StatusCode)
		}
	}
}

type downStorage struct{ *storage.MemStorage }

func (downStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func TestShop_StorageReadFailureIsUnavailable(t *testing.T) {
	st := downStorage{storage.NewMemStorage()}
	s := &shop.Server{
		Sessions: &shop.Sessions{Storage: st, Log: zap.NewNop()},
		Tokens:   session.NewTokenMaker(testSecret),
		Log:      zap.NewNop(),
	}
	h, err := shop.NewHandler(s, shop.HTTPDeps{Log: zap.NewNop(), Service: "shop"})
	if err != nil {
		t.Fatalf("shop.NewHandler: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	e := &env{shop: ts}
	_, tok := e.newSession(t)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/cart/items", tok, map[string]any{"product_id": 1})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
	if s.Sessions.Len() != 0 {
		t.Fatalf("unreadable session cached")
	}
}
