package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/session"
	"RocketShoes/internal/shop"
	"RocketShoes/internal/storage"
	"RocketShoes/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "shop"
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	catalogURL := getenv("CATALOG_URL", "http://localhost:8082")

	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < 32 {
		log.Fatal("SESSION_SECRET is required and must be at least 32 chars")
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "720h"))
	if err != nil {
		log.Fatal("invalid SESSION_TTL", zap.Error(err))
	}

	idleTTL, err := time.ParseDuration(getenv("SESSION_IDLE_TTL", "30m"))
	if err != nil {
		log.Fatal("invalid SESSION_IDLE_TTL", zap.Error(err))
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, storage.Config{
		Backend:     getenv("STORAGE_BACKEND", storage.BackendMemory),
		Path:        getenv("STORAGE_PATH", "data/storage.json"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisDB:     getenvInt(log, "REDIS_DB", 0),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()

	s := &shop.Server{
		Sessions: &shop.Sessions{
			Catalog:   newCatalog(log, catalogURL, os.Getenv("CATALOG_MODE")),
			Storage:   store,
			Log:       log,
			Metrics:   cart.NewMetrics(reg),
			KeyPrefix: getenv("CART_KEY", cart.DefaultKey),
			IdleTTL:   idleTTL,
		},
		Tokens:     session.NewTokenMaker(secret),
		SessionTTL: ttl,
		Ready:      store,
		Log:        log,
	}

	h, err := shop.NewHandler(s, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		CatalogURL:     catalogURL,
	})
	if err != nil {
		log.Fatal("init shop handler failed", zap.Error(err))
	}

	closeHook := func(context.Context) error { return closeStore() }
	if err := kit.RunHTTPServer(":"+port, h, log, closeHook); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newCatalog(log *zap.Logger, url, mode string) cart.Catalog {
	point := cart.NewHTTPCatalog(url)

	var c cart.Catalog = point
	if mode == "bulk" {
		c = cart.NewBulkCatalog(point, 0)
	}
	log.Info("catalog client", zap.String("url", url), zap.String("mode", mode))
	return cart.NewBreakerCatalog(c, "catalog", log)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(log *zap.Logger, k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("invalid integer env, using default", zap.String("key", k), zap.Int("default", def))
		return def
	}
	return n
}
