package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/catalog"
	"RocketShoes/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "catalog"
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8082")

	store, closeStore := openStore(log, os.Getenv("DATABASE_URL"))

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log, closeStore); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(log *zap.Logger, dsn string) (catalog.Store, func(context.Context) error) {
	if dsn == "" {
		log.Info("using in-memory catalog")
		return catalog.NewSeededStore(), func(context.Context) error { return nil }
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}

	store := catalog.NewPostgresStore(db)
	if err := store.Ping(context.Background()); err != nil {
		log.Fatal("database not reachable", zap.Error(err))
	}
	return store, func(context.Context) error { return db.Close() }
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
