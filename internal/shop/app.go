package shop

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// CatalogURL, when set, is proxied under /products and /stock.
	CatalogURL string
}

const (
	sessionLimitPerMin = 10
	limitWindow        = time.Minute
)

func NewHandler(s *Server, deps HTTPDeps) (http.Handler, error) {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	if err := setupCatalogProxy(r, deps); err != nil {
		return nil, err
	}
	setupRoutes(r, s)

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service))

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
}

func setupCatalogProxy(r *chi.Mux, deps HTTPDeps) error {
	if deps.CatalogURL == "" {
		return nil
	}

	p, err := NewReverseProxy(deps.CatalogURL, deps.Log)
	if err != nil {
		return err
	}

	r.Handle("/products", p)
	r.Handle("/products/*", p)
	r.Handle("/stock", p)
	r.Handle("/stock/*", p)
	return nil
}

func setupRoutes(r *chi.Mux, s *Server) {
	sessionLimiter := kit.NewIPRateLimiter(sessionLimitPerMin, limitWindow)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.With(sessionLimiter.Middleware).Post("/session", s.createSession)

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(RequireSession(s.Tokens))
		cr.Get("/", s.getCart)
		cr.Get("/notifications", s.notifications)
		cr.Post("/items", s.addItem)
		cr.Delete("/items/{id}", s.removeItem)
		cr.Patch("/items/{id}", s.updateItem)
	})
}
