package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/stock", s.listStock)
	r.Get("/stock/{id}", s.getStock)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListProducts(r.Context())
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	p, found, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) listStock(w http.ResponseWriter, r *http.Request) {
	stock, err := s.Store.ListStock(r.Context())
	if err != nil {
		s.logger().Error("list stock failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, stock)
}

func (s *Server) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	st, found, err := s.Store.GetStock(r.Context(), id)
	if err != nil {
		s.logger().Error("get stock failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
