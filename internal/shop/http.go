package shop

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/session"
	"RocketShoes/pkg/kit"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	readyTimeout      = 1 * time.Second
)

// Pinger reports whether cart storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Sessions   *Sessions
	Tokens     *session.TokenMaker
	SessionTTL time.Duration
	Ready      Pinger
	Log        *zap.Logger
}

type sessionResp struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type cartResp struct {
	Cart          []cart.Product      `json:"cart"`
	Notifications []cart.Notification `json:"notifications"`
}

type addReq struct {
	ProductID int `json:"product_id"`
}

type updateReq struct {
	Amount int `json:"amount"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sid := uuid.NewString()

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	tok, err := s.Tokens.New(sid, ttl)
	if err != nil {
		s.logger().Error("session token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, sessionResp{SessionID: sid, Token: tok})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeCart(w, sess)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	sess.Cart.AddProduct(r.Context(), req.ProductID)
	s.writeCart(w, sess)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	sess.Cart.RemoveProduct(r.Context(), id)
	s.writeCart(w, sess)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	sess.Cart.UpdateProductAmount(r.Context(), cart.UpdateAmount{ProductID: id, Amount: req.Amount})
	s.writeCart(w, sess)
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.Inbox.Drain())
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.Ready == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Ready.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sid, ok := SessionIDFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return nil, false
	}

	sess, err := s.Sessions.Open(r.Context(), sid)
	if err != nil {
		s.logger().Warn("open session failed", zap.String("session_id", sid), zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "cart unavailable", nil)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeCart(w http.ResponseWriter, sess *Session) {
	kit.WriteJSON(w, http.StatusOK, cartResp{
		Cart:          sess.Cart.Cart(),
		Notifications: sess.Inbox.Drain(),
	})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
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
