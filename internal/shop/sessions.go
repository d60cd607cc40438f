package shop

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"RocketShoes/internal/cart"
)

const (
	defaultIdleTTL     = 30 * time.Minute
	defaultLoadTimeout = 2 * time.Second
)

// ErrCartUnavailable means the stored cart could not be read.
var ErrCartUnavailable = errors.New("cart unavailable")

// Session is one shopper's page state: the cart and the notifications
// waiting to be shown.
type Session struct {
	ID    string
	Cart  *cart.Container
	Inbox *cart.Inbox

	lastSeen time.Time
}

// Sessions opens one cart container per session id, on first use. Each
// container's storage slot is "<KeyPrefix>:<session id>".
//
// Containers idle longer than IdleTTL are dropped from memory; the next
// request reloads them from storage.
type Sessions struct {
	Catalog     cart.Catalog
	Storage     cart.Storage
	Log         *zap.Logger
	Metrics     *cart.Metrics
	KeyPrefix   string
	InboxSize   int
	IdleTTL     time.Duration
	LoadTimeout time.Duration

	group singleflight.Group

	mu        sync.Mutex
	m         map[string]*Session
	now       func() time.Time
	lastSweep time.Time
}

// Open returns the session's container, reading its stored cart on first
// use. A failed read is not cached: Open returns ErrCartUnavailable and the
// next call tries again.
func (s *Sessions) Open(ctx context.Context, id string) (*Session, error) {
	if sess := s.lookup(id); sess != nil {
		return sess, nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		if sess := s.lookup(id); sess != nil {
			return sess, nil
		}

		loadTimeout := s.LoadTimeout
		if loadTimeout <= 0 {
			loadTimeout = defaultLoadTimeout
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		sess := s.newSession(lctx, id)
		if !sess.Cart.Loaded() {
			return nil, ErrCartUnavailable
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.m == nil {
			s.m = make(map[string]*Session)
		}
		sess.lastSeen = s.clock()
		s.m[id] = sess
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (s *Sessions) lookup(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)

	sess, ok := s.m[id]
	if !ok {
		return nil
	}
	sess.lastSeen = now
	return sess
}

// sweepLocked drops idle sessions, at most once per idle period.
func (s *Sessions) sweepLocked(now time.Time) {
	ttl := s.idleTTL()
	if now.Sub(s.lastSweep) < ttl {
		return
	}
	s.lastSweep = now

	for id, sess := range s.m {
		if now.Sub(sess.lastSeen) > ttl {
			delete(s.m, id)
		}
	}
}

func (s *Sessions) newSession(ctx context.Context, id string) *Session {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session_id", id))

	inbox := cart.NewInbox(s.InboxSize)
	return &Session{
		ID:    id,
		Inbox: inbox,
		Cart: cart.NewContainer(ctx, cart.Deps{
			Catalog:  s.Catalog,
			Storage:  s.Storage,
			Notifier: cart.Fanout{inbox, cart.LogNotifier{Log: log}},
			Log:      log,
			Metrics:  s.Metrics,
			Key:      s.key(id),
		}),
	}
}

// Len reports how many sessions are open.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Sessions) key(id string) string {
	prefix := s.KeyPrefix
	if prefix == "" {
		prefix = cart.DefaultKey
	}
	return prefix + ":" + id
}

func (s *Sessions) idleTTL() time.Duration {
	if s.IdleTTL <= 0 {
		return defaultIdleTTL
	}
	return s.IdleTTL
}

func (s *Sessions) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
