package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Info(msg string) Notification { return Notification{Level: LevelInfo, Message: msg} }
func Error(msg string) Notification { return Notification{Level: LevelError, Message: msg} }

// Notifier is a one-way channel for user-facing messages.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Fanout delivers every notification to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, nt := range f {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) {
	if l.Log == nil {
		return
	}
	switch n.Level {
	case LevelError:
		l.Log.Warn("notification", zap.String("level", string(n.Level)), zap.String("message", n.Message))
	default:
		l.Log.Info("notification", zap.String("level", string(n.Level)), zap.String("message", n.Message))
	}
}

const defaultInboxSize = 64

// Inbox buffers notifications until the page drains them. When full the
// oldest entries are dropped.
type Inbox struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewInbox(max int) *Inbox {
	if max <= 0 {
		max = defaultInboxSize
	}
	return &Inbox{max: max}
}

func (b *Inbox) Notify(_ context.Context, n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, n)
	if over := len(b.items) - b.max; over > 0 {
		b.items = append(b.items[:0:0], b.items[over:]...)
	}
}

// Drain returns the buffered notifications oldest first and empties the inbox.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.items
	b.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
