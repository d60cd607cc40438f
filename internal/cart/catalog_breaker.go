package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// BreakerCatalog fails fast with ErrCatalogUnavailable while the wrapped
// catalog keeps failing. Not-found answers count as successes.
type BreakerCatalog struct {
	next Catalog
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerCatalog(next Catalog, name string, log *zap.Logger) *BreakerCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCatalogNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("catalog breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerCatalog{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerCatalog) Product(ctx context.Context, id int) (Product, error) {
	v, err := b.cb.Execute(func() (any, error) { return b.next.Product(ctx, id) })
	if err != nil {
		return Product{}, breakerErr(err)
	}
	return v.(Product), nil
}

func (b *BreakerCatalog) Stock(ctx context.Context, id int) (Stock, error) {
	v, err := b.cb.Execute(func() (any, error) { return b.next.Stock(ctx, id) })
	if err != nil {
		return Stock{}, breakerErr(err)
	}
	return v.(Stock), nil
}

func (b *BreakerCatalog) State() gobreaker.State { return b.cb.State() }

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return err
}
