package cart

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opLoad   = "load"

	outcomeOK             = "ok"
	outcomeNoop           = "noop"
	outcomeOutOfStock     = "out_of_stock"
	outcomeNotInCart      = "not_in_cart"
	outcomeUnknownProduct = "unknown_product"
	outcomeFailed         = "failed"
)

type Metrics struct {
	Operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_operations_total",
				Help: "Cart operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
	reg.MustRegister(m.Operations)
	return m
}

func (m *Metrics) observe(op string, t Transition) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome(t)).Inc()
}

func outcome(t Transition) string {
	switch {
	case t.Err == nil && t.Changed():
		return outcomeOK
	case t.Err == nil:
		return outcomeNoop
	case errors.Is(t.Err, ErrOutOfStock):
		return outcomeOutOfStock
	case errors.Is(t.Err, ErrNotInCart):
		return outcomeNotInCart
	case errors.Is(t.Err, ErrUnknownProduct):
		return outcomeUnknownProduct
	default:
		return outcomeFailed
	}
}
