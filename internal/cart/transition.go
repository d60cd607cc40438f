package cart

import "fmt"

// Intent is a side effect a Transition asks its executor to perform.
type Intent interface {
	isIntent()
}

// Persist asks for Cart to be written to the storage slot.
type Persist struct {
	Cart []Product
}

// Notify asks for a notification to be shown.
type Notify struct {
	Notification Notification
}

func (Persist) isIntent() {}
func (Notify) isIntent() {}

// Transition is the outcome of applying one operation to a cart.
// A rejected transition keeps Cart equal to its input and sets Err.
type Transition struct {
	Cart    []Product
	Intents []Intent
	Err     error
}

// Changed reports whether the transition carries a Persist intent.
func (t Transition) Changed() bool {
	for _, in := range t.Intents {
		if _, ok := in.(Persist); ok {
			return true
		}
	}
	return false
}

// Notifications lists the notifications the transition will emit, in order.
func (t Transition) Notifications() []Notification {
	var out []Notification
	for _, in := range t.Intents {
		if n, ok := in.(Notify); ok {
			out = append(out, n.Notification)
		}
	}
	return out
}

// Add puts one more unit of stock.ID in the cart. product is only used when
// the id is not in the cart yet.
func Add(cart []Product, stock Stock, product Product) Transition {
	i := indexOf(cart, stock.ID)

	current := 0
	if i >= 0 {
		current = cart[i].Amount
	}
	if current >= stock.Amount {
		return reject(cart, ErrOutOfStock, MsgOutOfStock)
	}

	next := clone(cart)
	if i >= 0 {
		next[i].Amount++
	} else {
		if product.ID != stock.ID {
			return reject(cart, fmt.Errorf("%w: %d", ErrUnknownProduct, stock.ID), MsgAddFailed)
		}
		product.Amount = 1
		next = append(next, product)
		i = len(next) - 1
	}

	return Transition{
		Cart: next,
		Intents: []Intent{
			Persist{Cart: next},
			Notify{Notification: Info(fmt.Sprintf(MsgAdded, next[i].Title))},
		},
	}
}

// Remove drops the whole entry for id.
func Remove(cart []Product, id int) Transition {
	i := indexOf(cart, id)
	if i < 0 {
		return reject(cart, fmt.Errorf("%w: %d", ErrNotInCart, id), MsgRemoveFailed)
	}

	next := make([]Product, 0, len(cart)-1)
	next = append(next, cart[:i]...)
	next = append(next, cart[i+1:]...)

	return Transition{
		Cart:    next,
		Intents: []Intent{Persist{Cart: next}},
	}
}

// Update sets the quantity of stock.ID to amount. Non-positive amounts are
// a no-op without notification.
func Update(cart []Product, stock Stock, amount int) Transition {
	if amount <= 0 {
		return Transition{Cart: cart}
	}
	if amount > stock.Amount {
		return reject(cart, ErrOutOfStock, MsgOutOfStock)
	}

	i := indexOf(cart, stock.ID)
	if i < 0 {
		return reject(cart, fmt.Errorf("%w: %d", ErrNotInCart, stock.ID), MsgUpdateFailed)
	}

	next := clone(cart)
	next[i].Amount = amount

	return Transition{
		Cart:    next,
		Intents: []Intent{Persist{Cart: next}},
	}
}

// Fail is a rejected transition for failures outside the cart itself
// (lookups, storage).
func Fail(cart []Product, err error, msg string) Transition {
	return reject(cart, err, msg)
}

func reject(cart []Product, err error, msg string) Transition {
	return Transition{
		Cart:    cart,
		Intents: []Intent{Notify{Notification: Error(msg)}},
		Err:     err,
	}
}
