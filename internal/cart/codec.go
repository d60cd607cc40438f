package cart

import (
	"encoding/json"
	"fmt"
)

// Encode renders the cart as a JSON array, preserving order.
func Encode(cart []Product) (string, error) {
	if cart == nil {
		cart = []Product{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a stored cart. Anything that would break the cart
// invariants (duplicate ids, non-positive amounts) is ErrMalformedCart.
func Decode(raw string) ([]Product, error) {
	var cart []Product
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	seen := make(map[int]struct{}, len(cart))
	for _, p := range cart {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedCart, p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Amount < 1 {
			return nil, fmt.Errorf("%w: id %d has amount %d", ErrMalformedCart, p.ID, p.Amount)
		}
	}

	if cart == nil {
		cart = []Product{}
	}
	return cart, nil
}
