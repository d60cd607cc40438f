// Package cart is the storefront cart state container: an ordered product
// list with per-entry quantities, guarded by catalog stock levels and
// mirrored to a storage slot after every accepted change.
package cart

import "errors"

// DefaultKey is the storage slot the cart lives in.
const DefaultKey = "@RocketShoes:cart"

// Product is a catalog item; Amount is only meaningful once it is in the cart.
type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// Stock is the quantity available for one product.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// UpdateAmount sets the cart quantity of ProductID to Amount.
type UpdateAmount struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}

// Reasons an operation is rejected or the stored cart cannot be used.
var (
	ErrOutOfStock     = errors.New("requested quantity exceeds stock")
	ErrNotInCart      = errors.New("product not in cart")
	ErrUnknownProduct = errors.New("unknown product")
	ErrMalformedCart  = errors.New("malformed cart")
	ErrNotLoaded      = errors.New("stored cart not loaded")
)

// User-facing notification texts.
const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAdded        = "%s added to cart"
	MsgAddFailed    = "Failed to add product"
	MsgRemoveFailed = "Failed to remove product"
	MsgUpdateFailed = "Failed to update product quantity"
)

func indexOf(cart []Product, id int) int {
	for i, p := range cart {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(cart []Product) []Product {
	out := make([]Product, len(cart))
	copy(out, cart)
	return out
}
