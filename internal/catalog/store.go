package catalog

import "context"

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Store is the read side of the catalog. Lists are ordered by id.
type Store interface {
	Ping(ctx context.Context) error
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (Product, bool, error)
	ListStock(ctx context.Context) ([]Stock, error)
	GetStock(ctx context.Context, id int) (Stock, bool, error)
}
