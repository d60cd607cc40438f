package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products map[int]Product
	stock    map[int]Stock
}

func NewMemStore() *MemStore {
	return &MemStore{
		products: map[int]Product{},
		stock:    map[int]Stock{},
	}
}

// NewSeededStore returns a MemStore with the demo storefront inventory.
func NewSeededStore() *MemStore {
	s := NewMemStore()
	seed := []struct {
		p      Product
		amount int
	}{
		{Product{ID: 1, Title: "Lightweight Walking Sneaker", Price: 179.9, Image: "https://cdn.rocketshoes.dev/img/tenis1.jpg"}, 3},
		{Product{ID: 2, Title: "Leather Detail Walking Shoe", Price: 139.9, Image: "https://cdn.rocketshoes.dev/img/tenis2.jpg"}, 5},
		{Product{ID: 3, Title: "Duramo Lite 2.0 Runner", Price: 219.9, Image: "https://cdn.rocketshoes.dev/img/tenis3.jpg"}, 2},
		{Product{ID: 4, Title: "Canvas Low Top", Price: 99.9, Image: "https://cdn.rocketshoes.dev/img/tenis4.jpg"}, 1},
		{Product{ID: 5, Title: "Trail Runner GTX", Price: 299.9, Image: "https://cdn.rocketshoes.dev/img/tenis5.jpg"}, 5},
		{Product{ID: 6, Title: "Court Classic", Price: 249.9, Image: "https://cdn.rocketshoes.dev/img/tenis6.jpg"}, 0},
	}
	for _, it := range seed {
		s.Put(it.p, it.amount)
	}
	return s
}

// Put inserts or replaces a product together with its stock level.
func (s *MemStore) Put(p Product, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.stock[p.ID] = Stock{ID: p.ID, Amount: amount}
}

// SetStock changes only the stock level; the product need not exist.
func (s *MemStore) SetStock(id, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = Stock{ID: id, Amount: amount}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetProduct(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) ListStock(ctx context.Context) ([]Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Stock, 0, len(s.stock))
	for _, st := range s.stock {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetStock(ctx context.Context, id int) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stock[id]
	return st, ok, nil
}
