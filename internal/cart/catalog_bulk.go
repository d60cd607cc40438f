package cart

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Lister is the collection side of the catalog service.
type Lister interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListStock(ctx context.Context) ([]Stock, error)
}

// BulkCatalog fetches whole collections and filters them locally.
// Collections are refetched once they are older than TTL; a zero TTL
// refetches on every lookup.
type BulkCatalog struct {
	Source Lister
	TTL    time.Duration

	mu        sync.Mutex
	now       func() time.Time
	fetchedAt time.Time
	products  []Product
	stock     []Stock
}

func NewBulkCatalog(src Lister, ttl time.Duration) *BulkCatalog {
	return &BulkCatalog{Source: src, TTL: ttl, now: time.Now}
}

func (b *BulkCatalog) Product(ctx context.Context, id int) (Product, error) {
	products, _, err := b.snapshot(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			p.Amount = 0
			return p, nil
		}
	}
	return Product{}, ErrCatalogNotFound
}

func (b *BulkCatalog) Stock(ctx context.Context, id int) (Stock, error) {
	_, stock, err := b.snapshot(ctx)
	if err != nil {
		return Stock{}, err
	}
	for _, st := range stock {
		if st.ID == id {
			return st, nil
		}
	}
	return Stock{}, ErrCatalogNotFound
}

// Refresh loads both collections concurrently and replaces the cached copy
// only when both succeed.
func (b *BulkCatalog) Refresh(ctx context.Context) error {
	var (
		products []Product
		stock    []Stock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = b.Source.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = b.Source.ListStock(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.products, b.stock = products, stock
	b.fetchedAt = b.clock()
	return nil
}

func (b *BulkCatalog) snapshot(ctx context.Context) ([]Product, []Stock, error) {
	b.mu.Lock()
	fresh := !b.fetchedAt.IsZero() && b.TTL > 0 && b.clock().Sub(b.fetchedAt) < b.TTL
	products, stock := b.products, b.stock
	b.mu.Unlock()

	if fresh {
		return products, stock, nil
	}
	if err := b.Refresh(ctx); err != nil {
		return nil, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products, b.stock, nil
}

func (b *BulkCatalog) clock() time.Time {
	if b.now == nil {
		return time.Now()
	}
	return b.now()
}
