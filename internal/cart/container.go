package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Storage is the named-slot store the cart is mirrored to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Deps struct {
	Catalog  Catalog
	Storage  Storage
	Notifier Notifier
	Log      *zap.Logger
	Metrics  *Metrics

	// Key is the storage slot; empty means DefaultKey.
	Key string
}

// Container owns one shopper's cart. Operations never return errors: every
// outcome, good or bad, is reported through the Notifier, and a rejected
// operation leaves both memory and storage untouched.
//
// Operations on one container are serialized, lookups included. Until the
// stored cart has been read successfully every mutation first retries the
// read and is rejected if it fails again.
type Container struct {
	mu sync.Mutex

	catalog  Catalog
	storage  Storage
	notifier Notifier
	log      *zap.Logger
	metrics  *Metrics
	key      string

	loaded bool
	cart   []Product
}

// NewContainer loads the cart from storage. A missing slot starts empty; a
// malformed one starts empty and is overwritten so storage agrees with memory.
// A failed read leaves the container unloaded; see Loaded.
func NewContainer(ctx context.Context, deps Deps) *Container {
	c := &Container{
		catalog:  deps.Catalog,
		storage:  deps.Storage,
		notifier: deps.Notifier,
		log:      deps.Log,
		metrics:  deps.Metrics,
		key:      deps.Key,
		cart:     []Product{},
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Log: c.log}
	}
	if c.key == "" {
		c.key = DefaultKey
	}

	_ = c.load(ctx)
	return c
}

// Loaded reports whether the stored cart has been read.
func (c *Container) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Load retries reading the stored cart if an earlier read failed.
func (c *Container) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Container) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	raw, ok, err := c.storage.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("cart load failed", zap.String("key", c.key), zap.Error(err))
		c.metrics.observe(opLoad, Transition{Err: err})
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	c.loaded = true
	if !ok {
		return nil
	}

	cart, err := Decode(raw)
	if err != nil {
		c.log.Warn("stored cart discarded", zap.String("key", c.key), zap.Error(err))
		c.metrics.observe(opLoad, Transition{Err: err})
		if err := c.write(ctx, c.cart); err != nil {
			c.log.Warn("cart reset failed", zap.String("key", c.key), zap.Error(err))
		}
		return nil
	}
	c.cart = cart
	return nil
}

// Cart returns a copy of the current list.
func (c *Container) Cart() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.cart)
}

func (c *Container) AddProduct(ctx context.Context, productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recover(ctx, opAdd, productID, MsgAddFailed)

	if err := c.load(ctx); err != nil {
		c.apply(ctx, opAdd, productID, Fail(c.cart, err, MsgAddFailed))
		return
	}

	stock, err := c.catalog.Stock(ctx, productID)
	if err != nil {
		c.apply(ctx, opAdd, productID, Fail(c.cart, lookupErr(err, productID), MsgAddFailed))
		return
	}

	var product Product
	if indexOf(c.cart, productID) < 0 && stock.Amount > 0 {
		product, err = c.catalog.Product(ctx, productID)
		if err != nil {
			c.apply(ctx, opAdd, productID, Fail(c.cart, lookupErr(err, productID), MsgAddFailed))
			return
		}
	}

	c.apply(ctx, opAdd, productID, Add(c.cart, stock, product))
}

func (c *Container) RemoveProduct(ctx context.Context, productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recover(ctx, opRemove, productID, MsgRemoveFailed)

	if err := c.load(ctx); err != nil {
		c.apply(ctx, opRemove, productID, Fail(c.cart, err, MsgRemoveFailed))
		return
	}

	c.apply(ctx, opRemove, productID, Remove(c.cart, productID))
}

func (c *Container) UpdateProductAmount(ctx context.Context, u UpdateAmount) {
	if u.Amount <= 0 {
		c.metrics.observe(opUpdate, Transition{})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recover(ctx, opUpdate, u.ProductID, MsgUpdateFailed)

	if err := c.load(ctx); err != nil {
		c.apply(ctx, opUpdate, u.ProductID, Fail(c.cart, err, MsgUpdateFailed))
		return
	}

	stock, err := c.catalog.Stock(ctx, u.ProductID)
	if err != nil {
		c.apply(ctx, opUpdate, u.ProductID, Fail(c.cart, lookupErr(err, u.ProductID), MsgUpdateFailed))
		return
	}

	c.apply(ctx, opUpdate, u.ProductID, Update(c.cart, stock, u.Amount))
}

// apply executes the transition's intents: persist first, then commit the
// list in memory, then notify. A failed write turns the transition into a
// failure with failMsg.
func (c *Container) apply(ctx context.Context, op string, productID int, t Transition) {
	for _, in := range t.Intents {
		p, ok := in.(Persist)
		if !ok {
			continue
		}
		if err := c.write(ctx, p.Cart); err != nil {
			t = Fail(c.cart, fmt.Errorf("persist cart: %w", err), failMessage(op))
		}
		break
	}

	if t.Err != nil {
		c.log.Warn("cart operation rejected",
			zap.String("operation", op),
			zap.Int("product_id", productID),
			zap.Error(t.Err),
		)
	}

	c.cart = t.Cart
	c.metrics.observe(op, t)

	for _, n := range t.Notifications() {
		c.notifier.Notify(ctx, n)
	}
}

func (c *Container) write(ctx context.Context, cart []Product) error {
	raw, err := Encode(cart)
	if err != nil {
		return err
	}
	return c.storage.Set(ctx, c.key, raw)
}

func (c *Container) recover(ctx context.Context, op string, productID int, msg string) {
	r := recover()
	if r == nil {
		return
	}
	c.log.Error("cart operation panicked",
		zap.String("operation", op),
		zap.Int("product_id", productID),
		zap.Any("panic", r),
	)
	c.metrics.observe(op, Transition{Err: fmt.Errorf("panic: %v", r)})
	c.notifier.Notify(ctx, Error(msg))
}

func lookupErr(err error, productID int) error {
	if errors.Is(err, ErrCatalogNotFound) {
		return fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}
	return err
}

func failMessage(op string) string {
	switch op {
	case opRemove:
		return MsgRemoveFailed
	case opUpdate:
		return MsgUpdateFailed
	default:
		return MsgAddFailed
	}
}
