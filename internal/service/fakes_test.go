package service

import (
	"context"
	"sync"
	"time"

	"github.com/fastcart/fastcart/internal/domain/order"
	"github.com/fastcart/fastcart/internal/domain/product"
)

// fakeProductRepo is an in-memory product.Repository.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]product.Product
	saveErr  error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]product.Product)}
}

func (r *fakeProductRepo) Save(ctx context.Context, p *product.Product) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := p
	return &cp, nil
}

func (r *fakeProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// memCache is a ProductCache that actually caches, so invalidation
// round-trips are observable.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	invalidatedKeys       []string
	invalidatedNamespaces []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) GetOrCompute(ctx context.Context, namespace, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

func (c *memCache) Invalidate(ctx context.Context, namespace, id string) {
	key := c.ItemKey(namespace, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.invalidatedKeys = append(c.invalidatedKeys, key)
}

func (c *memCache) InvalidateNamespace(ctx context.Context, namespace string) {
	prefix := c.NamespaceKey(namespace)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	c.invalidatedNamespaces = append(c.invalidatedNamespaces, namespace)
}

func (c *memCache) ItemKey(namespace, id string) string {
	return "test-cache:" + namespace + ":" + id
}

func (c *memCache) NamespaceKey(namespace string) string {
	return "test-cache:" + namespace
}

func (c *memCache) TTL() time.Duration { return 10 * time.Minute }

// fakeOrderRepo is an in-memory order.Repository.
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]order.Order
	nextID    int64
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]order.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := o
	return &cp, nil
}

func (r *fakeOrderRepo) List(ctx context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := o
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, id int64, cmd *order.UpdateOrderCommand) (*order.Order, error) {
	if cmd.Empty() {
		return nil, order.ErrNoUpdateFields
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	if cmd.ProductID != nil {
		o.ProductID = *cmd.ProductID
	}
	if cmd.Price != nil {
		o.Price = *cmd.Price
	}
	if cmd.Fee != nil {
		o.Fee = *cmd.Fee
	}
	if cmd.Total != nil {
		o.Total = *cmd.Total
	}
	if cmd.Quantity != nil {
		o.Quantity = *cmd.Quantity
	}
	if cmd.Status != nil {
		o.Status = *cmd.Status
	}
	r.orders[id] = o
	cp := o
	return &cp, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	delete(r.orders, id)
	cp := o
	return &cp, nil
}

// fakePublisher records published events and signals on a channel.
type published struct {
	stream string
	fields map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	ch     chan published
	err    error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{ch: make(chan published, 16)}
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, fields map[string]any) error {
	if p.err != nil {
		return p.err
	}
	ev := published{stream: stream, fields: fields}
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.ch <- ev
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fakeFetcher serves a fixed product set as the inventory boundary.
type fakeFetcher struct {
	products map[string]*product.Product
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, id string) (*product.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

// fakeQueue records enqueued order ids.
type fakeQueue struct {
	mu     sync.Mutex
	ids    []int64
	reject bool
}

func (q *fakeQueue) Enqueue(orderID int64) bool {
	if q.reject {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, orderID)
	return true
}
