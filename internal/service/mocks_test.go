package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/product"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
)

// fakeOrderRepo keeps orders in memory and mirrors the repository's
// compare-and-set semantics, including the update-map side writes.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*order.Order
}

func newFakeOrderRepo(orders ...*order.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[int64]*order.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByTransactionUUID(ctx context.Context, uuid string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if uuid != "" && o.TransactionUUID == uuid {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByPidx(ctx context.Context, pidx string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if pidx != "" && o.Pidx == pidx {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) ListByStore(ctx context.Context, storeID int64, limit int) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.StoreID == storeID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusFrom(ctx context.Context, id int64, from []order.Status, to order.Status, updates map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if o.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	o.Status = to
	for k, v := range updates {
		switch k {
		case "stock_decremented":
			o.StockDecremented = v.(bool)
		case "ref_id":
			o.RefID = v.(string)
		case "transaction_id":
			o.TransactionID = v.(string)
		}
	}
	return true, nil
}

// fakeStoreRepo serves a fixed store set.
type fakeStoreRepo struct {
	stores map[int64]*store.Store
}

func newFakeStoreRepo(stores ...*store.Store) *fakeStoreRepo {
	r := &fakeStoreRepo{stores: make(map[int64]*store.Store)}
	for _, s := range stores {
		r.stores[s.ID] = s
	}
	return r
}

func (r *fakeStoreRepo) GetByID(ctx context.Context, id int64) (*store.Store, error) {
	if s, ok := r.stores[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStoreRepo) Create(ctx context.Context, s *store.Store) error {
	r.stores[s.ID] = s
	return nil
}

func (r *fakeStoreRepo) Update(ctx context.Context, s *store.Store) error {
	r.stores[s.ID] = s
	return nil
}

func (r *fakeStoreRepo) ListAll(ctx context.Context) ([]*store.Store, error) {
	var out []*store.Store
	for _, s := range r.stores {
		out = append(out, s)
	}
	return out, nil
}

// fakeProductRepo records stock adjustments.
type fakeProductRepo struct {
	mu          sync.Mutex
	adjustments map[int64]int64
	calls       int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{adjustments: make(map[int64]int64)}
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, id int64, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments[id] += delta
	r.calls++
	return nil
}

// fakeEventPublisher records published order events in memory.
type fakeEventPublisher struct {
	mu     sync.Mutex
	events []*OrderEvent
}

func (p *fakeEventPublisher) Publish(ctx context.Context, ev *OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakeEventPublisher) statuses() []order.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]order.Status, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Status)
	}
	return out
}

// fakeActivityRepo records audit rows in memory.
type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*activity.Entry
}

func (r *fakeActivityRepo) Append(ctx context.Context, e *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeActivityRepo) ListByStore(ctx context.Context, storeID int64, limit int) ([]*activity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*activity.Entry
	for _, e := range r.entries {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
