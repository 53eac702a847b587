package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// memStore meniru semantik transaksi yang dibutuhkan engine: Begin memegang
// satu lock global sampai Commit/Rollback (ekuivalen kasar dari row lock
// FOR UPDATE untuk pengujian), decrement-nya conditional, dan perubahan
// hanya terlihat setelah Commit.
type memStore struct {
	mu       sync.Mutex
	products map[string]Product
	orders   map[string]*Order

	beginErr     error
	insertErr    error
	commitErr    error
	flakyCommits int // n commit pertama gagal dengan errFlaky
}

var errFlaky = errors.New("serialization failure")

func newMemStore(products ...Product) *memStore {
	s := &memStore{
		products: make(map[string]Product),
		orders:   make(map[string]*Order),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.mu.Lock()
	return &memTx{s: s, dec: make(map[string]int)}, nil
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

type memTx struct {
	s    *memStore
	dec  map[string]int
	ins  *Order
	done bool
}

func (t *memTx) ProductsForUpdate(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	for _, id := range ids {
		if p, ok := t.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.s.products[productID]
	if !ok || p.Stock-t.dec[productID] < qty {
		return ErrStockConflict
	}
	t.dec[productID] += qty
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *Order) error {
	if t.s.insertErr != nil {
		return t.s.insertErr
	}
	t.ins = o
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	defer t.finish()
	if t.s.flakyCommits > 0 {
		t.s.flakyCommits--
		return errFlaky
	}
	if t.s.commitErr != nil {
		return t.s.commitErr
	}
	for id, q := range t.dec {
		p := t.s.products[id]
		p.Stock -= q
		t.s.products[id] = p
	}
	if t.ins != nil {
		cp := *t.ins
		t.s.orders[cp.ID] = &cp
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *memTx) finish() {
	t.done = true
	t.s.mu.Unlock()
}

// --- Reader ---

func (s *memStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNoOrder
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) ListOrders(ctx context.Context, userID string, limit, offset int) ([]Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}
