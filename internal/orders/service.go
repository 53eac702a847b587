package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service adalah koordinator order placement: satu transaksi per attempt
// membungkus validate -> price -> decrement -> write. Gagal di titik mana
// pun, seluruh attempt di-rollback tanpa side effect.
type Service struct {
	Store  Store
	Reader Reader

	// klasifikasi error backend yang aman di-retry (mis. postgres.IsTransient).
	IsTransient func(error) bool

	MaxAttempts  int
	RetryBackoff time.Duration
	TxTimeout    time.Duration
}

func (s *Service) attempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return 3
}

func (s *Service) backoff() time.Duration {
	if s.RetryBackoff > 0 {
		return s.RetryBackoff
	}
	return 50 * time.Millisecond
}

func (s *Service) txTimeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return 5 * time.Second
}

func (s *Service) transient(err error) bool {
	if errors.Is(err, ErrStockConflict) {
		return true
	}
	return s.IsTransient != nil && s.IsTransient(err)
}

// PlaceOrder menempatkan order untuk userID. Rejection deterministik
// (validation/not-found/conflict) langsung dikembalikan; konflik transient
// di-retry terbatas dengan backoff linier; sisanya FatalError.
func (s *Service) PlaceOrder(ctx context.Context, userID string, items []ItemInput) (*Order, error) {
	norm, err := NormalizeItems(items)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts(); attempt++ {
		o, err := s.placeOnce(ctx, userID, norm)
		if err == nil {
			return o, nil
		}
		if IsRejection(err) {
			return nil, err
		}
		if !s.transient(err) {
			return nil, &FatalError{Err: err}
		}
		lastErr = err
		if attempt == s.attempts() {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &TransientError{Attempts: attempt, Err: ctx.Err()}
		case <-time.After(s.backoff() * time.Duration(attempt)):
		}
	}
	return nil, &TransientError{Attempts: s.attempts(), Err: lastErr}
}

func (s *Service) placeOnce(ctx context.Context, userID string, items []ItemInput) (*Order, error) {
	// bound lamanya nunggu lock; timeout = abort bersih, tanpa partial decrement
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout())
	defer cancel()

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	// lock semua row produk dalam urutan kanonik, lalu cek di bawah lock:
	// tidak ada transaksi lain yang bisa nyelip antara check dan decrement.
	ids := LockOrder(items)
	products, err := tx.ProductsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := CheckAvailability(products, items); err != nil {
		return nil, err
	}

	priced, total := PriceItems(products, items)

	// mutasi juga dalam urutan kanonik yang sama dengan lock
	qty := make(map[string]int, len(items))
	for _, it := range items {
		qty[it.ProductID] = it.Qty
	}
	for _, id := range ids {
		if err := tx.DecrementStock(ctx, id, qty[id]); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	o := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusPending,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range priced {
		o.Items = append(o.Items, OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     it.Price,
		})
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder: header + seluruh items, selalu utuh. Requester harus pemilik.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.Reader.GetOrder(ctx, orderID)
	if errors.Is(err, ErrNoOrder) {
		return nil, &NotFoundError{Resource: "order", IDs: []string{orderID}}
	}
	if err != nil {
		return nil, &FatalError{Err: err}
	}
	if o.UserID != userID {
		return nil, &ForbiddenError{OrderID: orderID}
	}
	return o, nil
}

// ListOrders: baca paginated biasa, tidak concurrency-critical.
func (s *Service) ListOrders(ctx context.Context, userID string, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	list, total, err := s.Reader.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		return nil, &FatalError{Err: err}
	}
	if list == nil {
		list = []Order{}
	}
	return &OrderPage{
		Orders: list,
		Meta: ListMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}
