package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore: implementasi Store + Reader di atas Postgres. Isolasi untuk
// ledger datang dari row lock (SELECT ... FOR UPDATE) milik engine.
type PgStore struct{ DB *pgxpool.Pool }

func (s *PgStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct{ tx pgx.Tx }

func inParams(n int) string {
	params := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
	}
	return params
}

// ProductsForUpdate mengunci baris SATU PER SATU mengikuti urutan ids
// (caller sudah sort ascending). Satu IN (...) FOR UPDATE tidak menjamin
// urutan ambil lock, jadi per-row supaya urutan lock deterministik.
// ID yang tidak ada di-skip; validasi missing urusan caller.
func (t *pgTx) ProductsForUpdate(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	for _, id := range ids {
		var p Product
		err := t.tx.QueryRow(ctx, `
			SELECT id, name, description, category, price, stock, is_active, created_at, updated_at
			FROM products WHERE id = $1
			FOR UPDATE`, id).
			Scan(&p.ID, &p.Name, &p.Description, &p.Category,
				&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrStockConflict
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, string(o.Status), o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, price)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OrderID, it.ProductID, it.Qty, it.Price); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// --- sisi baca ---

func (s *PgStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, err
	}
	items, err := s.itemsFor(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	o.Items = items[orderID]
	return &o, nil
}

func (s *PgStore) ListOrders(ctx context.Context, userID string, limit, offset int) ([]Order, int, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := s.itemsFor(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Items = items[out[i].ID]
		}
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PgStore) itemsFor(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	args := make([]any, 0, len(orderIDs))
	for _, id := range orderIDs {
		args = append(args, id)
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, qty, price
		FROM order_items WHERE order_id IN (`+inParams(len(orderIDs))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]OrderItem, len(orderIDs))
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.Price); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
