package stockwatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// PgStocks: StockReader di atas Postgres.
type PgStocks struct{ DB *pgxpool.Pool }

func (s *PgStocks) Stock(ctx context.Context, productID string) (int, bool, error) {
	var stock int
	err := s.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

// RedisMarker: dedup per event_id + set produk low-stock.
type RedisMarker struct{ R *redis.Client }

func (m *RedisMarker) Seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, "stockwatch", eventID)
	exists, _ := redisx.Exists(ctx, m.R, key)
	if exists {
		return true
	}
	_ = m.R.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

func (m *RedisMarker) MarkLow(ctx context.Context, productID string) {
	_ = m.R.SAdd(ctx, redisx.KeyLowStock, productID).Err()
}

func (m *RedisMarker) ClearLow(ctx context.Context, productID string) {
	_ = m.R.SRem(ctx, redisx.KeyLowStock, productID).Err()
}
