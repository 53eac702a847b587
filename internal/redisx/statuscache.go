package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OrderStatus: entry cache status order. UserID ikut disimpan supaya
// ownership tetap bisa dicek saat cache hit, tanpa nyentuh DB.
type OrderStatus struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// StatusCache: hot path baca status order. DB tetap sumber kebenaran;
// entry korup atau hilang diperlakukan sebagai miss.
type StatusCache struct{ R *redis.Client }

func (c *StatusCache) GetStatus(ctx context.Context, orderID string) (OrderStatus, bool) {
	s, err := c.R.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Result()
	if err != nil || s == "" {
		return OrderStatus{}, false
	}
	var e OrderStatus
	if json.Unmarshal([]byte(s), &e) != nil || e.Status == "" || e.UserID == "" {
		return OrderStatus{}, false
	}
	return e, true
}

func (c *StatusCache) SetStatus(ctx context.Context, orderID string, e OrderStatus) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = c.R.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err()
}
