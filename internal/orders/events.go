package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"
	EventStockLow     = "StockLow"
)

const (
	TopicOrderCreated = "order.created"
	TopicStockLow     = "stock.low"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemSnapshot struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID string          `json:"order_id"`
	UserID  string          `json:"user_id"`
	Items   []ItemSnapshot  `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

type StockLowPayload struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}
