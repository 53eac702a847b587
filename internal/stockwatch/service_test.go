package stockwatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStocks struct{ stocks map[string]int }

func (s *memStocks) Stock(ctx context.Context, productID string) (int, bool, error) {
	v, ok := s.stocks[productID]
	return v, ok, nil
}

type memMarker struct {
	seen    map[string]bool
	low     map[string]bool
	cleared []string
}

func newMemMarker() *memMarker {
	return &memMarker{seen: map[string]bool{}, low: map[string]bool{}}
}

func (m *memMarker) Seen(ctx context.Context, eventID string) bool {
	if m.seen[eventID] {
		return true
	}
	m.seen[eventID] = true
	return false
}
func (m *memMarker) MarkLow(ctx context.Context, productID string) { m.low[productID] = true }
func (m *memMarker) ClearLow(ctx context.Context, productID string) {
	m.cleared = append(m.cleared, productID)
}

type memPublisher struct {
	keys   []string
	values [][]byte
}

func (p *memPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
}

func orderCreatedMsg(t *testing.T, eventID string, items ...orders.ItemSnapshot) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    orders.EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "shop-api",
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID: "o-1", UserID: "u-1", Items: items,
			Total: decimal.RequireFromString("10.00"),
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func newWatch(stocks map[string]int) (*Service, *memMarker, *memPublisher) {
	marks := newMemMarker()
	pub := &memPublisher{}
	svc := &Service{
		Stocks:      &memStocks{stocks: stocks},
		Marks:       marks,
		Producer:    pub,
		ServiceName: "shop-stockwatch",
		Threshold:   5,
	}
	return svc, marks, pub
}

func TestHandle_IgnoresOtherEventTypes(t *testing.T) {
	svc, marks, pub := newWatch(map[string]int{"p1": 1})
	env := orders.Envelope{EventID: "ev-1", EventType: orders.EventStockLow, Payload: []byte(`{}`)}

	err := svc.HandleOrderCreated(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	require.NoError(t, err)
	assert.Empty(t, marks.seen, "event lain tidak boleh ikut dedup")
	assert.Empty(t, pub.values)
}

func TestHandle_DeduplicatesByEventID(t *testing.T) {
	svc, _, pub := newWatch(map[string]int{"p1": 2})
	msg := orderCreatedMsg(t, "ev-1", orders.ItemSnapshot{ProductID: "p1", Qty: 1})

	require.NoError(t, svc.HandleOrderCreated(context.Background(), msg))
	require.NoError(t, svc.HandleOrderCreated(context.Background(), msg))
	assert.Len(t, pub.values, 1, "redelivery tidak boleh publish dua kali")
}

func TestHandle_LowStockMarksAndPublishes(t *testing.T) {
	svc, marks, pub := newWatch(map[string]int{"p1": 3, "p2": 50})
	msg := orderCreatedMsg(t, "ev-1",
		orders.ItemSnapshot{ProductID: "p1", Qty: 1},
		orders.ItemSnapshot{ProductID: "p2", Qty: 1},
	)

	require.NoError(t, svc.HandleOrderCreated(context.Background(), msg))

	assert.True(t, marks.low["p1"])
	assert.Equal(t, []string{"p2"}, marks.cleared)

	require.Len(t, pub.values, 1)
	assert.Equal(t, "p1", pub.keys[0])

	var out orders.Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &out))
	assert.Equal(t, orders.EventStockLow, out.EventType)
	p, err := kafkax.UnwrapPayload[orders.StockLowPayload](out.Payload)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProductID)
	assert.Equal(t, 3, p.Stock)
}

func TestHandle_ThresholdBoundaryInclusive(t *testing.T) {
	svc, marks, _ := newWatch(map[string]int{"p1": 5})
	msg := orderCreatedMsg(t, "ev-1", orders.ItemSnapshot{ProductID: "p1", Qty: 1})

	require.NoError(t, svc.HandleOrderCreated(context.Background(), msg))
	assert.True(t, marks.low["p1"], "stok == threshold dihitung menipis")
}

func TestHandle_SkipsUnknownProducts(t *testing.T) {
	svc, marks, pub := newWatch(map[string]int{})
	msg := orderCreatedMsg(t, "ev-1", orders.ItemSnapshot{ProductID: "hilang", Qty: 1})

	require.NoError(t, svc.HandleOrderCreated(context.Background(), msg))
	assert.Empty(t, marks.low)
	assert.Empty(t, pub.values)
}
