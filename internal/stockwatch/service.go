package stockwatch

import (
	"context"
	"encoding/json"
	"time"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// StockReader membaca stok terkini satu produk. ok=false kalau produk
// tidak dikenal.
type StockReader interface {
	Stock(ctx context.Context, productID string) (stock int, ok bool, err error)
}

// Marker: dedup event + penanda set low-stock. Implementasi produksi
// RedisMarker (adapters.go).
type Marker interface {
	Seen(ctx context.Context, eventID string) bool
	MarkLow(ctx context.Context, productID string)
	ClearLow(ctx context.Context, productID string)
}

// Publisher: irisan kafkax.Producer yang dipakai di sini.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service memantau stok setelah order commit: konsumsi order.created,
// baca ulang stok produk yang tersentuh, catat yang menipis dan publish
// stock.low. Murni observasi, tidak pernah mutasi stok.
type Service struct {
	Stocks      StockReader
	Marks       Marker
	Producer    Publisher
	ServiceName string
	Threshold   int
}

func (s *Service) threshold() int {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return 5
}

// HandleOrderCreated: dipasang sebagai handler consumer.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}
	if s.Marks.Seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, it := range p.Items {
		stock, ok, err := s.Stocks.Stock(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if stock <= s.threshold() {
			s.Marks.MarkLow(ctx, it.ProductID)
			s.publishLow(it.ProductID, stock, env.TraceID)
		} else {
			s.Marks.ClearLow(ctx, it.ProductID)
		}
	}
	return nil
}

func (s *Service) publishLow(productID string, stock int, trace string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: productID,
		Payload:       kafkax.MustMarshal(orders.StockLowPayload{ProductID: productID, Stock: stock}),
	}
	s.Producer.Publish([]byte(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
