package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// OrderService: operasi yang diekspos core. Handler sengaja terima
// interface supaya gampang di-stub di test.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, items []orders.ItemInput) (*orders.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*orders.Order, error)
	ListOrders(ctx context.Context, userID string, page, limit int) (*orders.OrderPage, error)
}

// StatusCache: hot path GET status. Implementasi produksi redisx.StatusCache.
type StatusCache interface {
	GetStatus(ctx context.Context, orderID string) (redisx.OrderStatus, bool)
	SetStatus(ctx context.Context, orderID string, e redisx.OrderStatus)
}

type OrdersHandler struct {
	Svc      OrderService
	Producer *kafkax.Producer // boleh nil (tidak publish)
	Cache    StatusCache      // boleh nil (selalu ke DB)
	Service  string
}

type CreateOrderReq struct {
	Items []orders.ItemInput `json:"items"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Svc.PlaceOrder(r.Context(), UserID(r.Context()), req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}

	// cache status + event hanya SETELAH commit; tidak pernah di dalam tx
	if h.Cache != nil {
		h.Cache.SetStatus(r.Context(), o.ID, redisx.OrderStatus{
			Status: string(o.Status),
			UserID: o.UserID,
		})
	}
	if h.Producer != nil {
		h.publishCreated(o, r.Header.Get("X-Request-Id"))
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) publishCreated(o *orders.Order, traceID string) {
	items := make([]orders.ItemSnapshot, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemSnapshot{ProductID: it.ProductID, Qty: it.Qty, Price: it.Price})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID: o.ID,
			UserID:  o.UserID,
			Items:   items,
			Total:   o.Total,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	o, err := h.Svc.GetOrder(r.Context(), UserID(r.Context()), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus: 1) coba cache (ownership dicek dari entry), 2) fallback
// DB lewat service, lalu backfill cache.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "id")

	if h.Cache != nil {
		if e, ok := h.Cache.GetStatus(ctx, orderID); ok {
			if e.UserID != UserID(ctx) {
				writeErr(w, &orders.ForbiddenError{OrderID: orderID})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": e.Status})
			return
		}
	}

	o, err := h.Svc.GetOrder(ctx, UserID(ctx), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.Cache != nil {
		h.Cache.SetStatus(ctx, o.ID, redisx.OrderStatus{Status: string(o.Status), UserID: o.UserID})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(o.Status)})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := h.Svc.ListOrders(r.Context(), UserID(r.Context()), page, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
