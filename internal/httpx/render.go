package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr memetakan taksonomi error ke status HTTP. Rejection selalu bawa
// konteks (product id, requested vs available) supaya caller bisa koreksi.
func writeErr(w http.ResponseWriter, err error) {
	var (
		ve  *orders.ValidationError
		nfe *orders.NotFoundError
		ce  *orders.ConflictError
		fbe *orders.ForbiddenError
		te  *orders.TransientError
		fe  *orders.FatalError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": ve.Error(), "product_id": ve.ProductID,
		})
	case errors.As(err, &nfe):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": nfe.Error(), "ids": nfe.IDs,
		})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      ce.Error(),
			"product_id": ce.ProductID,
			"requested":  ce.Requested,
			"available":  ce.Available,
		})
	case errors.As(err, &fbe):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": fbe.Error()})
	case errors.As(err, &te):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporary conflict, please retry"})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "storage unavailable"})
	case errors.Is(err, catalog.ErrNoProduct):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	case errors.Is(err, catalog.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
