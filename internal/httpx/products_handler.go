package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type ProductsHandler struct {
	Repo *catalog.Repo
}

// RegisterPublic: listing + detail, tanpa token.
func (h *ProductsHandler) RegisterPublic(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

// RegisterAdmin: mutasi catalog, token-gated.
func (h *ProductsHandler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.create)
	r.Patch("/products/{id}", h.update)
	r.Delete("/products/{id}", h.remove)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	category := r.URL.Query().Get("category")

	out, err := h.Repo.List(r.Context(), category, page, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in catalog.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
