package orders

import "sort"

// NormalizeItems: tolak list kosong & qty non-positif. Duplikat product_id
// dalam satu request digabung (qty dijumlah per product, posisi kemunculan
// pertama dipertahankan) supaya satu request tidak pernah double-count
// terhadap satu pembacaan stok.
func NormalizeItems(items []ItemInput) ([]ItemInput, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "order must contain at least one item"}
	}
	merged := make([]ItemInput, 0, len(items))
	at := make(map[string]int, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, &ValidationError{Reason: "missing product id"}
		}
		if it.Qty <= 0 {
			return nil, &ValidationError{ProductID: it.ProductID, Reason: "quantity must be greater than 0"}
		}
		if i, ok := at[it.ProductID]; ok {
			merged[i].Qty += it.Qty
			continue
		}
		at[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// LockOrder: id unik ascending. Semua transaksi order mengambil row lock
// dalam urutan global yang sama ini, jadi dua order yang overlap produk
// tidak bisa saling deadlock.
func LockOrder(items []ItemInput) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// CheckAvailability memvalidasi items (sudah dinormalisasi) terhadap row
// produk yang sedang di-lock di transaksi yang sama. Satu saja gagal,
// seluruh request ditolak.
func CheckAvailability(products map[string]Product, items []ItemInput) error {
	var missing []string
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || !p.IsActive {
			missing = append(missing, it.ProductID)
		}
	}
	if len(missing) > 0 {
		return &NotFoundError{Resource: "product", IDs: missing}
	}
	for _, it := range items {
		p := products[it.ProductID]
		if p.Stock < it.Qty {
			return &ConflictError{ProductID: it.ProductID, Requested: it.Qty, Available: p.Stock}
		}
	}
	return nil
}
