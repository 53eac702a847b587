package orders

import "github.com/shopspring/decimal"

type PricedItem struct {
	ProductID string
	Qty       int
	Price     decimal.Decimal // snapshot per unit dari catalog
}

// PriceItems menghitung snapshot harga per line + total order, semuanya
// decimal eksak. Harga selalu dibaca dari catalog di dalam transaksi,
// tidak pernah dari client.
func PriceItems(products map[string]Product, items []ItemInput) ([]PricedItem, decimal.Decimal) {
	priced := make([]PricedItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		p := products[it.ProductID]
		priced = append(priced, PricedItem{ProductID: it.ProductID, Qty: it.Qty, Price: p.Price})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return priced, total
}
