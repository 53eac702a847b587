package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProduct(id, price string, stock int) Product {
	return Product{
		ID:       id,
		Name:     "product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func TestNormalizeItems_RejectsEmptyAndBadQty(t *testing.T) {
	tests := []struct {
		name  string
		items []ItemInput
	}{
		{name: "empty list", items: nil},
		{name: "zero qty", items: []ItemInput{{ProductID: "p1", Qty: 0}}},
		{name: "negative qty", items: []ItemInput{{ProductID: "p1", Qty: -2}}},
		{name: "missing product id", items: []ItemInput{{ProductID: "", Qty: 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeItems(tc.items)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestNormalizeItems_MergesDuplicates(t *testing.T) {
	norm, err := NormalizeItems([]ItemInput{
		{ProductID: "p1", Qty: 2},
		{ProductID: "p2", Qty: 1},
		{ProductID: "p1", Qty: 3},
	})
	require.NoError(t, err)
	// duplikat dijumlah, posisi kemunculan pertama dipertahankan
	assert.Equal(t, []ItemInput{{ProductID: "p1", Qty: 5}, {ProductID: "p2", Qty: 1}}, norm)
}

func TestNormalizeItems_NamesOffendingProduct(t *testing.T) {
	_, err := NormalizeItems([]ItemInput{{ProductID: "p9", Qty: -1}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "p9", ve.ProductID)
}

func TestLockOrder_SortedAscendingAndDistinct(t *testing.T) {
	ids := LockOrder([]ItemInput{
		{ProductID: "p3", Qty: 1},
		{ProductID: "p1", Qty: 1},
		{ProductID: "p2", Qty: 1},
	})
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
}

func TestCheckAvailability_ListsEveryMissingOrInactive(t *testing.T) {
	products := map[string]Product{
		"p1": activeProduct("p1", "10.00", 5),
		"p3": {ID: "p3", Price: decimal.NewFromInt(1), Stock: 5, IsActive: false},
	}
	err := CheckAvailability(products, []ItemInput{
		{ProductID: "p1", Qty: 1},
		{ProductID: "p2", Qty: 1}, // tidak ada
		{ProductID: "p3", Qty: 1}, // nonaktif
	})
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "product", nfe.Resource)
	assert.ElementsMatch(t, []string{"p2", "p3"}, nfe.IDs)
}

func TestCheckAvailability_InsufficientStock(t *testing.T) {
	products := map[string]Product{"p1": activeProduct("p1", "10.00", 2)}
	err := CheckAvailability(products, []ItemInput{{ProductID: "p1", Qty: 3}})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "p1", ce.ProductID)
	assert.Equal(t, 3, ce.Requested)
	assert.Equal(t, 2, ce.Available)
}

func TestCheckAvailability_OK(t *testing.T) {
	products := map[string]Product{"p1": activeProduct("p1", "10.00", 3)}
	assert.NoError(t, CheckAvailability(products, []ItemInput{{ProductID: "p1", Qty: 3}}))
}
