package orders

import (
	"context"
	"errors"
)

// ErrStockConflict: conditional decrement tidak kena row (stok berubah di
// luar protokol lock). Service memperlakukannya sebagai konflik transient.
var ErrStockConflict = errors.New("stock changed concurrently")

// ErrNoOrder: order tidak ada di storage.
var ErrNoOrder = errors.New("order not found")

// Store membuka scope transaksi tempat check + decrement + insert harus
// atomik terhadap transaksi order lain. Validator dan ledger tidak boleh
// dijembatani cache in-process; keduanya jalan di Tx yang sama.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	// ProductsForUpdate membaca + me-lock row produk per id-set.
	// ids harus sudah ascending (lihat LockOrder).
	ProductsForUpdate(ctx context.Context, ids []string) (map[string]Product, error)
	// DecrementStock conditional: hanya apply jika stock >= qty masih
	// berlaku saat eksekusi; kalau tidak, ErrStockConflict.
	DecrementStock(ctx context.Context, productID string, qty int) error
	// InsertOrder menulis header order + seluruh line item.
	InsertOrder(ctx context.Context, o *Order) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Reader: sisi baca, tidak butuh lock.
type Reader interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]Order, int, error)
}
