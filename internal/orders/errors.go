package orders

import (
	"fmt"
	"strings"
)

// Taksonomi error order placement. Semua rejection bawa konteks yang cukup
// supaya caller bisa koreksi dan submit ulang.

// ValidationError: input malformed (qty non-positif, items kosong).
type ValidationError struct {
	ProductID string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ProductID == "" {
		return e.Reason
	}
	return fmt.Sprintf("product %s: %s", e.ProductID, e.Reason)
}

// NotFoundError: produk hilang/nonaktif (semua id pelanggar dilist), atau
// order tidak ada.
type NotFoundError struct {
	Resource string // "product" | "order"
	IDs      []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found or inactive: %s", e.Resource, strings.Join(e.IDs, ", "))
}

// ConflictError: stok tidak cukup, oversell dicegah.
type ConflictError struct {
	ProductID string
	Requested int
	Available int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ForbiddenError: order milik user lain.
type ForbiddenError struct {
	OrderID string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("order %s belongs to another user", e.OrderID)
}

// TransientError: konflik lock/serialisasi, retry internal sudah habis.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient conflict after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError: persistence tidak bisa dipakai, tidak pernah di-retry di sini.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("storage failure: %v", e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }

// IsRejection: error deterministik dari input caller, percuma di-retry.
func IsRejection(err error) bool {
	switch err.(type) {
	case *ValidationError, *NotFoundError, *ConflictError, *ForbiddenError:
		return true
	}
	return false
}
