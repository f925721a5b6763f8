// Package inventory defines the stock ledger contract. All stock mutations go
// through the ledger; the decrement is a single conditional update so that
// concurrent orders can never drive stock below zero.
package inventory

import (
	"context"
	"fmt"
)

// InsufficientStockError indicates a decrement would drive a product's stock
// below zero. The decrement has no effect when this error is returned.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Ledger owns per-product stock counters.
type Ledger interface {
	// Decrement atomically subtracts qty from the product's stock. It fails
	// with *InsufficientStockError when stock < qty, leaving stock unchanged.
	Decrement(ctx context.Context, productID int64, qty int) error
	// Restock atomically adds qty back to the product's stock.
	Restock(ctx context.Context, productID int64, qty int) error
}
