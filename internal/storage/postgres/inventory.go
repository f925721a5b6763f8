package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/milsabores/checkout/internal/domain/inventory"
	"github.com/milsabores/checkout/internal/domain/product"
)

const (
	// The stock guard lives in the WHERE clause: check-and-update is one
	// atomic statement, so concurrent decrements on the same product can
	// never overdraw it, without any application-level locking.
	decrementStockSQL = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	restockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	getStockSQL = `SELECT stock FROM products WHERE id = $1`
)

var _ inventory.Ledger = (*InventoryLedger)(nil)

// InventoryLedger implements inventory.Ledger backed by PostgreSQL. It is the
// only component that writes product stock.
type InventoryLedger struct {
	pool *pgxpool.Pool
}

// NewInventoryLedger returns an InventoryLedger that uses the given pool.
func NewInventoryLedger(pool *pgxpool.Pool) *InventoryLedger {
	return &InventoryLedger{pool: pool}
}

// Decrement atomically subtracts qty from the product's stock, failing with
// *inventory.InsufficientStockError (and no effect) when stock < qty.
func (l *InventoryLedger) Decrement(ctx context.Context, productID int64, qty int) error {
	return decrementStock(ctx, l.pool, productID, qty)
}

// Restock atomically adds qty back to the product's stock.
func (l *InventoryLedger) Restock(ctx context.Context, productID int64, qty int) error {
	tag, err := l.pool.Exec(ctx, restockSQL, productID, qty)
	if err != nil {
		return errors.Wrapf(err, "restock product %d", productID)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// decrementStock runs the conditional decrement on any querier, so order
// placement can reuse it inside its transaction. Zero rows affected means the
// guard rejected the update; the stock is then re-read only to build an
// actionable error message.
func decrementStock(ctx context.Context, q querier, productID int64, qty int) error {
	tag, err := q.Exec(ctx, decrementStockSQL, productID, qty)
	if err != nil {
		return errors.Wrapf(err, "decrement stock for product %d", productID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = q.QueryRow(ctx, getStockSQL, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		return errors.Wrapf(err, "read stock for product %d", productID)
	}
	return &inventory.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}
