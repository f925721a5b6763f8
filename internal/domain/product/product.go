package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or is inactive.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Stock is owned by
// the inventory ledger and must never be written outside it.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
	Active      bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
}
