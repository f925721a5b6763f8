package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested customer does not exist or is inactive.
var ErrNotFound = errors.New("customer not found")

// Customer holds the account attributes the checkout core reads. The core
// never mutates customers.
type Customer struct {
	ID           int64
	Name         string
	Email        string
	RegisteredAt time.Time
	// BirthDate is nil when the customer did not provide one.
	BirthDate *time.Time
	Student   bool
	// RegisteredCode is the promo code chosen at registration, empty if none.
	// It is set once and never changes.
	RegisteredCode string
	// PermanentDiscount is a personal percentage discount, zero if none.
	PermanentDiscount decimal.Decimal
	Active            bool
}

// Directory provides read-only customer lookup.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
}
