package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the order lifecycle state. Placement always creates orders in
// StatusPending; later transitions belong to fulfillment, not this core.
type Status string

// StatusPending is the initial status of every placed order.
const StatusPending Status = "pending"

// Order is a customer purchase: a header plus its line items. Header, lines,
// and the corresponding stock decrements are created as one atomic unit.
type Order struct {
	ID         int64
	CustomerID int64
	CreatedAt  time.Time
	Status     Status
	// Total is derived from the lines at placement and immutable afterwards.
	Total           decimal.Decimal
	DeliveryAddress string
	DeliveryDate    *time.Time
	Lines           []Line
}

// Line is a single order position. UnitPrice is a snapshot of the price at
// order time, not a live reference to the product's current price.
type Line struct {
	ID        int64
	OrderID   int64
	ProductID int64
	// ProductName is joined in on reads for display; empty during placement.
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Repository persists orders. Place must write the header, every line, and
// every stock decrement in one transaction: any failure leaves no trace.
type Repository interface {
	// Place stores the order and decrements stock per line. On success it
	// fills in the generated IDs and CreatedAt. On insufficient stock it
	// returns *inventory.InsufficientStockError naming the product.
	Place(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListByCustomer returns the customer's orders, most recent first.
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
}
