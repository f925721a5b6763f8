package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/customer"
	"github.com/milsabores/checkout/internal/domain/product"
)

// ErrEmptyLines is returned when a placement request carries no lines.
var ErrEmptyLines = errors.New("order lines required")

// InvalidQuantityError indicates a line with a quantity below one.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %d", e.ProductID)
}

// InvalidUnitPriceError indicates a line with a negative unit price snapshot.
type InvalidUnitPriceError struct {
	ProductID int64
}

func (e *InvalidUnitPriceError) Error() string {
	return fmt.Sprintf("unit price must not be negative for product %d", e.ProductID)
}

// ProductNotFoundError indicates a line references an unknown product.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InactiveProductError indicates a line references a product that is no
// longer sold.
type InactiveProductError struct {
	ProductID int64
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("product %d is not available", e.ProductID)
}

// LineRequest is one requested order position. UnitPrice is supplied by the
// caller as the price shown at order time; it is deliberately not re-fetched
// from the catalog.
type LineRequest struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	CustomerID      int64
	Lines           []LineRequest
	DeliveryAddress string
	DeliveryDate    *time.Time
}

// Service encapsulates order placement business logic.
type Service struct {
	products  product.Repository
	customers customer.Directory
	orders    Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, customers customer.Directory, orders Repository) *Service {
	return &Service{
		products:  products,
		customers: customers,
		orders:    orders,
	}
}

// Place validates the request, verifies the customer and every product,
// computes the total from the supplied unit-price snapshots, and persists the
// order atomically together with the stock decrements. Either the header,
// all lines, and all decrements commit, or nothing does.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	ids := make([]int64, len(req.Lines))
	for i, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		if line.UnitPrice.IsNegative() {
			return nil, &InvalidUnitPriceError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "get customer")
	}

	// Batch existence/active check. Prices are NOT taken from the catalog:
	// the caller's snapshot preserves price-at-order-time semantics.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	for _, line := range req.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if !p.Active {
			return nil, &InactiveProductError{ProductID: line.ProductID}
		}
	}

	// Each subtotal is rounded to cents before summing, so the total always
	// equals the sum of the stored subtotals, even for sub-cent unit prices.
	lines := make([]Line, len(req.Lines))
	total := decimal.Zero
	for i, line := range req.Lines {
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		lines[i] = Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		}
		total = total.Add(subtotal)
	}

	o := &Order{
		CustomerID:      req.CustomerID,
		Status:          StatusPending,
		Total:           total,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDate:    req.DeliveryDate,
		Lines:           lines,
	}
	if err := s.orders.Place(ctx, o); err != nil {
		// Insufficient stock surfaces as a typed error from the repository;
		// pass it through untouched so callers can name the product.
		return nil, err
	}

	return o, nil
}

// GetByID returns a single order with its lines.
func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByCustomer returns a customer's orders, most recent first.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}
