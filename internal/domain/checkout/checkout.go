// Package checkout orchestrates discount resolution at checkout time: it
// picks the single winning rule for a customer, stamps the decision with the
// order, and appends it to the audit trail. It deliberately does not
// participate in order placement or stock decrements; it adjusts an already
// computed amount.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/milsabores/checkout/internal/domain/audit"
	"github.com/milsabores/checkout/internal/domain/customer"
	"github.com/milsabores/checkout/internal/domain/discount"
)

// ErrNegativeAmount is returned when the original amount is below zero.
var ErrNegativeAmount = errors.New("original amount must not be negative")

// Coordinator applies discounts at checkout and records every decision.
type Coordinator struct {
	customers customer.Directory
	engine    *discount.Engine
	log       audit.Log
	lg        *zap.Logger
	now       func() time.Time
}

// NewCoordinator creates a checkout Coordinator.
func NewCoordinator(customers customer.Directory, engine *discount.Engine, log audit.Log, lg *zap.Logger) *Coordinator {
	return &Coordinator{
		customers: customers,
		engine:    engine,
		log:       log,
		lg:        lg,
		now:       time.Now,
	}
}

// ApplyAtCheckout resolves the customer's discount against the given amount
// and records the decision. A non-empty candidateCode is evaluated in place of
// the customer's registered promotional code. With applyDiscount=false a
// KindNone decision is recorded instead, so the audit trail stays complete
// whether or not a discount was requested.
//
// The audit append is best-effort: a failure is logged and reported on the
// returned decision flow but never rolls back the monetary result. The
// operation is safe to retry; retries append additional audit rows.
func (c *Coordinator) ApplyAtCheckout(ctx context.Context, orderID, customerID int64, candidateCode string, original decimal.Decimal, applyDiscount bool) (*discount.Decision, error) {
	if original.IsNegative() {
		return nil, ErrNegativeAmount
	}

	cust, err := c.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "get customer")
	}

	var d discount.Decision
	if applyDiscount {
		d = c.engine.Resolve(*cust, candidateCode, original, c.now())
	} else {
		d = c.engine.NoDiscount(cust.ID, original, c.now())
	}
	d.OrderID = orderID

	if err := c.log.Append(ctx, &d); err != nil {
		c.lg.Error("append discount audit",
			zap.Error(err),
			zap.Int64("order_id", orderID),
			zap.Int64("customer_id", customerID),
			zap.String("kind", string(d.Kind)),
		)
	}

	return &d, nil
}

// EligibleDiscounts lists every rule the customer currently qualifies for,
// without applying any of them.
func (c *Coordinator) EligibleDiscounts(ctx context.Context, customerID int64) ([]discount.Eligibility, error) {
	cust, err := c.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "get customer")
	}
	return c.engine.Eligible(*cust, "", c.now()), nil
}
