// Package audit defines the append-only log of discount decisions and its
// reporting queries. Aggregates are always recomputed from the log, never
// stored.
package audit

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/discount"
)

// CustomerSummary is the derived per-customer aggregate over the decision log.
type CustomerSummary struct {
	CustomerID     int64
	Decisions      int64
	TotalDiscount  decimal.Decimal
	TotalOriginal  decimal.Decimal
	AveragePercent decimal.Decimal
}

// Report bundles the full decision history with per-customer aggregates.
type Report struct {
	Decisions []discount.Decision
	Summaries []CustomerSummary
}

// Log is the append-only audit trail. Append failures must not unwind the
// monetary effect of an already-applied discount; callers treat the write as
// best-effort and report failures out of band.
type Log interface {
	// Append stores the decision and fills in its generated ID.
	Append(ctx context.Context, d *discount.Decision) error
	// ListByCustomer returns the customer's decisions, most recent first.
	ListByCustomer(ctx context.Context, customerID int64) ([]discount.Decision, error)
	// Report returns all decisions plus the per-customer aggregates.
	Report(ctx context.Context) (*Report, error)
}
