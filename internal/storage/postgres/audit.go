package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/milsabores/checkout/internal/domain/audit"
	"github.com/milsabores/checkout/internal/domain/discount"
)

const (
	appendDecisionSQL = `INSERT INTO discount_audit
		(customer_id, order_id, kind, percent, original, discount, final, reason, applied_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	listDecisionsByCustomerSQL = `SELECT id, customer_id, COALESCE(order_id, 0), kind, percent,
		original, discount, final, reason, applied_at
		FROM discount_audit WHERE customer_id = $1 ORDER BY applied_at DESC, id DESC`

	listAllDecisionsSQL = `SELECT id, customer_id, COALESCE(order_id, 0), kind, percent,
		original, discount, final, reason, applied_at
		FROM discount_audit ORDER BY applied_at DESC, id DESC`

	// Aggregates are derived from the log on every report, never stored.
	summarizeByCustomerSQL = `SELECT customer_id, COUNT(*), SUM(discount), SUM(original), AVG(percent)
		FROM discount_audit GROUP BY customer_id ORDER BY customer_id`
)

var _ audit.Log = (*AuditLog)(nil)

// AuditLog implements audit.Log backed by PostgreSQL. Rows are only ever
// inserted.
type AuditLog struct {
	pool *pgxpool.Pool
}

// NewAuditLog returns an AuditLog that uses the given pool.
func NewAuditLog(pool *pgxpool.Pool) *AuditLog {
	return &AuditLog{pool: pool}
}

// Append stores the decision and fills in its generated ID. A zero OrderID is
// stored as NULL: checkout-time decisions may precede an order.
func (l *AuditLog) Append(ctx context.Context, d *discount.Decision) error {
	err := l.pool.QueryRow(ctx, appendDecisionSQL,
		d.CustomerID, d.OrderID, d.Kind, d.Percent,
		d.Original, d.Discount, d.Final, d.Reason, d.AppliedAt,
	).Scan(&d.ID)
	if err != nil {
		return errors.Wrap(err, "append discount decision")
	}
	return nil
}

// ListByCustomer returns the customer's decisions, most recent first.
func (l *AuditLog) ListByCustomer(ctx context.Context, customerID int64) ([]discount.Decision, error) {
	rows, err := l.pool.Query(ctx, listDecisionsByCustomerSQL, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list decisions for customer %d", customerID)
	}
	return pgx.CollectRows(rows, scanDecision)
}

// Report returns the full decision history plus per-customer aggregates. The
// two queries are independent and run concurrently.
func (l *AuditLog) Report(ctx context.Context) (*audit.Report, error) {
	var report audit.Report

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.pool.Query(ctx, listAllDecisionsSQL)
		if err != nil {
			return errors.Wrap(err, "list decisions")
		}
		report.Decisions, err = pgx.CollectRows(rows, scanDecision)
		return err
	})
	g.Go(func() error {
		rows, err := l.pool.Query(ctx, summarizeByCustomerSQL)
		if err != nil {
			return errors.Wrap(err, "summarize decisions")
		}
		report.Summaries, err = pgx.CollectRows(rows, scanSummary)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &report, nil
}

func scanDecision(row pgx.CollectableRow) (discount.Decision, error) {
	var d discount.Decision
	err := row.Scan(
		&d.ID, &d.CustomerID, &d.OrderID, &d.Kind, &d.Percent,
		&d.Original, &d.Discount, &d.Final, &d.Reason, &d.AppliedAt,
	)
	return d, err
}

func scanSummary(row pgx.CollectableRow) (audit.CustomerSummary, error) {
	var s audit.CustomerSummary
	err := row.Scan(
		&s.CustomerID, &s.Decisions, &s.TotalDiscount,
		&s.TotalOriginal, &s.AveragePercent,
	)
	return s, err
}
