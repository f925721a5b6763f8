package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/milsabores/checkout/internal/domain/discount"
)

const (
	listActivePromotionsSQL = `SELECT code, percent, description FROM promotions WHERE active ORDER BY code`

	upsertPromotionSQL = `INSERT INTO promotions (code, percent, description, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (code) DO UPDATE
		SET percent = EXCLUDED.percent, description = EXCLUDED.description, active = TRUE`
)

// PromotionRepository stores the running-promotion allow-list the discount
// engine is built from.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// ListActive returns every active promotion.
func (r *PromotionRepository) ListActive(ctx context.Context) ([]discount.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list promotions")
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// UpsertBatch inserts or refreshes promotions in one round trip.
func (r *PromotionRepository) UpsertBatch(ctx context.Context, promos []discount.Promotion) error {
	batch := &pgx.Batch{}
	for _, p := range promos {
		batch.Queue(upsertPromotionSQL, p.Code, p.Percent, p.Description)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert promotions")
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (discount.Promotion, error) {
	var p discount.Promotion
	err := row.Scan(&p.Code, &p.Percent, &p.Description)
	return p, err
}
