package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/milsabores/checkout/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, description, price, stock, category, image_url, active
		FROM products WHERE active ORDER BY name`

	getProductByIDSQL = `SELECT id, name, description, price, stock, category, image_url, active
		FROM products WHERE id = $1 AND active`

	getProductsByIDsSQL = `SELECT id, name, description, price, stock, category, image_url, active
		FROM products WHERE id = ANY($1)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all active products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single active product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs, active or not;
// callers decide how to treat inactive rows.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.ImageURL, &p.Active,
	)
	return p, err
}
