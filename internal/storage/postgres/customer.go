package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/milsabores/checkout/internal/domain/customer"
)

const getCustomerByIDSQL = `SELECT id, name, email, registered_at, birth_date, student,
	COALESCE(registered_code, ''), permanent_discount, active
	FROM customers WHERE id = $1 AND active`

var _ customer.Directory = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Directory backed by PostgreSQL.
// The checkout core only ever reads customers.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID returns a single active customer by identifier.
// Returns customer.ErrNotFound when no matching active customer exists.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get customer %d", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get customer %d", id)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.RegisteredAt, &c.BirthDate,
		&c.Student, &c.RegisteredCode, &c.PermanentDiscount, &c.Active,
	)
	return c, err
}
