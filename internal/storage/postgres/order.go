package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/milsabores/checkout/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (customer_id, status, total, delivery_address, delivery_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	insertOrderLineSQL = `INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	getOrderByIDSQL = `SELECT id, customer_id, created_at, status, total, delivery_address, delivery_date
		FROM orders WHERE id = $1`

	listOrdersByCustomerSQL = `SELECT id, customer_id, created_at, status, total, delivery_address, delivery_date
		FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`

	listLinesByOrdersSQL = `SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, l.unit_price, l.subtotal
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.order_id = ANY($1) ORDER BY l.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Place persists the order header, all lines, and the per-line stock
// decrements in a single transaction. If any decrement hits the stock floor
// the whole transaction rolls back: no order, no lines, no stock change.
func (r *OrderRepository) Place(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrderSQL,
			o.CustomerID, o.Status, o.Total, o.DeliveryAddress, o.DeliveryDate,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		for i := range o.Lines {
			line := &o.Lines[i]
			line.OrderID = o.ID

			err := tx.QueryRow(ctx, insertOrderLineSQL,
				o.ID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
			).Scan(&line.ID)
			if err != nil {
				return errors.Wrapf(err, "insert line for product %d", line.ProductID)
			}

			if err := decrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Reset generated fields so a failed placement leaves no trace on
		// the domain object either.
		o.ID = 0
		for i := range o.Lines {
			o.Lines[i].ID = 0
			o.Lines[i].OrderID = 0
		}
	}
	return err
}

// GetByID returns a single order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	lines, err := r.linesByOrders(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// ListByCustomer returns the customer's orders with lines, most recent first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders for customer %d", customerID)
	}
	out, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders for customer %d", customerID)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	lines, err := r.linesByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *OrderRepository) linesByOrders(ctx context.Context, orderIDs []int64) (map[int64][]order.Line, error) {
	rows, err := r.pool.Query(ctx, listLinesByOrdersSQL, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "list order lines")
	}
	lines, err := pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return nil, errors.Wrap(err, "list order lines")
	}

	byOrder := make(map[int64][]order.Line, len(orderIDs))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	return byOrder, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CreatedAt, &o.Status, &o.Total,
		&o.DeliveryAddress, &o.DeliveryDate,
	)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(
		&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
		&l.Quantity, &l.UnitPrice, &l.Subtotal,
	)
	return l, err
}
