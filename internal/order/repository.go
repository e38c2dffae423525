package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookstore-be/internal/db"
	"bookstore-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repository persists orders. Every method takes the Querier to run on so
// the service decides which calls share a transaction.
type Repository interface {
	InsertOrder(ctx context.Context, q db.Querier, o *Order) error
	InsertItem(ctx context.Context, q db.Querier, item *OrderItem) error
	UpdateTotal(ctx context.Context, q db.Querier, orderID int64, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, q db.Querier, orderID int64, status Status) error

	// LockOrder reads an order's status and lines with a row lock held
	// until the enclosing transaction ends.
	LockOrder(ctx context.Context, q db.Querier, orderID int64) (*Order, error)
	GetOrder(ctx context.Context, q db.Querier, orderID int64) (*Order, error)

	ListOrders(ctx context.Context, q db.Querier, status *Status, limit, offset int) ([]*Order, error)
	CountOrders(ctx context.Context, q db.Querier, status *Status) (int64, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

const orderColumns = `
	o.id, o.order_number, o.status, o.total,
	o.customer_email, o.customer_name, o.shipping_address,
	o.created_at, o.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Total,
		&o.CustomerEmail, &o.CustomerName, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []OrderItem{}
	return &o, nil
}

func (r *repository) InsertOrder(ctx context.Context, q db.Querier, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "InsertOrder"),
		zap.String("order_number", o.OrderNumber),
	)

	err := q.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, status, total,
			customer_email, customer_name, shipping_address
		) VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber,
		o.Status,
		o.Total,
		o.CustomerEmail,
		o.CustomerName,
		o.ShippingAddress,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	log.Debug("order inserted", zap.Int64("order_id", o.ID))
	return nil
}

func (r *repository) InsertItem(ctx context.Context, q db.Querier, item *OrderItem) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO order_items (
			order_id, book_id, quantity, unit_price, subtotal
		) VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`,
		item.OrderID,
		item.BookID,
		item.Quantity,
		item.UnitPrice,
		item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order item",
			zap.String("layer", "repository"),
			zap.Int64("order_id", item.OrderID),
			zap.Int64("book_id", item.BookID),
			zap.Error(err),
		)
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *repository) UpdateTotal(ctx context.Context, q db.Querier, orderID int64, total decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `
		UPDATE orders
		SET total = $1, updated_at = NOW()
		WHERE id = $2
	`, total, orderID)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	return requireOneRow(res)
}

func (r *repository) UpdateStatus(ctx context.Context, q db.Querier, orderID int64, status Status) error {
	res, err := q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.Int64("order_id", orderID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return fmt.Errorf("update order status: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) LockOrder(ctx context.Context, q db.Querier, orderID int64) (*Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `
		SELECT`+orderColumns+`
		FROM orders o
		WHERE o.id = $1
		FOR UPDATE
	`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order %d: %w", orderID, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, book_id, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := OrderItem{OrderID: orderID}
		if err := rows.Scan(&item.ID, &item.BookID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	return o, nil
}

func (r *repository) GetOrder(ctx context.Context, q db.Querier, orderID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrder"),
		zap.Int64("order_id", orderID),
	)

	o, err := scanOrder(q.QueryRowContext(ctx, `
		SELECT`+orderColumns+`
		FROM orders o
		WHERE o.id = $1
	`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("order not found")
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to query order", zap.Error(err))
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	items, err := r.fetchItems(ctx, q, []int64{orderID})
	if err != nil {
		log.Error("failed to query order items", zap.Error(err))
		return nil, err
	}
	if lines, ok := items[orderID]; ok {
		o.Items = lines
	}

	return o, nil
}

// fetchItems loads the display lines of several orders in one round trip.
// Books are left-joined: a line outlives the catalog entry it points to.
func (r *repository) fetchItems(ctx context.Context, q db.Querier, orderIDs []int64) (map[int64][]OrderItem, error) {
	out := make(map[int64][]OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.book_id, oi.quantity, oi.unit_price, oi.subtotal,
			COALESCE(b.title, ''), COALESCE(b.author, '')
		FROM order_items oi
		LEFT JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.BookID, &item.Quantity,
			&item.UnitPrice, &item.Subtotal,
			&item.Book.Title, &item.Book.Author,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Book.ID = item.BookID
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}

	return out, nil
}

func (r *repository) ListOrders(ctx context.Context, q db.Querier, status *Status, limit, offset int) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	query := `SELECT` + orderColumns + ` FROM orders o`
	args := []any{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE o.status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	ids := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items, err := r.fetchItems(ctx, q, ids)
	if err != nil {
		log.Error("failed to query order items", zap.Error(err))
		return nil, err
	}
	for _, o := range orders {
		if lines, ok := items[o.ID]; ok {
			o.Items = lines
		}
	}

	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) CountOrders(ctx context.Context, q db.Querier, status *Status) (int64, error) {
	query := `SELECT COUNT(*) FROM orders o`
	args := []any{}
	if status != nil {
		query += ` WHERE o.status = $1`
		args = append(args, *status)
	}

	var total int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}
