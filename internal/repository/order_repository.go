package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ErrStatusConflict is returned by UpdateStatus when the order is no longer
// in the expected status.
var ErrStatusConflict = errors.New("order status changed concurrently")

// OrderRepository encapsulates order persistence and the sales rollup.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	HasPurchased(ctx context.Context, userID, productID int64, statuses []domain.OrderStatus) (bool, error)
	SalesStatsBySeller(ctx context.Context, sellerID int64) ([]domain.SalesStat, error)
}

type orderRepository struct {
	db DB
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (user_id, product_id, quantity, total_price, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, order_date, updated_at`
	return r.db.QueryRow(ctx, query,
		order.UserID,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		string(order.Status),
	).Scan(&order.ID, &order.OrderDate, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `
        SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_price, o.status,
               o.order_date, o.updated_at, p.name
        FROM orders o JOIN products p ON p.id = o.product_id
        WHERE o.id=$1`
	var order domain.Order
	if err := scanOrder(r.db.QueryRow(ctx, query, id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const query = `
        SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_price, o.status,
               o.order_date, o.updated_at, p.name
        FROM orders o JOIN products p ON p.id = o.product_id
        WHERE o.user_id=$1
        ORDER BY o.order_date DESC, o.id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateStatus moves the order from one status to another in a single
// conditional statement.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *orderRepository) HasPurchased(ctx context.Context, userID, productID int64, statuses []domain.OrderStatus) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM orders
            WHERE user_id=$1 AND product_id=$2 AND status = ANY($3)
        )`
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, productID, names).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SalesStatsBySeller aggregates non-cancelled orders per product of the seller.
func (r *orderRepository) SalesStatsBySeller(ctx context.Context, sellerID int64) ([]domain.SalesStat, error) {
	const query = `
        SELECT p.id, p.name,
               COALESCE(SUM(o.quantity), 0)::bigint,
               COALESCE(SUM(o.total_price), 0)::bigint,
               p.average_rating
        FROM products p
        LEFT JOIN orders o ON o.product_id = p.id AND o.status <> 'CANCELLED'
        WHERE p.seller_id=$1
        GROUP BY p.id, p.name, p.average_rating
        ORDER BY p.id`
	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]domain.SalesStat, 0)
	for rows.Next() {
		var stat domain.SalesStat
		if err := rows.Scan(
			&stat.ProductID,
			&stat.ProductName,
			&stat.TotalQuantity,
			&stat.TotalSales,
			&stat.AverageRating,
		); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func scanOrder(row pgx.Row, order *domain.Order) error {
	var status string
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ProductID,
		&order.Quantity,
		&order.TotalPrice,
		&status,
		&order.OrderDate,
		&order.UpdatedAt,
		&order.ProductName,
	); err != nil {
		return err
	}
	order.Status = domain.OrderStatus(status)
	return nil
}
