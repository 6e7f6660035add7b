package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayraw/internal/domain"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
)

// OrderRepository defines the interface for order data access. Orders are
// created atomically with their items and never deleted; the only mutation
// after creation is a status update.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, returnReason string) error
	HasDeliveredProduct(ctx context.Context, userID, productID int64) (bool, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and all its items in a single transaction so no
// reader can observe an order without its lines. Item ids are assigned by
// the database and written back.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, user_id, user_name, status, subtotal, gst_amount, delivery_charge,
		                    discount_code, discount_amount, total_amount, address, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.UserName,
		order.Status,
		order.Subtotal,
		order.GSTAmount,
		order.DeliveryCharge,
		order.DiscountCode,
		order.DiscountAmount,
		order.TotalAmount,
		order.Address,
		order.Phone,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRowContext(ctx, itemQuery, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Size).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, user_name, status, subtotal, gst_amount, delivery_charge,
	COALESCE(discount_code, ''), discount_amount, total_amount, address, phone,
	COALESCE(return_reason, ''), created_at`

// FindByID retrieves an order with its items.
func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser retrieves a user's orders, newest created first, with items.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.queryOrders(ctx, query, userID)
}

// List retrieves all orders, newest created first, with items.
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.queryOrders(ctx, query)
}

// UpdateStatus writes the new status and, when non-empty, the return reason.
// The write is a compare-and-set on the status the caller validated against,
// so two concurrent updates cannot both move the order; the loser sees
// ErrOrderStatusConflict.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, returnReason string) error {
	query := `
		UPDATE orders
		SET status = $3, return_reason = COALESCE(NULLIF($4, ''), return_reason)
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, from, to, returnReason)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrOrderStatusConflict
	}

	return nil
}

// HasDeliveredProduct reports whether any of the user's Delivered orders
// contains an item referencing the product.
func (r *orderRepository) HasDeliveredProduct(ctx context.Context, userID, productID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE o.user_id = $1 AND o.status = $2 AND i.product_id = $3
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, domain.OrderStatusDelivered, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check delivered product: %w", err)
	}

	return exists, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT id, order_id, product_id, quantity, price, size
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := domain.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Size); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.UserName,
		&order.Status,
		&order.Subtotal,
		&order.GSTAmount,
		&order.DeliveryCharge,
		&order.DiscountCode,
		&order.DiscountAmount,
		&order.TotalAmount,
		&order.Address,
		&order.Phone,
		&order.ReturnReason,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
