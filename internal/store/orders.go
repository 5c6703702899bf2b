package store

import (
	"context"
	"database/sql"

	"github.com/rajatc17/india-ecom/internal/models"
)

// GetOrderByID retrieves an order with its item snapshots.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// GetOrderItems retrieves all item snapshots for an order.
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// GetOrdersByUserID retrieves a user's orders, newest first.
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := s.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// ListOrders retrieves one admin page of all orders plus the total count.
func (s *Store) ListOrders(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		items, err := s.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// UpdateOrderStatus updates the three status fields plus the cancel reason.
func (s *Store) UpdateOrderStatus(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, payment_status = $2, shipping_status = $3,
			cancel_reason = $4, updated_at = NOW() WHERE id = $5`,
		order.Status, order.PaymentStatus, order.ShippingStatus, order.CancelReason, order.ID)
	return err
}

// NextOrderSequence draws the next value of the order number sequence.
func (t *Tx) NextOrderSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := t.tx.GetContext(ctx, &seq, "SELECT nextval('order_number_seq')")
	return seq, err
}

// InsertOrder persists a new order inside the placement transaction.
func (t *Tx) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, subtotal, shipping_fee, tax, discount, total,
			status, payment_status, payment_method, shipping_status,
			address_label, address_line1, address_city, address_state, address_pincode)
		VALUES (
			:id, :order_number, :user_id, :subtotal, :shipping_fee, :tax, :discount, :total,
			:status, :payment_status, :payment_method, :shipping_status,
			:address_label, :address_line1, :address_city, :address_state, :address_pincode)`
	_, err := t.tx.NamedExecContext(ctx, query, order)
	return err
}

// InsertOrderItem persists one item snapshot inside the transaction.
func (t *Tx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, name, image, unit_price, quantity, subtotal)
		VALUES (:id, :order_id, :product_id, :name, :image, :unit_price, :quantity, :subtotal)`
	_, err := t.tx.NamedExecContext(ctx, query, item)
	return err
}
