package store

import (
	"context"
	"database/sql"

	"github.com/rajatc17/india-ecom/internal/models"
)

// GetCartByUserID retrieves a user's cart with its items.
func (s *Store) GetCartByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart, "SELECT * FROM carts WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items := []models.CartItem{}
	err = s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY added_at", cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

// CreateCart inserts an empty cart for a user. The user_id unique constraint
// enforces one cart per user.
func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, total_items, subtotal, discount, total)
		VALUES (:id, :user_id, 0, 0, 0, 0)`
	_, err := s.db.NamedExecContext(ctx, query, cart)
	return err
}

// UpsertCartItem inserts a line item or refreshes an existing line for the
// same product (quantity, snapshotted prices, subtotal).
func (s *Store) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, name, slug, image, price, discounted_price, quantity, subtotal)
		VALUES (:id, :cart_id, :product_id, :name, :slug, :image, :price, :discounted_price, :quantity, :subtotal)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			image = EXCLUDED.image,
			price = EXCLUDED.price,
			discounted_price = EXCLUDED.discounted_price,
			quantity = EXCLUDED.quantity,
			subtotal = EXCLUDED.subtotal`
	_, err := s.db.NamedExecContext(ctx, query, item)
	return err
}

// RemoveCartItem drops one product line; reports ErrNotFound when absent.
func (s *Store) RemoveCartItem(ctx context.Context, cartID, productID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCartItems removes every line from a cart.
func (s *Store) ClearCartItems(ctx context.Context, cartID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}

// UpdateCartTotals persists the recomputed summary fields.
func (s *Store) UpdateCartTotals(ctx context.Context, cart *models.Cart) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE carts SET total_items = $1, subtotal = $2, discount = $3, total = $4, updated_at = NOW() WHERE id = $5",
		cart.TotalItems, cart.Subtotal, cart.Discount, cart.Total, cart.ID)
	return err
}
