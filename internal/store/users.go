package store

import (
	"context"
	"database/sql"

	"github.com/rajatc17/india-ecom/internal/models"
)

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES (:id, :email, :password_hash, :name, :role)`
	_, err := s.db.NamedExecContext(ctx, query, user)
	return err
}

// UpdateUserRole updates a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, userID, role string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2", role, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAddresses retrieves a user's addresses, default first.
func (s *Store) GetAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	addrs := []models.Address{}
	err := s.db.SelectContext(ctx, &addrs,
		"SELECT * FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, label", userID)
	return addrs, err
}

// AddAddress inserts an address; when it is flagged default, any previous
// default is cleared first.
func (s *Store) AddAddress(ctx context.Context, addr *models.Address) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		if addr.IsDefault {
			if _, err := tx.tx.ExecContext(ctx,
				"UPDATE addresses SET is_default = false WHERE user_id = $1", addr.UserID); err != nil {
				return err
			}
		}
		_, err := tx.tx.NamedExecContext(ctx, `
			INSERT INTO addresses (id, user_id, label, line1, city, state, pincode, is_default)
			VALUES (:id, :user_id, :label, :line1, :city, :state, :pincode, :is_default)`, addr)
		return err
	})
}

// RemoveAddress deletes a user's address.
func (s *Store) RemoveAddress(ctx context.Context, userID, addressID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWishlist retrieves the products on a user's wishlist.
func (s *Store) GetWishlist(ctx context.Context, userID string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.* FROM products p
		JOIN wishlist_items w ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddToWishlist adds a product to the wishlist; duplicates are ignored.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, productID)
	return err
}

// RemoveFromWishlist removes a product from the wishlist.
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
