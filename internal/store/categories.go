package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rajatc17/india-ecom/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// GetActiveCategories retrieves all active categories ordered for display.
func (s *Store) GetActiveCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.SelectContext(ctx, &cats,
		"SELECT * FROM categories WHERE is_active = true ORDER BY sort_order, name")
	return cats, err
}

// GetCategories retrieves categories with optional active/level filters.
func (s *Store) GetCategories(ctx context.Context, activeOnly bool, level *int) ([]models.Category, error) {
	query := "SELECT * FROM categories WHERE 1=1"
	args := []interface{}{}
	if activeOnly {
		query += " AND is_active = true"
	}
	if level != nil {
		args = append(args, *level)
		query += " AND level = $1"
	}
	query += " ORDER BY sort_order, name"

	var cats []models.Category
	err := s.db.SelectContext(ctx, &cats, query, args...)
	return cats, err
}

// GetRootCategories retrieves active categories without a parent.
func (s *Store) GetRootCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.SelectContext(ctx, &cats,
		"SELECT * FROM categories WHERE parent_id IS NULL AND is_active = true ORDER BY sort_order, name")
	return cats, err
}

// GetCategoryByID retrieves a category by ID.
func (s *Store) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	err := s.db.GetContext(ctx, &cat, "SELECT * FROM categories WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetCategoryBySlug retrieves an active category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	err := s.db.GetContext(ctx, &cat,
		"SELECT * FROM categories WHERE slug = $1 AND is_active = true", slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetCategoryChildren retrieves the direct children of a category.
func (s *Store) GetCategoryChildren(ctx context.Context, id string) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.SelectContext(ctx, &cats,
		"SELECT * FROM categories WHERE parent_id = $1 ORDER BY sort_order, name", id)
	return cats, err
}

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, cat *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, parent_id, level, description, image, icon, is_active, sort_order)
		VALUES (:id, :name, :slug, :parent_id, :level, :description, :image, :icon, :is_active, :sort_order)`
	_, err := s.db.NamedExecContext(ctx, query, cat)
	return err
}

// UpdateCategory updates the mutable fields of a category.
func (s *Store) UpdateCategory(ctx context.Context, cat *models.Category) error {
	query := `
		UPDATE categories SET
			name = :name, slug = :slug, parent_id = :parent_id, level = :level,
			description = :description, image = :image, icon = :icon,
			is_active = :is_active, sort_order = :sort_order, updated_at = NOW()
		WHERE id = :id`
	res, err := s.db.NamedExecContext(ctx, query, cat)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryHasChildren reports whether any category references id as parent.
func (s *Store) CategoryHasChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)", id)
	return exists, err
}

// AdjustCategoryProductCount shifts the denormalized product counter.
func (s *Store) AdjustCategoryProductCount(ctx context.Context, id string, delta int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE categories SET product_count = GREATEST(product_count + $1, 0), updated_at = NOW() WHERE id = $2",
		delta, id)
	return err
}
