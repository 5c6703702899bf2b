package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/rajatc17/india-ecom/internal/models"
)

// ProductFilter describes one catalog list query. CategoryIDs is the already
// expanded descendant set; an empty slice means no category filter.
type ProductFilter struct {
	Query       string
	CategoryIDs []string
	Region      string
	GITagged    *bool
	MinPrice    *int64
	MaxPrice    *int64
	InStock     bool
	Featured    bool
	ActiveOnly  bool
	Sort        string
	Page        int
	Limit       int
}

// MaxPageLimit bounds a single catalog page.
const MaxPageLimit = 100

// DefaultPageLimit applies when the caller sends no limit.
const DefaultPageLimit = 20

// sortColumns whitelists caller-specified sort keys.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
	"rating":    "average_rating",
}

// Normalize clamps pagination and resolves the sort key to an ORDER BY
// clause. Unknown sort keys fall back to newest-first.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Sort == "" {
		f.Sort = "-createdAt"
	}
}

// OrderBy returns the SQL ORDER BY expression for the normalized sort key.
func (f *ProductFilter) OrderBy() string {
	key := f.Sort
	dir := "ASC"
	if strings.HasPrefix(key, "-") {
		key = key[1:]
		dir = "DESC"
	}
	col, ok := sortColumns[key]
	if !ok {
		return "created_at DESC"
	}
	return col + " " + dir
}

// buildProductWhere translates a filter into a WHERE clause with ? markers.
func buildProductWhere(f ProductFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	if f.ActiveOnly {
		conds = append(conds, "is_active = true")
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, "category_id IN (?)")
		args = append(args, f.CategoryIDs)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		conds = append(conds, "(name ILIKE ? OR description ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)")
		args = append(args, like, like, like)
	}
	if f.Region != "" {
		conds = append(conds, "region = ?")
		args = append(args, f.Region)
	}
	if f.GITagged != nil {
		conds = append(conds, "gi_tagged = ?")
		args = append(args, *f.GITagged)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.InStock {
		conds = append(conds, "stock > 0")
	}
	if f.Featured {
		conds = append(conds, "is_featured = true")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProducts returns one catalog page plus the total match count.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	f.Normalize()
	where, args := buildProductWhere(f)

	countQuery := "SELECT COUNT(*) FROM products" + where
	countQuery, countArgs, err := expand(s.db, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	listQuery := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s LIMIT ? OFFSET ?", where, f.OrderBy())
	listQuery, listArgs, err := expand(s.db, listQuery, append(args, f.Limit, offset))
	if err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, listQuery, listArgs...); err != nil {
		return nil, 0, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// expand resolves IN (?) slices and rebinds ? markers to $n placeholders.
func expand(db *sqlx.DB, query string, args []interface{}) (string, []interface{}, error) {
	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(query), expanded, nil
}

// GetFeaturedProducts retrieves featured, active, available products.
func (s *Store) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE is_featured = true AND is_active = true AND is_available = true ORDER BY created_at DESC LIMIT $1",
		limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID retrieves a product by ID.
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	imgs, err := s.GetProductImages(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Images = imgs
	return &product, nil
}

// GetProductBySlug retrieves an active product by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE slug = $1 AND is_active = true", slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	imgs, err := s.GetProductImages(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = imgs
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ProductSlugExists reports whether a slug is taken by another product.
func (s *Store) ProductSlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND id <> $2)", slug, excludeID)
	return exists, err
}

// CreateProduct inserts a new product with its images.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (
			id, name, slug, sku, description, category_id, price, discounted_price,
			stock, low_stock_threshold, is_available, brand, material, region,
			gi_tagged, tags, is_active, is_featured)
		VALUES (
			:id, :name, :slug, :sku, :description, :category_id, :price, :discounted_price,
			:stock, :low_stock_threshold, :is_available, :brand, :material, :region,
			:gi_tagged, :tags, :is_active, :is_featured)`
	if _, err := s.db.NamedExecContext(ctx, query, p); err != nil {
		return err
	}
	return s.ReplaceProductImages(ctx, p.ID, p.Images)
}

// UpdateProduct updates the mutable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET
			name = :name, slug = :slug, sku = :sku, description = :description,
			category_id = :category_id, price = :price, discounted_price = :discounted_price,
			stock = :stock, low_stock_threshold = :low_stock_threshold,
			is_available = :is_available, brand = :brand, material = :material,
			region = :region, gi_tagged = :gi_tagged, tags = :tags,
			is_active = :is_active, is_featured = :is_featured, updated_at = NOW()
		WHERE id = :id`
	res, err := s.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return s.ReplaceProductImages(ctx, p.ID, p.Images)
}

// DeleteProduct removes a product and its images.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProductImages retrieves a product's images in display order.
func (s *Store) GetProductImages(ctx context.Context, productID string) ([]models.ProductImage, error) {
	imgs := []models.ProductImage{}
	err := s.db.SelectContext(ctx, &imgs,
		"SELECT * FROM product_images WHERE product_id = $1 ORDER BY sort_order", productID)
	return imgs, err
}

// ReplaceProductImages swaps a product's image set.
func (s *Store) ReplaceProductImages(ctx context.Context, productID string, imgs []models.ProductImage) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM product_images WHERE product_id = $1", productID); err != nil {
		return err
	}
	for i := range imgs {
		imgs[i].ProductID = productID
		_, err := s.db.NamedExecContext(ctx, `
			INSERT INTO product_images (id, product_id, url, alt, is_primary, sort_order)
			VALUES (:id, :product_id, :url, :alt, :is_primary, :sort_order)`, &imgs[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// attachImages loads images for a page of products in one query.
func (s *Store) attachImages(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}

	query, args, err := sqlx.In(
		"SELECT * FROM product_images WHERE product_id IN (?) ORDER BY sort_order", ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var imgs []models.ProductImage
	if err := s.db.SelectContext(ctx, &imgs, query, args...); err != nil {
		return err
	}
	for _, img := range imgs {
		p := byID[img.ProductID]
		p.Images = append(p.Images, img)
	}
	return nil
}

// SetStock overwrites the stock counter (admin correction).
func (s *Store) SetStock(ctx context.Context, productID string, stock int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2", stock, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReduceStock atomically decrements stock, failing when fewer than qty units
// remain. The condition is evaluated by the database, never in Go.
func (s *Store) ReduceStock(ctx context.Context, productID string, qty int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		qty, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("insufficient stock for product %s", productID)
	}
	return nil
}

// IncreaseStock unconditionally increments stock (cancellation restores and
// admin corrections).
func (s *Store) IncreaseStock(ctx context.Context, productID string, qty int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2", qty, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProductsForUpdate loads and row-locks products inside the transaction.
func (t *Tx) GetProductsForUpdate(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) FOR UPDATE", ids)
	if err != nil {
		return nil, err
	}
	query = t.tx.Rebind(query)

	var products []models.Product
	err = t.tx.SelectContext(ctx, &products, query, args...)
	return products, err
}

// DecrementStock decrements stock inside the transaction, re-checking the
// counter at commit time so concurrent placements cannot oversell.
func (t *Tx) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		qty, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
