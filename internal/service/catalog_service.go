package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajatc17/india-ecom/internal/broker"
	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// CatalogService composes catalog queries and owns admin product mutations.
type CatalogService struct {
	store      *store.Store
	categories *CategoryService
	publisher  *broker.EventPublisher
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, categories *CategoryService, publisher *broker.EventPublisher) *CatalogService {
	return &CatalogService{
		store:      store,
		categories: categories,
		publisher:  publisher,
		logger:     util.GetLogger(),
	}
}

// CatalogParams carries the raw, untrusted query parameters of a catalog
// list request. Numeric and boolean fields are parsed leniently: anything
// unparseable is treated as absent.
type CatalogParams struct {
	Query    string
	Category string
	Region   string
	GITagged string
	MinPrice string
	MaxPrice string
	InStock  string
	Featured string
	Sort     string
	Page     string
	Limit    string
}

// Pagination summarises one result page.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ProductPage is the catalog list response shape.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// toFilter parses params into a store filter, without the category set.
func (p CatalogParams) toFilter() store.ProductFilter {
	f := store.ProductFilter{
		Query:      p.Query,
		Region:     p.Region,
		Sort:       p.Sort,
		ActiveOnly: true,
	}
	if p.GITagged == "true" {
		t := true
		f.GITagged = &t
	}
	if v, err := strconv.ParseInt(p.MinPrice, 10, 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseInt(p.MaxPrice, 10, 64); err == nil {
		f.MaxPrice = &v
	}
	f.InStock = p.InStock == "true"
	f.Featured = p.Featured == "true"
	if v, err := strconv.Atoi(p.Page); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(p.Limit); err == nil {
		f.Limit = v
	}
	f.Normalize()
	return f
}

// ListProducts runs one catalog query. A category parameter always expands
// to the full descendant set, so a parent category page lists every product
// in the subtree beneath it. An unknown category yields an empty page, not
// an error.
func (cs *CatalogService) ListProducts(ctx context.Context, params CatalogParams) (*ProductPage, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	util.CatalogQueriesTotal.Inc()
	start := time.Now()
	defer func() {
		util.CatalogQueryLatency.Observe(time.Since(start).Seconds())
	}()

	f := params.toFilter()

	if params.Category != "" {
		ids, err := cs.categories.ResolveDescendants(ctx, params.Category)
		if errors.Is(err, ErrNotFound) {
			return &ProductPage{
				Products:   []models.Product{},
				Pagination: Pagination{Page: f.Page, Limit: f.Limit},
			}, nil
		}
		if err != nil {
			return nil, err
		}
		f.CategoryIDs = ids
	}

	products, total, err := cs.store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ProductPage{
		Products: products,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// FeaturedProducts returns featured active products, limit clamped to 50.
func (cs *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return cs.store.GetFeaturedProducts(ctx, limit)
}

// ProductBySlug returns an active product by slug.
func (cs *CatalogService) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return cs.store.GetProductBySlug(ctx, slug)
}

// ProductByID returns a product by ID. Inactive products are hidden unless
// the caller is an admin.
func (cs *CatalogService) ProductByID(ctx context.Context, id string, isAdmin bool) (*models.Product, error) {
	product, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !isAdmin {
		return nil, ErrNotFound
	}
	return product, nil
}

// ProductRequest carries admin product create/update input.
type ProductRequest struct {
	Name              string                `json:"name" binding:"required"`
	Slug              string                `json:"slug"`
	SKU               string                `json:"sku"`
	Description       string                `json:"description"`
	CategoryID        string                `json:"categoryId" binding:"required"`
	Price             int64                 `json:"price" binding:"required"`
	DiscountedPrice   int64                 `json:"discountedPrice"`
	Stock             int                   `json:"stock"`
	LowStockThreshold int                   `json:"lowStockThreshold"`
	IsAvailable       *bool                 `json:"isAvailable"`
	Brand             string                `json:"brand"`
	Material          string                `json:"material"`
	Region            string                `json:"region"`
	GITagged          bool                  `json:"giTagged"`
	Tags              []string              `json:"tags"`
	IsActive          *bool                 `json:"isActive"`
	IsFeatured        bool                  `json:"isFeatured"`
	Images            []models.ProductImage `json:"images"`
}

func (req *ProductRequest) validate() error {
	if req.Price <= 0 {
		return Validationf("price must be positive")
	}
	if req.DiscountedPrice < 0 {
		return Validationf("discounted price must not be negative")
	}
	if req.DiscountedPrice > 0 && req.DiscountedPrice >= req.Price {
		return Validationf("discounted price must be less than price")
	}
	if req.Stock < 0 {
		return Validationf("stock must not be negative")
	}
	return nil
}

// CreateProduct inserts a product after validating its category and slug.
func (cs *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := cs.store.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Validationf("category %s does not exist", req.CategoryID)
		}
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	taken, err := cs.store.ProductSlugExists(ctx, slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, Validationf("product slug %q already exists", slug)
	}

	product := req.toModel(uuid.NewString(), slug)
	if err := cs.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	if err := cs.store.AdjustCategoryProductCount(ctx, product.CategoryID, 1); err != nil {
		cs.logger.Warn("Failed to bump category product count",
			zap.String("category_id", product.CategoryID), zap.Error(err))
	}

	cs.publishProductEvent(ctx, models.EventTypeProductCreated, product)
	cs.logger.Info("Product created",
		zap.String("product_id", product.ID), zap.String("slug", product.Slug))
	return product, nil
}

func (req *ProductRequest) toModel(id, slug string) *models.Product {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	threshold := req.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	imgs := req.Images
	for i := range imgs {
		if imgs[i].ID == "" {
			imgs[i].ID = uuid.NewString()
		}
	}
	return &models.Product{
		ID:                id,
		Name:              req.Name,
		Slug:              slug,
		SKU:               req.SKU,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		DiscountedPrice:   req.DiscountedPrice,
		Stock:             req.Stock,
		LowStockThreshold: threshold,
		IsAvailable:       available,
		Brand:             req.Brand,
		Material:          req.Material,
		Region:            req.Region,
		GITagged:          req.GITagged,
		Tags:              req.Tags,
		IsActive:          active,
		IsFeatured:        req.IsFeatured,
		Images:            imgs,
	}
}

// UpdateProduct applies admin edits to an existing product.
func (cs *CatalogService) UpdateProduct(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}
	existing, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != existing.CategoryID {
		if _, err := cs.store.GetCategoryByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, Validationf("category %s does not exist", req.CategoryID)
			}
			return nil, err
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = existing.Slug
	}
	taken, err := cs.store.ProductSlugExists(ctx, slug, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, Validationf("product slug %q already exists", slug)
	}

	product := req.toModel(id, slug)
	product.CreatedAt = existing.CreatedAt
	if err := cs.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	if existing.CategoryID != product.CategoryID {
		if err := cs.store.AdjustCategoryProductCount(ctx, existing.CategoryID, -1); err != nil {
			cs.logger.Warn("Failed to adjust category product count", zap.Error(err))
		}
		if err := cs.store.AdjustCategoryProductCount(ctx, product.CategoryID, 1); err != nil {
			cs.logger.Warn("Failed to adjust category product count", zap.Error(err))
		}
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (cs *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if err := cs.store.AdjustCategoryProductCount(ctx, product.CategoryID, -1); err != nil {
		cs.logger.Warn("Failed to drop category product count", zap.Error(err))
	}
	cs.publishProductEvent(ctx, models.EventTypeProductDeleted, product)
	return nil
}

// Stock operation names accepted by MutateStock.
const (
	StockOpSet      = "set"
	StockOpAdd      = "add"
	StockOpSubtract = "subtract"
)

// MutateStock applies an admin stock correction and returns the result.
func (cs *CatalogService) MutateStock(ctx context.Context, productID, op string, qty int) (*models.Product, error) {
	switch op {
	case StockOpSet:
		if qty < 0 {
			return nil, Validationf("stock must not be negative")
		}
	case StockOpAdd, StockOpSubtract:
		if qty <= 0 {
			return nil, Validationf("quantity must be positive")
		}
	default:
		return nil, Validationf("unknown stock operation %q", op)
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	switch op {
	case StockOpSet:
		err = cs.store.SetStock(ctx, productID, qty)
	case StockOpAdd:
		err = cs.store.IncreaseStock(ctx, productID, qty)
	case StockOpSubtract:
		if qty > product.Stock {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   qty,
			}
		}
		err = cs.store.ReduceStock(ctx, productID, qty)
	}
	if err != nil {
		return nil, err
	}

	return cs.store.GetProductByID(ctx, productID)
}

func (cs *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *models.Product) {
	if cs.publisher == nil {
		return
	}
	base := models.BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
	var err error
	switch eventType {
	case models.EventTypeProductCreated:
		err = cs.publisher.PublishProductCreated(ctx, &models.ProductCreatedEvent{
			BaseEvent: base, ProductID: product.ID, CategoryID: product.CategoryID,
		})
	case models.EventTypeProductDeleted:
		err = cs.publisher.PublishProductDeleted(ctx, &models.ProductDeletedEvent{
			BaseEvent: base, ProductID: product.ID, CategoryID: product.CategoryID,
		})
	}
	if err != nil {
		cs.logger.Error("Failed to publish product event",
			zap.String("event_type", eventType), zap.Error(err))
	}
}
