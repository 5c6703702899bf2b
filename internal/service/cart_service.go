package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/redisclient"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// CartService maintains one cart per user and keeps the derived totals
// consistent on every mutation.
type CartService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, redis *redisclient.Client) *CartService {
	return &CartService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// CartTotals is the derived summary of a cart's line items.
type CartTotals struct {
	TotalItems int
	Subtotal   int64
	Discount   int64
	Total      int64
}

// RecomputeTotals derives cart totals from the line items alone. Every
// mutator calls this; the cart invariant total == sum(line subtotals) holds
// because total is never stored independently of the items.
func RecomputeTotals(items []models.CartItem) CartTotals {
	var t CartTotals
	for _, item := range items {
		t.TotalItems += item.Quantity
		t.Subtotal += item.EffectivePrice() * int64(item.Quantity)
		if item.DiscountedPrice > 0 && item.DiscountedPrice < item.Price {
			t.Discount += (item.Price - item.DiscountedPrice) * int64(item.Quantity)
		}
	}
	t.Total = t.Subtotal
	return t
}

// Get returns the user's cart, creating an empty one on first access. Each
// line is annotated with live stock so the client can render availability.
func (cs *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	return cs.getOrCreate(ctx, userID)
}

func (cs *CartService) getOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cart = &models.Cart{ID: uuid.NewString(), UserID: userID, Items: []models.CartItem{}}
		if err := cs.store.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	return cart, err
}

// Add puts qty units of a product into the cart, merging with an existing
// line for the same product. The merged quantity must fit current stock.
func (cs *CartService) Add(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	if qty < 1 {
		return nil, Validationf("quantity must be at least 1")
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || !product.IsAvailable {
		return nil, &ProductUnavailableError{ProductID: product.ID, ProductName: product.Name}
	}

	cart, err := cs.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	newQty := qty
	for _, item := range cart.Items {
		if item.ProductID == productID {
			newQty += item.Quantity
			break
		}
	}
	if newQty > product.Stock {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   newQty,
		}
	}

	item := snapshotLine(cart.ID, product, newQty)
	if err := cs.store.UpsertCartItem(ctx, item); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return cs.refresh(ctx, userID)
}

// snapshotLine freezes product identity and pricing into a cart line.
func snapshotLine(cartID string, product *models.Product, qty int) *models.CartItem {
	image := ""
	if img := product.PrimaryImage(); img != nil {
		image = img.URL
	}
	return &models.CartItem{
		ID:              uuid.NewString(),
		CartID:          cartID,
		ProductID:       product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
		Image:           image,
		Price:           product.Price,
		DiscountedPrice: product.DiscountedPrice,
		Quantity:        qty,
		Subtotal:        product.EffectivePrice() * int64(qty),
	}
}

// UpdateQuantity sets a line's quantity, bounded by current stock, and
// refreshes the line's price snapshot.
func (cs *CartService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if qty < 1 {
		return nil, Validationf("quantity must be at least 1")
	}

	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   qty,
		}
	}

	item := snapshotLine(cart.ID, product, qty)
	if err := cs.store.UpsertCartItem(ctx, item); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return cs.refresh(ctx, userID)
}

// Remove drops one product line from the cart.
func (cs *CartService) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cs.store.RemoveCartItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return cs.refresh(ctx, userID)
}

// Clear removes every line from the cart. On failure the cached badge
// count is dropped so a stale count is never served.
func (cs *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cs.store.ClearCartItems(ctx, cart.ID); err != nil {
		if rerr := cs.redis.InvalidateCartCount(ctx, userID); rerr != nil {
			cs.logger.Warn("Failed to drop cart count cache", zap.String("user_id", userID), zap.Error(rerr))
		}
		return nil, err
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return cs.refresh(ctx, userID)
}

// Count returns the badge count, served from cache when possible.
func (cs *CartService) Count(ctx context.Context, userID string) (int, error) {
	if count, err := cs.redis.GetCartCount(ctx, userID); err == nil && count >= 0 {
		return count, nil
	}

	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := cs.redis.SetCartCount(ctx, userID, cart.TotalItems); err != nil {
		cs.logger.Warn("Failed to cache cart count", zap.String("user_id", userID), zap.Error(err))
	}
	return cart.TotalItems, nil
}

// refresh recomputes totals from the stored lines and persists them,
// returning the cart in its new state.
func (cs *CartService) refresh(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := RecomputeTotals(cart.Items)
	cart.TotalItems = totals.TotalItems
	cart.Subtotal = totals.Subtotal
	cart.Discount = totals.Discount
	cart.Total = totals.Total
	if err := cs.store.UpdateCartTotals(ctx, cart); err != nil {
		return nil, err
	}

	if err := cs.redis.SetCartCount(ctx, userID, cart.TotalItems); err != nil {
		cs.logger.Warn("Failed to cache cart count", zap.String("user_id", userID), zap.Error(err))
	}
	return cart, nil
}

// Cart validation issue kinds.
const (
	IssueProductMissing    = "product-missing"
	IssueOutOfStock        = "out-of-stock"
	IssueInsufficientStock = "insufficient-stock"
	IssuePriceChanged      = "price-changed"
)

// Suggested fixes attached to validation issues.
const (
	FixRemove      = "remove"
	FixReduce      = "reduce"
	FixUpdatePrice = "update-price"
)

// CartIssue describes one problem found by pre-checkout validation.
type CartIssue struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Kind        string `json:"kind"`
	Fix         string `json:"fix"`
	MaxQuantity int    `json:"maxQuantity,omitempty"`
	OldPrice    int64  `json:"oldPrice,omitempty"`
	NewPrice    int64  `json:"newPrice,omitempty"`
}

// Validate re-checks each line against live product state and classifies
// problems. It never mutates the cart; the caller decides which fixes to
// apply.
func (cs *CartService) Validate(ctx context.Context, userID string) ([]CartIssue, *models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Validate")
	defer span.End()

	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	ids := make([]string, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}
	products, err := cs.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	issues := []CartIssue{}
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			issues = append(issues, CartIssue{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Kind:        IssueProductMissing,
				Fix:         FixRemove,
			})
			continue
		}
		if !product.InStock() {
			issues = append(issues, CartIssue{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Kind:        IssueOutOfStock,
				Fix:         FixRemove,
			})
			continue
		}
		if product.Stock < item.Quantity {
			issues = append(issues, CartIssue{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Kind:        IssueInsufficientStock,
				Fix:         FixReduce,
				MaxQuantity: product.Stock,
			})
			continue
		}
		if product.EffectivePrice() != item.EffectivePrice() {
			issues = append(issues, CartIssue{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Kind:        IssuePriceChanged,
				Fix:         FixUpdatePrice,
				OldPrice:    item.EffectivePrice(),
				NewPrice:    product.EffectivePrice(),
			})
		}
	}

	for _, issue := range issues {
		util.CartValidationIssues.WithLabelValues(issue.Kind).Inc()
	}
	return issues, cart, nil
}

// SyncPrices refreshes every line's price snapshot to the live catalog
// price, re-deriving subtotals and totals.
func (cs *CartService) SyncPrices(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := cs.store.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		product, err := cs.store.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if item.Price == product.Price && item.DiscountedPrice == product.DiscountedPrice {
			continue
		}
		updated := snapshotLine(cart.ID, product, item.Quantity)
		if err := cs.store.UpsertCartItem(ctx, updated); err != nil {
			return nil, err
		}
	}

	return cs.refresh(ctx, userID)
}

// GuestLine is one line of a client-held guest cart.
type GuestLine struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Sync merges a guest cart into the server-side cart by replaying each
// guest line through Add. Lines that fail (gone, out of stock) are skipped
// and reported back so the client can surface them.
func (cs *CartService) Sync(ctx context.Context, userID string, lines []GuestLine) (*models.Cart, []CartIssue, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Sync")
	defer span.End()

	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	skipped := []CartIssue{}
	for _, line := range lines {
		_, err := cs.Add(ctx, userID, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}

		issue := CartIssue{ProductID: line.ProductID, Fix: FixRemove}
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, store.ErrNotFound):
			issue.Kind = IssueProductMissing
		case errors.As(err, &stockErr):
			issue.Kind = IssueInsufficientStock
			issue.ProductName = stockErr.ProductName
			issue.MaxQuantity = stockErr.Available
		default:
			var unavailErr *ProductUnavailableError
			if errors.As(err, &unavailErr) {
				issue.Kind = IssueOutOfStock
				issue.ProductName = unavailErr.ProductName
			} else {
				return nil, nil, err
			}
		}
		skipped = append(skipped, issue)
	}

	cart, err := cs.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return cart, skipped, nil
}
