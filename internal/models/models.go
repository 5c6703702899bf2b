package models

import (
	"time"

	"github.com/lib/pq"
)

// Category represents one node in the three-tier category tree.
// Roots have no parent and level 0; level(child) = level(parent) + 1.
type Category struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	ParentID     *string   `db:"parent_id" json:"parentId,omitempty"`
	Level        int       `db:"level" json:"level"`
	Description  string    `db:"description" json:"description,omitempty"`
	Image        string    `db:"image" json:"image,omitempty"`
	Icon         string    `db:"icon" json:"icon,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	SortOrder    int       `db:"sort_order" json:"sortOrder"`
	ProductCount int       `db:"product_count" json:"productCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// MaxCategoryLevel caps the tree at three tiers (0, 1, 2).
const MaxCategoryLevel = 2

// CategoryNode is a category with its children, used by the tree endpoint.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children,omitempty"`
}

// Product represents a catalog product.
type Product struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Slug              string         `db:"slug" json:"slug"`
	SKU               string         `db:"sku" json:"sku,omitempty"`
	Description       string         `db:"description" json:"description,omitempty"`
	CategoryID        string         `db:"category_id" json:"categoryId"`
	Price             int64          `db:"price" json:"price"`
	DiscountedPrice   int64          `db:"discounted_price" json:"discountedPrice,omitempty"`
	Stock             int            `db:"stock" json:"stock"`
	LowStockThreshold int            `db:"low_stock_threshold" json:"lowStockThreshold"`
	IsAvailable       bool           `db:"is_available" json:"isAvailable"`
	Brand             string         `db:"brand" json:"brand,omitempty"`
	Material          string         `db:"material" json:"material,omitempty"`
	Region            string         `db:"region" json:"region,omitempty"`
	GITagged          bool           `db:"gi_tagged" json:"giTagged"`
	Tags              pq.StringArray `db:"tags" json:"tags,omitempty"`
	AverageRating     float64        `db:"average_rating" json:"averageRating"`
	ReviewCount       int            `db:"review_count" json:"reviewCount"`
	IsActive          bool           `db:"is_active" json:"isActive"`
	IsFeatured        bool           `db:"is_featured" json:"isFeatured"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`

	Images []ProductImage `db:"-" json:"images,omitempty"`
}

// ProductImage is one image attached to a product; at most one is primary.
type ProductImage struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"-"`
	URL       string `db:"url" json:"url"`
	Alt       string `db:"alt" json:"alt,omitempty"`
	IsPrimary bool   `db:"is_primary" json:"isPrimary"`
	SortOrder int    `db:"sort_order" json:"sortOrder"`
}

// EffectivePrice returns the discounted price when set, else the list price.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountedPrice > 0 {
		return p.DiscountedPrice
	}
	return p.Price
}

// InStock reports whether the product can currently be sold at all.
func (p *Product) InStock() bool {
	return p.Stock > 0 && p.IsAvailable
}

// IsLowStock reports whether stock has fallen to the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// HasStock reports whether qty units can be sold right now.
func (p *Product) HasStock(qty int) bool {
	return p.IsAvailable && p.Stock >= qty
}

// DiscountPercentage derives the rounded percentage off the list price.
func (p *Product) DiscountPercentage() int {
	if p.DiscountedPrice <= 0 || p.Price <= 0 {
		return 0
	}
	return int(float64(p.Price-p.DiscountedPrice)/float64(p.Price)*100 + 0.5)
}

// PrimaryImage returns the flagged primary image, or the first one.
func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return &p.Images[0]
}

// Cart holds a user's line items with derived totals. One per user.
type Cart struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	TotalItems int        `db:"total_items" json:"totalItems"`
	Subtotal   int64      `db:"subtotal" json:"subtotal"`
	Discount   int64      `db:"discount" json:"discount"`
	Total      int64      `db:"total" json:"total"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	Items      []CartItem `db:"-" json:"items"`
}

// CartItem is one product line in a cart, snapshotting identity and price.
type CartItem struct {
	ID              string    `db:"id" json:"id"`
	CartID          string    `db:"cart_id" json:"-"`
	ProductID       string    `db:"product_id" json:"productId"`
	Name            string    `db:"name" json:"name"`
	Slug            string    `db:"slug" json:"slug,omitempty"`
	Image           string    `db:"image" json:"image,omitempty"`
	Price           int64     `db:"price" json:"price"`
	DiscountedPrice int64     `db:"discounted_price" json:"discountedPrice,omitempty"`
	Quantity        int       `db:"quantity" json:"quantity"`
	Subtotal        int64     `db:"subtotal" json:"subtotal"`
	AddedAt         time.Time `db:"added_at" json:"addedAt"`
}

// EffectivePrice mirrors Product.EffectivePrice for the snapshotted values.
func (ci *CartItem) EffectivePrice() int64 {
	if ci.DiscountedPrice > 0 {
		return ci.DiscountedPrice
	}
	return ci.Price
}

// Order is immutable once placed; only status transitions mutate it.
type Order struct {
	ID             string    `db:"id" json:"id"`
	OrderNumber    string    `db:"order_number" json:"orderNumber"`
	UserID         string    `db:"user_id" json:"userId"`
	Subtotal       int64     `db:"subtotal" json:"subtotal"`
	ShippingFee    int64     `db:"shipping_fee" json:"shippingFee"`
	Tax            int64     `db:"tax" json:"tax"`
	Discount       int64     `db:"discount" json:"discount"`
	Total          int64     `db:"total" json:"total"`
	Status         string    `db:"status" json:"status"`
	PaymentStatus  string    `db:"payment_status" json:"paymentStatus"`
	PaymentMethod  string    `db:"payment_method" json:"paymentMethod"`
	ShippingStatus string    `db:"shipping_status" json:"shippingStatus"`
	AddressLabel   string    `db:"address_label" json:"-"`
	AddressLine1   string    `db:"address_line1" json:"-"`
	AddressCity    string    `db:"address_city" json:"-"`
	AddressState   string    `db:"address_state" json:"-"`
	AddressPincode string    `db:"address_pincode" json:"-"`
	CancelReason   string    `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	Address Address     `db:"-" json:"address"`
	Items   []OrderItem `db:"-" json:"items"`
}

// OrderItem is a frozen snapshot of a product line at placement time.
type OrderItem struct {
	ID        string `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"-"`
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Image     string `db:"image" json:"image,omitempty"`
	UnitPrice int64  `db:"unit_price" json:"unitPrice"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Subtotal  int64  `db:"subtotal" json:"subtotal"`
}

// Overall order statuses.
const (
	OrderStatusCreated    = "created"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Shipping statuses.
const (
	ShippingStatusPending        = "pending"
	ShippingStatusProcessing     = "processing"
	ShippingStatusShipped        = "shipped"
	ShippingStatusOutForDelivery = "out-for-delivery"
	ShippingStatusDelivered      = "delivered"
)

// Shipping fee policy: free above the threshold, flat fee otherwise.
const (
	FreeShippingThreshold int64 = 1000
	FlatShippingFee       int64 = 50
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User holds credentials and profile data. PasswordHash never serializes.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name,omitempty"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	Addresses []Address `db:"-" json:"addresses,omitempty"`
	Wishlist  []Product `db:"-" json:"wishlist,omitempty"`
}

// Address is one shipping address; at most one per user is the default.
type Address struct {
	ID        string `db:"id" json:"id,omitempty"`
	UserID    string `db:"user_id" json:"-"`
	Label     string `db:"label" json:"label,omitempty"`
	Line1     string `db:"line1" json:"line1"`
	City      string `db:"city" json:"city"`
	State     string `db:"state" json:"state"`
	Pincode   string `db:"pincode" json:"pincode"`
	IsDefault bool   `db:"is_default" json:"isDefault"`
}

// ProcessedEvent records consumed event IDs for worker idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
